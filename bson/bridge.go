// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/decimal"
	"github.com/ikmak/bsondoc/bson/objectid"
)

// ValueMarshaler is implemented by types that can convert themselves into a Value for ToBson.
type ValueMarshaler interface {
	MarshalBSONValue() (Value, error)
}

// ToBson converts a Go value into a Value.
//
// Integers become an int32 when they fit and an int64 otherwise. Maps with string keys become
// documents with their keys sorted, since Go maps are unordered. Slices and arrays other than
// []byte become BSON arrays. Anything that cannot be represented, including a uint64 larger
// than math.MaxInt64, returns an *EncoderError wrapping ErrUnsupportedValue.
func ToBson(v interface{}) (Value, error) {
	return toBson(v, 1)
}

func toBson(v interface{}, depth int) (Value, error) {
	if depth > DefaultMaxDepth {
		return Value{}, &EncoderError{Err: ErrMaxDepthExceeded}
	}

	switch tv := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return tv, nil
	case ValueMarshaler:
		return tv.MarshalBSONValue()
	case *Document:
		return EmbedDocument(tv), nil
	case *Array:
		return EmbedArray(tv), nil
	case bool:
		return Boolean(tv), nil
	case int:
		return fromInt64(int64(tv)), nil
	case int8:
		return Int32(int32(tv)), nil
	case int16:
		return Int32(int32(tv)), nil
	case int32:
		return Int32(tv), nil
	case int64:
		return fromInt64(tv), nil
	case uint:
		return fromUint64(uint64(tv))
	case uint8:
		return Int32(int32(tv)), nil
	case uint16:
		return Int32(int32(tv)), nil
	case uint32:
		return fromInt64(int64(tv)), nil
	case uint64:
		return fromUint64(tv)
	case float32:
		return Double(float64(tv)), nil
	case float64:
		return Double(tv), nil
	case string:
		return String(tv), nil
	case []byte:
		return Binary(bsontype.BinaryGeneric, tv), nil
	case time.Time:
		return Time(tv), nil
	case objectid.ObjectID:
		return ObjectID(tv), nil
	case decimal.Decimal128:
		return Decimal128(tv), nil
	case uuid.UUID:
		return UUID(tv), nil
	case BinaryPrimitive:
		return Binary(tv.Subtype, tv.Data), nil
	case RegexPrimitive:
		return Regex(tv.Pattern, tv.Options), nil
	case TimestampPrimitive:
		return Timestamp(tv.T, tv.I), nil
	case CodeWithScopePrimitive:
		return CodeWithScope(tv.Code, tv.Scope), nil
	case JavaScriptCodePrimitive:
		return JavaScript(string(tv)), nil
	case SymbolPrimitive:
		return Symbol(string(tv)), nil
	case UndefinedPrimitive:
		return Undefined(), nil
	case NullPrimitive:
		return Null(), nil
	case MinKeyPrimitive:
		return MinKey(), nil
	case MaxKeyPrimitive:
		return MaxKey(), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(tv))
		for key := range tv {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		doc := NewDocument()
		for _, key := range keys {
			val, err := toBson(tv[key], depth+1)
			if err != nil {
				return Value{}, prefixEncoderError(key, err)
			}
			doc.Set(key, val)
		}
		return EmbedDocument(doc), nil
	case []interface{}:
		arr := &Array{values: make([]Value, 0, len(tv))}
		for i, elem := range tv {
			val, err := toBson(elem, depth+1)
			if err != nil {
				return Value{}, prefixEncoderError(strconv.Itoa(i), err)
			}
			arr.values = append(arr.values, val)
		}
		return EmbedArray(arr), nil
	}

	return reflectToBson(reflect.ValueOf(v), depth)
}

// reflectToBson handles slices, arrays and string keyed maps of any element type, as well as
// named types whose underlying kind is a basic type.
func reflectToBson(rv reflect.Value, depth int) (Value, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return toBson(rv.Elem().Interface(), depth)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		arr := &Array{values: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			val, err := toBson(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return Value{}, prefixEncoderError(strconv.Itoa(i), err)
			}
			arr.values = append(arr.values, val)
		}
		return EmbedArray(arr), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		doc := NewDocument()
		for _, key := range keys {
			mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			val, err := toBson(mv.Interface(), depth+1)
			if err != nil {
				return Value{}, prefixEncoderError(key, err)
			}
			doc.Set(key, val)
		}
		return EmbedDocument(doc), nil
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	}

	return Value{}, &EncoderError{Err: fmt.Errorf("%w: Go type %s", ErrUnsupportedValue, rv.Type())}
}

func fromInt64(i64 int64) Value {
	if i64 >= math.MinInt32 && i64 <= math.MaxInt32 {
		return Int32(int32(i64))
	}
	return Int64(i64)
}

func fromUint64(u64 uint64) (Value, error) {
	if u64 > math.MaxInt64 {
		return Value{}, &EncoderError{Err: fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u64)}
	}
	return fromInt64(int64(u64)), nil
}

func prefixEncoderError(key string, err error) error {
	if ee, ok := err.(*EncoderError); ok {
		return &EncoderError{Key: joinKey(key, ee.Key), Err: ee.Err}
	}
	return &EncoderError{Key: key, Err: err}
}

// FromBson converts a Value into plain Go values: documents become map[string]interface{},
// arrays []interface{}, null nil and datetimes a UTC time.Time. Numbers, strings and booleans
// become their Go counterparts; every other type is returned as its payload or marker type.
//
// Converting a document to a map loses the order of its keys.
func FromBson(v Value) interface{} {
	switch v.Type() {
	case bsontype.EmbeddedDocument:
		doc := v.Document()
		m := make(map[string]interface{}, doc.Len())
		for _, elem := range doc.elems {
			m[elem.Key] = FromBson(elem.Value)
		}
		return m
	case bsontype.Array:
		arr := v.Array()
		s := make([]interface{}, 0, arr.Len())
		for _, val := range arr.values {
			s = append(s, FromBson(val))
		}
		return s
	case bsontype.Null:
		return nil
	default:
		return v.Interface()
	}
}
