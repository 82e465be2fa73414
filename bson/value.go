// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"time"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/decimal"
	"github.com/ikmak/bsondoc/bson/objectid"
)

// Value represents a BSON value. The zero Value has no type and cannot be encoded; values
// are built with the constructor functions such as Double, String and EmbedDocument.
type Value struct {
	t         bsontype.Type
	primitive interface{}
}

// Double constructs a BSON double Value.
func Double(f64 float64) Value { return Value{t: bsontype.Double, primitive: f64} }

// String constructs a BSON string Value.
func String(str string) Value { return Value{t: bsontype.String, primitive: str} }

// EmbedDocument constructs a BSON embedded document Value. A nil doc is stored as an
// empty document.
func EmbedDocument(doc *Document) Value {
	if doc == nil {
		doc = NewDocument()
	}
	return Value{t: bsontype.EmbeddedDocument, primitive: doc}
}

// EmbedArray constructs a BSON array Value. A nil arr is stored as an empty array.
func EmbedArray(arr *Array) Value {
	if arr == nil {
		arr = NewArray()
	}
	return Value{t: bsontype.Array, primitive: arr}
}

// Binary constructs a BSON binary Value.
func Binary(subtype byte, data []byte) Value {
	return Value{t: bsontype.Binary, primitive: BinaryPrimitive{Subtype: subtype, Data: data}}
}

// Undefined constructs a BSON undefined Value.
func Undefined() Value { return Value{t: bsontype.Undefined} }

// ObjectID constructs a BSON ObjectID Value.
func ObjectID(oid objectid.ObjectID) Value { return Value{t: bsontype.ObjectID, primitive: oid} }

// Boolean constructs a BSON boolean Value.
func Boolean(b bool) Value { return Value{t: bsontype.Boolean, primitive: b} }

// DateTime constructs a BSON datetime Value from milliseconds since the Unix epoch.
func DateTime(dt int64) Value { return Value{t: bsontype.DateTime, primitive: dt} }

// Time constructs a BSON datetime Value from t, truncated to the millisecond.
func Time(t time.Time) Value { return DateTime(t.UnixMilli()) }

// Null constructs a BSON null Value.
func Null() Value { return Value{t: bsontype.Null} }

// Regex constructs a BSON regex Value.
func Regex(pattern, options string) Value {
	return Value{t: bsontype.Regex, primitive: RegexPrimitive{Pattern: pattern, Options: options}}
}

// JavaScript constructs a BSON JavaScript code Value.
func JavaScript(code string) Value { return Value{t: bsontype.JavaScript, primitive: code} }

// Symbol constructs a BSON symbol Value.
func Symbol(symbol string) Value { return Value{t: bsontype.Symbol, primitive: symbol} }

// CodeWithScope constructs a BSON code with scope Value. A nil scope is stored as an empty
// document.
func CodeWithScope(code string, scope *Document) Value {
	if scope == nil {
		scope = NewDocument()
	}
	return Value{t: bsontype.CodeWithScope, primitive: CodeWithScopePrimitive{Code: code, Scope: scope}}
}

// Int32 constructs a BSON int32 Value.
func Int32(i32 int32) Value { return Value{t: bsontype.Int32, primitive: i32} }

// Timestamp constructs a BSON timestamp Value from its seconds and increment.
func Timestamp(t, i uint32) Value {
	return Value{t: bsontype.Timestamp, primitive: TimestampPrimitive{T: t, I: i}}
}

// Int64 constructs a BSON int64 Value.
func Int64(i64 int64) Value { return Value{t: bsontype.Int64, primitive: i64} }

// Decimal128 constructs a BSON decimal128 Value.
func Decimal128(d128 decimal.Decimal128) Value {
	return Value{t: bsontype.Decimal128, primitive: d128}
}

// MinKey constructs a BSON min key Value.
func MinKey() Value { return Value{t: bsontype.MinKey} }

// MaxKey constructs a BSON max key Value.
func MaxKey() Value { return Value{t: bsontype.MaxKey} }

// Type returns the BSON type of this value.
func (v Value) Type() bsontype.Type { return v.t }

// IsZero returns true if this value is zero.
func (v Value) IsZero() bool { return v.t == bsontype.Type(0) }

// IsNumber returns true if the type of v is a numeric BSON type.
func (v Value) IsNumber() bool {
	switch v.t {
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return true
	default:
		return false
	}
}

// Interface returns the Go value of this Value as an empty interface.
//
// This method will return nil if it is empty, otherwise it will return a Go primitive or a
// *Primitive instance.
func (v Value) Interface() interface{} {
	switch v.t {
	case bsontype.Double:
		return v.Double()
	case bsontype.String:
		return v.StringValue()
	case bsontype.EmbeddedDocument:
		return v.Document()
	case bsontype.Array:
		return v.Array()
	case bsontype.Binary:
		return v.Binary()
	case bsontype.Undefined:
		return UndefinedPrimitive{}
	case bsontype.ObjectID:
		return v.ObjectID()
	case bsontype.Boolean:
		return v.Boolean()
	case bsontype.DateTime:
		return v.Time()
	case bsontype.Null:
		return NullPrimitive{}
	case bsontype.Regex:
		return v.Regex()
	case bsontype.JavaScript:
		return JavaScriptCodePrimitive(v.JavaScript())
	case bsontype.Symbol:
		return SymbolPrimitive(v.Symbol())
	case bsontype.CodeWithScope:
		return v.CodeWithScope()
	case bsontype.Int32:
		return v.Int32()
	case bsontype.Timestamp:
		return v.Timestamp()
	case bsontype.Int64:
		return v.Int64()
	case bsontype.Decimal128:
		return v.Decimal128()
	case bsontype.MinKey:
		return MinKeyPrimitive{}
	case bsontype.MaxKey:
		return MaxKeyPrimitive{}
	default:
		return nil
	}
}

// Double returns the BSON double value the Value represents. It panics if the value is a BSON type
// other than double.
func (v Value) Double() float64 {
	if v.t != bsontype.Double {
		panic(ElementTypeError{"bson.Value.Double", v.t})
	}
	return v.primitive.(float64)
}

// DoubleOK is the same as Double, but returns a boolean instead of panicking.
func (v Value) DoubleOK() (float64, bool) {
	if v.t != bsontype.Double {
		return 0, false
	}
	return v.Double(), true
}

// StringValue returns the BSON string the Value represents. It panics if the value is a BSON type
// other than string.
//
// NOTE: This method is called StringValue because String renders the value as extended JSON.
func (v Value) StringValue() string {
	if v.t != bsontype.String {
		panic(ElementTypeError{"bson.Value.StringValue", v.t})
	}
	return v.primitive.(string)
}

// StringValueOK is the same as StringValue, but returns a boolean instead of
// panicking.
func (v Value) StringValueOK() (string, bool) {
	if v.t != bsontype.String {
		return "", false
	}
	return v.StringValue(), true
}

// Document returns the BSON embedded document value the Value represents. It panics if the value
// is a BSON type other than embedded document.
func (v Value) Document() *Document {
	if v.t != bsontype.EmbeddedDocument {
		panic(ElementTypeError{"bson.Value.Document", v.t})
	}
	return v.primitive.(*Document)
}

// DocumentOK is the same as Document, except it returns a boolean
// instead of panicking.
func (v Value) DocumentOK() (*Document, bool) {
	if v.t != bsontype.EmbeddedDocument {
		return nil, false
	}
	return v.Document(), true
}

// Array returns the BSON array value the Value represents. It panics if the value is a BSON type
// other than array.
func (v Value) Array() *Array {
	if v.t != bsontype.Array {
		panic(ElementTypeError{"bson.Value.Array", v.t})
	}
	return v.primitive.(*Array)
}

// ArrayOK is the same as Array, except it returns a boolean
// instead of panicking.
func (v Value) ArrayOK() (*Array, bool) {
	if v.t != bsontype.Array {
		return nil, false
	}
	return v.Array(), true
}

// Binary returns the BSON binary value the Value represents. It panics if the value is a BSON type
// other than binary.
func (v Value) Binary() BinaryPrimitive {
	if v.t != bsontype.Binary {
		panic(ElementTypeError{"bson.Value.Binary", v.t})
	}
	return v.primitive.(BinaryPrimitive)
}

// BinaryOK is the same as Binary, except it returns a boolean instead of
// panicking.
func (v Value) BinaryOK() (BinaryPrimitive, bool) {
	if v.t != bsontype.Binary {
		return BinaryPrimitive{}, false
	}
	return v.Binary(), true
}

// ObjectID returns the BSON ObjectID the Value represents. It panics if the value is a BSON type
// other than ObjectID.
func (v Value) ObjectID() objectid.ObjectID {
	if v.t != bsontype.ObjectID {
		panic(ElementTypeError{"bson.Value.ObjectID", v.t})
	}
	return v.primitive.(objectid.ObjectID)
}

// ObjectIDOK is the same as ObjectID, except it returns a boolean instead of
// panicking.
func (v Value) ObjectIDOK() (objectid.ObjectID, bool) {
	if v.t != bsontype.ObjectID {
		return objectid.NilObjectID, false
	}
	return v.ObjectID(), true
}

// Boolean returns the BSON boolean the Value represents. It panics if the value is a BSON type
// other than boolean.
func (v Value) Boolean() bool {
	if v.t != bsontype.Boolean {
		panic(ElementTypeError{"bson.Value.Boolean", v.t})
	}
	return v.primitive.(bool)
}

// BooleanOK is the same as Boolean, except it returns a boolean instead of
// panicking.
func (v Value) BooleanOK() (bool, bool) {
	if v.t != bsontype.Boolean {
		return false, false
	}
	return v.Boolean(), true
}

// DateTime returns the BSON datetime the Value represents as milliseconds since the Unix
// epoch. It panics if the value is a BSON type other than datetime.
func (v Value) DateTime() int64 {
	if v.t != bsontype.DateTime {
		panic(ElementTypeError{"bson.Value.DateTime", v.t})
	}
	return v.primitive.(int64)
}

// DateTimeOK is the same as DateTime, except it returns a boolean instead of
// panicking.
func (v Value) DateTimeOK() (int64, bool) {
	if v.t != bsontype.DateTime {
		return 0, false
	}
	return v.DateTime(), true
}

// Time returns the BSON datetime the Value represents as a UTC time.Time. It panics if the value
// is a BSON type other than datetime.
func (v Value) Time() time.Time {
	if v.t != bsontype.DateTime {
		panic(ElementTypeError{"bson.Value.Time", v.t})
	}
	return time.UnixMilli(v.primitive.(int64)).UTC()
}

// TimeOK is the same as Time, except it returns a boolean instead of
// panicking.
func (v Value) TimeOK() (time.Time, bool) {
	if v.t != bsontype.DateTime {
		return time.Time{}, false
	}
	return v.Time(), true
}

// Regex returns the BSON regex the Value represents. It panics if the value is a BSON type
// other than regex.
func (v Value) Regex() RegexPrimitive {
	if v.t != bsontype.Regex {
		panic(ElementTypeError{"bson.Value.Regex", v.t})
	}
	return v.primitive.(RegexPrimitive)
}

// RegexOK is the same as Regex, except that it returns a boolean
// instead of panicking.
func (v Value) RegexOK() (RegexPrimitive, bool) {
	if v.t != bsontype.Regex {
		return RegexPrimitive{}, false
	}
	return v.Regex(), true
}

// JavaScript returns the BSON JavaScript code the Value represents. It panics if the value is a
// BSON type other than JavaScript.
func (v Value) JavaScript() string {
	if v.t != bsontype.JavaScript {
		panic(ElementTypeError{"bson.Value.JavaScript", v.t})
	}
	return v.primitive.(string)
}

// JavaScriptOK is the same as JavaScript, except that it returns a boolean
// instead of panicking.
func (v Value) JavaScriptOK() (string, bool) {
	if v.t != bsontype.JavaScript {
		return "", false
	}
	return v.JavaScript(), true
}

// Symbol returns the BSON symbol the Value represents. It panics if the value is a BSON type
// other than symbol.
func (v Value) Symbol() string {
	if v.t != bsontype.Symbol {
		panic(ElementTypeError{"bson.Value.Symbol", v.t})
	}
	return v.primitive.(string)
}

// SymbolOK is the same as Symbol, except that it returns a boolean
// instead of panicking.
func (v Value) SymbolOK() (string, bool) {
	if v.t != bsontype.Symbol {
		return "", false
	}
	return v.Symbol(), true
}

// CodeWithScope returns the BSON code with scope value the Value represents. It panics if the
// value is a BSON type other than code with scope.
func (v Value) CodeWithScope() CodeWithScopePrimitive {
	if v.t != bsontype.CodeWithScope {
		panic(ElementTypeError{"bson.Value.CodeWithScope", v.t})
	}
	return v.primitive.(CodeWithScopePrimitive)
}

// CodeWithScopeOK is the same as CodeWithScope, except that it returns a boolean instead of
// panicking.
func (v Value) CodeWithScopeOK() (CodeWithScopePrimitive, bool) {
	if v.t != bsontype.CodeWithScope {
		return CodeWithScopePrimitive{}, false
	}
	return v.CodeWithScope(), true
}

// Int32 returns the BSON int32 the Value represents. It panics if the value is a BSON type
// other than int32.
func (v Value) Int32() int32 {
	if v.t != bsontype.Int32 {
		panic(ElementTypeError{"bson.Value.Int32", v.t})
	}
	return v.primitive.(int32)
}

// Int32OK is the same as Int32, except that it returns a boolean instead of
// panicking.
func (v Value) Int32OK() (int32, bool) {
	if v.t != bsontype.Int32 {
		return 0, false
	}
	return v.Int32(), true
}

// Timestamp returns the BSON timestamp the Value represents. It panics if the value is a
// BSON type other than timestamp.
func (v Value) Timestamp() TimestampPrimitive {
	if v.t != bsontype.Timestamp {
		panic(ElementTypeError{"bson.Value.Timestamp", v.t})
	}
	return v.primitive.(TimestampPrimitive)
}

// TimestampOK is the same as Timestamp, except that it returns a boolean
// instead of panicking.
func (v Value) TimestampOK() (TimestampPrimitive, bool) {
	if v.t != bsontype.Timestamp {
		return TimestampPrimitive{}, false
	}
	return v.Timestamp(), true
}

// Int64 returns the BSON int64 the Value represents. It panics if the value is a BSON type
// other than int64.
func (v Value) Int64() int64 {
	if v.t != bsontype.Int64 {
		panic(ElementTypeError{"bson.Value.Int64", v.t})
	}
	return v.primitive.(int64)
}

// Int64OK is the same as Int64, except that it returns a boolean instead of
// panicking.
func (v Value) Int64OK() (int64, bool) {
	if v.t != bsontype.Int64 {
		return 0, false
	}
	return v.Int64(), true
}

// Decimal128 returns the BSON decimal128 value the Value represents. It panics if the value is a
// BSON type other than decimal128.
func (v Value) Decimal128() decimal.Decimal128 {
	if v.t != bsontype.Decimal128 {
		panic(ElementTypeError{"bson.Value.Decimal128", v.t})
	}
	return v.primitive.(decimal.Decimal128)
}

// Decimal128OK is the same as Decimal128, except that it returns a boolean
// instead of panicking.
func (v Value) Decimal128OK() (decimal.Decimal128, bool) {
	if v.t != bsontype.Decimal128 {
		return decimal.Decimal128{}, false
	}
	return v.Decimal128(), true
}

// Equal compares v to v2 and returns true if they are equal. Doubles compare by their bits, so
// a NaN equals the same NaN and 0.0 does not equal -0.0.
func (v Value) Equal(v2 Value) bool {
	if v.t != v2.t {
		return false
	}
	switch v.t {
	case bsontype.Double:
		return math.Float64bits(v.Double()) == math.Float64bits(v2.Double())
	case bsontype.String:
		return v.StringValue() == v2.StringValue()
	case bsontype.EmbeddedDocument:
		return v.Document().Equal(v2.Document())
	case bsontype.Array:
		return v.Array().Equal(v2.Array())
	case bsontype.Binary:
		return v.Binary().Equal(v2.Binary())
	case bsontype.ObjectID:
		return v.ObjectID() == v2.ObjectID()
	case bsontype.Boolean:
		return v.Boolean() == v2.Boolean()
	case bsontype.DateTime:
		return v.DateTime() == v2.DateTime()
	case bsontype.Regex:
		return v.Regex().Equal(v2.Regex())
	case bsontype.JavaScript:
		return v.JavaScript() == v2.JavaScript()
	case bsontype.Symbol:
		return v.Symbol() == v2.Symbol()
	case bsontype.CodeWithScope:
		return v.CodeWithScope().Equal(v2.CodeWithScope())
	case bsontype.Int32:
		return v.Int32() == v2.Int32()
	case bsontype.Timestamp:
		return v.Timestamp().Equal(v2.Timestamp())
	case bsontype.Int64:
		return v.Int64() == v2.Int64()
	case bsontype.Decimal128:
		return v.Decimal128().Equal(v2.Decimal128())
	default:
		// Null, Undefined, MinKey, MaxKey and the zero Value carry no payload.
		return true
	}
}

// Copy returns a deep copy of v. Documents, arrays and binary data are not shared with the
// copy.
func (v Value) Copy() Value {
	switch v.t {
	case bsontype.EmbeddedDocument:
		return EmbedDocument(v.Document().Copy())
	case bsontype.Array:
		return EmbedArray(v.Array().Copy())
	case bsontype.Binary:
		bp := v.Binary()
		var data []byte
		if bp.Data != nil {
			data = make([]byte, len(bp.Data))
			copy(data, bp.Data)
		}
		return Binary(bp.Subtype, data)
	case bsontype.CodeWithScope:
		cws := v.CodeWithScope()
		return CodeWithScope(cws.Code, cws.Scope.Copy())
	default:
		return v
	}
}

// String returns the relaxed extended JSON form of v.
func (v Value) String() string {
	b, err := v.MarshalExtJSON(false)
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}
