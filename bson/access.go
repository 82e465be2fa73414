// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"time"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/decimal"
	"github.com/ikmak/bsondoc/bson/objectid"
)

// Get returns the value stored under key and whether it was present.
func (d *Document) Get(key string) (Value, bool) {
	i, ok := d.lookup(key)
	if !ok {
		return Value{}, false
	}
	return d.elems[i].Value, true
}

// getType returns the value stored under key if it has type want.
func (d *Document) getType(key string, want bsontype.Type) (Value, error) {
	val, ok := d.Get(key)
	if !ok {
		return Value{}, &ValueAccessError{Key: key, Want: want, Err: ErrNotPresent}
	}
	if val.Type() != want {
		return Value{}, &ValueAccessError{Key: key, Want: want, Got: val.Type(), Err: ErrUnexpectedType}
	}
	return val, nil
}

// GetDouble returns the double stored under key.
func (d *Document) GetDouble(key string) (float64, error) {
	val, err := d.getType(key, bsontype.Double)
	if err != nil {
		return 0, err
	}
	return val.Double(), nil
}

// GetString returns the string stored under key.
func (d *Document) GetString(key string) (string, error) {
	val, err := d.getType(key, bsontype.String)
	if err != nil {
		return "", err
	}
	return val.StringValue(), nil
}

// GetDocument returns the embedded document stored under key.
func (d *Document) GetDocument(key string) (*Document, error) {
	val, err := d.getType(key, bsontype.EmbeddedDocument)
	if err != nil {
		return nil, err
	}
	return val.Document(), nil
}

// GetArray returns the array stored under key.
func (d *Document) GetArray(key string) (*Array, error) {
	val, err := d.getType(key, bsontype.Array)
	if err != nil {
		return nil, err
	}
	return val.Array(), nil
}

// GetBoolean returns the boolean stored under key.
func (d *Document) GetBoolean(key string) (bool, error) {
	val, err := d.getType(key, bsontype.Boolean)
	if err != nil {
		return false, err
	}
	return val.Boolean(), nil
}

// GetNull returns nil if key holds a null.
func (d *Document) GetNull(key string) error {
	_, err := d.getType(key, bsontype.Null)
	return err
}

// GetRegex returns the regex stored under key.
func (d *Document) GetRegex(key string) (RegexPrimitive, error) {
	val, err := d.getType(key, bsontype.Regex)
	if err != nil {
		return RegexPrimitive{}, err
	}
	return val.Regex(), nil
}

// GetJavaScript returns the JavaScript code stored under key.
func (d *Document) GetJavaScript(key string) (string, error) {
	val, err := d.getType(key, bsontype.JavaScript)
	if err != nil {
		return "", err
	}
	return val.JavaScript(), nil
}

// GetCodeWithScope returns the code with scope stored under key.
func (d *Document) GetCodeWithScope(key string) (CodeWithScopePrimitive, error) {
	val, err := d.getType(key, bsontype.CodeWithScope)
	if err != nil {
		return CodeWithScopePrimitive{}, err
	}
	return val.CodeWithScope(), nil
}

// GetInt32 returns the int32 stored under key. An int64 is not converted.
func (d *Document) GetInt32(key string) (int32, error) {
	val, err := d.getType(key, bsontype.Int32)
	if err != nil {
		return 0, err
	}
	return val.Int32(), nil
}

// GetInt64 returns the int64 stored under key. An int32 is not converted.
func (d *Document) GetInt64(key string) (int64, error) {
	val, err := d.getType(key, bsontype.Int64)
	if err != nil {
		return 0, err
	}
	return val.Int64(), nil
}

// GetTimestamp returns the timestamp stored under key.
func (d *Document) GetTimestamp(key string) (TimestampPrimitive, error) {
	val, err := d.getType(key, bsontype.Timestamp)
	if err != nil {
		return TimestampPrimitive{}, err
	}
	return val.Timestamp(), nil
}

// GetBinary returns the binary stored under key, whatever its subtype.
func (d *Document) GetBinary(key string) (BinaryPrimitive, error) {
	val, err := d.getType(key, bsontype.Binary)
	if err != nil {
		return BinaryPrimitive{}, err
	}
	return val.Binary(), nil
}

// GetBinaryGeneric returns the bytes of the binary stored under key. A binary of any other
// subtype than generic is reported as ErrUnexpectedType.
func (d *Document) GetBinaryGeneric(key string) ([]byte, error) {
	bp, err := d.GetBinary(key)
	if err != nil {
		return nil, err
	}
	if bp.Subtype != bsontype.BinaryGeneric {
		return nil, &ValueAccessError{Key: key, Want: bsontype.Binary, Got: bsontype.Binary, Err: ErrUnexpectedType}
	}
	return bp.Data, nil
}

// GetObjectID returns the ObjectID stored under key.
func (d *Document) GetObjectID(key string) (objectid.ObjectID, error) {
	val, err := d.getType(key, bsontype.ObjectID)
	if err != nil {
		return objectid.NilObjectID, err
	}
	return val.ObjectID(), nil
}

// GetDateTime returns the datetime stored under key as milliseconds since the Unix epoch.
func (d *Document) GetDateTime(key string) (int64, error) {
	val, err := d.getType(key, bsontype.DateTime)
	if err != nil {
		return 0, err
	}
	return val.DateTime(), nil
}

// GetTime returns the datetime stored under key as a UTC time.Time.
func (d *Document) GetTime(key string) (time.Time, error) {
	val, err := d.getType(key, bsontype.DateTime)
	if err != nil {
		return time.Time{}, err
	}
	return val.Time(), nil
}

// GetSymbol returns the symbol stored under key.
func (d *Document) GetSymbol(key string) (string, error) {
	val, err := d.getType(key, bsontype.Symbol)
	if err != nil {
		return "", err
	}
	return val.Symbol(), nil
}

// GetUndefined returns nil if key holds undefined.
func (d *Document) GetUndefined(key string) error {
	_, err := d.getType(key, bsontype.Undefined)
	return err
}

// GetMinKey returns nil if key holds a min key.
func (d *Document) GetMinKey(key string) error {
	_, err := d.getType(key, bsontype.MinKey)
	return err
}

// GetMaxKey returns nil if key holds a max key.
func (d *Document) GetMaxKey(key string) error {
	_, err := d.getType(key, bsontype.MaxKey)
	return err
}

// GetDecimal128 returns the decimal128 stored under key.
func (d *Document) GetDecimal128(key string) (decimal.Decimal128, error) {
	val, err := d.getType(key, bsontype.Decimal128)
	if err != nil {
		return decimal.Decimal128{}, err
	}
	return val.Decimal128(), nil
}
