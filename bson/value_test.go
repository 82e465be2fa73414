// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/decimal"
	"github.com/ikmak/bsondoc/bson/objectid"
)

func TestValue(t *testing.T) {
	t.Parallel()

	oid := objectid.NewFromTimestamp(time.Unix(1600000000, 0))
	d128 := decimal.NewDecimal128(0x3040000000000000, 12345)
	now := time.Date(2021, time.June, 1, 10, 30, 0, 123000000, time.UTC)

	testCases := []struct {
		name string
		val  Value
		t    bsontype.Type
		want interface{}
		get  func(Value) (interface{}, bool)
	}{
		{"double", Double(3.14159), bsontype.Double, 3.14159,
			func(v Value) (interface{}, bool) { return v.DoubleOK() }},
		{"string", String("hello world"), bsontype.String, "hello world",
			func(v Value) (interface{}, bool) { return v.StringValueOK() }},
		{"binary", Binary(0x80, []byte{0x01, 0x02}), bsontype.Binary, BinaryPrimitive{Subtype: 0x80, Data: []byte{0x01, 0x02}},
			func(v Value) (interface{}, bool) { return v.BinaryOK() }},
		{"objectID", ObjectID(oid), bsontype.ObjectID, oid,
			func(v Value) (interface{}, bool) { return v.ObjectIDOK() }},
		{"boolean", Boolean(true), bsontype.Boolean, true,
			func(v Value) (interface{}, bool) { return v.BooleanOK() }},
		{"datetime", DateTime(1234567890), bsontype.DateTime, int64(1234567890),
			func(v Value) (interface{}, bool) { return v.DateTimeOK() }},
		{"time", Time(now), bsontype.DateTime, now,
			func(v Value) (interface{}, bool) { return v.TimeOK() }},
		{"regex", Regex("^a", "i"), bsontype.Regex, RegexPrimitive{Pattern: "^a", Options: "i"},
			func(v Value) (interface{}, bool) { return v.RegexOK() }},
		{"javascript", JavaScript("var a = 1;"), bsontype.JavaScript, "var a = 1;",
			func(v Value) (interface{}, bool) { return v.JavaScriptOK() }},
		{"symbol", Symbol("sym"), bsontype.Symbol, "sym",
			func(v Value) (interface{}, bool) { return v.SymbolOK() }},
		{"int32", Int32(-42), bsontype.Int32, int32(-42),
			func(v Value) (interface{}, bool) { return v.Int32OK() }},
		{"timestamp", Timestamp(10, 20), bsontype.Timestamp, TimestampPrimitive{T: 10, I: 20},
			func(v Value) (interface{}, bool) { return v.TimestampOK() }},
		{"int64", Int64(math.MaxInt64), bsontype.Int64, int64(math.MaxInt64),
			func(v Value) (interface{}, bool) { return v.Int64OK() }},
		{"decimal128", Decimal128(d128), bsontype.Decimal128, d128,
			func(v Value) (interface{}, bool) { return v.Decimal128OK() }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.t, tc.val.Type())
			got, ok := tc.get(tc.val)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			_, ok = tc.get(Null())
			assert.False(t, ok, "accessor should not accept a null")
		})
	}
}

func TestValueMarkers(t *testing.T) {
	testCases := []struct {
		val  Value
		t    bsontype.Type
		want interface{}
	}{
		{Null(), bsontype.Null, NullPrimitive{}},
		{Undefined(), bsontype.Undefined, UndefinedPrimitive{}},
		{MinKey(), bsontype.MinKey, MinKeyPrimitive{}},
		{MaxKey(), bsontype.MaxKey, MaxKeyPrimitive{}},
		{JavaScript("x"), bsontype.JavaScript, JavaScriptCodePrimitive("x")},
		{Symbol("y"), bsontype.Symbol, SymbolPrimitive("y")},
	}

	for _, tc := range testCases {
		t.Run(tc.t.String(), func(t *testing.T) {
			require.Equal(t, tc.t, tc.val.Type())
			require.Equal(t, tc.want, tc.val.Interface())
		})
	}

	require.True(t, Value{}.IsZero())
	require.Nil(t, Value{}.Interface())
}

func TestValueAccessorPanics(t *testing.T) {
	val := Int32(1)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ete, ok := r.(ElementTypeError)
		require.True(t, ok, "expected ElementTypeError, got %T", r)
		require.Equal(t, "bson.Value.StringValue", ete.Method)
		require.Equal(t, bsontype.Int32, ete.Type)
		require.Equal(t, "Call of bson.Value.StringValue on 32-bit integer type", ete.Error())
	}()

	_ = val.StringValue()
}

func TestValueConstructorsNormalizeNil(t *testing.T) {
	doc := EmbedDocument(nil).Document()
	require.NotNil(t, doc)
	require.Equal(t, 0, doc.Len())

	arr := EmbedArray(nil).Array()
	require.NotNil(t, arr)
	require.Equal(t, 0, arr.Len())

	cws := CodeWithScope("x", nil).CodeWithScope()
	require.NotNil(t, cws.Scope)
}

func TestValueEqual(t *testing.T) {
	nan := math.NaN()
	testCases := []struct {
		name  string
		v1    Value
		v2    Value
		equal bool
	}{
		{"different types", Int32(1), Int64(1), false},
		{"same int32", Int32(1), Int32(1), true},
		{"different int32", Int32(1), Int32(2), false},
		{"nan equals itself", Double(nan), Double(nan), true},
		{"signed zeros differ", Double(0), Double(math.Copysign(0, -1)), false},
		{"strings", String("a"), String("a"), true},
		{"binary subtype", Binary(0x00, []byte{1}), Binary(0x80, []byte{1}), false},
		{"binary data", Binary(0x00, []byte{1}), Binary(0x00, []byte{1}), true},
		{"regex options", Regex("a", "i"), Regex("a", "m"), false},
		{"timestamps", Timestamp(1, 2), Timestamp(1, 2), true},
		{"timestamp parts", Timestamp(1, 2), Timestamp(2, 1), false},
		{"decimal scale", Decimal128(decimal.NewDecimal128(0x3040000000000000, 1)), Decimal128(decimal.NewDecimal128(0x303e000000000000, 10)), false},
		{"nulls", Null(), Null(), true},
		{"min max", MinKey(), MaxKey(), false},
		{"documents", EmbedDocument(NewDocument(Element{"a", Int32(1)})), EmbedDocument(NewDocument(Element{"a", Int32(1)})), true},
		{"document order", EmbedDocument(NewDocument(Element{"a", Null()}, Element{"b", Null()})), EmbedDocument(NewDocument(Element{"b", Null()}, Element{"a", Null()})), false},
		{"arrays", EmbedArray(NewArray(Int32(1), String("x"))), EmbedArray(NewArray(Int32(1), String("x"))), true},
		{"array length", EmbedArray(NewArray(Int32(1))), EmbedArray(NewArray(Int32(1), Int32(1))), false},
		{"code with scope", CodeWithScope("c", NewDocument(Element{"x", Int32(1)})), CodeWithScope("c", NewDocument(Element{"x", Int32(2)})), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.equal, tc.v1.Equal(tc.v2))
			require.Equal(t, tc.equal, tc.v2.Equal(tc.v1))
		})
	}
}

func TestValueCopy(t *testing.T) {
	inner := NewDocument(Element{"n", Int32(1)})
	data := []byte{1, 2, 3}
	doc := NewDocument(
		Element{"doc", EmbedDocument(inner)},
		Element{"arr", EmbedArray(NewArray(EmbedDocument(NewDocument(Element{"deep", Boolean(true)}))))},
		Element{"bin", Binary(0x00, data)},
		Element{"cws", CodeWithScope("code", NewDocument(Element{"s", String("v")}))},
	)

	cp := EmbedDocument(doc).Copy()
	require.True(t, cp.Equal(EmbedDocument(doc)))

	inner.Set("n", Int32(2))
	data[0] = 0xFF
	doc.Lookup("arr").Array().Index(0).Document().Set("deep", Boolean(false))
	doc.Lookup("cws").CodeWithScope().Scope.Set("s", String("changed"))

	got := cp.Document()
	n, err := got.Lookup("doc").Document().GetInt32("n")
	require.NoError(t, err)
	require.Equal(t, int32(1), n)
	require.Equal(t, []byte{1, 2, 3}, got.Lookup("bin").Binary().Data)
	deep, err := got.LookupErr("arr", "0", "deep")
	require.NoError(t, err)
	require.True(t, deep.Boolean())
	s, err := got.Lookup("cws").CodeWithScope().Scope.GetString("s")
	require.NoError(t, err)
	require.Equal(t, "v", s)
}

func TestValueString(t *testing.T) {
	require.Equal(t, `{"a":1,"b":"x"}`, NewDocument(Element{"a", Int32(1)}, Element{"b", String("x")}).String())
	require.Equal(t, "[true,null]", NewArray(Boolean(true), Null()).String())
	require.Equal(t, "<invalid>", Value{}.String())
	require.Equal(t, `bson.Element{"k": 1.5}`, Element{"k", Double(1.5)}.String())
}
