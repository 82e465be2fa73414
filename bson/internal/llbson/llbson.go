// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package llbson contains functions that can be used to encode and decode BSON
// values to or from a slice of bytes. These functions are the wire layer the bson
// package's encoder and decoder are built on.
//
// The Read* functions within this package return the value, the bytes remaining
// after it and a boolean reporting whether there were enough bytes. A boolean is used
// instead of an error because the only failure is a short input. The functions do not
// validate what they read: length signs, terminators and UTF-8 are the caller's job.
//
// The Append* functions within this package will append the value to the given dst
// slice. If the slice has enough capacity, it will not grow the slice.
package llbson

import (
	"bytes"
	"math"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/decimal"
	"github.com/ikmak/bsondoc/bson/objectid"
)

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t bsontype.Type) []byte { return append(dst, byte(t)) }

// AppendKey will append key and its 0x00 terminator to dst and return the extended buffer.
func AppendKey(dst []byte, key string) []byte { return AppendCString(dst, key) }

// AppendHeader will append Type t and key to dst and return the extended buffer.
func AppendHeader(dst []byte, t bsontype.Type, key string) []byte {
	return AppendKey(AppendType(dst, t), key)
}

// AppendCString will append s followed by a 0x00 byte. The caller must make sure s contains
// no 0x00 byte.
func AppendCString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// ReserveLength appends a placeholder int32 and returns its index, to be filled in later with
// UpdateLength.
func ReserveLength(dst []byte) (int32, []byte) {
	index := int32(len(dst))
	return index, append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength writes length at index in dst.
func UpdateLength(dst []byte, index, length int32) []byte {
	dst[index] = byte(length)
	dst[index+1] = byte(length >> 8)
	dst[index+2] = byte(length >> 16)
	dst[index+3] = byte(length >> 24)
	return dst
}

// AppendDocumentStart reserves a document's length and returns the index where the length
// begins. The index is passed to AppendDocumentEnd once the elements have been appended.
func AppendDocumentStart(dst []byte) (int32, []byte) { return ReserveLength(dst) }

// AppendDocumentEnd writes the null byte for a document and updates the length of the
// document. The index should be the beginning of the document's length bytes.
func AppendDocumentEnd(dst []byte, index int32) []byte {
	dst = append(dst, 0x00)
	return UpdateLength(dst, index, int32(len(dst[index:])))
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte {
	return appendu64(dst, math.Float64bits(f))
}

// AppendString will append s to dst as a length-prefixed, null-terminated string.
func AppendString(dst []byte, s string) []byte {
	dst = appendi32(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// AppendBinary will append subtype and b to dst and return the extended buffer.
func AppendBinary(dst []byte, subtype byte, b []byte) []byte {
	dst = append(appendi32(dst, int32(len(b))), subtype)
	return append(dst, b...)
}

// AppendObjectID will append oid to dst and return the extended buffer.
func AppendObjectID(dst []byte, oid objectid.ObjectID) []byte { return append(dst, oid[:]...) }

// AppendBoolean will append b to dst and return the extended buffer.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendDateTime will append dt to dst and return the extended buffer.
func AppendDateTime(dst []byte, dt int64) []byte { return appendi64(dst, dt) }

// AppendRegex will append pattern and options to dst and return the extended buffer.
func AppendRegex(dst []byte, pattern, options string) []byte {
	return AppendCString(AppendCString(dst, pattern), options)
}

// AppendInt32 will append i32 to dst and return the extended buffer.
func AppendInt32(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// AppendTimestamp will append t and i to dst and return the extended buffer.
func AppendTimestamp(dst []byte, t, i uint32) []byte {
	return appendu32(appendu32(dst, i), t) // i is the lower 4 bytes, t is the higher 4 bytes
}

// AppendInt64 will append i64 to dst and return the extended buffer.
func AppendInt64(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// AppendDecimal128 will append d128 to dst and return the extended buffer.
func AppendDecimal128(dst []byte, d128 decimal.Decimal128) []byte {
	high, low := d128.GetBytes()
	return appendu64(appendu64(dst, low), high)
}

// ReadType will return the first byte of the provided []byte as a type. If
// there is no available byte, false is returned.
func ReadType(src []byte) (bsontype.Type, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return bsontype.Type(src[0]), src[1:], true
}

// ReadCString reads bytes up to the first 0x00 byte. The terminator is consumed but not
// returned. If there is no terminator, false is returned.
func ReadCString(src []byte) ([]byte, []byte, bool) {
	idx := bytes.IndexByte(src, 0x00)
	if idx < 0 {
		return nil, src, false
	}
	return src[:idx], src[idx+1:], true
}

// ReadLength will read an int32 length from src.
func ReadLength(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadBytes returns the first n bytes of src. If n is negative or src is too short, false is
// returned.
func ReadBytes(src []byte, n int) ([]byte, []byte, bool) {
	if n < 0 || len(src) < n {
		return nil, src, false
	}
	return src[:n], src[n:], true
}

// ReadDouble will read a float64 from src. If there are not enough bytes it
// will return false.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := readu64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(bits), rem, true
}

// ReadObjectID will read an ObjectID from src. If there are not enough bytes it
// will return false.
func ReadObjectID(src []byte) (objectid.ObjectID, []byte, bool) {
	var oid objectid.ObjectID
	if len(src) < 12 {
		return oid, src, false
	}
	copy(oid[:], src[0:12])
	return oid, src[12:], true
}

// ReadByte will read a single byte from src, as used by booleans and binary subtypes.
func ReadByte(src []byte) (byte, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return src[0], src[1:], true
}

// ReadInt32 will read an int32 from src. If there are not enough bytes it
// will return false.
func ReadInt32(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadTimestamp will read t and i from src. If there are not enough bytes it
// will return false.
func ReadTimestamp(src []byte) (t, i uint32, rem []byte, ok bool) {
	i, rem, ok = readu32(src)
	if !ok {
		return 0, 0, src, false
	}
	t, rem, ok = readu32(rem)
	if !ok {
		return 0, 0, src, false
	}
	return t, i, rem, true
}

// ReadInt64 will read an int64 from src. If there are not enough bytes it
// will return false.
func ReadInt64(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadDateTime will read an int64 datetime from src. If there are not enough bytes it
// will return false.
func ReadDateTime(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadDecimal128 will read a decimal.Decimal128 from src. If there are not enough bytes it
// will return false.
func ReadDecimal128(src []byte) (decimal.Decimal128, []byte, bool) {
	l, rem, ok := readu64(src)
	if !ok {
		return decimal.Decimal128{}, src, false
	}

	h, rem, ok := readu64(rem)
	if !ok {
		return decimal.Decimal128{}, src, false
	}

	return decimal.NewDecimal128(h, l), rem, true
}

func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

func readi32(src []byte) (int32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}

	return (int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24), src[4:], true
}

func appendi64(dst []byte, i64 int64) []byte {
	return append(dst,
		byte(i64), byte(i64>>8), byte(i64>>16), byte(i64>>24),
		byte(i64>>32), byte(i64>>40), byte(i64>>48), byte(i64>>56),
	)
}

func readi64(src []byte) (int64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	i64 := (int64(src[0]) | int64(src[1])<<8 | int64(src[2])<<16 | int64(src[3])<<24 |
		int64(src[4])<<32 | int64(src[5])<<40 | int64(src[6])<<48 | int64(src[7])<<56)
	return i64, src[8:], true
}

func appendu32(dst []byte, u32 uint32) []byte {
	return append(dst, byte(u32), byte(u32>>8), byte(u32>>16), byte(u32>>24))
}

func readu32(src []byte) (uint32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}

	return (uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24), src[4:], true
}

func appendu64(dst []byte, u64 uint64) []byte {
	return append(dst,
		byte(u64), byte(u64>>8), byte(u64>>16), byte(u64>>24),
		byte(u64>>32), byte(u64>>40), byte(u64>>48), byte(u64>>56),
	)
}

func readu64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	u64 := (uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56)
	return u64, src[8:], true
}
