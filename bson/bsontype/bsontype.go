// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsontype is the table of BSON element type codes and binary subtypes
// understood by this module. Any element type byte that is not listed here is
// rejected by the decoder.
package bsontype

import "strconv"

// Type represents a BSON element type.
type Type byte

// BSON element types as described in http://bsonspec.org/spec.html.
const (
	Double           Type = 0x01
	String           Type = 0x02
	EmbeddedDocument Type = 0x03
	Array            Type = 0x04
	Binary           Type = 0x05
	Undefined        Type = 0x06
	ObjectID         Type = 0x07
	Boolean          Type = 0x08
	DateTime         Type = 0x09
	Null             Type = 0x0A
	Regex            Type = 0x0B
	JavaScript       Type = 0x0D
	Symbol           Type = 0x0E
	CodeWithScope    Type = 0x0F
	Int32            Type = 0x10
	Timestamp        Type = 0x11
	Int64            Type = 0x12
	Decimal128       Type = 0x13
	MaxKey           Type = 0x7F
	MinKey           Type = 0xFF
)

// BSON binary element subtypes as described in http://bsonspec.org/spec.html.
const (
	BinaryGeneric     byte = 0x00
	BinaryFunction    byte = 0x01
	BinaryBinaryOld   byte = 0x02
	BinaryUUIDOld     byte = 0x03
	BinaryUUID        byte = 0x04
	BinaryMD5         byte = 0x05
	BinaryUserDefined byte = 0x80
)

// String returns the string representation of the BSON type's name.
func (bt Type) String() string {
	switch bt {
	case Double:
		return "double"
	case String:
		return "string"
	case EmbeddedDocument:
		return "embedded document"
	case Array:
		return "array"
	case Binary:
		return "binary"
	case Undefined:
		return "undefined"
	case ObjectID:
		return "objectID"
	case Boolean:
		return "boolean"
	case DateTime:
		return "UTC datetime"
	case Null:
		return "null"
	case Regex:
		return "regex"
	case JavaScript:
		return "javascript"
	case Symbol:
		return "symbol"
	case CodeWithScope:
		return "code with scope"
	case Int32:
		return "32-bit integer"
	case Timestamp:
		return "timestamp"
	case Int64:
		return "64-bit integer"
	case Decimal128:
		return "128-bit decimal"
	case MinKey:
		return "min key"
	case MaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// IsValid reports whether bt is an element type this module can encode and decode.
func (bt Type) IsValid() bool {
	switch bt {
	case Double, String, EmbeddedDocument, Array, Binary, Undefined, ObjectID, Boolean,
		DateTime, Null, Regex, JavaScript, Symbol, CodeWithScope, Int32, Timestamp, Int64,
		Decimal128, MinKey, MaxKey:
		return true
	default:
		return false
	}
}

// SubtypeString returns a readable name for a binary subtype. Subtypes that are not
// predefined are still legal on the wire and are reported as user defined or reserved.
func SubtypeString(subtype byte) string {
	switch subtype {
	case BinaryGeneric:
		return "generic"
	case BinaryFunction:
		return "function"
	case BinaryBinaryOld:
		return "binary (old)"
	case BinaryUUIDOld:
		return "UUID (old)"
	case BinaryUUID:
		return "UUID"
	case BinaryMD5:
		return "MD5"
	}
	if subtype >= BinaryUserDefined {
		return "user defined (0x" + strconv.FormatUint(uint64(subtype), 16) + ")"
	}
	return "reserved (0x" + strconv.FormatUint(uint64(subtype), 16) + ")"
}
