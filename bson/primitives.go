// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
)

// BinaryPrimitive represents a BSON binary value.
type BinaryPrimitive struct {
	Subtype byte
	Data    []byte
}

// Equal compares bp to bp2 and returns true if they are equal.
func (bp BinaryPrimitive) Equal(bp2 BinaryPrimitive) bool {
	return bp.Subtype == bp2.Subtype && bytes.Equal(bp.Data, bp2.Data)
}

// RegexPrimitive represents a BSON regex value. Neither field may contain a 0x00 byte.
type RegexPrimitive struct {
	Pattern string
	Options string
}

func (rp RegexPrimitive) String() string {
	return fmt.Sprintf(`{"pattern": "%s", "options": "%s"}`, rp.Pattern, rp.Options)
}

// Equal compares rp to rp2 and returns true if they are equal.
func (rp RegexPrimitive) Equal(rp2 RegexPrimitive) bool {
	return rp.Pattern == rp2.Pattern && rp.Options == rp2.Options
}

// TimestampPrimitive represents a BSON timestamp value. T is the seconds part and I the
// increment.
type TimestampPrimitive struct {
	T uint32
	I uint32
}

// Equal compares tp to tp2 and returns true if they are equal.
func (tp TimestampPrimitive) Equal(tp2 TimestampPrimitive) bool {
	return tp.T == tp2.T && tp.I == tp2.I
}

// CodeWithScopePrimitive represents a BSON JavaScript code with scope value.
type CodeWithScopePrimitive struct {
	Code  string
	Scope *Document
}

func (cws CodeWithScopePrimitive) String() string {
	return fmt.Sprintf(`{"code": "%s", "scope": %v}`, cws.Code, cws.Scope)
}

// Equal compares cws to cws2 and returns true if they are equal.
func (cws CodeWithScopePrimitive) Equal(cws2 CodeWithScopePrimitive) bool {
	return cws.Code == cws2.Code && cws.Scope.Equal(cws2.Scope)
}

// JavaScriptCodePrimitive is the Go type returned by Value.Interface for BSON JavaScript code.
type JavaScriptCodePrimitive string

// SymbolPrimitive is the Go type returned by Value.Interface for BSON symbols.
type SymbolPrimitive string

// UndefinedPrimitive represents the BSON undefined value.
type UndefinedPrimitive struct{}

// NullPrimitive represents the BSON null value.
type NullPrimitive struct{}

// MinKeyPrimitive represents the BSON min key value.
type MinKeyPrimitive struct{}

// MaxKeyPrimitive represents the BSON max key value.
type MaxKeyPrimitive struct{}
