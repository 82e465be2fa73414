// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-stack/stack"

	"github.com/ikmak/bsondoc/bson/bsontype"
)

// Errors reported while encoding.
var (
	// ErrNilDocument is returned when a nil *Document is encoded.
	ErrNilDocument = errors.New("bson: cannot encode a nil document")
	// ErrInvalidMapKey is returned when a key contains a 0x00 byte or is not valid UTF-8.
	ErrInvalidMapKey = errors.New("bson: key cannot be encoded as a cstring")
	// ErrUnsupportedValue is returned when a value cannot be represented on the wire.
	ErrUnsupportedValue = errors.New("bson: unsupported value")
	// ErrMaxDepthExceeded is returned when documents and arrays are nested too deeply.
	ErrMaxDepthExceeded = errors.New("bson: maximum nesting depth exceeded")
	// ErrDocumentTooLarge is returned when a document's length does not fit the allowed size.
	ErrDocumentTooLarge = errors.New("bson: document too large")
)

// Errors reported while decoding.
var (
	// ErrInvalidUTF8 is returned when a key or string is not valid UTF-8 in strict mode.
	ErrInvalidUTF8 = errors.New("bson: invalid UTF-8")
	// ErrInvalidLength is returned when a length prefix is negative, too small, or does not
	// agree with the bytes around it.
	ErrInvalidLength = errors.New("bson: invalid length")
	// ErrMissingTerminator is returned when a document, string or cstring lacks its 0x00 byte.
	ErrMissingTerminator = errors.New("bson: missing null terminator")
	// ErrInvalidBoolean is returned when a boolean byte is neither 0x00 nor 0x01.
	ErrInvalidBoolean = errors.New("bson: invalid boolean byte")
)

// Errors reported by the typed accessors.
var (
	ErrNotPresent     = errors.New("value not present")
	ErrUnexpectedType = errors.New("unexpected value type")
)

// EncoderError is returned by the encoding functions. Key is the dotted path of the element
// being encoded, empty for the document itself.
type EncoderError struct {
	Key string
	Err error
}

func (ee *EncoderError) Error() string {
	if ee.Key == "" {
		return fmt.Sprintf("bson: encode: %v", ee.Err)
	}
	return fmt.Sprintf("bson: encode %q: %v", ee.Key, ee.Err)
}

// Unwrap returns the underlying error.
func (ee *EncoderError) Unwrap() error { return ee.Err }

// DecoderError is returned by the decoding functions. Offset is the position in the input
// where the problem was found and Key the dotted path of the element being read.
type DecoderError struct {
	Offset int64
	Key    string
	Err    error
}

func (de *DecoderError) Error() string {
	if de.Key == "" {
		return fmt.Sprintf("bson: decode at offset %d: %v", de.Offset, de.Err)
	}
	return fmt.Sprintf("bson: decode %q at offset %d: %v", de.Key, de.Offset, de.Err)
}

// Unwrap returns the underlying error.
func (de *DecoderError) Unwrap() error { return de.Err }

// UnrecognizedTypeError is returned when an element carries a type byte outside of the
// supported set.
type UnrecognizedTypeError struct {
	Type bsontype.Type
}

func (ute UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("bson: unrecognized element type 0x%02x", byte(ute.Type))
}

// ShortInputError is returned when the input ends before a complete document was read. It
// matches io.ErrUnexpectedEOF with errors.Is.
type ShortInputError struct {
	Need  int64
	Have  int64
	Stack stack.CallStack
}

func newShortInputError(need, have int64) *ShortInputError {
	return &ShortInputError{Need: need, Have: have, Stack: stack.Trace().TrimRuntime()}
}

func (sie *ShortInputError) Error() string {
	return fmt.Sprintf("bson: unexpected end of input: need %d bytes, have %d", sie.Need, sie.Have)
}

// Is reports whether target is io.ErrUnexpectedEOF.
func (sie *ShortInputError) Is(target error) bool { return target == io.ErrUnexpectedEOF }

// ErrorStack returns the error message followed by the call stack captured when the
// error was created.
func (sie *ShortInputError) ErrorStack() string {
	return fmt.Sprintf("%s\n%+v", sie.Error(), sie.Stack)
}

// ElementTypeError specifies that a method to obtain a BSON value an incorrect type was called on a
// bson.Value.
type ElementTypeError struct {
	Method string
	Type   bsontype.Type
}

// Error implements the error interface.
func (ete ElementTypeError) Error() string {
	return "Call of " + ete.Method + " on " + ete.Type.String() + " type"
}

// ValueAccessError is returned by the Get* accessors. Err is either ErrNotPresent or
// ErrUnexpectedType.
type ValueAccessError struct {
	Key  string
	Want bsontype.Type
	Got  bsontype.Type
	Err  error
}

func (vae *ValueAccessError) Error() string {
	if vae.Err == ErrNotPresent {
		return fmt.Sprintf("key %q: %v", vae.Key, vae.Err)
	}
	return fmt.Sprintf("key %q: %v: want %s, got %s", vae.Key, vae.Err, vae.Want, vae.Got)
}

// Unwrap returns ErrNotPresent or ErrUnexpectedType.
func (vae *ValueAccessError) Unwrap() error { return vae.Err }

// KeyNotFound is an error type returned from the Lookup methods on Document. This type contains
// information about which key was not found and if it was actually not found or if a component of
// the key except the last was not a document nor array.
type KeyNotFound struct {
	Key   []string      // The keys that were searched for.
	Depth uint          // Which key either was not found or was an incorrect type.
	Type  bsontype.Type // The type of the key that was found but was an incorrect type.
}

func (knf KeyNotFound) Error() string {
	if len(knf.Key) == 0 {
		return "no keys were provided for lookup"
	}

	depth := knf.Depth
	if depth >= uint(len(knf.Key)) {
		depth = uint(len(knf.Key)) - 1
	}

	if knf.Type != bsontype.Type(0) {
		return fmt.Sprintf(`key "%s" was found but was not valid to traverse BSON type %s`, knf.Key[depth], knf.Type)
	}

	return fmt.Sprintf(`key "%s" was not found`, knf.Key[depth])
}

// joinKey prefixes the key path of a nested encoder or decoder error with key.
func joinKey(key, nested string) string {
	if nested == "" {
		return key
	}
	var sb strings.Builder
	sb.Grow(len(key) + 1 + len(nested))
	sb.WriteString(key)
	sb.WriteByte('.')
	sb.WriteString(nested)
	return sb.String()
}
