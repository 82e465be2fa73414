// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/internal/llbson"
)

// DefaultMaxDepth is the deepest nesting of documents and arrays the encoder and decoder
// accept unless configured otherwise.
const DefaultMaxDepth = 2048

// This pool keeps the scratch buffers of the package level encode functions. Buffers that
// grew past maxPooledBuffer are not returned to it.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 256)
		return &b
	},
}

const maxPooledBuffer = 1 << 20

// EncodeDocument writes the BSON encoding of doc to w in a single call to Write.
func EncodeDocument(w io.Writer, doc *Document) error {
	bp := bufPool.Get().(*[]byte)
	defer func() {
		if cap(*bp) <= maxPooledBuffer {
			*bp = (*bp)[:0]
			bufPool.Put(bp)
		}
	}()

	b, err := appendDocument((*bp)[:0], doc, DefaultMaxDepth)
	if err != nil {
		return err
	}
	*bp = b
	if _, err := w.Write(b); err != nil {
		return &EncoderError{Err: err}
	}
	return nil
}

// An Encoder writes BSON documents to an output stream.
type Encoder struct {
	w        io.Writer
	maxDepth int
	buf      []byte
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the deepest nesting of documents and arrays the encoder accepts.
func (e *Encoder) SetMaxDepth(depth int) {
	e.maxDepth = depth
}

// Encode writes the BSON encoding of doc to the stream. Nothing is written if doc cannot be
// encoded.
func (e *Encoder) Encode(doc *Document) error {
	b, err := appendDocument(e.buf[:0], doc, e.maxDepth)
	if err != nil {
		return err
	}
	e.buf = b
	if _, err := e.w.Write(b); err != nil {
		return &EncoderError{Err: err}
	}
	return nil
}

// MarshalBSON returns the BSON encoding of d.
func (d *Document) MarshalBSON() ([]byte, error) { return d.AppendMarshalBSON(nil) }

// AppendMarshalBSON appends the BSON encoding of d to dst. On error dst is returned unchanged.
func (d *Document) AppendMarshalBSON(dst []byte) ([]byte, error) {
	b, err := appendDocument(dst, d, DefaultMaxDepth)
	if err != nil {
		return dst, err
	}
	return b, nil
}

// WriteTo writes the BSON encoding of d to w. It implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	b, err := d.MarshalBSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	if err != nil {
		return int64(n), &EncoderError{Err: err}
	}
	return int64(n), nil
}

func appendDocument(dst []byte, doc *Document, maxDepth int) ([]byte, error) {
	if doc == nil {
		return dst, &EncoderError{Err: ErrNilDocument}
	}
	b, err := appendDocumentElements(dst, doc.elems, 1, maxDepth)
	if err != nil {
		return dst, err
	}
	return b, nil
}

// appendDocumentElements appends a document holding elems. depth is the nesting level of the
// document, starting at 1 for the top level.
func appendDocumentElements(dst []byte, elems []Element, depth, maxDepth int) ([]byte, error) {
	if depth > maxDepth {
		return dst, &EncoderError{Err: ErrMaxDepthExceeded}
	}

	idx, dst := llbson.AppendDocumentStart(dst)
	for _, elem := range elems {
		if err := validateKey(elem.Key); err != nil {
			return dst, &EncoderError{Key: elem.Key, Err: err}
		}

		var err error
		dst, err = appendElement(dst, elem.Key, elem.Value, depth, maxDepth)
		if err != nil {
			return dst, err
		}
	}
	return endDocument(dst, idx)
}

func appendArrayValues(dst []byte, values []Value, depth, maxDepth int) ([]byte, error) {
	if depth > maxDepth {
		return dst, &EncoderError{Err: ErrMaxDepthExceeded}
	}

	idx, dst := llbson.AppendDocumentStart(dst)
	for i, val := range values {
		var err error
		dst, err = appendElement(dst, strconv.Itoa(i), val, depth, maxDepth)
		if err != nil {
			return dst, err
		}
	}
	return endDocument(dst, idx)
}

func endDocument(dst []byte, idx int32) ([]byte, error) {
	if int64(len(dst))-int64(idx)+1 > math.MaxInt32 {
		return dst, &EncoderError{Err: ErrDocumentTooLarge}
	}
	return llbson.AppendDocumentEnd(dst, idx), nil
}

// appendElement appends the header and payload of a single element. Errors from nested
// documents have their key path prefixed with key.
func appendElement(dst []byte, key string, val Value, depth, maxDepth int) ([]byte, error) {
	if val.IsZero() {
		return dst, &EncoderError{Key: key, Err: fmt.Errorf("%w: zero Value", ErrUnsupportedValue)}
	}

	dst = llbson.AppendHeader(dst, val.Type(), key)

	var err error
	switch val.Type() {
	case bsontype.Double:
		dst = llbson.AppendDouble(dst, val.Double())
	case bsontype.String:
		dst, err = appendString(dst, val.StringValue())
	case bsontype.EmbeddedDocument:
		dst, err = appendDocumentElements(dst, val.Document().elems, depth+1, maxDepth)
	case bsontype.Array:
		dst, err = appendArrayValues(dst, val.Array().values, depth+1, maxDepth)
	case bsontype.Binary:
		bp := val.Binary()
		if int64(len(bp.Data)) > math.MaxInt32 {
			err = ErrDocumentTooLarge
			break
		}
		dst = llbson.AppendBinary(dst, bp.Subtype, bp.Data)
	case bsontype.ObjectID:
		dst = llbson.AppendObjectID(dst, val.ObjectID())
	case bsontype.Boolean:
		dst = llbson.AppendBoolean(dst, val.Boolean())
	case bsontype.DateTime:
		dst = llbson.AppendDateTime(dst, val.DateTime())
	case bsontype.Regex:
		rp := val.Regex()
		if err = validateCString(rp.Pattern); err != nil {
			break
		}
		if err = validateCString(rp.Options); err != nil {
			break
		}
		dst = llbson.AppendRegex(dst, rp.Pattern, rp.Options)
	case bsontype.JavaScript:
		dst, err = appendString(dst, val.JavaScript())
	case bsontype.Symbol:
		dst, err = appendString(dst, val.Symbol())
	case bsontype.CodeWithScope:
		cws := val.CodeWithScope()
		var idx int32
		idx, dst = llbson.ReserveLength(dst)
		if dst, err = appendString(dst, cws.Code); err != nil {
			break
		}
		if dst, err = appendDocumentElements(dst, cws.Scope.elems, depth+1, maxDepth); err != nil {
			break
		}
		dst = llbson.UpdateLength(dst, idx, int32(len(dst[idx:])))
	case bsontype.Int32:
		dst = llbson.AppendInt32(dst, val.Int32())
	case bsontype.Timestamp:
		tp := val.Timestamp()
		dst = llbson.AppendTimestamp(dst, tp.T, tp.I)
	case bsontype.Int64:
		dst = llbson.AppendInt64(dst, val.Int64())
	case bsontype.Decimal128:
		dst = llbson.AppendDecimal128(dst, val.Decimal128())
	case bsontype.Null, bsontype.Undefined, bsontype.MinKey, bsontype.MaxKey:
	default:
		err = fmt.Errorf("%w: type %s", ErrUnsupportedValue, val.Type())
	}

	if err == nil {
		return dst, nil
	}
	if ee, ok := err.(*EncoderError); ok {
		return dst, &EncoderError{Key: joinKey(key, ee.Key), Err: ee.Err}
	}
	return dst, &EncoderError{Key: key, Err: err}
}

func appendString(dst []byte, s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return dst, fmt.Errorf("%w: string is not valid UTF-8", ErrUnsupportedValue)
	}
	if int64(len(s))+1 > math.MaxInt32 {
		return dst, ErrDocumentTooLarge
	}
	return llbson.AppendString(dst, s), nil
}

func validateKey(key string) error {
	if strings.IndexByte(key, 0x00) >= 0 || !utf8.ValidString(key) {
		return ErrInvalidMapKey
	}
	return nil
}

func validateCString(s string) error {
	if strings.IndexByte(s, 0x00) >= 0 {
		return fmt.Errorf("%w: cstring contains a null byte", ErrUnsupportedValue)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: cstring is not valid UTF-8", ErrUnsupportedValue)
	}
	return nil
}
