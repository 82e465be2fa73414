// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/internal/llbson"
)

// minDocumentSize is the length of an empty document: the int32 length and the terminator.
const minDocumentSize = 5

// initialReadSize bounds the buffer allocated up front for a document read from a stream, so a
// hostile length prefix cannot force a large allocation before the bytes arrive.
const initialReadSize = 64 << 10

// DecodeDocument reads exactly one BSON document from r. Keys and strings must be valid UTF-8.
func DecodeDocument(r io.Reader) (*Document, error) {
	return decodeOne(NewDecoder(r))
}

// DecodeDocumentUTF8Lossy reads exactly one BSON document from r, replacing invalid UTF-8 in
// keys and strings with U+FFFD.
func DecodeDocumentUTF8Lossy(r io.Reader) (*Document, error) {
	dec := NewDecoder(r)
	dec.UTF8Lossy()
	return decodeOne(dec)
}

func decodeOne(dec *Decoder) (*Document, error) {
	doc, err := dec.Decode()
	if err == io.EOF {
		return nil, &DecoderError{Err: newShortInputError(4, 0)}
	}
	return doc, err
}

// ReadDocument decodes the single BSON document held by b. It is an error for b to hold fewer
// or more bytes than the document's declared length.
func ReadDocument(b []byte) (*Document, error) {
	doc := new(Document)
	if err := doc.UnmarshalBSON(b); err != nil {
		return nil, err
	}
	return doc, nil
}

// UnmarshalBSON replaces the contents of d with the document held by b. d is left unchanged
// if b is not a valid document.
func (d *Document) UnmarshalBSON(b []byte) error {
	if d == nil {
		return ErrNilDocument
	}

	length, _, ok := llbson.ReadLength(b)
	if !ok {
		return &DecoderError{Err: newShortInputError(4, int64(len(b)))}
	}
	if length < minDocumentSize {
		return &DecoderError{Err: ErrInvalidLength}
	}
	if int64(length) > int64(len(b)) {
		return &DecoderError{Err: newShortInputError(int64(length), int64(len(b)))}
	}
	if int(length) != len(b) {
		return &DecoderError{Offset: int64(length), Err: ErrInvalidLength}
	}

	ds := decodeState{buf: b, maxDepth: DefaultMaxDepth}
	doc, err := ds.document(0, 1)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// ReadFrom replaces the contents of d with the next document read from r. It implements
// io.ReaderFrom and returns the number of bytes read.
func (d *Document) ReadFrom(r io.Reader) (int64, error) {
	if d == nil {
		return 0, ErrNilDocument
	}
	dec := NewDecoder(r)
	doc, err := decodeOne(dec)
	if err != nil {
		return dec.offset, err
	}
	*d = *doc
	return dec.offset, nil
}

// A Decoder reads and decodes BSON documents from a stream of concatenated documents.
type Decoder struct {
	r        io.Reader
	lossy    bool
	maxSize  int32
	maxDepth int

	// offset is the number of bytes consumed from r.
	offset int64
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, maxSize: math.MaxInt32, maxDepth: DefaultMaxDepth}
}

// UTF8Lossy causes the Decoder to replace invalid UTF-8 in keys and strings with U+FFFD
// instead of failing.
func (dec *Decoder) UTF8Lossy() {
	dec.lossy = true
}

// SetMaxDocumentSize sets the largest declared document length the Decoder accepts. Values
// outside of [5, math.MaxInt32] reset the limit to math.MaxInt32.
func (dec *Decoder) SetMaxDocumentSize(size int) {
	if size < minDocumentSize || size > math.MaxInt32 {
		size = math.MaxInt32
	}
	dec.maxSize = int32(size)
}

// SetMaxDepth sets the deepest nesting of documents and arrays the Decoder accepts.
func (dec *Decoder) SetMaxDepth(depth int) {
	dec.maxDepth = depth
}

// Decode reads the next BSON document from the stream. It returns io.EOF, unwrapped, when
// the stream ends cleanly before a new document begins.
func (dec *Decoder) Decode() (*Document, error) {
	start := dec.offset

	var lenBuf [4]byte
	n, err := io.ReadFull(dec.r, lenBuf[:])
	dec.offset += int64(n)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &DecoderError{Offset: start, Err: newShortInputError(4, int64(n))}
	case err != nil:
		return nil, &DecoderError{Offset: start, Err: err}
	}

	length, _, _ := llbson.ReadLength(lenBuf[:])
	if length < minDocumentSize {
		return nil, &DecoderError{Offset: start, Err: ErrInvalidLength}
	}
	if length > dec.maxSize {
		return nil, &DecoderError{Offset: start, Err: ErrDocumentTooLarge}
	}

	var buf bytes.Buffer
	if length <= initialReadSize {
		buf.Grow(int(length))
	} else {
		buf.Grow(initialReadSize)
	}
	buf.Write(lenBuf[:])

	copied, err := io.CopyN(&buf, dec.r, int64(length)-4)
	dec.offset += copied
	if err == io.EOF {
		return nil, &DecoderError{Offset: start, Err: newShortInputError(int64(length), 4+copied)}
	}
	if err != nil {
		return nil, &DecoderError{Offset: start, Err: err}
	}

	ds := decodeState{buf: buf.Bytes(), base: start, lossy: dec.lossy, maxDepth: dec.maxDepth}
	return ds.document(0, 1)
}

// decodeState parses one complete document held in buf. Lengths inside buf have not been
// checked yet. base is the stream offset of buf[0].
type decodeState struct {
	buf      []byte
	base     int64
	lossy    bool
	maxDepth int
}

func (ds *decodeState) errorf(pos int, key string, err error) error {
	return &DecoderError{Offset: ds.base + int64(pos), Key: key, Err: err}
}

// document parses the document starting at buf[start]. The caller has checked that its
// declared length is at least 5 and lies within buf.
func (ds *decodeState) document(start, depth int) (*Document, error) {
	if depth > ds.maxDepth {
		return nil, ds.errorf(start, "", ErrMaxDepthExceeded)
	}

	length, _, _ := llbson.ReadLength(ds.buf[start:])
	end := start + int(length)
	if ds.buf[end-1] != 0x00 {
		return nil, ds.errorf(end-1, "", ErrMissingTerminator)
	}

	bodyEnd := end - 1
	body := ds.buf[start+4 : bodyEnd]
	doc := NewDocument()
	for len(body) > 0 {
		pos := bodyEnd - len(body)
		t, rem, _ := llbson.ReadType(body)
		if t == 0x00 {
			// A terminator before the declared end.
			return nil, ds.errorf(pos, "", ErrInvalidLength)
		}

		rawKey, rem, ok := llbson.ReadCString(rem)
		if !ok {
			return nil, ds.errorf(pos, "", ErrMissingTerminator)
		}
		key, err := ds.text(rawKey)
		if err != nil {
			return nil, ds.errorf(pos, string(rawKey), err)
		}
		if !t.IsValid() {
			return nil, ds.errorf(pos, key, UnrecognizedTypeError{Type: t})
		}

		var val Value
		val, body, err = ds.value(t, rem, bodyEnd, depth)
		if err != nil {
			var de *DecoderError
			if errors.As(err, &de) {
				de.Key = joinKey(key, de.Key)
				return nil, de
			}
			return nil, ds.errorf(bodyEnd-len(rem), key, err)
		}
		doc.Set(key, val)
	}
	return doc, nil
}

// array parses the document starting at buf[start] as an array, keeping the values in wire
// order. Keys are not checked against their positions.
func (ds *decodeState) array(start, depth int) (*Array, error) {
	doc, err := ds.document(start, depth)
	if err != nil {
		return nil, err
	}
	arr := &Array{values: make([]Value, 0, doc.Len())}
	for _, elem := range doc.elems {
		arr.values = append(arr.values, elem.Value)
	}
	return arr, nil
}

// value reads the payload of an element of type t from src, which ends at buf[end]. Errors
// that are not a *DecoderError are reported at the start of the payload by the caller.
func (ds *decodeState) value(t bsontype.Type, src []byte, end, depth int) (Value, []byte, error) {
	switch t {
	case bsontype.Double:
		f64, rem, ok := llbson.ReadDouble(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Double(f64), rem, nil
	case bsontype.String:
		str, rem, err := ds.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return String(str), rem, nil
	case bsontype.EmbeddedDocument:
		start, rem, err := ds.embedded(src, end)
		if err != nil {
			return Value{}, src, err
		}
		doc, err := ds.document(start, depth+1)
		if err != nil {
			return Value{}, src, err
		}
		return EmbedDocument(doc), rem, nil
	case bsontype.Array:
		start, rem, err := ds.embedded(src, end)
		if err != nil {
			return Value{}, src, err
		}
		arr, err := ds.array(start, depth+1)
		if err != nil {
			return Value{}, src, err
		}
		return EmbedArray(arr), rem, nil
	case bsontype.Binary:
		length, rem, ok := llbson.ReadLength(src)
		if !ok || length < 0 {
			return Value{}, src, ErrInvalidLength
		}
		subtype, rem, ok := llbson.ReadByte(rem)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		data, rem, ok := llbson.ReadBytes(rem, int(length))
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Binary(subtype, append([]byte{}, data...)), rem, nil
	case bsontype.Undefined:
		return Undefined(), src, nil
	case bsontype.ObjectID:
		oid, rem, ok := llbson.ReadObjectID(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return ObjectID(oid), rem, nil
	case bsontype.Boolean:
		b, rem, ok := llbson.ReadByte(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		if b > 0x01 {
			return Value{}, src, ErrInvalidBoolean
		}
		return Boolean(b == 0x01), rem, nil
	case bsontype.DateTime:
		dt, rem, ok := llbson.ReadDateTime(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return DateTime(dt), rem, nil
	case bsontype.Null:
		return Null(), src, nil
	case bsontype.Regex:
		pattern, rem, err := ds.readCString(src)
		if err != nil {
			return Value{}, src, err
		}
		options, rem, err := ds.readCString(rem)
		if err != nil {
			return Value{}, src, err
		}
		return Regex(pattern, options), rem, nil
	case bsontype.JavaScript:
		code, rem, err := ds.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return JavaScript(code), rem, nil
	case bsontype.Symbol:
		symbol, rem, err := ds.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return Symbol(symbol), rem, nil
	case bsontype.CodeWithScope:
		return ds.codeWithScope(src, end, depth)
	case bsontype.Int32:
		i32, rem, ok := llbson.ReadInt32(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Int32(i32), rem, nil
	case bsontype.Timestamp:
		ts, inc, rem, ok := llbson.ReadTimestamp(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Timestamp(ts, inc), rem, nil
	case bsontype.Int64:
		i64, rem, ok := llbson.ReadInt64(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Int64(i64), rem, nil
	case bsontype.Decimal128:
		d128, rem, ok := llbson.ReadDecimal128(src)
		if !ok {
			return Value{}, src, ErrInvalidLength
		}
		return Decimal128(d128), rem, nil
	case bsontype.MinKey:
		return MinKey(), src, nil
	case bsontype.MaxKey:
		return MaxKey(), src, nil
	default:
		return Value{}, src, UnrecognizedTypeError{Type: t}
	}
}

// embedded checks the length of the document at the start of src and returns its position in
// buf along with the bytes after it.
func (ds *decodeState) embedded(src []byte, end int) (int, []byte, error) {
	length, _, ok := llbson.ReadLength(src)
	if !ok || length < minDocumentSize || int64(length) > int64(len(src)) {
		return 0, src, ErrInvalidLength
	}
	return end - len(src), src[length:], nil
}

func (ds *decodeState) codeWithScope(src []byte, end, depth int) (Value, []byte, error) {
	total, rem, ok := llbson.ReadLength(src)
	// int32 total, int32 string length, at least the string terminator, an empty scope.
	if !ok || total < 4+4+1+minDocumentSize || int64(total) > int64(len(src)) {
		return Value{}, src, ErrInvalidLength
	}
	inner := rem[:total-4]

	code, scopeSrc, err := ds.readString(inner)
	if err != nil {
		return Value{}, src, err
	}
	scopeLen, _, ok := llbson.ReadLength(scopeSrc)
	if !ok || int64(scopeLen) != int64(len(scopeSrc)) || scopeLen < minDocumentSize {
		return Value{}, src, ErrInvalidLength
	}
	scope, err := ds.document(end-len(scopeSrc)-len(rem[total-4:]), depth+1)
	if err != nil {
		return Value{}, src, err
	}
	return CodeWithScope(code, scope), rem[total-4:], nil
}

func (ds *decodeState) readString(src []byte) (string, []byte, error) {
	length, rem, ok := llbson.ReadLength(src)
	if !ok || length < 1 {
		return "", src, ErrInvalidLength
	}
	raw, rem, ok := llbson.ReadBytes(rem, int(length))
	if !ok {
		return "", src, ErrInvalidLength
	}
	if raw[length-1] != 0x00 {
		return "", src, ErrMissingTerminator
	}
	str, err := ds.text(raw[:length-1])
	if err != nil {
		return "", src, err
	}
	return str, rem, nil
}

func (ds *decodeState) readCString(src []byte) (string, []byte, error) {
	raw, rem, ok := llbson.ReadCString(src)
	if !ok {
		return "", src, ErrMissingTerminator
	}
	str, err := ds.text(raw)
	if err != nil {
		return "", src, err
	}
	return str, rem, nil
}

// text converts raw key or string bytes, checking or repairing their UTF-8.
func (ds *decodeState) text(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	if !ds.lossy {
		return "", ErrInvalidUTF8
	}
	repaired, _, err := transform.Bytes(runes.ReplaceIllFormed(), raw)
	if err != nil {
		return "", err
	}
	return string(repaired), nil
}
