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
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/bsondoc/bson/bsontype"
	"github.com/ikmak/bsondoc/bson/internal/llbson"
)

// buildDoc wraps the given elements with a length prefix and a terminator.
func buildDoc(elems ...[]byte) []byte {
	body := bytes.Join(elems, nil)
	doc := llbson.AppendInt32(nil, int32(4+len(body)+1))
	doc = append(doc, body...)
	return append(doc, 0x00)
}

// elem builds an element from its type, key and raw payload.
func elem(t bsontype.Type, key string, payload []byte) []byte {
	return append(llbson.AppendHeader(nil, t, key), payload...)
}

func TestDecodeDocument(t *testing.T) {
	t.Run("foo bar", func(t *testing.T) {
		b := []byte{
			0x12, 0x00, 0x00, 0x00,
			0x02, 'f', 'o', 'o', 0x00,
			0x04, 0x00, 0x00, 0x00, 'b', 'a', 'r', 0x00,
			0x00,
		}
		doc, err := DecodeDocument(bytes.NewReader(b))
		require.NoError(t, err)
		require.True(t, NewDocument(Element{"foo", String("bar")}).Equal(doc), spew.Sdump(doc))
	})
	t.Run("empty document", func(t *testing.T) {
		doc, err := DecodeDocument(bytes.NewReader([]byte{0x05, 0x00, 0x00, 0x00, 0x00}))
		require.NoError(t, err)
		require.Equal(t, 0, doc.Len())
	})
	t.Run("duplicate keys keep the first position and the last value", func(t *testing.T) {
		b := buildDoc(
			elem(bsontype.Int32, "a", llbson.AppendInt32(nil, 1)),
			elem(bsontype.Int32, "b", llbson.AppendInt32(nil, 2)),
			elem(bsontype.Int32, "a", llbson.AppendInt32(nil, 3)),
		)
		doc, err := ReadDocument(b)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, doc.Keys())
		require.Equal(t, int32(3), doc.Lookup("a").Int32())
	})
	t.Run("array keys are not checked", func(t *testing.T) {
		arr := buildDoc(
			elem(bsontype.Int32, "5", llbson.AppendInt32(nil, 10)),
			elem(bsontype.Int32, "x", llbson.AppendInt32(nil, 20)),
		)
		doc, err := ReadDocument(buildDoc(elem(bsontype.Array, "arr", arr)))
		require.NoError(t, err)
		require.Equal(t, []Value{Int32(10), Int32(20)}, doc.Lookup("arr").Array().Values())
	})
	t.Run("empty source", func(t *testing.T) {
		_, err := DecodeDocument(bytes.NewReader(nil))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestDecodeTruncated(t *testing.T) {
	doc := NewDocument(
		Element{"s", String("hello")},
		Element{"d", EmbedDocument(NewDocument(Element{"i", Int64(1)}))},
		Element{"a", EmbedArray(NewArray(Boolean(true), Double(2.5)))},
		Element{"c", CodeWithScope("x", NewDocument(Element{"y", Null()}))},
	)
	b, err := doc.MarshalBSON()
	require.NoError(t, err)

	for n := 0; n < len(b); n++ {
		_, err := DecodeDocument(bytes.NewReader(b[:n]))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF, "prefix of %d bytes", n)

		var sie *ShortInputError
		require.True(t, errors.As(err, &sie), "prefix of %d bytes: %v", n, err)
		require.NotEmpty(t, sie.Stack)
		require.True(t, strings.HasPrefix(sie.ErrorStack(), sie.Error()))

		_, err = ReadDocument(b[:n])
		require.ErrorIs(t, err, io.ErrUnexpectedEOF, "prefix of %d bytes", n)
	}

	got, err := DecodeDocument(bytes.NewReader(b))
	require.NoError(t, err)
	require.True(t, doc.Equal(got))
}

func TestDecodeUTF8(t *testing.T) {
	testCases := []struct {
		name  string
		b     []byte
		key   string
		value string
	}{
		{
			"invalid string",
			buildDoc(elem(bsontype.String, "s", llbson.AppendString(nil, "a\xffb"))),
			"s", "a�b",
		},
		{
			"invalid key",
			buildDoc(elem(bsontype.String, "k\xfe", llbson.AppendString(nil, "v"))),
			"k�", "v",
		},
		{
			"invalid nested string",
			buildDoc(elem(bsontype.EmbeddedDocument, "d", buildDoc(elem(bsontype.String, "s", llbson.AppendString(nil, "\xc3\x28"))))),
			"d", "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDocument(bytes.NewReader(tc.b))
			require.ErrorIs(t, err, ErrInvalidUTF8)

			doc, err := DecodeDocumentUTF8Lossy(bytes.NewReader(tc.b))
			require.NoError(t, err)
			val, ok := doc.Get(tc.key)
			require.True(t, ok, spew.Sdump(doc))
			if tc.value != "" {
				require.Equal(t, tc.value, val.StringValue())
			}
		})
	}

	t.Run("lossy nested", func(t *testing.T) {
		doc, err := DecodeDocumentUTF8Lossy(bytes.NewReader(testCases[2].b))
		require.NoError(t, err)
		s, err := doc.Lookup("d").Document().GetString("s")
		require.NoError(t, err)
		require.Equal(t, "�(", s)
	})
}

func TestDecodeMalformed(t *testing.T) {
	validString := llbson.AppendString(nil, "x")
	emptyDoc := []byte{0x05, 0x00, 0x00, 0x00, 0x00}

	cws := func(total int32, rest ...byte) []byte {
		b := llbson.AppendInt32(nil, total)
		b = append(b, validString...)
		b = append(b, emptyDoc...)
		return append(b, rest...)
	}

	testCases := []struct {
		name string
		b    []byte
		err  error
	}{
		{"length too small", []byte{0x04, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"negative length", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00}, ErrInvalidLength},
		{"missing terminator", []byte{0x05, 0x00, 0x00, 0x00, 0x01}, ErrMissingTerminator},
		{"terminator before the declared end", []byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"key without terminator", []byte{0x08, 0x00, 0x00, 0x00, 0x0A, 'a', 'b', 0x00}, ErrMissingTerminator},
		{"bad boolean", buildDoc(elem(bsontype.Boolean, "b", []byte{0x02})), ErrInvalidBoolean},
		{"int32 overruns document", buildDoc(elem(bsontype.Int32, "i", []byte{0x01, 0x00})), ErrInvalidLength},
		{"string length zero", buildDoc(elem(bsontype.String, "s", []byte{0x00, 0x00, 0x00, 0x00})), ErrInvalidLength},
		{"string length negative", buildDoc(elem(bsontype.String, "s", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00})), ErrInvalidLength},
		{"string overruns document", buildDoc(elem(bsontype.String, "s", []byte{0x10, 0x00, 0x00, 0x00, 'a', 0x00})), ErrInvalidLength},
		{"string without terminator", buildDoc(elem(bsontype.String, "s", []byte{0x02, 0x00, 0x00, 0x00, 'a', 'b'})), ErrMissingTerminator},
		{"binary negative length", buildDoc(elem(bsontype.Binary, "b", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00})), ErrInvalidLength},
		{"binary overruns document", buildDoc(elem(bsontype.Binary, "b", []byte{0x09, 0x00, 0x00, 0x00, 0x00, 0x01})), ErrInvalidLength},
		{"embedded document too small", buildDoc(elem(bsontype.EmbeddedDocument, "d", []byte{0x04, 0x00, 0x00, 0x00, 0x00})), ErrInvalidLength},
		{"embedded document overruns", buildDoc(elem(bsontype.EmbeddedDocument, "d", []byte{0x09, 0x00, 0x00, 0x00, 0x00})), ErrInvalidLength},
		{"embedded document missing terminator", buildDoc(elem(bsontype.EmbeddedDocument, "d", []byte{0x05, 0x00, 0x00, 0x00, 0x01})), ErrMissingTerminator},
		{"regex without terminator", buildDoc(elem(bsontype.Regex, "r", []byte{'a', 'b'})), ErrMissingTerminator},
		{"code with scope too long", buildDoc(elem(bsontype.CodeWithScope, "c", cws(16, 0x00))), ErrInvalidLength},
		{"code with scope too short", buildDoc(elem(bsontype.CodeWithScope, "c", cws(14))), ErrInvalidLength},
		{"code with scope below minimum", buildDoc(elem(bsontype.CodeWithScope, "c", cws(5))), ErrInvalidLength},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDocument(bytes.NewReader(tc.b))
			require.ErrorIs(t, err, tc.err, "got %v", err)

			var de *DecoderError
			require.True(t, errors.As(err, &de))
		})
	}

	t.Run("valid code with scope", func(t *testing.T) {
		doc, err := ReadDocument(buildDoc(elem(bsontype.CodeWithScope, "c", cws(15))))
		require.NoError(t, err)
		got, err := doc.GetCodeWithScope("c")
		require.NoError(t, err)
		require.Equal(t, "x", got.Code)
		require.Equal(t, 0, got.Scope.Len())
	})
}

func TestDecodeUnrecognizedType(t *testing.T) {
	for _, typ := range []byte{0x0C, 0x14, 0x20, 0x80, 0xFE} {
		b := buildDoc(elem(bsontype.Type(typ), "x", []byte{0x00, 0x00, 0x00, 0x00}))
		_, err := DecodeDocument(bytes.NewReader(b))

		var ute UnrecognizedTypeError
		require.True(t, errors.As(err, &ute), "type 0x%02x: %v", typ, err)
		assert.Equal(t, bsontype.Type(typ), ute.Type)

		var de *DecoderError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "x", de.Key)
		assert.Equal(t, int64(4), de.Offset)
	}
}

func TestDecoderErrorPosition(t *testing.T) {
	bad := buildDoc(elem(bsontype.EmbeddedDocument, "d", buildDoc(elem(bsontype.Boolean, "b", []byte{0x07}))))

	_, err := ReadDocument(bad)
	var de *DecoderError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "d.b", de.Key)
	assert.Equal(t, int64(14), de.Offset)
	assert.Equal(t, `bson: decode "d.b" at offset 14: bson: invalid boolean byte`, de.Error())

	first := buildDoc(elem(bsontype.Int32, "a", llbson.AppendInt32(nil, 1)))
	stream := append(append([]byte{}, first...), bad...)
	dec := NewDecoder(bytes.NewReader(stream))
	_, err = dec.Decode()
	require.NoError(t, err)
	_, err = dec.Decode()
	require.True(t, errors.As(err, &de))
	assert.Equal(t, int64(len(first)+14), de.Offset)
}

func TestDecoderLimits(t *testing.T) {
	nested := func(depth int) []byte {
		b := buildDoc()
		for i := 1; i < depth; i++ {
			b = buildDoc(elem(bsontype.EmbeddedDocument, "d", b))
		}
		return b
	}

	t.Run("depth", func(t *testing.T) {
		dec := NewDecoder(bytes.NewReader(append(nested(3), nested(4)...)))
		dec.SetMaxDepth(3)
		_, err := dec.Decode()
		require.NoError(t, err)
		_, err = dec.Decode()
		require.ErrorIs(t, err, ErrMaxDepthExceeded)
	})
	t.Run("default depth", func(t *testing.T) {
		_, err := ReadDocument(nested(DefaultMaxDepth))
		require.NoError(t, err)
		_, err = ReadDocument(nested(DefaultMaxDepth + 1))
		require.ErrorIs(t, err, ErrMaxDepthExceeded)
	})
	t.Run("array depth", func(t *testing.T) {
		b := buildDoc(elem(bsontype.Array, "a", buildDoc(elem(bsontype.Array, "0", buildDoc()))))
		dec := NewDecoder(bytes.NewReader(b))
		dec.SetMaxDepth(2)
		_, err := dec.Decode()
		require.ErrorIs(t, err, ErrMaxDepthExceeded)
	})
	t.Run("document size", func(t *testing.T) {
		b := buildDoc(elem(bsontype.String, "s", llbson.AppendString(nil, strings.Repeat("x", 100))))
		dec := NewDecoder(bytes.NewReader(b))
		dec.SetMaxDocumentSize(64)
		_, err := dec.Decode()
		require.ErrorIs(t, err, ErrDocumentTooLarge)
	})
	t.Run("huge declared length without data", func(t *testing.T) {
		_, err := DecodeDocument(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0x00}))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)

		var sie *ShortInputError
		require.True(t, errors.As(err, &sie))
		assert.Equal(t, int64(0x7FFFFFFF), sie.Need)
		assert.Equal(t, int64(5), sie.Have)
	})
}

type errReader struct{ err error }

func (er errReader) Read([]byte) (int, error) { return 0, er.err }

func TestDecoderReadErrors(t *testing.T) {
	srcErr := errors.New("connection reset")
	_, err := DecodeDocument(errReader{srcErr})
	require.ErrorIs(t, err, srcErr)

	r := io.MultiReader(bytes.NewReader([]byte{0x10, 0x00, 0x00, 0x00}), errReader{srcErr})
	_, err = DecodeDocument(r)
	require.ErrorIs(t, err, srcErr)
}

func TestReadDocument(t *testing.T) {
	b := buildDoc(elem(bsontype.Null, "n", nil))

	doc, err := ReadDocument(b)
	require.NoError(t, err)
	require.NoError(t, doc.GetNull("n"))

	_, err = ReadDocument(append(append([]byte{}, b...), 0x00))
	require.ErrorIs(t, err, ErrInvalidLength)

	t.Run("UnmarshalBSON leaves the document unchanged on error", func(t *testing.T) {
		doc := NewDocument(Element{"keep", Int32(1)})
		err := doc.UnmarshalBSON(buildDoc(elem(bsontype.Boolean, "b", []byte{0x09})))
		require.ErrorIs(t, err, ErrInvalidBoolean)
		require.Equal(t, []string{"keep"}, doc.Keys())

		require.NoError(t, doc.UnmarshalBSON(b))
		require.Equal(t, []string{"n"}, doc.Keys())

		var nilDoc *Document
		require.ErrorIs(t, nilDoc.UnmarshalBSON(b), ErrNilDocument)
	})
	t.Run("ReadFrom", func(t *testing.T) {
		var doc Document
		n, err := doc.ReadFrom(bytes.NewReader(append(append([]byte{}, b...), b...)))
		require.NoError(t, err)
		require.Equal(t, int64(len(b)), n)
		require.True(t, doc.Contains("n"))
		doc.Set("m", Null())
		require.Equal(t, []string{"n", "m"}, doc.Keys())
	})
	t.Run("decoded binary does not alias the input", func(t *testing.T) {
		raw := buildDoc(elem(bsontype.Binary, "b", llbson.AppendBinary(nil, 0x00, []byte{1, 2})))
		doc, err := ReadDocument(raw)
		require.NoError(t, err)
		for i := range raw {
			raw[i] = 0xEE
		}
		require.Equal(t, []byte{1, 2}, doc.Lookup("b").Binary().Data)
	})
}
