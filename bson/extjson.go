// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"

	"github.com/ikmak/bsondoc/bson/bsontype"
)

// rfc3339Milli is the relaxed extended JSON layout for datetimes between 1970 and 9999.
const rfc3339Milli = "2006-01-02T15:04:05.999Z07:00"

// MarshalExtJSON returns the MongoDB Extended JSON v2 form of v. If canonical is true the
// canonical form is used, which keeps the exact BSON type of every number; otherwise the
// relaxed form is used.
func (v Value) MarshalExtJSON(canonical bool) ([]byte, error) {
	w := extJSONWriter{canonical: canonical}
	if err := w.writeValue(v, 0); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// MarshalExtJSON returns the MongoDB Extended JSON v2 form of d.
func (d *Document) MarshalExtJSON(canonical bool) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	return EmbedDocument(d).MarshalExtJSON(canonical)
}

// PrettyExtJSON indents extended JSON produced by MarshalExtJSON. Key order is preserved.
func PrettyExtJSON(b []byte) []byte {
	return pretty.Pretty(b)
}

type extJSONWriter struct {
	buf       bytes.Buffer
	canonical bool
}

func (w *extJSONWriter) writeValue(v Value, depth int) error {
	switch v.Type() {
	case bsontype.Double:
		w.writeDouble(v.Double())
	case bsontype.String:
		w.writeStringLiteral(v.StringValue())
	case bsontype.EmbeddedDocument:
		return w.writeDocument(v.Document(), depth+1)
	case bsontype.Array:
		return w.writeArray(v.Array(), depth+1)
	case bsontype.Binary:
		bp := v.Binary()
		w.buf.WriteString(`{"$binary":{"base64":"`)
		w.buf.WriteString(base64.StdEncoding.EncodeToString(bp.Data))
		fmt.Fprintf(&w.buf, `","subType":"%02x"}}`, bp.Subtype)
	case bsontype.Undefined:
		w.buf.WriteString(`{"$undefined":true}`)
	case bsontype.ObjectID:
		w.buf.WriteString(`{"$oid":"`)
		w.buf.WriteString(v.ObjectID().Hex())
		w.buf.WriteString(`"}`)
	case bsontype.Boolean:
		w.buf.WriteString(strconv.FormatBool(v.Boolean()))
	case bsontype.DateTime:
		w.writeDateTime(v.DateTime())
	case bsontype.Null:
		w.buf.WriteString("null")
	case bsontype.Regex:
		rp := v.Regex()
		w.buf.WriteString(`{"$regularExpression":{"pattern":`)
		w.writeStringLiteral(rp.Pattern)
		w.buf.WriteString(`,"options":`)
		w.writeStringLiteral(rp.Options)
		w.buf.WriteString(`}}`)
	case bsontype.JavaScript:
		w.buf.WriteString(`{"$code":`)
		w.writeStringLiteral(v.JavaScript())
		w.buf.WriteByte('}')
	case bsontype.Symbol:
		w.buf.WriteString(`{"$symbol":`)
		w.writeStringLiteral(v.Symbol())
		w.buf.WriteByte('}')
	case bsontype.CodeWithScope:
		cws := v.CodeWithScope()
		w.buf.WriteString(`{"$code":`)
		w.writeStringLiteral(cws.Code)
		w.buf.WriteString(`,"$scope":`)
		if err := w.writeDocument(cws.Scope, depth+1); err != nil {
			return err
		}
		w.buf.WriteByte('}')
	case bsontype.Int32:
		w.writeInt("$numberInt", int64(v.Int32()))
	case bsontype.Timestamp:
		tp := v.Timestamp()
		fmt.Fprintf(&w.buf, `{"$timestamp":{"t":%d,"i":%d}}`, tp.T, tp.I)
	case bsontype.Int64:
		w.writeInt("$numberLong", v.Int64())
	case bsontype.Decimal128:
		w.buf.WriteString(`{"$numberDecimal":"`)
		w.buf.WriteString(v.Decimal128().String())
		w.buf.WriteString(`"}`)
	case bsontype.MinKey:
		w.buf.WriteString(`{"$minKey":1}`)
	case bsontype.MaxKey:
		w.buf.WriteString(`{"$maxKey":1}`)
	default:
		return fmt.Errorf("%w: type %s", ErrUnsupportedValue, v.Type())
	}
	return nil
}

func (w *extJSONWriter) writeDocument(d *Document, depth int) error {
	if depth > DefaultMaxDepth {
		return ErrMaxDepthExceeded
	}

	w.buf.WriteByte('{')
	for i, elem := range d.elems {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.writeStringLiteral(elem.Key)
		w.buf.WriteByte(':')
		if err := w.writeValue(elem.Value, depth); err != nil {
			return err
		}
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *extJSONWriter) writeArray(a *Array, depth int) error {
	if depth > DefaultMaxDepth {
		return ErrMaxDepthExceeded
	}

	w.buf.WriteByte('[')
	for i, val := range a.values {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.writeValue(val, depth); err != nil {
			return err
		}
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *extJSONWriter) writeInt(wrapper string, i int64) {
	if !w.canonical {
		w.buf.WriteString(strconv.FormatInt(i, 10))
		return
	}
	fmt.Fprintf(&w.buf, `{"%s":"%d"}`, wrapper, i)
}

func (w *extJSONWriter) writeDouble(f float64) {
	s := formatDouble(f)
	if !w.canonical && !math.IsNaN(f) && !math.IsInf(f, 0) {
		w.buf.WriteString(s)
		return
	}
	w.buf.WriteString(`{"$numberDouble":"`)
	w.buf.WriteString(s)
	w.buf.WriteString(`"}`)
}

func (w *extJSONWriter) writeDateTime(ms int64) {
	t := time.UnixMilli(ms).UTC()
	if !w.canonical && t.Year() >= 1970 && t.Year() <= 9999 {
		w.buf.WriteString(`{"$date":"`)
		w.buf.WriteString(t.Format(rfc3339Milli))
		w.buf.WriteString(`"}`)
		return
	}
	fmt.Fprintf(&w.buf, `{"$date":{"$numberLong":"%d"}}`, ms)
}

// formatDouble prints exactly one decimal place for integral values and otherwise as many
// digits as necessary to represent f exactly.
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return s
}

func (w *extJSONWriter) writeStringLiteral(s string) {
	const hex = "0123456789abcdef"

	w.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			w.buf.WriteByte('\\')
			w.buf.WriteByte(c)
		case c == '\n':
			w.buf.WriteString(`\n`)
		case c == '\r':
			w.buf.WriteString(`\r`)
		case c == '\t':
			w.buf.WriteString(`\t`)
		case c < 0x20:
			w.buf.WriteString(`\u00`)
			w.buf.WriteByte(hex[c>>4])
			w.buf.WriteByte(hex[c&0xF])
		default:
			w.buf.WriteByte(c)
		}
	}
	w.buf.WriteByte('"')
}
