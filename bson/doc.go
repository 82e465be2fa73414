// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for reading, writing, and manipulating BSON documents.
//
// A Document is an ordered map from string keys to Values. Keys are unique and keep the
// position of their first insertion, so encoding a Document writes its elements in the order
// they were added. A Value holds exactly one of the BSON types listed in package bsontype and
// is built with constructor functions:
//
//		doc := bson.NewDocument().
//			Set("name", bson.String("gopher")).
//			Set("tags", bson.EmbedArray(bson.NewArray(bson.String("a"), bson.String("b")))).
//			Set("_id", bson.ObjectID(objectid.New()))
//
// Documents are written with EncodeDocument, an Encoder or MarshalBSON, and read back with
// DecodeDocument, a Decoder or ReadDocument:
//
//		var buf bytes.Buffer
//		if err := bson.EncodeDocument(&buf, doc); err != nil { return err }
//		doc2, err := bson.DecodeDocument(&buf)
//		if err != nil { return err }
//		name, err := doc2.GetString("name")
//
// The decoder validates every length, terminator and type byte and never panics on malformed
// input. Keys and strings must be valid UTF-8 unless the document is read with
// DecodeDocumentUTF8Lossy or a Decoder configured with UTF8Lossy, which replace invalid
// sequences with U+FFFD.
//
// ToBson and FromBson convert between Values and plain Go values such as maps, slices and
// numbers. MarshalExtJSON renders Values and Documents as MongoDB Extended JSON.
package bson
