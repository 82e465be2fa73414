// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bufio"
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/bsondoc/bson"
)

// queueSize is the number of decoded documents that may wait for the writer.
const queueSize = 16

type dumper struct {
	cfg      Config
	validate bool
	log      logrus.FieldLogger
}

// dump decodes the documents in r and writes them to w, one extended JSON document per line.
// Decoding and formatting run concurrently. It returns the number of documents handled before
// the first error; documents before a malformed one are still written.
func (d *dumper) dump(ctx context.Context, name string, r io.Reader, w io.Writer) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	docs := make(chan *bson.Document, queueSize)

	g.Go(func() error {
		defer close(docs)

		dec := bson.NewDecoder(r)
		if d.cfg.Lossy {
			dec.UTF8Lossy()
		}
		if d.cfg.MaxDocumentSize > 0 {
			dec.SetMaxDocumentSize(d.cfg.MaxDocumentSize)
		}

		for n := 1; ; n++ {
			doc, err := dec.Decode()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "%s: document %d", name, n)
			}
			d.log.WithFields(logrus.Fields{"file": name, "document": n, "elements": doc.Len()}).Trace("decoded document")

			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	var count int
	g.Go(func() error {
		bw := bufio.NewWriter(w)
		for doc := range docs {
			count++
			if d.validate {
				continue
			}

			b, err := doc.MarshalExtJSON(d.cfg.Canonical)
			if err != nil {
				return errors.Wrapf(err, "%s: document %d", name, count)
			}
			if d.cfg.Pretty {
				b = bson.PrettyExtJSON(b)
			} else {
				b = append(b, '\n')
			}
			if _, err := bw.Write(b); err != nil {
				return errors.Wrap(err, "cannot write output")
			}
		}
		return errors.Wrap(bw.Flush(), "cannot write output")
	})

	err := g.Wait()
	return count, err
}
