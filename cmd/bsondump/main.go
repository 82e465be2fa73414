// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command bsondump prints a stream of concatenated BSON documents as extended JSON, one
// document per line.
//
//	bsondump [--pretty] [--canonical] [--lossy] [--max-size n] [--validate] [file ...]
//
// With no files, or with "-", the documents are read from stdin.
package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes bsondump and returns its exit status: 0 on success, 1 when a document could
// not be read or written and 2 for invalid arguments.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.WithError(err).Error("invalid arguments")
		return 2
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		log.WithError(err).Error("invalid arguments")
		return 2
	}
	log.SetLevel(level)

	files := opts.files
	if len(files) == 0 {
		files = []string{"-"}
	}

	d := &dumper{cfg: opts.Config, validate: opts.validate, log: log}
	total := 0
	for _, name := range files {
		n, err := dumpFile(ctx, d, name, stdin, stdout)
		total += n
		if err != nil {
			log.WithError(err).WithField("documents", total).Error("bsondump failed")
			return 1
		}
		log.WithFields(logrus.Fields{"file": name, "documents": n}).Debug("finished file")
	}

	if opts.validate {
		log.WithField("documents", total).Info("all documents are valid")
	}
	return 0
}

func dumpFile(ctx context.Context, d *dumper, name string, stdin io.Reader, stdout io.Writer) (int, error) {
	if name == "-" {
		return d.dump(ctx, "stdin", stdin, stdout)
	}

	f, err := os.Open(name)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot open %s", name)
	}
	defer f.Close()

	return d.dump(ctx, name, f, stdout)
}
