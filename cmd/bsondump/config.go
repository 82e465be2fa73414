// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const defaultLogLevel = "info"

// Config holds the settings that may come from a TOML file. Command line flags take
// precedence over the file.
type Config struct {
	Pretty          bool   `toml:"pretty"`
	Canonical       bool   `toml:"canonical"`
	Lossy           bool   `toml:"lossy"`
	MaxDocumentSize int    `toml:"max_document_size"`
	LogLevel        string `toml:"log_level"`
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "cannot read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "cannot parse config file %s", path)
	}
	if cfg.MaxDocumentSize < 0 {
		return cfg, errors.Errorf("config file %s: max_document_size must not be negative", path)
	}
	cfg.setDefaults()
	return cfg, nil
}

type options struct {
	Config
	validate bool
	files    []string
}

// parseArgs parses the command line, merging in the config file named by --config.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := pflag.NewFlagSet("bsondump", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		io.WriteString(stderr, "Usage: bsondump [flags] [file ...]\n\n"+
			"Prints each BSON document read from the files, or stdin, as extended JSON.\n\n")
		fs.PrintDefaults()
	}

	var flags options
	configPath := fs.StringP("config", "c", "", "read settings from this TOML `file`")
	fs.BoolVarP(&flags.Pretty, "pretty", "p", false, "indent each document")
	fs.BoolVar(&flags.Canonical, "canonical", false, "print canonical instead of relaxed extended JSON")
	fs.BoolVar(&flags.Lossy, "lossy", false, "replace invalid UTF-8 with U+FFFD instead of failing")
	fs.IntVar(&flags.MaxDocumentSize, "max-size", 0, "reject documents larger than this many `bytes` (0 for no limit)")
	fs.BoolVar(&flags.validate, "validate", false, "only check the documents and report how many were read")
	fs.StringVar(&flags.LogLevel, "log-level", defaultLogLevel, "one of panic, fatal, error, warn, info, debug or trace")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{validate: flags.validate, files: fs.Args()}
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	} else {
		opts.Config = flags.Config
	}

	if fs.Changed("pretty") {
		opts.Pretty = flags.Pretty
	}
	if fs.Changed("canonical") {
		opts.Canonical = flags.Canonical
	}
	if fs.Changed("lossy") {
		opts.Lossy = flags.Lossy
	}
	if fs.Changed("max-size") {
		opts.MaxDocumentSize = flags.MaxDocumentSize
	}
	if fs.Changed("log-level") {
		opts.LogLevel = flags.LogLevel
	}
	if opts.MaxDocumentSize < 0 {
		return nil, errors.New("--max-size must not be negative")
	}
	opts.setDefaults()
	return opts, nil
}
