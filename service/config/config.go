// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config is the CLI-facing collaborator that turns an on-disk
// YAML configuration file into a validated config.Config. Parsing a
// config file's on-disk shape is explicitly the front-end's job, not
// the core's.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/wire"
)

// fileField/fileTable/fileConfig mirror the YAML document shape. They
// exist only to decouple the on-disk representation (string type names,
// string durations) from config.Config's parsed, validated fields.
type fileField struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Format  string `yaml:"format"`
	PrimKey bool   `yaml:"prim_key"`
}

type fileTable struct {
	Name    string      `yaml:"name"`
	Source  string      `yaml:"source"`
	Headers bool        `yaml:"headers"`
	Fields  []fileField `yaml:"fields"`
}

type fileCompression struct {
	Enabled bool `yaml:"enabled"`
	Level   int  `yaml:"level"`
}

type fileTruncation struct {
	MaxBlocks *int   `yaml:"max_blocks"`
	MaxAge    string `yaml:"max_age"`
}

type fileConfig struct {
	WorkDir     string          `yaml:"work_dir"`
	Tables      []fileTable     `yaml:"tables"`
	Compression fileCompression `yaml:"compression"`
	Truncation  fileTruncation  `yaml:"truncation"`
}

// Load reads and parses the YAML file at path into a validated
// config.Config. WorkDir, if relative in the file, is resolved against
// the config file's own directory rather than the process's working
// directory, so a config file remains portable with the tree it sits in.
func Load(path string) (config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, coreerr.New(coreerr.Io, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return config.Config{}, coreerr.Newf(coreerr.Config, "config: parsing %s: %v", path, err)
	}

	workDir := fc.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(path)
	} else {
		workDir = resolveDir(path, workDir)
	}

	cfg := config.Config{
		WorkDir: workDir,
		Compression: wire.Compression{
			Enabled: fc.Compression.Enabled,
			Level:   fc.Compression.Level,
		},
	}

	cfg.Tables = make([]schema.Table, len(fc.Tables))
	for i, ft := range fc.Tables {
		fields := make([]schema.Field, len(ft.Fields))
		for j, ff := range ft.Fields {
			typ, err := parseType(ff.Type)
			if err != nil {
				return config.Config{}, err
			}
			fields[j] = schema.Field{Name: ff.Name, Type: typ, Format: ff.Format, PrimKey: ff.PrimKey}
		}
		cfg.Tables[i] = schema.Table{
			Name:    ft.Name,
			Source:  resolveDir(path, ft.Source),
			Headers: ft.Headers,
			Fields:  fields,
		}
	}

	if fc.Truncation.MaxBlocks != nil {
		cfg.Truncation.MaxBlocks = fc.Truncation.MaxBlocks
	}
	if fc.Truncation.MaxAge != "" {
		d, err := config.ParseDuration(fc.Truncation.MaxAge)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Truncation.MaxAge = &d
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDir resolves rel against configPath's directory unless rel is
// already absolute or empty.
func resolveDir(configPath, rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(filepath.Dir(configPath), rel)
}

func parseType(name string) (schema.Type, error) {
	switch name {
	case "text":
		return schema.Text, nil
	case "integer":
		return schema.Integer, nil
	case "float":
		return schema.Float, nil
	case "boolean":
		return schema.Boolean, nil
	case "binary":
		return schema.Binary, nil
	case "date":
		return schema.Date, nil
	case "time":
		return schema.Time, nil
	case "datetime":
		return schema.DateTime, nil
	default:
		return 0, coreerr.Newf(coreerr.Config, "config: unknown field type %q", name)
	}
}
