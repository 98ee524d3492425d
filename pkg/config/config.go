// Copyright 2025 the resmv authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates move/remove job files. Validation runs
// before any filesystem mutation: a bad job file never touches the tree.
package config

import (
	"context"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/restype"
)

// 🔌 Parser is the interface for job-file parsers
type Parser interface {
	// Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered parsers
var parsers []Parser

// Register registers a parser.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns a parser that can handle the given file.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🚚 MoveJob describes one relocation run
type MoveJob struct {
	Source       string   `hcl:"source" yaml:"source"`
	Destinations []string `hcl:"destinations" yaml:"destinations"`
	Protected    []string `hcl:"protected,optional" yaml:"protected,omitempty"`
	IncludeTypes []string `hcl:"include_types,optional" yaml:"include_types,omitempty"`
	ExcludeTypes []string `hcl:"exclude_types,optional" yaml:"exclude_types,omitempty"`
	MaxRounds    int      `hcl:"max_rounds,optional" yaml:"max_rounds,omitempty"`
}

// 🗑️ RemoveJob describes one deletion run
type RemoveJob struct {
	Target        string   `hcl:"target" yaml:"target"`
	Protected     []string `hcl:"protected,optional" yaml:"protected,omitempty"`
	IncludeTypes  []string `hcl:"include_types,optional" yaml:"include_types,omitempty"`
	ExcludeTypes  []string `hcl:"exclude_types,optional" yaml:"exclude_types,omitempty"`
	MaxRounds     int      `hcl:"max_rounds,optional" yaml:"max_rounds,omitempty"`
	IgnorePattern string   `hcl:"ignore_pattern,optional" yaml:"ignore_pattern,omitempty"`
}

// 📚 Config is a complete job file
type Config struct {
	Move   *MoveJob   `hcl:"move,block" yaml:"move,omitempty"`
	Remove *RemoveJob `hcl:"remove,block" yaml:"remove,omitempty"`
}

// Load reads, parses and validates a job file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading job file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration without touching the filesystem.
func (cfg *Config) Validate() error {
	if cfg.Move == nil && cfg.Remove == nil {
		return errors.Errorf("a move or remove job is required")
	}
	if cfg.Move != nil {
		if cfg.Move.Source == "" {
			return errors.Errorf("move.source is required")
		}
		if len(cfg.Move.Destinations) == 0 {
			return errors.Errorf("move.destinations requires at least one entry")
		}
		if _, err := deriveFilter(cfg.Move.IncludeTypes, cfg.Move.ExcludeTypes); err != nil {
			return errors.Errorf("move: %w", err)
		}
	}
	if cfg.Remove != nil {
		if cfg.Remove.Target == "" {
			return errors.Errorf("remove.target is required")
		}
		if _, err := deriveFilter(cfg.Remove.IncludeTypes, cfg.Remove.ExcludeTypes); err != nil {
			return errors.Errorf("remove: %w", err)
		}
		if _, err := cfg.Remove.IgnoreRegexp(); err != nil {
			return err
		}
	}
	return nil
}

// deriveFilter turns an include or exclude list into the operation filter.
// Supplying both is a configuration error; supplying neither means all types.
func deriveFilter(include, exclude []string) (restype.Filter, error) {
	switch {
	case len(include) > 0 && len(exclude) > 0:
		return nil, errors.Errorf("include_types and exclude_types are mutually exclusive")
	case len(include) > 0:
		return restype.FromInclude(include)
	case len(exclude) > 0:
		return restype.FromExclude(exclude)
	default:
		return restype.AllFilter(), nil
	}
}

// TypeFilter derives the move job's type filter.
func (j *MoveJob) TypeFilter() (restype.Filter, error) {
	return deriveFilter(j.IncludeTypes, j.ExcludeTypes)
}

// TypeFilter derives the remove job's type filter.
func (j *RemoveJob) TypeFilter() (restype.Filter, error) {
	return deriveFilter(j.IncludeTypes, j.ExcludeTypes)
}

// IgnoreRegexp compiles the optional ignore pattern, nil when unset.
func (j *RemoveJob) IgnoreRegexp() (*regexp.Regexp, error) {
	if j.IgnorePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(j.IgnorePattern)
	if err != nil {
		return nil, errors.Errorf("compiling ignore_pattern: %w", err)
	}
	return re, nil
}
