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

// Package operation drives the round-based fixed-point algorithm for the
// move and remove operations. Every round re-resolves all dependency sets
// from disk, because the previous round's file mutations are the input to
// the next round's decisions.
package operation

import (
	"path/filepath"
	"regexp"

	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/editor"
	"github.com/resmv/resmv/pkg/module"
	"github.com/resmv/resmv/pkg/restype"
	"github.com/resmv/resmv/pkg/status"
)

// DefaultMaxRounds caps the fixed-point loop when no limit is configured.
const DefaultMaxRounds = 10

// 🔧 MoveOptions configures a move operation
type MoveOptions struct {
	Source       string         // module whose resources are given away
	Destinations []string       // candidate receivers, at least one
	Protected    []string       // consumers whose references must survive
	Filter       restype.Filter // types the operation may touch; nil means all
	MaxRounds    int            // 0 means DefaultMaxRounds
	Reporter     *status.Reporter
}

// 🔧 RemoveOptions configures a remove operation
type RemoveOptions struct {
	Target        string
	Protected     []string
	Filter        restype.Filter
	MaxRounds     int
	IgnorePattern *regexp.Regexp // names matching it are never removed
	Reporter      *status.Reporter
}

// 🎯 Move is the dependency-aware relocation operator
type Move struct {
	opts   MoveOptions
	editor *editor.Editor
}

// 🎯 Remove is the dependency-aware deletion operator
type Remove struct {
	opts   RemoveOptions
	editor *editor.Editor
}

// NewMove validates the configuration and creates a move operator. All
// configuration errors are raised here, before any filesystem I/O.
func NewMove(opts MoveOptions) (*Move, error) {
	if opts.Source == "" {
		return nil, errors.Errorf("source directory is required")
	}
	if len(opts.Destinations) == 0 {
		return nil, errors.Errorf("at least one destination is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	if opts.Filter == nil {
		opts.Filter = restype.AllFilter()
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Move{opts: opts, editor: editor.New()}, nil
}

// NewRemove validates the configuration and creates a remove operator.
func NewRemove(opts RemoveOptions) (*Remove, error) {
	if opts.Target == "" {
		return nil, errors.Errorf("target directory is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	if opts.Filter == nil {
		opts.Filter = restype.AllFilter()
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Remove{opts: opts, editor: editor.New()}, nil
}

// relocatedPath maps a definition file under one module's res tree to the
// same res-relative location under another module.
func relocatedPath(fromRoot, toRoot, file string) (string, error) {
	rel, err := filepath.Rel(module.ResRoot(fromRoot), file)
	if err != nil {
		return "", errors.Errorf("relativizing %s: %w", file, err)
	}
	return filepath.Join(module.ResRoot(toRoot), rel), nil
}
