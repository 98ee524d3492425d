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

// Package scanner extracts the set of resources a module references anywhere
// in its source and markup files.
package scanner

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/dependency"
	"github.com/resmv/resmv/pkg/restype"
)

// eligiblePatterns selects the source/markup files worth scanning.
var eligiblePatterns = []string{"*.kt", "*.java", "*.xml"}

// 📐 rule is one extraction pattern: a matcher plus a result builder. New
// reference syntaxes are added by appending a rule, not by new control flow.
type rule struct {
	pattern *regexp.Regexp
	build   func(match []string) (dependency.Dependency, bool)
}

var rules = []rule{
	{
		// Code usage: a raw type name followed by .identifier (R.string.app_name).
		// Matches whose type token does not classify are dropped silently.
		pattern: regexp.MustCompile(`\b([a-z]+)\.([A-Za-z_][A-Za-z0-9_]*)`),
		build: func(m []string) (dependency.Dependency, bool) {
			t := restype.Classify(m[1])
			if t == restype.TypeNone {
				return dependency.Dependency{}, false
			}
			return dependency.New(t, m[2]), true
		},
	},
	{
		// Markup usage: @drawable/ic_star.
		pattern: regexp.MustCompile(`@([a-z]+)/([A-Za-z0-9_.]+)`),
		build: func(m []string) (dependency.Dependency, bool) {
			t := restype.Classify(m[1])
			if t == restype.TypeNone {
				return dependency.Dependency{}, false
			}
			return dependency.New(t, m[2]), true
		},
	},
	{
		// Style inheritance: parent="Widget.Button".
		pattern: regexp.MustCompile(`parent\s*=\s*"([^"]+)"`),
		build: func(m []string) (dependency.Dependency, bool) {
			name := strings.TrimPrefix(m[1], "@style/")
			return dependency.New(restype.TypeStyle, name), true
		},
	},
	{
		// Generated binding usage: databinding.MainActivityBinding recovers
		// the originating layout name main_activity.
		pattern: regexp.MustCompile(`databinding\.([A-Z][A-Za-z0-9]*)Binding\b`),
		build: func(m []string) (dependency.Dependency, bool) {
			return dependency.New(restype.TypeLayout, pascalToSnake(m[1])), true
		},
	},
}

// 🔍 Scan walks the module's src tree and unions the results of every
// extraction rule over every line of every eligible file. A missing src
// directory contributes an empty set; an unreadable file aborts the scan.
func Scan(ctx context.Context, dir string) (dependency.Set, error) {
	logger := zerolog.Ctx(ctx)
	deps := dependency.NewSet()

	srcRoot := filepath.Join(dir, "src")
	if _, err := os.Stat(srcRoot); os.IsNotExist(err) {
		logger.Debug().Str("dir", dir).Msg("no src directory, empty dependency set")
		return deps, nil
	}

	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() || !eligible(d.Name()) {
			return nil
		}
		if err := scanFile(path, deps); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("dir", dir).Int("dependencies", deps.Len()).Msg("scanned module")
	return deps, nil
}

func eligible(name string) bool {
	for _, pattern := range eligiblePatterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func scanFile(path string, deps dependency.Set) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		for _, r := range rules {
			for _, m := range r.pattern.FindAllStringSubmatch(line, -1) {
				if dep, ok := r.build(m); ok {
					deps.Add(dep)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// pascalToSnake lowercases the leading uppercase run and inserts an
// underscore before each subsequent uppercase letter.
func pascalToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
