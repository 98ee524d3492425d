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

// Package module wraps a directory with its freshly computed reference set.
// Modules are derived values: prior-round edits change what a directory
// references or exposes, so callers resolve again every round and never
// reuse a Module across rounds.
package module

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/dependency"
	"github.com/resmv/resmv/pkg/restype"
	"github.com/resmv/resmv/pkg/scanner"
	"github.com/resmv/resmv/pkg/xmldoc"
)

// 📦 Module is a directory plus its current-round dependency set
type Module struct {
	Root string
	Deps dependency.Set
}

// 🗂️ Defined is one resource definition found on disk
type Defined struct {
	Type       restype.Type
	Name       string
	Path       string // file holding the definition
	Standalone bool   // whole-file resource vs container child
}

// Dependency returns the (type, name) identity of the definition.
func (d Defined) Dependency() dependency.Dependency {
	return dependency.New(d.Type, d.Name)
}

// ResRoot returns the resource root of a module directory.
func ResRoot(dir string) string {
	return filepath.Join(dir, "src", "main", "res")
}

// 🔄 Resolve scans the directory's current on-disk state. The dependency set
// is deliberately unfiltered: protection must consider every reference, not
// just the types an operation is allowed to touch.
func Resolve(ctx context.Context, dir string) (*Module, error) {
	deps, err := scanner.Scan(ctx, dir)
	if err != nil {
		return nil, errors.Errorf("resolving module %s: %w", dir, err)
	}
	return &Module{Root: dir, Deps: deps}, nil
}

// ResolveAll resolves several directories in order.
func ResolveAll(ctx context.Context, dirs []string) ([]*Module, error) {
	modules := make([]*Module, 0, len(dirs))
	for _, dir := range dirs {
		m, err := Resolve(ctx, dir)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// 📋 ListDefined enumerates every defined resource of a filtered type under
// the module's res tree. A missing res root or qualifier variant contributes
// nothing rather than erroring. The result is ordered by path then name so
// rounds behave deterministically.
func ListDefined(ctx context.Context, dir string, filter restype.Filter) ([]Defined, error) {
	logger := zerolog.Ctx(ctx)
	resRoot := ResRoot(dir)

	entries, err := os.ReadDir(resRoot)
	if os.IsNotExist(err) {
		logger.Debug().Str("dir", dir).Msg("no res directory")
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading res directory %s: %w", resRoot, err)
	}

	var defined []Defined
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subdir := filepath.Join(resRoot, entry.Name())
		if isValuesDir(entry.Name()) {
			units, err := listContainerDefined(subdir, filter)
			if err != nil {
				return nil, err
			}
			defined = append(defined, units...)
			continue
		}
		t := restype.ClassifyDir(entry.Name())
		if !filter.Has(t) {
			continue
		}
		files, err := listStandaloneDefined(subdir, t)
		if err != nil {
			return nil, err
		}
		defined = append(defined, files...)
	}

	// Stable by path, keeping document order within one file.
	sort.SliceStable(defined, func(i, j int) bool {
		return defined[i].Path < defined[j].Path
	})
	return defined, nil
}

func isValuesDir(name string) bool {
	return name == "values" || strings.HasPrefix(name, "values-")
}

func listStandaloneDefined(dir string, t restype.Type) ([]Defined, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading resource directory %s: %w", dir, err)
	}
	var defined []Defined
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		defined = append(defined, Defined{
			Type:       t,
			Name:       StandaloneName(entry.Name()),
			Path:       filepath.Join(dir, entry.Name()),
			Standalone: true,
		})
	}
	return defined, nil
}

// StandaloneName strips everything from the first dot of a resource filename
// (ic_star.9.png -> ic_star), matching how references name the asset.
func StandaloneName(filename string) string {
	if i := strings.IndexByte(filename, '.'); i >= 0 {
		return filename[:i]
	}
	return filename
}

func listContainerDefined(dir string, filter restype.Filter) ([]Defined, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading values directory %s: %w", dir, err)
	}
	var defined []Defined
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", path, err)
		}
		doc, err := xmldoc.Parse(data)
		if err != nil {
			return nil, errors.Errorf("parsing %s: %w", path, err)
		}
		for _, node := range doc.Nodes {
			if node.Kind != xmldoc.NodeElement || node.Name == "" {
				continue
			}
			t := restype.Classify(node.Tag)
			if !filter.Has(t) {
				continue
			}
			defined = append(defined, Defined{
				Type: t,
				Name: dependency.NormalizeName(node.Name),
				Path: path,
			})
		}
	}
	return defined, nil
}
