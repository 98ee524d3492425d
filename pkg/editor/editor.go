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

// Package editor performs the physical edits: detaching, inserting and
// deleting named units in container documents, and moving or deleting
// standalone resource files. The unit of atomicity is one file: it is either
// fully rewritten (or deleted) or left completely untouched.
package editor

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/resmv/resmv/pkg/dependency"
	"github.com/resmv/resmv/pkg/restype"
	"github.com/resmv/resmv/pkg/xmldoc"
)

// ✂️ Editor rewrites resource files at whole-unit granularity
type Editor struct{}

// New creates an editor.
func New() *Editor {
	return &Editor{}
}

// ApplyMove relocates every unit of fromFile whose (type, name) is in names
// into toFile, comments and indentation attached, and returns how many units
// moved. A source emptied of children is deleted; a missing destination is
// synthesized first. A file with no matching unit is left untouched.
func (e *Editor) ApplyMove(ctx context.Context, fromFile, toFile string, names dependency.Set, filter restype.Filter) (int, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(fromFile)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", fromFile, err)
	}
	src, err := xmldoc.Parse(data)
	if err != nil {
		return 0, errors.Errorf("parsing %s: %w", fromFile, err)
	}

	var detached []xmldoc.Node
	count := 0
	for i := 0; i < len(src.Nodes); {
		node := src.Nodes[i]
		if node.Kind != xmldoc.NodeElement || !matches(node, names, filter) {
			i++
			continue
		}
		seq := src.Detach(i)
		detached = append(detached, seq...)
		count++
		i -= len(seq) - 1
	}
	if count == 0 {
		return 0, nil
	}

	dst, err := loadOrSynthesize(toFile, src.RootTag())
	if err != nil {
		return 0, err
	}
	dst.Append(detached)
	dst.NormalizeLeading()
	dst.EnsureTrailingNewline()

	if err := writeFileAtomic(toFile, dst.Serialize()); err != nil {
		return 0, err
	}
	logger.Debug().Str("file", toFile).Int("units", count).Msg("inserted units")

	if err := e.finishSource(ctx, fromFile, src); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyRemove deletes every unit of file whose type is filtered and whose
// name is neither kept nor matched by ignore, returning how many units were
// deleted. An untouched file is not rewritten; an emptied one is deleted.
func (e *Editor) ApplyRemove(ctx context.Context, file string, keep dependency.Set, filter restype.Filter, ignore *regexp.Regexp) (int, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", file, err)
	}
	doc, err := xmldoc.Parse(data)
	if err != nil {
		return 0, errors.Errorf("parsing %s: %w", file, err)
	}

	count := 0
	for i := 0; i < len(doc.Nodes); {
		node := doc.Nodes[i]
		if node.Kind != xmldoc.NodeElement || node.Name == "" {
			i++
			continue
		}
		t := restype.Classify(node.Tag)
		name := dependency.NormalizeName(node.Name)
		if !filter.Has(t) || keep.Contains(dependency.New(t, name)) ||
			(ignore != nil && ignore.MatchString(name)) {
			i++
			continue
		}
		seq := doc.Detach(i)
		count++
		i -= len(seq) - 1
	}
	if count == 0 {
		return 0, nil
	}

	if err := e.finishSource(ctx, file, doc); err != nil {
		return 0, err
	}
	return count, nil
}

// MoveStandalone relocates a whole-file resource. A move onto an existing
// destination path is refused (reported as not moved) to avoid a silent
// overwrite.
func (e *Editor) MoveStandalone(ctx context.Context, fromPath, toPath string) (bool, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Stat(toPath); err == nil {
		logger.Warn().Str("from", fromPath).Str("to", toPath).Msg("destination exists, refusing to overwrite")
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Errorf("checking %s: %w", toPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(toPath), 0755); err != nil {
		return false, errors.Errorf("creating %s: %w", filepath.Dir(toPath), err)
	}
	if err := os.Rename(fromPath, toPath); err != nil {
		return false, errors.Errorf("moving %s: %w", fromPath, err)
	}
	logger.Debug().Str("from", fromPath).Str("to", toPath).Msg("moved file")
	return true, nil
}

// RemoveStandalone deletes a whole-file resource.
func (e *Editor) RemoveStandalone(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Errorf("deleting %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("deleted file")
	return nil
}

// finishSource rewrites a mutated container, or deletes it when no element
// children remain: an emptied container must not stay on disk.
func (e *Editor) finishSource(ctx context.Context, file string, doc *xmldoc.Document) error {
	logger := zerolog.Ctx(ctx)
	if doc.ElementCount() == 0 {
		if err := os.Remove(file); err != nil {
			return errors.Errorf("deleting emptied %s: %w", file, err)
		}
		logger.Debug().Str("file", file).Msg("deleted emptied container")
		return nil
	}
	if err := writeFileAtomic(file, doc.Serialize()); err != nil {
		return err
	}
	logger.Debug().Str("file", file).Msg("rewrote container")
	return nil
}

func matches(node xmldoc.Node, names dependency.Set, filter restype.Filter) bool {
	if node.Name == "" {
		return false
	}
	t := restype.Classify(node.Tag)
	if !filter.Has(t) {
		return false
	}
	return names.Contains(dependency.New(t, node.Name))
}

func loadOrSynthesize(path, rootTag string) (*xmldoc.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return xmldoc.Synthesize(rootTag), nil
	}
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	doc, err := xmldoc.Parse(data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// writeFileAtomic writes via a temp file and rename so a file is never left
// half-written.
func writeFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
