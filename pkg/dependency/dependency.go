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

// Package dependency holds the (type, name) value discovered by scanning
// source and markup for resource usages, and the sets it is aggregated in.
package dependency

import (
	"fmt"
	"strings"

	"github.com/resmv/resmv/pkg/restype"
)

// 🔗 Dependency is one reference to a named, typed resource
type Dependency struct {
	Type restype.Type
	Name string
}

// NormalizeName replaces literal dots with underscores so markup and code
// references to the same logical asset compare equal.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// New builds a dependency with a normalized name.
func New(t restype.Type, name string) Dependency {
	return Dependency{Type: t, Name: NormalizeName(name)}
}

// String returns the @type/name spelling.
func (d Dependency) String() string {
	return fmt.Sprintf("@%s/%s", d.Type, d.Name)
}

// 📦 Set is an unordered collection of dependencies, unique by (type, name)
type Set map[Dependency]struct{}

// NewSet creates a set holding the given dependencies.
func NewSet(deps ...Dependency) Set {
	s := make(Set, len(deps))
	for _, d := range deps {
		s.Add(d)
	}
	return s
}

// Add inserts a dependency. TypeNone entries are never tracked.
func (s Set) Add(d Dependency) {
	if d.Type == restype.TypeNone {
		return
	}
	s[d] = struct{}{}
}

// Contains reports membership.
func (s Set) Contains(d Dependency) bool {
	_, ok := s[d]
	return ok
}

// Len returns the number of dependencies in the set.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set holding every dependency of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for d := range s {
		out[d] = struct{}{}
	}
	for d := range other {
		out[d] = struct{}{}
	}
	return out
}

// Diff returns a new set holding the dependencies of s absent from other.
func (s Set) Diff(other Set) Set {
	out := make(Set, len(s))
	for d := range s {
		if _, ok := other[d]; !ok {
			out[d] = struct{}{}
		}
	}
	return out
}

// Merge adds every dependency of other into s.
func (s Set) Merge(other Set) {
	for d := range other {
		s[d] = struct{}{}
	}
}
