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

// Package restype classifies raw resource tokens into the closed set of
// resource types and back again.
package restype

import "strings"

// 🏷️ Type is one category of named resource
type Type int

const (
	TypeNone Type = iota // token outside the known set
	TypeAnim
	TypeAnimator
	TypeArray
	TypeAttr
	TypeBool
	TypeColor
	TypeDimen
	TypeDrawable
	TypeFont
	TypeInteger
	TypeLayout
	TypeMenu
	TypeMipmap
	TypePlurals
	TypeRaw
	TypeString
	TypeStyle
	TypeXML
)

// 🗺️ rawNames maps each type to the token used both as an XML tag/attribute
// token and as a res/ container directory name.
var rawNames = map[Type]string{
	TypeAnim:     "anim",
	TypeAnimator: "animator",
	TypeArray:    "array",
	TypeAttr:     "attr",
	TypeBool:     "bool",
	TypeColor:    "color",
	TypeDimen:    "dimen",
	TypeDrawable: "drawable",
	TypeFont:     "font",
	TypeInteger:  "integer",
	TypeLayout:   "layout",
	TypeMenu:     "menu",
	TypeMipmap:   "mipmap",
	TypePlurals:  "plurals",
	TypeRaw:      "raw",
	TypeString:   "string",
	TypeStyle:    "style",
	TypeXML:      "xml",
}

var typesByRaw = func() map[string]Type {
	m := make(map[string]Type, len(rawNames))
	for t, raw := range rawNames {
		m[raw] = t
	}
	return m
}()

// containerTypes are defined as named children of a values/*.xml document
// rather than as whole files.
var containerTypes = map[Type]bool{
	TypeArray:   true,
	TypeAttr:    true,
	TypeBool:    true,
	TypeColor:   true,
	TypeDimen:   true,
	TypeInteger: true,
	TypePlurals: true,
	TypeString:  true,
	TypeStyle:   true,
}

// RawName returns the canonical raw token for the type, or "" for TypeNone.
func (t Type) RawName() string {
	return rawNames[t]
}

// String returns the raw token, or "none".
func (t Type) String() string {
	if t == TypeNone {
		return "none"
	}
	return rawNames[t]
}

// IsContainer reports whether resources of this type live inside a values
// container document. Note that color is both: color state-list files under
// res/color/ and <color> entries in values files.
func (t Type) IsContainer() bool {
	return containerTypes[t]
}

// 🔍 Classify maps a raw token to its type. Unknown tokens yield TypeNone.
func Classify(token string) Type {
	return typesByRaw[token]
}

// 🔍 ClassifyDir maps a res/ subdirectory name to its type, stripping one
// -qualifier suffix first (drawable-hdpi -> drawable).
func ClassifyDir(name string) Type {
	if i := strings.IndexByte(name, '-'); i >= 0 {
		name = name[:i]
	}
	return Classify(name)
}

// AllTypes returns every known type in a stable order.
func AllTypes() []Type {
	types := make([]Type, 0, len(rawNames))
	for t := TypeAnim; t <= TypeXML; t++ {
		types = append(types, t)
	}
	return types
}
