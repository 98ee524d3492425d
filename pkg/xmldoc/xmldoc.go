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

// Package xmldoc models a resource container document as an ordered list of
// typed nodes, each carrying its exact source byte span. Serialization is
// concatenation of spans, so everything not detached or inserted stays
// byte-identical, including character-reference spellings, attribute quoting
// and self-closing forms.
package xmldoc

import "strings"

// 🧩 NodeKind discriminates the node variants of a container document
type NodeKind int

const (
	NodeText    NodeKind = iota // character data between units, usually whitespace
	NodeComment                 // <!-- ... -->
	NodeElement                 // one whole named unit, nested content included
)

// 🧩 Node is one child of the container root
type Node struct {
	Kind NodeKind
	Raw  string // exact source span
	Tag  string // element tag, "" otherwise
	Name string // decoded name="..." attribute value, "" if absent
}

// IsWhitespace reports whether the node is text consisting only of whitespace.
func (n Node) IsWhitespace() bool {
	return n.Kind == NodeText && strings.TrimSpace(n.Raw) == ""
}

// 📄 Document is a parsed container document
type Document struct {
	prolog    string // bytes before the root open tag (declaration, comments)
	rootOpen  string // the root open tag, verbatim
	rootTag   string
	rootClose string // the root close tag plus any trailing bytes
	Nodes     []Node
}

// RootTag returns the tag of the container root element.
func (d *Document) RootTag() string {
	return d.rootTag
}

// ElementCount returns the number of element children.
func (d *Document) ElementCount() int {
	n := 0
	for _, node := range d.Nodes {
		if node.Kind == NodeElement {
			n++
		}
	}
	return n
}

// Serialize reassembles the document from its spans.
func (d *Document) Serialize() []byte {
	var b strings.Builder
	b.WriteString(d.prolog)
	b.WriteString(d.rootOpen)
	for _, n := range d.Nodes {
		b.WriteString(n.Raw)
	}
	b.WriteString(d.rootClose)
	return []byte(b.String())
}

// Detach removes the node at index i together with its attached surroundings
// and returns the removed nodes in original order: the whitespace-only node
// immediately preceding the unit; and, when the node before that whitespace
// is a comment, the comment plus its own preceding whitespace-only node.
func (d *Document) Detach(i int) []Node {
	start := i
	if start > 0 && d.Nodes[start-1].IsWhitespace() {
		start--
		if start > 0 && d.Nodes[start-1].Kind == NodeComment {
			start--
			if start > 0 && d.Nodes[start-1].IsWhitespace() {
				start--
			}
		}
	}
	detached := make([]Node, i+1-start)
	copy(detached, d.Nodes[start:i+1])
	d.Nodes = append(d.Nodes[:start], d.Nodes[i+1:]...)
	return detached
}

// Append adds a detached sequence before the root close tag, in order. A
// sequence that does not begin with whitespace gets a standard indent node
// first so it never butts against the previous sibling.
func (d *Document) Append(nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	if !nodes[0].IsWhitespace() {
		d.Nodes = append(d.Nodes, Node{Kind: NodeText, Raw: "\n" + standardIndent})
	}
	d.Nodes = append(d.Nodes, nodes...)
}

const standardIndent = "    "

// NormalizeLeading collapses the document's leading whitespace run into one
// standardized indentation node. Called after all insertions for a file.
func (d *Document) NormalizeLeading() {
	i := 0
	for i < len(d.Nodes) && d.Nodes[i].IsWhitespace() {
		i++
	}
	lead := Node{Kind: NodeText, Raw: "\n" + standardIndent}
	d.Nodes = append([]Node{lead}, d.Nodes[i:]...)
}

// EnsureTrailingNewline makes the serialized form end with exactly one newline.
func (d *Document) EnsureTrailingNewline() {
	d.rootClose = strings.TrimRight(d.rootClose, " \t\r\n") + "\n"
}

// Synthesize builds a minimal empty container document with the given root.
func Synthesize(rootTag string) *Document {
	return &Document{
		prolog:    "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n",
		rootOpen:  "<" + rootTag + ">",
		rootTag:   rootTag,
		rootClose: "</" + rootTag + ">\n",
		Nodes:     []Node{{Kind: NodeText, Raw: "\n"}},
	}
}
