package xmldoc

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Parse lexes a container document into its node list. The lexer works over
// raw bytes and never re-encodes anything; each node keeps the exact span it
// was read from. Malformed markup is a fatal parse error.
func Parse(data []byte) (*Document, error) {
	src := string(data)

	rootStart, err := skipProlog(src)
	if err != nil {
		return nil, err
	}

	rootTag := tagNameAt(src, rootStart)
	if rootTag == "" {
		return nil, errors.Errorf("no root element found")
	}

	openEnd, selfClosing, err := scanTag(src, rootStart)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		prolog:  src[:rootStart],
		rootTag: rootTag,
	}

	if selfClosing {
		// Expanded so children can be appended. Harmless for fidelity: a
		// document that is never mutated is never rewritten.
		open := src[rootStart:openEnd]
		doc.rootOpen = strings.TrimRight(strings.TrimSuffix(open, "/>"), " \t") + ">"
		doc.rootClose = "</" + rootTag + ">" + src[openEnd:]
		return doc, nil
	}
	doc.rootOpen = src[rootStart:openEnd]

	i := openEnd
	for {
		if i >= len(src) {
			return nil, errors.Errorf("unexpected end of document: missing </%s>", rootTag)
		}
		if strings.HasPrefix(src[i:], "</") {
			if tagNameAt(src, i+1) != rootTag {
				return nil, errors.Errorf("unexpected close tag at offset %d", i)
			}
			doc.rootClose = src[i:]
			return doc, nil
		}
		var node Node
		var next int
		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			end := strings.Index(src[i:], "-->")
			if end < 0 {
				return nil, errors.Errorf("unterminated comment at offset %d", i)
			}
			next = i + end + len("-->")
			node = Node{Kind: NodeComment, Raw: src[i:next]}
		case src[i] == '<':
			next, err = scanElement(src, i)
			if err != nil {
				return nil, err
			}
			raw := src[i:next]
			node = Node{
				Kind: NodeElement,
				Raw:  raw,
				Tag:  tagNameAt(src, i),
				Name: nameAttr(raw),
			}
		default:
			end := strings.IndexByte(src[i:], '<')
			if end < 0 {
				return nil, errors.Errorf("unexpected end of document: missing </%s>", rootTag)
			}
			next = i + end
			node = Node{Kind: NodeText, Raw: src[i:next]}
		}
		doc.Nodes = append(doc.Nodes, node)
		i = next
	}
}

// skipProlog returns the offset of the root element's open tag, stepping over
// the XML declaration, doctype, comments and whitespace before it.
func skipProlog(src string) (int, error) {
	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "<?"):
			end := strings.Index(src[i:], "?>")
			if end < 0 {
				return 0, errors.Errorf("unterminated processing instruction at offset %d", i)
			}
			i += end + len("?>")
		case strings.HasPrefix(src[i:], "<!--"):
			end := strings.Index(src[i:], "-->")
			if end < 0 {
				return 0, errors.Errorf("unterminated comment at offset %d", i)
			}
			i += end + len("-->")
		case strings.HasPrefix(src[i:], "<!"):
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return 0, errors.Errorf("unterminated doctype at offset %d", i)
			}
			i += end + 1
		case src[i] == '<':
			return i, nil
		default:
			if !isSpace(src[i]) {
				return 0, errors.Errorf("unexpected character %q before root element", src[i])
			}
			i++
		}
	}
	return 0, errors.Errorf("no root element found")
}

// scanTag scans one tag starting at '<' and returns the offset just past its
// closing '>', honoring quoted attribute values.
func scanTag(src string, start int) (end int, selfClosing bool, err error) {
	i := start + 1
	var quote byte
	for i < len(src) {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1, src[i-1] == '/', nil
		}
		i++
	}
	return 0, false, errors.Errorf("unterminated tag at offset %d", start)
}

// scanElement scans a whole element (nested content included) starting at '<'
// and returns the offset just past it.
func scanElement(src string, start int) (int, error) {
	tag := tagNameAt(src, start)
	if tag == "" {
		return 0, errors.Errorf("malformed tag at offset %d", start)
	}
	end, selfClosing, err := scanTag(src, start)
	if err != nil {
		return 0, err
	}
	if selfClosing {
		return end, nil
	}

	depth := 1
	i := end
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			off := strings.Index(src[i:], "-->")
			if off < 0 {
				return 0, errors.Errorf("unterminated comment at offset %d", i)
			}
			i += off + len("-->")
		case strings.HasPrefix(src[i:], "<![CDATA["):
			off := strings.Index(src[i:], "]]>")
			if off < 0 {
				return 0, errors.Errorf("unterminated CDATA section at offset %d", i)
			}
			i += off + len("]]>")
		case strings.HasPrefix(src[i:], "<?"):
			off := strings.Index(src[i:], "?>")
			if off < 0 {
				return 0, errors.Errorf("unterminated processing instruction at offset %d", i)
			}
			i += off + len("?>")
		case strings.HasPrefix(src[i:], "</"):
			tagEnd, _, err := scanTag(src, i)
			if err != nil {
				return 0, err
			}
			depth--
			if depth == 0 {
				return tagEnd, nil
			}
			i = tagEnd
		case src[i] == '<':
			tagEnd, closed, err := scanTag(src, i)
			if err != nil {
				return 0, err
			}
			if !closed {
				depth++
			}
			i = tagEnd
		default:
			i++
		}
	}
	return 0, errors.Errorf("unterminated element <%s> at offset %d", tag, start)
}

// tagNameAt reads the tag name following the '<' (or '</') at offset i.
func tagNameAt(src string, i int) string {
	j := i + 1
	if j < len(src) && src[j] == '/' {
		j++
	}
	k := j
	for k < len(src) && isNameByte(src[k]) {
		k++
	}
	return src[j:k]
}

// nameAttr extracts the decoded value of the name attribute from an element's
// opening tag, or "" when absent.
func nameAttr(raw string) string {
	end, _, err := scanTag(raw, 0)
	if err != nil {
		end = len(raw)
	}
	open := raw[:end]

	for i := 0; i < len(open); {
		j := strings.Index(open[i:], "name")
		if j < 0 {
			return ""
		}
		j += i
		// Must be a standalone attribute token, not android:name or a substring.
		if j > 0 && (isNameByte(open[j-1]) || open[j-1] == ':') {
			i = j + len("name")
			continue
		}
		k := j + len("name")
		for k < len(open) && isSpace(open[k]) {
			k++
		}
		if k >= len(open) || open[k] != '=' {
			i = j + len("name")
			continue
		}
		k++
		for k < len(open) && isSpace(open[k]) {
			k++
		}
		if k >= len(open) || (open[k] != '"' && open[k] != '\'') {
			i = j + len("name")
			continue
		}
		quote := open[k]
		k++
		v := strings.IndexByte(open[k:], quote)
		if v < 0 {
			return ""
		}
		return decodeEntities(open[k : k+v])
	}
	return ""
}

// decodeEntities resolves the predefined and numeric character references in
// an attribute value.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		ref := s[i+1 : i+end]
		switch {
		case ref == "amp":
			b.WriteByte('&')
		case ref == "lt":
			b.WriteByte('<')
		case ref == "gt":
			b.WriteByte('>')
		case ref == "quot":
			b.WriteByte('"')
		case ref == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(ref, "#x") || strings.HasPrefix(ref, "#X"):
			if n, err := strconv.ParseInt(ref[2:], 16, 32); err == nil {
				b.WriteRune(rune(n))
			} else {
				b.WriteString(s[i : i+end+1])
			}
		case strings.HasPrefix(ref, "#"):
			if n, err := strconv.ParseInt(ref[1:], 10, 32); err == nil {
				b.WriteRune(rune(n))
			} else {
				b.WriteString(s[i : i+end+1])
			}
		default:
			b.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.' || c == ':'
}
