// Package typeparse parses nested type-descriptor strings into schema tree nodes.
//
// The supported grammar is the bracket-delimited form used by Unity Catalog
// type_text: STRUCT<name:type,...>, ARRAY<type>, MAP<keytype,valuetype>, and
// scalar tokens with optional parameters such as DECIMAL(10,2). Keywords are
// case-insensitive. Parsing is strict: malformed input fails with a
// domain.ParseError carrying the byte offset into the original string, and no
// placeholder nodes are ever fabricated.
package typeparse

import (
	"strings"

	"starspread/internal/domain"
)

// ParseColumn parses a raw type string into a schema tree node carrying the
// given column name and nullability. Nested nullability is fixed by kind:
// struct fields, array elements, and map values are nullable, map keys never.
func ParseColumn(name, raw string, nullable bool) (domain.ColumnNode, error) {
	p := &parser{input: raw}
	return p.parse(name, raw, nullable, 0)
}

// Parse parses a raw type string into an unnamed node. Callers that know the
// column name and nullability should use ParseColumn.
func Parse(raw string) (domain.ColumnNode, error) {
	return ParseColumn("", raw, true)
}

// parser carries the original input so errors can report absolute offsets
// even when recursing into substrings.
type parser struct {
	input string
}

// parse parses raw, which starts at byte offset base within p.input.
func (p *parser) parse(name, raw string, nullable bool, base int) (domain.ColumnNode, error) {
	trimmed, off := trimLeft(raw, base)
	trimmed = strings.TrimRight(trimmed, " \t\n")
	if trimmed == "" {
		return nil, domain.ErrParse(p.input, off, "empty type")
	}

	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "STRUCT<"):
		return p.parseStruct(name, trimmed, nullable, off)
	case strings.HasPrefix(upper, "ARRAY<"):
		return p.parseArray(name, trimmed, nullable, off)
	case strings.HasPrefix(upper, "MAP<"):
		return p.parseMap(name, trimmed, nullable, off)
	default:
		for _, kw := range []string{"STRUCT", "ARRAY", "MAP"} {
			if !strings.HasPrefix(upper, kw) {
				continue
			}
			rest := trimmed[len(kw):]
			gapless, _ := trimLeft(rest, 0)
			if len(gapless) < len(rest) && strings.HasPrefix(gapless, "<") {
				return nil, domain.ErrParse(p.input, off+len(kw), "%s must be immediately followed by '<'", kw)
			}
		}
		return p.parseScalar(name, trimmed, nullable, off)
	}
}

// parseStruct parses STRUCT<field:type,...>.
func (p *parser) parseStruct(name, raw string, nullable bool, base int) (domain.ColumnNode, error) {
	body, bodyOff, err := p.bracketBody(raw, base, len("STRUCT"))
	if err != nil {
		return nil, err
	}

	segs := splitTop(body, bodyOff)
	if len(segs) == 0 {
		return nil, domain.ErrParse(p.input, bodyOff, "struct has no fields")
	}

	fields := make([]domain.ColumnNode, 0, len(segs))
	for _, seg := range segs {
		if seg.text == "" {
			return nil, domain.ErrParse(p.input, seg.off, "empty struct field")
		}
		field, err := p.parseStructField(seg)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return &domain.StructNode{ColName: name, Type: raw, Null: nullable, Fields: fields}, nil
}

// parseStructField splits one "name:type" segment on its first top-level
// colon and recursively parses the type. Struct fields are always nullable.
func (p *parser) parseStructField(seg segment) (domain.ColumnNode, error) {
	colon := topLevelIndex(seg.text, ':')
	if colon < 0 {
		return nil, domain.ErrParse(p.input, seg.off, "struct field %q is missing ':'", seg.text)
	}

	fieldName := strings.TrimSpace(seg.text[:colon])
	if fieldName == "" {
		return nil, domain.ErrParse(p.input, seg.off, "struct field %q has an empty name", seg.text)
	}

	return p.parse(fieldName, seg.text[colon+1:], true, seg.off+colon+1)
}

// parseArray parses ARRAY<type>. The element node carries the sentinel name
// "element".
func (p *parser) parseArray(name, raw string, nullable bool, base int) (domain.ColumnNode, error) {
	body, bodyOff, err := p.bracketBody(raw, base, len("ARRAY"))
	if err != nil {
		return nil, err
	}

	segs := splitTop(body, bodyOff)
	if len(segs) != 1 {
		return nil, domain.ErrParse(p.input, bodyOff, "array takes exactly one type parameter, got %d", len(segs))
	}

	elem, err := p.parse(domain.ArrayElementName, segs[0].text, true, segs[0].off)
	if err != nil {
		return nil, err
	}

	return &domain.ArrayNode{ColName: name, Type: raw, Null: nullable, Element: elem}, nil
}

// parseMap parses MAP<keytype,valuetype>. Keys are never nullable, values
// always are.
func (p *parser) parseMap(name, raw string, nullable bool, base int) (domain.ColumnNode, error) {
	body, bodyOff, err := p.bracketBody(raw, base, len("MAP"))
	if err != nil {
		return nil, err
	}

	segs := splitTop(body, bodyOff)
	if len(segs) != 2 {
		return nil, domain.ErrParse(p.input, bodyOff, "map takes exactly two type parameters, got %d", len(segs))
	}

	key, err := p.parse(domain.MapKeyName, segs[0].text, false, segs[0].off)
	if err != nil {
		return nil, err
	}
	value, err := p.parse(domain.MapValueName, segs[1].text, true, segs[1].off)
	if err != nil {
		return nil, err
	}

	return &domain.MapNode{ColName: name, Type: raw, Null: nullable, Key: key, Value: value}, nil
}

// parseScalar validates a bare scalar token, optionally parameterized.
func (p *parser) parseScalar(name, raw string, nullable bool, base int) (domain.ColumnNode, error) {
	depth := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '<', '>':
			return nil, domain.ErrParse(p.input, base+i, "unexpected %q in scalar type %q", string(raw[i]), raw)
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, domain.ErrParse(p.input, base+i, "unbalanced ')' in scalar type %q", raw)
			}
		}
	}
	if depth != 0 {
		return nil, domain.ErrParse(p.input, base, "unbalanced '(' in scalar type %q", raw)
	}

	return &domain.ScalarNode{ColName: name, Type: raw, Null: nullable}, nil
}

// bracketBody extracts the text between the opening '<' that follows the
// keyword and its matching '>', which must also close the string. The depth
// counter tracks both angle brackets and parentheses so commas inside
// DECIMAL(10,2) or nested types never leak out as separators.
func (p *parser) bracketBody(raw string, base, keywordLen int) (string, int, error) {
	open := keywordLen // raw[open] == '<', guaranteed by the prefix match
	depth := 1
	for i := open + 1; i < len(raw); i++ {
		switch raw[i] {
		case '<', '(':
			depth++
		case '>':
			depth--
			if depth == 0 {
				if i != len(raw)-1 {
					return "", 0, domain.ErrParse(p.input, base+i+1, "unexpected trailing text %q", raw[i+1:])
				}
				return raw[open+1 : i], base + open + 1, nil
			}
		case ')':
			depth--
			if depth == 0 {
				return "", 0, domain.ErrParse(p.input, base+i, "mismatched ')' closing '<'")
			}
		}
	}
	return "", 0, domain.ErrParse(p.input, base+open, "unbalanced '<' in %q", raw)
}

// segment is one top-level element of a bracket body, with its absolute
// offset in the original input.
type segment struct {
	text string
	off  int
}

// splitTop splits body on commas at bracket depth zero. The body comes out of
// bracketBody, so brackets are known to balance. Empty segments are kept so
// callers can reject trailing or doubled commas instead of recovering.
func splitTop(body string, base int) []segment {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var segs []segment
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				segs = appendSegment(segs, body[start:i], base+start)
				start = i + 1
			}
		}
	}
	return appendSegment(segs, body[start:], base+start)
}

func appendSegment(segs []segment, text string, off int) []segment {
	trimmed, adj := trimLeft(text, off)
	trimmed = strings.TrimRight(trimmed, " \t\n")
	return append(segs, segment{text: trimmed, off: adj})
}

// topLevelIndex returns the index of the first occurrence of ch at bracket
// depth zero, or -1.
func topLevelIndex(s string, ch byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ch:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// trimLeft trims leading whitespace and returns the adjusted offset.
func trimLeft(s string, off int) (string, int) {
	trimmed := strings.TrimLeft(s, " \t\n")
	return trimmed, off + (len(s) - len(trimmed))
}
