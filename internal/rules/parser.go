// Package rules is the access-control DSL: a recursive-descent parser for
// the `service IDENT { match PATTERN { ... } }` grammar and an evaluator
// that walks a parsed Ruleset against a candidate path and operation.
package rules

import (
	"fmt"
	"strings"
)

// Parse parses rules DSL source text into a Ruleset, failing with a
// structural error message on the first unexpected token — the grammar
// doesn't attempt error recovery.
func Parse(text string) (*Ruleset, error) {
	p := &parser{src: []rune(text)}
	p.skipSpace()

	if err := p.expectKeyword("service"); err != nil {
		return nil, err
	}
	p.skipSpace()
	name, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if err := p.expectByte('{'); err != nil {
		return nil, err
	}
	p.skipSpace()

	var matches []*MatchBlock
	for !p.atByte('}') {
		if p.eof() {
			return nil, fmt.Errorf("rules: unexpected end of input, expected '}'")
		}
		mb, err := p.parseMatchBlock()
		if err != nil {
			return nil, err
		}
		matches = append(matches, mb)
		p.skipSpace()
	}
	if err := p.expectByte('}'); err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("rules: unexpected trailing input at position %d", p.pos)
	}

	return &Ruleset{ServiceName: name, Matches: matches}, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) atByte(b byte) bool {
	return !p.eof() && p.src[p.pos] == rune(b)
}

func (p *parser) expectByte(b byte) error {
	if !p.atByte(b) {
		return fmt.Errorf("rules: expected %q at position %d", string(b), p.pos)
	}
	p.pos++
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '.' || r == '_'
}

// readIdent reads a bare identifier, permitting the dotted form the
// `service` declaration's name uses (e.g. "cloud.firestore").
func (p *parser) readIdent() (string, error) {
	start := p.pos
	if p.eof() || !isIdentStart(p.src[p.pos]) {
		return "", fmt.Errorf("rules: expected identifier at position %d", p.pos)
	}
	p.pos++
	for !p.eof() && isIdentRune(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos]), nil
}

// peekIdent reads an identifier without consuming it, for branch decisions.
func (p *parser) peekIdent() string {
	save := p.pos
	ident, err := p.readIdent()
	p.pos = save
	if err != nil {
		return ""
	}
	return ident
}

func (p *parser) expectKeyword(kw string) error {
	ident, err := p.readIdent()
	if err != nil {
		return err
	}
	if ident != kw {
		return fmt.Errorf("rules: expected keyword %q, got %q at position %d", kw, ident, p.pos)
	}
	return nil
}

// readPathPattern reads raw pattern text starting at '/', stopping at the
// first whitespace outside a `{...}` capture. Captures never contain
// whitespace in this grammar, so brace-depth tracking alone disambiguates
// the pattern's end from the block-opening '{' that follows it.
func (p *parser) readPathPattern() (string, error) {
	if !p.atByte('/') {
		return "", fmt.Errorf("rules: expected path pattern starting with '/' at position %d", p.pos)
	}
	start := p.pos
	depth := 0
	for !p.eof() {
		r := p.src[p.pos]
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			return string(p.src[start:p.pos]), nil
		}
		p.pos++
	}
	return string(p.src[start:p.pos]), nil
}

func parsePatternSegments(raw string) ([]PatternSegment, error) {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("rules: empty path pattern")
	}
	parts := strings.Split(trimmed, "/")
	segments := make([]PatternSegment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("rules: empty segment in pattern %q", raw)
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			inner := part[1 : len(part)-1]
			if inner == "" {
				return nil, fmt.Errorf("rules: empty capture name in pattern %q", raw)
			}
			if strings.HasSuffix(inner, "=**") {
				name := strings.TrimSuffix(inner, "=**")
				if i != len(parts)-1 {
					return nil, fmt.Errorf("rules: wildcard segment %q must be the pattern's last segment", part)
				}
				segments = append(segments, PatternSegment{Kind: SegmentWildcard, Name: name})
			} else {
				segments = append(segments, PatternSegment{Kind: SegmentCapture, Name: inner})
			}
			continue
		}
		segments = append(segments, PatternSegment{Kind: SegmentLiteral, Literal: part})
	}
	return segments, nil
}

func (p *parser) parseMatchBlock() (*MatchBlock, error) {
	if err := p.expectKeyword("match"); err != nil {
		return nil, err
	}
	p.skipSpace()
	raw, err := p.readPathPattern()
	if err != nil {
		return nil, err
	}
	segments, err := parsePatternSegments(raw)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if err := p.expectByte('{'); err != nil {
		return nil, err
	}
	p.skipSpace()

	block := &MatchBlock{Pattern: segments}
	for !p.atByte('}') {
		if p.eof() {
			return nil, fmt.Errorf("rules: unexpected end of input inside match block")
		}
		switch p.peekIdent() {
		case "match":
			child, err := p.parseMatchBlock()
			if err != nil {
				return nil, err
			}
			block.Children = append(block.Children, child)
		case "allow":
			allow, err := p.parseAllow()
			if err != nil {
				return nil, err
			}
			block.Allows = append(block.Allows, allow)
		default:
			return nil, fmt.Errorf("rules: unexpected token at position %d, expected 'match' or 'allow'", p.pos)
		}
		p.skipSpace()
	}
	if err := p.expectByte('}'); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseAllow() (Allow, error) {
	if err := p.expectKeyword("allow"); err != nil {
		return Allow{}, err
	}
	p.skipSpace()

	var ops []string
	for {
		op, err := p.readIdent()
		if err != nil {
			return Allow{}, err
		}
		ops = append(ops, op)
		p.skipSpace()
		if p.atByte(',') {
			p.pos++
			p.skipSpace()
			continue
		}
		break
	}

	if err := p.expectByte(':'); err != nil {
		return Allow{}, err
	}
	p.skipSpace()
	if err := p.expectKeyword("if"); err != nil {
		return Allow{}, err
	}
	p.skipSpace()

	start := p.pos
	for !p.eof() && p.src[p.pos] != ';' {
		p.pos++
	}
	if p.eof() {
		return Allow{}, fmt.Errorf("rules: unterminated condition, expected ';'")
	}
	cond := strings.TrimSpace(string(p.src[start:p.pos]))
	p.pos++ // consume ';'

	return Allow{Operations: ops, ConditionTrue: cond == "true"}, nil
}
