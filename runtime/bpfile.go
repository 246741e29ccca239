package runtime

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// bpLexer tokenizes the breakpoints.list file. It reuses the exact
// stateful-lexer technique lang.Lexer uses (see lang/lexer.go) rather
// than participle's declarative struct-tag grammar builder: the
// breakpoints-list format is the target language's own
// generic structured-literal syntax, so the same kind of tokenizer
// applies (bpLexer is its own rule set; lang is not imported), and a
// tiny hand-rolled parser over its token stream is the one
// technique already proven against the pinned participle version.
var bpLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Number", `-?[0-9]+`, nil},
		{"Ident", `[A-Za-z_][A-Za-z0-9_]*`, nil},
		{"Punct", `[.{}=,]`, nil},
	},
})

// ParsedBreakpoint is one `.{ .file = "...", .line = N, .enabled = bool }`
// entry recovered from the breakpoints file, tolerant of unknown fields,
// trailing commas, and missing `enabled` (which defaults to true).
type ParsedBreakpoint struct {
	File    string
	Line    int
	Enabled bool
}

// ParseBreakpointFile parses the breakpoints-list format:
//
//	.{
//	    .breakpoints = .{
//	        .{ .file = "src/main", .line = 42 },
//	        .{ .file = "src/util", .line = 7, .enabled = false },
//	    },
//	}
//
// Unknown fields are ignored; comments and trailing commas are
// tolerated.
func ParseBreakpointFile(src []byte) ([]ParsedBreakpoint, error) {
	toks, err := tokenizeBpFile(src)
	if err != nil {
		return nil, errors.Wrap(err, "lex breakpoints file")
	}
	p := &bpParser{toks: toks}

	root, err := p.parseGroup()
	if err != nil {
		return nil, errors.Wrap(err, "parse breakpoints file")
	}

	var list *bpGroup
	for _, f := range root.fields {
		if f.key == "breakpoints" {
			list = f.group
		}
	}
	if list == nil {
		return nil, errors.New("breakpoints file missing top-level .breakpoints field")
	}

	var out []ParsedBreakpoint
	for _, f := range list.fields {
		if f.group == nil {
			continue
		}
		entry := ParsedBreakpoint{Enabled: true}
		for _, ef := range f.group.fields {
			switch ef.key {
			case "file":
				entry.File = ef.str
			case "line":
				entry.Line = ef.num
			case "enabled":
				entry.Enabled = ef.boolean
			}
		}
		if entry.File != "" {
			out = append(out, entry)
		}
	}
	return out, nil
}

// EncodeBreakpointFile renders entries back into the breakpoints-list
// syntax ParseBreakpointFile accepts, for editors/front-ends that want
// to rewrite the whole file rather than hand-edit it.
func EncodeBreakpointFile(entries []ParsedBreakpoint) []byte {
	var b strings.Builder
	b.WriteString(".{\n\t.breakpoints = .{\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\t\t.{ .file = %q, .line = %d, .enabled = %t },\n", e.File, e.Line, e.Enabled)
	}
	b.WriteString("\t},\n}\n")
	return []byte(b.String())
}

func tokenizeBpFile(src []byte) ([]lexer.Token, error) {
	lx, err := bpLexer.Lex("breakpoints.list", bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	elide := map[rune]bool{
		bpLexer.Symbols()["Comment"]:    true,
		bpLexer.Symbols()["Whitespace"]: true,
	}
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if elide[tok.Type] {
			continue
		}
		toks = append(toks, tok)
		if tok.EOF() {
			break
		}
	}
	return toks, nil
}

// bpGroup is a generic `.{ .key = value, ... }` node: either a group
// is a list of positional un-keyed sub-groups (the `.breakpoints` list
// itself) or a list of keyed scalar/group fields (one entry). Both
// shapes reuse the same bpField slice.
type bpGroup struct {
	fields []bpField
}

type bpField struct {
	key     string // empty for a positional (unkeyed) element
	str     string
	num     int
	boolean bool
	group   *bpGroup
}

type bpParser struct {
	toks []lexer.Token
	pos  int
}

func (p *bpParser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *bpParser) eof() bool { return p.cur().EOF() }

func (p *bpParser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *bpParser) is(value string) bool {
	return p.cur().Value == value
}

func (p *bpParser) expect(value string) error {
	if !p.is(value) {
		return errors.Errorf("%s: expected %q, got %q", p.cur().Pos, value, p.cur().Value)
	}
	p.advance()
	return nil
}

// parseGroup parses `.{ element ("," element)* ","? }`, where each
// element is either `.key = value` (keyed) or a bare nested group
// (positional, used for the breakpoints list itself).
func (p *bpParser) parseGroup() (*bpGroup, error) {
	if err := p.expect("."); err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	g := &bpGroup{}
	for !p.is("}") && !p.eof() {
		field, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		g.fields = append(g.fields, field)
		if p.is(",") {
			p.advance()
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *bpParser) parseElement() (bpField, error) {
	if p.is(".") && p.peekIsIdentEquals() {
		p.advance() // .
		key := p.advance().Value
		if err := p.expect("="); err != nil {
			return bpField{}, err
		}
		return p.parseValue(key)
	}
	// Positional nested group (an entry in .breakpoints).
	sub, err := p.parseGroup()
	if err != nil {
		return bpField{}, err
	}
	return bpField{group: sub}, nil
}

// peekIsIdentEquals disambiguates `.key = ...` from a positional
// `.{ ... }` nested group, both of which start with ".".
func (p *bpParser) peekIsIdentEquals() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Value != "{"
}

func (p *bpParser) parseValue(key string) (bpField, error) {
	switch {
	case p.is("."):
		sub, err := p.parseGroup()
		if err != nil {
			return bpField{}, err
		}
		return bpField{key: key, group: sub}, nil

	case strings.HasPrefix(p.cur().Value, `"`):
		raw := p.advance().Value
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			unquoted = strings.Trim(raw, `"`)
		}
		return bpField{key: key, str: unquoted}, nil

	case p.cur().Value == "true" || p.cur().Value == "false":
		v := p.advance().Value == "true"
		return bpField{key: key, boolean: v}, nil

	default:
		raw := p.advance().Value
		n, err := strconv.Atoi(raw)
		if err != nil {
			return bpField{}, errors.Errorf("expected number, got %q", raw)
		}
		return bpField{key: key, num: n}, nil
	}
}
