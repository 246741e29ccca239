package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	tKeyword  rune
	tIdent    rune
	tOperator rune
	tString   rune
	tNumber   rune
	tBad      rune
)

func init() {
	sym := Lexer.Symbols()
	tKeyword = sym["Keyword"]
	tIdent = sym["Ident"]
	tOperator = sym["Operator"]
	tString = sym["String"]
	tNumber = sym["Number"]
	tBad = sym["Bad"]
}

// ErrParse is the sentinel wrapped by every error Parse returns, so
// callers (the transformer, in particular) can cheaply distinguish a
// parse failure from every other kind of error with errors.Is.
var ErrParse = errors.New("parse error")

// Parse parses a complete source file into a Module. It never regenerates
// source: every node's span is a byte range into src, and the raw text of
// unparsed constructs is sliced directly from src.
func Parse(filename string, src []byte) (*Module, error) {
	tokens, err := Tokenize(filename, src)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %s", filename, err)
	}
	p := &parser{toks: tokens, src: src, filename: filename}
	mod, err := p.parseModule()
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %s", filename, err)
	}
	return mod, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
	src  []byte

	filename string
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) eof() bool {
	return p.cur().EOF()
}

func (p *parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isKeyword(word string) bool {
	t := p.cur()
	return t.Type == tKeyword && t.Value == word
}

func (p *parser) isOperator(op string) bool {
	t := p.cur()
	return t.Type == tOperator && t.Value == op
}

func (p *parser) isIdent() bool {
	return p.cur().Type == tIdent
}

func (p *parser) expectOperator(op string) (lexer.Token, error) {
	if !p.isOperator(op) {
		return lexer.Token{}, errors.Errorf("%s: expected %q, got %q", p.cur().Pos, op, p.cur().Value)
	}
	return p.advance(), nil
}

// sliceSrc returns the raw bytes of the source between two positions.
func (p *parser) sliceSrc(start, end lexer.Position) string {
	if start.Offset < 0 || end.Offset > len(p.src) || start.Offset > end.Offset {
		return ""
	}
	return strings.TrimSpace(string(p.src[start.Offset:end.Offset]))
}

func (p *parser) parseModule() (*Module, error) {
	start := p.cur().Pos
	mod := &Module{Filename: p.filename}
	for !p.eof() {
		switch {
		case p.isKeyword("import") || p.isKeyword("export") && p.peekIsImportLike():
			p.skipToSemicolon()
		case p.isGlobalStart():
			g, err := p.parseGlobalDecl()
			if err != nil {
				return nil, err
			}
			if g != nil {
				mod.Globals = append(mod.Globals, g)
			}
		case p.isKeyword("fn"):
			fn, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			mod.Funcs = append(mod.Funcs, fn)
		default:
			// Unrecognized top-level construct (type declarations, etc.)
			// - skip a single token to make forward progress; the walker
			// only needs globals and functions.
			p.advance()
		}
	}
	mod.Pos = start
	mod.EndPos = p.cur().Pos
	return mod, nil
}

// peekIsImportLike reports whether an `export` keyword is immediately
// followed by `import`, i.e. `export import "...";` rather than
// `export var x = ...;`.
func (p *parser) peekIsImportLike() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	next := p.toks[p.pos+1]
	return next.Type == tKeyword && next.Value == "import"
}

func (p *parser) isGlobalStart() bool {
	if p.isKeyword("var") || p.isKeyword("const") || p.isKeyword("threadlocal") {
		return true
	}
	if p.isKeyword("export") && !p.peekIsImportLike() {
		return true
	}
	return false
}

// parseGlobalDecl implements step 4: classify by keyword
// prefix, and skip initializers that are import-style builtin calls or
// inline type definitions (struct/union/enum).
func (p *parser) parseGlobalDecl() (*GlobalDecl, error) {
	start := p.cur().Pos
	kind := GlobalRegular
	isConst := false

	for {
		switch {
		case p.isKeyword("threadlocal"):
			kind = GlobalThreadLocal
			p.advance()
		case p.isKeyword("export"):
			if isConst {
				kind = GlobalExportedConst
			} else {
				kind = GlobalExportedVar
			}
			p.advance()
		case p.isKeyword("const"):
			isConst = true
			if kind == GlobalExportedVar {
				kind = GlobalExportedConst
			} else if kind == GlobalRegular {
				kind = GlobalComptimeConst
			}
			p.advance()
		case p.isKeyword("var"):
			p.advance()
		default:
			goto haveModifiers
		}
	}
haveModifiers:

	if !p.isIdent() {
		p.skipToSemicolon()
		return nil, nil
	}
	name := p.advance().Value

	end := p.skipToSemicolon()
	raw := p.sliceSrc(start, end)

	if isInlineTypeDef(raw) || isImportStyleCall(raw) {
		return nil, nil
	}

	return &GlobalDecl{
		span: span{Pos: start, EndPos: end},
		Kind: kind,
		Name: name,
		Raw:  raw,
	}, nil
}

func isInlineTypeDef(raw string) bool {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "=")
	if idx < 0 {
		return false
	}
	rhs := strings.TrimSpace(raw[idx+1:])
	for _, kw := range []string{"struct", "union", "enum"} {
		if strings.HasPrefix(rhs, kw) {
			return true
		}
	}
	return false
}

func isImportStyleCall(raw string) bool {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "=")
	if idx < 0 {
		return false
	}
	rhs := strings.TrimSpace(raw[idx+1:])
	return strings.HasPrefix(rhs, "import(") || strings.HasPrefix(rhs, "import (")
}

// skipToSemicolon advances past tokens up to and including a top-level
// ';' (respecting (), [], {} nesting), returning the position just past
// the semicolon (or EOF).
func (p *parser) skipToSemicolon() lexer.Position {
	depth := 0
	for !p.eof() {
		t := p.cur()
		if t.Type == tOperator {
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ";":
				if depth <= 0 {
					p.advance()
					return p.cur().Pos
				}
			}
		}
		p.advance()
	}
	return p.cur().Pos
}

func (p *parser) parseFuncDecl() (*FuncDecl, error) {
	start := p.cur().Pos
	p.advance() // fn
	name := ""
	if p.isIdent() {
		name = p.advance().Value
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{
		span:   span{Pos: start, EndPos: body.EndPos},
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

func (p *parser) parseParamList() ([]string, error) {
	if _, err := p.expectOperator("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.isOperator(")") && !p.eof() {
		if p.isIdent() {
			params = append(params, p.cur().Value)
		}
		p.advance()
	}
	if _, err := p.expectOperator(")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseBlock() (*Block, error) {
	start, err := p.expectOperator("{")
	if err != nil {
		return nil, err
	}
	b := &Block{span: span{Pos: start.Pos}}
	for !p.isOperator("}") && !p.eof() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
	}
	end, err := p.expectOperator("}")
	if err != nil {
		return nil, err
	}
	b.EndPos = end.Pos
	return b, nil
}
