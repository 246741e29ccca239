package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// BreakMarker is the literal sentinel statement, "BREAK" - an
// explicit, in-source breakpoint request.
const BreakMarker = "BREAK"

// StepEnableCall is the literal step-enable marker. It must appear as a
// zero-argument call statement, `StepEnable();`, and is consumed
// silently by the transformer.
const StepEnableCall = "StepEnable"

func (p *parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) parseStmt() (Stmt, error) {
	start := p.cur().Pos

	switch {
	case p.isOperator("{"):
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{stmtBase{span{start, body.EndPos}}, body}, nil

	case p.isKeyword("if"):
		return p.parseIf()

	case p.isKeyword("while"):
		return p.parseWhile()

	case p.isKeyword("for"):
		return p.parseFor()

	case p.isKeyword("switch"):
		return p.parseSwitch()

	case p.isKeyword("defer") || p.isKeyword("errdefer"):
		return p.parseDefer()

	case p.isKeyword("discard"):
		return p.parseDiscard()

	case p.isKeyword("return"):
		return p.parseReturn()

	case p.isKeyword("break"):
		return p.parseBreakContinue(false)

	case p.isKeyword("continue"):
		return p.parseBreakContinue(true)

	case p.isKeyword("var") || p.isKeyword("const"):
		return p.parseVarDecl()

	case p.isIdent() && p.cur().Value == BreakMarker && p.peekAt(1).Value == ";":
		p.advance() // BREAK
		p.advance() // ;
		return &BreakMarkerStmt{stmtBase{span{start, p.cur().Pos}}}, nil

	case p.isIdent() && p.cur().Value == StepEnableCall && p.peekAt(1).Value == "(" && p.peekAt(2).Value == ")" && p.peekAt(3).Value == ";":
		p.advance() // StepEnable
		p.advance() // (
		p.advance() // )
		p.advance() // ;
		return &StepEnableStmt{stmtBase{span{start, p.cur().Pos}}}, nil

	default:
		return p.parseExprOrAssign()
	}
}

func (p *parser) parseParenCond() (string, error) {
	if _, err := p.expectOperator("("); err != nil {
		return "", err
	}
	start := p.cur().Pos
	depth := 1
	for !p.eof() {
		t := p.cur()
		if t.Type == tOperator {
			switch t.Value {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					end := t.Pos
					raw := p.sliceSrc(start, end)
					p.advance() // )
					return raw, nil
				}
			}
		}
		p.advance()
	}
	return "", errors.Errorf("%s: unterminated condition", start)
}

func (p *parser) parseIf() (*IfStmt, error) {
	start := p.cur().Pos
	p.advance() // if
	cond, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{stmtBase: stmtBase{span{start, body.EndPos}}, Cond: cond, Body: body}
	if p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
			stmt.EndPos = elseIf.EndPos
		} else {
			elseBody, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBody
			stmt.EndPos = elseBody.EndPos
		}
	}
	return stmt, nil
}

func (p *parser) parseWhile() (*WhileStmt, error) {
	start := p.cur().Pos
	p.advance() // while
	cond, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{stmtBase{span{start, body.EndPos}}, cond, body}, nil
}

func (p *parser) parseFor() (*ForStmt, error) {
	start := p.cur().Pos
	p.advance() // for
	header, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{stmtBase{span{start, body.EndPos}}, header, body}, nil
}

func (p *parser) parseSwitch() (*SwitchStmt, error) {
	start := p.cur().Pos
	p.advance() // switch
	subject, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOperator("{"); err != nil {
		return nil, err
	}
	stmt := &SwitchStmt{stmtBase: stmtBase{span{Pos: start}}, Subject: subject}
	for !p.isOperator("}") && !p.eof() {
		clause, err := p.parseCase()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	end, err := p.expectOperator("}")
	if err != nil {
		return nil, err
	}
	stmt.EndPos = end.Pos
	return stmt, nil
}

func (p *parser) parseCase() (*CaseClause, error) {
	start := p.cur().Pos
	clause := &CaseClause{span: span{Pos: start}}
	if p.isKeyword("case") {
		p.advance()
		rawStart := p.cur().Pos
		depth := 0
		for !p.eof() {
			t := p.cur()
			if t.Type == tOperator {
				switch t.Value {
				case "(", "[":
					depth++
				case ")", "]":
					depth--
				case ":":
					if depth == 0 {
						clause.Raw = p.sliceSrc(rawStart, t.Pos)
						p.advance() // :
						goto haveHeader
					}
				}
			}
			p.advance()
		}
	} else if p.isKeyword("default") {
		p.advance()
		if _, err := p.expectOperator(":"); err != nil {
			return nil, err
		}
	}
haveHeader:
	for !p.isKeyword("case") && !p.isKeyword("default") && !p.isOperator("}") && !p.eof() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			clause.Stmts = append(clause.Stmts, stmt)
		}
	}
	clause.EndPos = p.cur().Pos
	return clause, nil
}

func (p *parser) parseDefer() (*DeferStmt, error) {
	start := p.cur().Pos
	kind := DeferNormal
	if p.isKeyword("errdefer") {
		kind = DeferOnError
	}
	p.advance()
	rawStart := p.cur().Pos
	end := p.skipToSemicolon()
	return &DeferStmt{stmtBase{span{start, end}}, kind, p.sliceSrc(rawStart, end)}, nil
}

func (p *parser) parseDiscard() (*DiscardStmt, error) {
	start := p.cur().Pos
	p.advance() // discard
	name := ""
	if p.isIdent() {
		name = p.advance().Value
	}
	end := p.skipToSemicolon()
	return &DiscardStmt{stmtBase{span{start, end}}, name}, nil
}

func (p *parser) parseReturn() (*ReturnStmt, error) {
	start := p.cur().Pos
	p.advance() // return
	rawStart := p.cur().Pos
	end := p.skipToSemicolon()
	return &ReturnStmt{stmtBase{span{start, end}}, p.sliceSrc(rawStart, end)}, nil
}

func (p *parser) parseBreakContinue(isContinue bool) (Stmt, error) {
	start := p.cur().Pos
	p.advance() // break|continue
	rawStart := p.cur().Pos
	end := p.skipToSemicolon()
	raw := p.sliceSrc(rawStart, end)
	if isContinue {
		return &ContinueStmt{stmtBase{span{start, end}}, raw}, nil
	}
	return &BreakStmt{stmtBase{span{start, end}}, raw}, nil
}

func (p *parser) parseVarDecl() (*VarDeclStmt, error) {
	start := p.cur().Pos
	isConst := p.isKeyword("const")
	p.advance() // var|const
	name := ""
	if p.isIdent() {
		name = p.advance().Value
	}
	rawStart := p.cur().Pos
	nested, end := p.scanInitializer()
	return &VarDeclStmt{
		stmtBase:    stmtBase{span{start, end}},
		Const:       isConst,
		Name:        name,
		Raw:         p.sliceSrc(rawStart, end),
		NestedFuncs: nested,
	}, nil
}

// scanInitializer walks from the current position to a top-level ';',
// parsing (and consuming) every function literal it meets in the
// initializer, at any bracket depth.
func (p *parser) scanInitializer() ([]*FuncLit, lexer.Position) {
	depth := 0
	var nested []*FuncLit
	for !p.eof() {
		if p.isKeyword("fn") {
			fl, err := p.parseFuncLit()
			if err == nil && fl != nil {
				nested = append(nested, fl)
				continue
			}
		}
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
					return nested, p.cur().Pos
				}
			}
		}
		p.advance()
	}
	return nested, p.cur().Pos
}

func (p *parser) parseFuncLit() (*FuncLit, error) {
	start := p.cur().Pos
	p.advance() // fn
	if p.isIdent() {
		p.advance() // optional name
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncLit{span{start, body.EndPos}, params, body}, nil
}

// parseExprOrAssign handles every remaining statement form: assignment
// variants and bare expression statements (calls, field access, index,
// catch/orelse, suspend/resume, deref, grouped expressions, ...).
func (p *parser) parseExprOrAssign() (Stmt, error) {
	start := p.cur().Pos
	depth := 0
	assignOp := ""
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
					end := t.Pos
					raw := p.sliceSrc(start, end)
					p.advance() // ;
					if assignOp != "" {
						return &AssignStmt{stmtBase{span{start, p.cur().Pos}}, raw}, nil
					}
					return &ExprStmt{stmtBase{span{start, p.cur().Pos}}, classifyExpr(raw), raw}, nil
				}
			case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=":
				if depth == 0 {
					assignOp = t.Value
				}
			}
		}
		p.advance()
	}
	raw := p.sliceSrc(start, p.cur().Pos)
	return &ExprStmt{stmtBase{span{start, p.cur().Pos}}, classifyExpr(raw), raw}, nil
}

func classifyExpr(raw string) ExprKind {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "suspend") || strings.HasPrefix(trimmed, "resume"):
		return ExprSuspendResume
	case strings.Contains(trimmed, "catch") || strings.Contains(trimmed, "orelse"):
		return ExprCatchOrelse
	case strings.HasPrefix(trimmed, "("):
		return ExprGrouped
	case strings.HasPrefix(trimmed, "*"):
		return ExprDeref
	case strings.Contains(trimmed, "["):
		return ExprIndex
	case strings.Contains(trimmed, "("):
		return ExprCall
	case strings.Contains(trimmed, "."):
		return ExprFieldAccess
	default:
		return ExprOther
	}
}
