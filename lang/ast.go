package lang

import "github.com/alecthomas/participle/v2/lexer"

// Node is implemented by every element of the CST. Unlike a fully typed
// expression tree, most Nodes below carry a Raw token span instead of a
// nested grammar for their expression contents (see package doc).
type Node interface {
	Position() lexer.Position
	End() lexer.Position
}

type span struct {
	Pos    lexer.Position
	EndPos lexer.Position
}

func (s span) Position() lexer.Position { return s.Pos }
func (s span) End() lexer.Position      { return s.EndPos }

// GlobalKind classifies a top-level declaration the way requires.
type GlobalKind int

const (
	GlobalRegular GlobalKind = iota
	GlobalThreadLocal
	GlobalComptimeConst
	GlobalExportedVar
	GlobalExportedConst
)

func (k GlobalKind) String() string {
	switch k {
	case GlobalThreadLocal:
		return "thread_local"
	case GlobalComptimeConst:
		return "comptime_const"
	case GlobalExportedVar:
		return "exported_var"
	case GlobalExportedConst:
		return "exported_const"
	default:
		return "regular"
	}
}

// Module is the root of a parsed source file.
type Module struct {
	span
	Filename string
	Globals  []*GlobalDecl
	Funcs    []*FuncDecl
}

// GlobalDecl is a top-level variable or constant declaration.
type GlobalDecl struct {
	span
	Kind GlobalKind
	Name string
	Raw  string // initializer text, unparsed
}

// FuncDecl is a top-level function declaration.
type FuncDecl struct {
	span
	Name   string
	Params []string
	Body   *Block
}

// Block is a brace-delimited statement list.
type Block struct {
	span
	Stmts []Stmt
}

// Stmt is implemented by every statement-level node.
type Stmt interface {
	Node
	stmt()
}

type stmtBase struct{ span }

func (stmtBase) stmt() {}

// VarDeclStmt is `var`/`const` NAME = ...;
type VarDeclStmt struct {
	stmtBase
	Const bool
	Name  string
	Raw   string
	// NestedFuncs holds the function literals found anywhere inside this
	// declaration's initializer (e.g. inside a struct/container literal),
	// at any bracket depth. Function literals in global declarations or
	// in other statement kinds are not collected - see DESIGN.md's
	// "nested function declarations" resolution.
	NestedFuncs []*FuncLit
}

// FuncLit is a function literal nested inside a local declaration's
// initializer; its body is a full Block, walked like a function of its
// own (see DESIGN.md's "nested function declarations" resolution).
type FuncLit struct {
	span
	Params []string
	Body   *Block
}

// AssignStmt is any assignment variant (`=`, `+=`, `-=`, ...).
type AssignStmt struct {
	stmtBase
	Raw string
}

// ExprKind classifies the shape of a raw expression statement, mirroring
// "Injectable statement rule" categories.
type ExprKind int

const (
	ExprCall ExprKind = iota
	ExprFieldAccess
	ExprIndex
	ExprCatchOrelse
	ExprSuspendResume
	ExprDeref
	ExprGrouped
	ExprOther
)

// ExprStmt is a bare expression statement (call, field access, catch/
// orelse at statement position, suspend/resume, a grouped expression,
// ...).
type ExprStmt struct {
	stmtBase
	Kind ExprKind
	Raw  string
}

// ReturnStmt is `return ...;` (Raw is empty for a bare `return;`).
type ReturnStmt struct {
	stmtBase
	Raw string
}

// BreakStmt is a loop/switch `break;` or `break :label;`.
type BreakStmt struct {
	stmtBase
	Raw string
}

// ContinueStmt is a loop `continue;`.
type ContinueStmt struct {
	stmtBase
	Raw string
}

// DiscardStmt is `discard NAME;`.
type DiscardStmt struct {
	stmtBase
	Name string
}

// DeferKind distinguishes `defer` from `errdefer`.
type DeferKind int

const (
	DeferNormal DeferKind = iota
	DeferOnError
)

// DeferStmt is `defer ...;` / `errdefer ...;`.
type DeferStmt struct {
	stmtBase
	Kind DeferKind
	Raw  string
}

// BreakMarkerStmt is the literal `BREAK;` sentinel.
type BreakMarkerStmt struct {
	stmtBase
}

// StepEnableStmt is the literal step-enable marker statement. It is
// consumed silently by the transformer - it never appears in output.
type StepEnableStmt struct {
	stmtBase
}

// IfStmt covers both `if` and `if/else`/`else if` chains; Else is nil,
// an *IfStmt (else-if), or a *Block (else).
type IfStmt struct {
	stmtBase
	Cond string
	Body *Block
	Else Node
}

// WhileStmt is `while (...) { ... }`.
type WhileStmt struct {
	stmtBase
	Cond string
	Body *Block
}

// ForStmt is `for (...) { ... }`.
type ForStmt struct {
	stmtBase
	Header string
	Body   *Block
}

// CaseClause is one `case ...:`/`default:` arm of a switch.
type CaseClause struct {
	span
	Raw   string // empty for `default`
	Stmts []Stmt
}

// SwitchStmt is `switch (...) { case ...: ...; default: ...; }`.
type SwitchStmt struct {
	stmtBase
	Subject string
	Cases   []*CaseClause
}

// BlockStmt is an explicit nested `{ ... }` block with no header.
type BlockStmt struct {
	stmtBase
	Body *Block
}
