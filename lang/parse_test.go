package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeElidesTrivia(t *testing.T) {
	toks, err := Tokenize("t.kdl", []byte("var x = 1; // comment\n"))
	require.NoError(t, err)

	var values []string
	for _, tok := range toks {
		if tok.EOF() {
			continue
		}
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{"var", "x", "=", "1", ";"}, values)
}

func TestParseGlobals(t *testing.T) {
	src := `
var counter = 0;
const threadlocal depth = 0;
export var shared = 1;
threadlocal var tlocal = nil;
`
	mod, err := Parse("globals.kdl", []byte(src))
	require.NoError(t, err)
	require.Len(t, mod.Globals, 4)

	assert.Equal(t, "counter", mod.Globals[0].Name)
	assert.Equal(t, GlobalRegular, mod.Globals[0].Kind)

	assert.Equal(t, "shared", mod.Globals[2].Name)
	assert.Equal(t, GlobalExportedVar, mod.Globals[2].Kind)

	assert.Equal(t, "tlocal", mod.Globals[3].Name)
	assert.Equal(t, GlobalThreadLocal, mod.Globals[3].Kind)
}

func TestParseGlobalSkipsInlineTypeDefAndImport(t *testing.T) {
	src := `
var Point = struct { x, y };
var base = import("./base.kdl");
var real = 1;
`
	mod, err := Parse("skip.kdl", []byte(src))
	require.NoError(t, err)
	require.Len(t, mod.Globals, 1)
	assert.Equal(t, "real", mod.Globals[0].Name)
}

func TestParseFuncDeclAndStatements(t *testing.T) {
	src := `
fn process(task, ctx) {
	var result = 0;
	if (task.ready) {
		result = task.value;
	} else if (task.pending) {
		BREAK;
	} else {
		discard task;
	}
	while (result < 10) {
		result = result + 1;
	}
	for (i := 0; i < 10; i = i + 1) {
		StepEnable();
		continue;
	}
	switch (result) {
	case 1:
		return result;
	default:
		break;
	}
	defer cleanup(ctx);
	errdefer rollback(ctx);
	return result;
}
`
	mod, err := Parse("fn.kdl", []byte(src))
	require.NoError(t, err)
	require.Len(t, mod.Funcs, 1)

	fn := mod.Funcs[0]
	assert.Equal(t, "process", fn.Name)
	assert.Equal(t, []string{"task", "ctx"}, fn.Params)
	require.NotNil(t, fn.Body)

	var (
		sawBreakMarker bool
		sawStepEnable  bool
		sawIf          bool
		sawWhile       bool
		sawFor         bool
		sawSwitch      bool
		sawDefer       bool
		sawErrDefer    bool
		sawDiscard     bool
	)
	Inspect(fn, func(n Node) bool {
		switch s := n.(type) {
		case *BreakMarkerStmt:
			sawBreakMarker = true
		case *StepEnableStmt:
			sawStepEnable = true
		case *IfStmt:
			sawIf = true
		case *WhileStmt:
			sawWhile = true
		case *ForStmt:
			sawFor = true
		case *SwitchStmt:
			sawSwitch = true
		case *DiscardStmt:
			sawDiscard = true
			assert.Equal(t, "task", s.Name)
		case *DeferStmt:
			if s.Kind == DeferOnError {
				sawErrDefer = true
			} else {
				sawDefer = true
			}
		}
		return true
	})

	assert.True(t, sawBreakMarker)
	assert.True(t, sawStepEnable)
	assert.True(t, sawIf)
	assert.True(t, sawWhile)
	assert.True(t, sawFor)
	assert.True(t, sawSwitch)
	assert.True(t, sawDefer)
	assert.True(t, sawErrDefer)
	assert.True(t, sawDiscard)
}

func TestParseNestedFuncLiteral(t *testing.T) {
	src := `
fn register() {
	var handlers = .{
		onOpen = fn(conn) {
			var x = 1;
		},
	};
}
`
	mod, err := Parse("nested.kdl", []byte(src))
	require.NoError(t, err)
	require.Len(t, mod.Funcs, 1)

	body := mod.Funcs[0].Body
	require.Len(t, body.Stmts, 1)

	decl, ok := body.Stmts[0].(*VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "handlers", decl.Name)
	require.Len(t, decl.NestedFuncs, 1)
	assert.Equal(t, []string{"conn"}, decl.NestedFuncs[0].Params)
}

func TestParseAssignVsExprStmt(t *testing.T) {
	src := `
fn run() {
	x = 1;
	logger.info("hi");
	queue[0] = task;
}
`
	mod, err := Parse("assign.kdl", []byte(src))
	require.NoError(t, err)
	stmts := mod.Funcs[0].Body.Stmts
	require.Len(t, stmts, 3)

	_, isAssign := stmts[0].(*AssignStmt)
	assert.True(t, isAssign)

	expr, isExpr := stmts[1].(*ExprStmt)
	require.True(t, isExpr)
	assert.Equal(t, ExprCall, expr.Kind)

	_, isIndexAssign := stmts[2].(*AssignStmt)
	assert.True(t, isIndexAssign)
}
