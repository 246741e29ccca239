package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/kdbg/kdbg/lang"
)

// walkContext carries per-file walking state: the source text, the
// accumulated edits, and the global list.
type walkContext struct {
	src      []byte
	filename string
	fileHash uint32
	globals  []Global

	// forcedStepMode is set when the CLI's --step flag is given; every
	// function starts in step mode rather than waiting for an in-source
	// step-enable marker.
	forcedStepMode bool

	edits []Edit

	// claimedLines tracks the start offset of every physical line that
	// already has a full-line injection edit planned, so a later
	// conflicting edit on the same line (another BREAK marker, or a
	// discard) gets suppressed instead of producing two edits over the
	// identical byte range.
	claimedLines map[int]bool
}

// claimLine marks a line as having a full-line edit already planned,
// reporting whether it was free to claim.
func (ctx *walkContext) claimLine(lineStart int) bool {
	if ctx.claimedLines == nil {
		ctx.claimedLines = make(map[int]bool)
	}
	if ctx.claimedLines[lineStart] {
		return false
	}
	ctx.claimedLines[lineStart] = true
	return true
}

// funcState carries per-function walking state: the live scope stack,
// step mode, whether any injection has committed, and the staging list
// of pending discard deletions.
type funcState struct {
	name     string
	scope    []string
	stepMode bool
	injected bool

	pendingDiscards []Edit
}

func (fs *funcState) push(name string) {
	if name != "" {
		fs.scope = append(fs.scope, name)
	}
}

func (fs *funcState) snapshot() int  { return len(fs.scope) }
func (fs *funcState) truncate(n int) { fs.scope = fs.scope[:n] }

// WalkFunctions walks every function in mod, planning breakpoint and
// step-instrumentation edits, and returns the
// accumulated edits across all functions.
func WalkFunctions(ctx *walkContext, mod *lang.Module) []Edit {
	for _, fn := range mod.Funcs {
		walkFunc(ctx, fn)
	}
	return ctx.edits
}

func walkFunc(ctx *walkContext, fn *lang.FuncDecl) {
	fs := &funcState{name: fn.Name, stepMode: ctx.forcedStepMode}
	for _, param := range fn.Params {
		fs.push(param)
	}
	walkBlock(ctx, fs, fn.Body)
	commitFunc(ctx, fs)
}

// walkFuncLit instruments a function literal found inside a local
// declaration's initializer (at any bracket depth of that initializer).
// It gets its own scope and its own two-phase discard commit, exactly
// like a top-level function.
func walkFuncLit(ctx *walkContext, parent *funcState, fl *lang.FuncLit) {
	fs := &funcState{name: parent.name + ".func_lit", stepMode: parent.stepMode}
	for _, param := range fl.Params {
		fs.push(param)
	}
	walkBlock(ctx, fs, fl.Body)
	commitFunc(ctx, fs)
}

func commitFunc(ctx *walkContext, fs *funcState) {
	// Two-phase discard commit: only strip discards if this function
	// actually received an injection, so pass-through files stay
	// semantic-identical.
	if !fs.injected {
		return
	}
	for _, edit := range fs.pendingDiscards {
		// A discard sharing its physical line with a BREAK marker, or
		// with another discard already claiming that line, would
		// produce a second edit over the same byte range; silently
		// drop it instead of letting ApplyEdits reject the whole file.
		if !ctx.claimLine(edit.Offset) {
			continue
		}
		ctx.edits = append(ctx.edits, edit)
	}
}

func walkBlock(ctx *walkContext, fs *funcState, block *lang.Block) {
	if block == nil {
		return
	}
	mark := fs.snapshot()
	for _, stmt := range block.Stmts {
		walkStmt(ctx, fs, stmt)
	}
	fs.truncate(mark)
}

func walkStmt(ctx *walkContext, fs *funcState, stmt lang.Stmt) {
	switch s := stmt.(type) {
	case *lang.BreakMarkerStmt:
		injectBreakpoint(ctx, fs, s.Position())

	case *lang.StepEnableStmt:
		fs.stepMode = true
		// Consumed silently: it must leave no output at all. The deletion
		// stops just past the marker's ';', so it never reaches the next
		// statement's line, where a step injection may be inserted.
		start := s.Position().Offset
		end := s.End().Offset
		if i := strings.IndexByte(string(ctx.src[start:end]), ';'); i >= 0 {
			end = start + i + 1
		}
		ctx.edits = append(ctx.edits, Edit{
			Offset:    start,
			DeleteLen: end - start,
		})

	case *lang.DiscardStmt:
		maybeInjectStep(ctx, fs, s)
		if isTracked(fs, ctx.globals, s.Name) {
			fs.pendingDiscards = append(fs.pendingDiscards, Edit{
				Offset:    lineStartOffset(ctx.src, s.Position().Offset),
				DeleteLen: lineEndOffset(ctx.src, s.Position().Offset) - lineStartOffset(ctx.src, s.Position().Offset),
			})
		}

	case *lang.VarDeclStmt:
		maybeInjectStep(ctx, fs, s)
		fs.push(s.Name)
		for _, fl := range s.NestedFuncs {
			walkFuncLit(ctx, fs, fl)
		}

	case *lang.IfStmt:
		maybeInjectStep(ctx, fs, s)
		walkBlock(ctx, fs, s.Body)
		switch e := s.Else.(type) {
		case *lang.IfStmt:
			walkStmt(ctx, fs, e)
		case *lang.Block:
			walkBlock(ctx, fs, e)
		}

	case *lang.WhileStmt:
		maybeInjectStep(ctx, fs, s)
		walkBlock(ctx, fs, s.Body)

	case *lang.ForStmt:
		maybeInjectStep(ctx, fs, s)
		walkBlock(ctx, fs, s.Body)

	case *lang.SwitchStmt:
		maybeInjectStep(ctx, fs, s)
		for _, c := range s.Cases {
			mark := fs.snapshot()
			for _, cs := range c.Stmts {
				walkStmt(ctx, fs, cs)
			}
			fs.truncate(mark)
		}

	case *lang.BlockStmt:
		walkBlock(ctx, fs, s.Body)

	case *lang.DeferStmt:
		maybeInjectStep(ctx, fs, s)
	case *lang.ReturnStmt:
		maybeInjectStep(ctx, fs, s)
	case *lang.BreakStmt:
		maybeInjectStep(ctx, fs, s)
	case *lang.ContinueStmt:
		maybeInjectStep(ctx, fs, s)
	case *lang.AssignStmt:
		maybeInjectStep(ctx, fs, s)
	case *lang.ExprStmt:
		maybeInjectStep(ctx, fs, s)

	default:
		// A malformed or unrecognized node is skipped; siblings continue.
	}
}

// injectable implements "Injectable statement rule": a
// statement is injectable unless it is solely a block closer, an else
// keyword, a container-literal punctuator (none of which ever reach
// here as a Stmt - see lang's parser), or a line ending in a trailing
// comma (likely inside a multi-line literal).
func injectable(stmt lang.Stmt) bool {
	switch s := stmt.(type) {
	case *lang.VarDeclStmt:
		return !endsInComma(s.Raw)
	case *lang.AssignStmt:
		return !endsInComma(s.Raw)
	case *lang.ExprStmt:
		return !endsInComma(s.Raw)
	case *lang.ReturnStmt, *lang.BreakStmt, *lang.ContinueStmt, *lang.DeferStmt,
		*lang.IfStmt, *lang.WhileStmt, *lang.ForStmt, *lang.SwitchStmt:
		return true
	default:
		return false
	}
}

func endsInComma(raw string) bool {
	return strings.HasSuffix(strings.TrimSpace(raw), ",")
}

func isTracked(fs *funcState, globals []Global, name string) bool {
	for _, s := range fs.scope {
		if s == name {
			return true
		}
	}
	for _, g := range globals {
		if g.Name == name {
			return true
		}
	}
	return false
}

// maybeInjectStep plans a zero-delete insertion before stmt's line of a
// guarded call to handleStepBefore, when step mode is active and the
// statement is injectable.
func maybeInjectStep(ctx *walkContext, fs *funcState, stmt lang.Stmt) {
	if !fs.stepMode || !injectable(stmt) {
		return
	}
	pos := stmt.Position()
	lineText := sourceLine(ctx.src, pos.Offset)
	call := fmt.Sprintf(
		"if (!@inComptime()) { handleStepBefore(%s, %s, %d, &[_][]const u8{%s}, .{%s}); }\n",
		strconv.Quote(fs.name), strconv.Quote(escapeString(lineText)), pos.Line,
		namesLiteral(fs, ctx.globals), valuesLiteral(fs, ctx.globals),
	)
	ctx.edits = append(ctx.edits, Edit{
		Offset: lineStartOffset(ctx.src, pos.Offset),
		Insert: call,
	})
	fs.injected = true
}

// injectBreakpoint plans a replace-the-entire-line edit at pos,
// inserting a guarded call to onBreak.
func injectBreakpoint(ctx *walkContext, fs *funcState, pos lexer.Position) {
	start := lineStartOffset(ctx.src, pos.Offset)
	if !ctx.claimLine(start) {
		// A second BREAK marker shares this physical line; the first
		// injection wins.
		return
	}
	end := lineEndOffset(ctx.src, pos.Offset)
	call := fmt.Sprintf(
		"if (!@inComptime()) { onBreak(%s, %s, 0x%08x, %d, &[_][]const u8{%s}, .{%s}); }\n",
		strconv.Quote(fs.name), strconv.Quote(ctx.filename), ctx.fileHash, pos.Line,
		namesLiteral(fs, ctx.globals), valuesLiteral(fs, ctx.globals),
	)
	ctx.edits = append(ctx.edits, Edit{Offset: start, DeleteLen: end - start, Insert: call})
	fs.injected = true
}

// namesLiteral and valuesLiteral build the literal array of variable
// names and tuple of variable values capturing both the current scope
// and the file-global list.
func namesLiteral(fs *funcState, globals []Global) string {
	names := collectNames(fs, globals)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = strconv.Quote(n)
	}
	return strings.Join(parts, ", ")
}

func valuesLiteral(fs *funcState, globals []Global) string {
	return strings.Join(collectNames(fs, globals), ", ")
}

func collectNames(fs *funcState, globals []Global) []string {
	names := make([]string, 0, len(fs.scope)+len(globals))
	names = append(names, fs.scope...)
	for _, g := range globals {
		names = append(names, g.Name)
	}
	return names
}
