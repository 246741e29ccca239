package runtime

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kdbg/kdbg/format"
	"github.com/kdbg/kdbg/transform"
)

// PollEveryN is the number of shouldBreak calls between breakpoint
// file mtime checks.
const PollEveryN = 50000

// CommandSpinTicks is the busy-wait granularity of the command-file
// poll loop.
const CommandSpinTicks = 100000

// varsFormatDepth and stateFormatDepth are the formatter depths for
// the two variable-rendering call sites: a one-line formatted value
// at depth <= 1 for the state file, and all variables at formatter
// depth 3 for the `vars` command.
const (
	stateFormatDepth = 1
	varsFormatDepth  = 3
)

// Mode selects how the runtime announces a halt alongside writing the
// rendezvous files: terminal mode additionally
// echoes a one-line notice to stderr for a human watching the
// debuggee's own console; dap and silent modes stay purely
// file-driven since an external adapter or nothing is watching stderr.
type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeDAP      Mode = "dap"
	ModeSilent   Mode = "silent"
)

// Config is the runtime's environment-derived configuration.
type Config struct {
	Mode            Mode
	BreakpointsPath string
	StatePath       string
	CommandPath     string
	OutputPath      string
	// PauseOnStart, when set, forces the very first ShouldBreak call the
	// process makes to report a hit regardless of the breakpoint set -
	// breaking at entry.
	PauseOnStart bool
}

// ConfigFromEnv reads DEBUG_MODE, DEBUG_BREAKPOINTS, and
// DEBUG_PAUSE_ON_START, falling back to the default rendezvous file
// names for anything the environment doesn't override.
func ConfigFromEnv() Config {
	cfg := Config{
		Mode:            ModeTerminal,
		BreakpointsPath: DefaultBreakpointsFile,
		StatePath:       DefaultStateFile,
		CommandPath:     DefaultCommandFile,
		OutputPath:      DefaultOutputFile,
	}
	if m := os.Getenv("DEBUG_MODE"); m != "" {
		cfg.Mode = Mode(m)
	}
	if p := os.Getenv("DEBUG_BREAKPOINTS"); p != "" {
		cfg.BreakpointsPath = p
	}
	cfg.PauseOnStart = os.Getenv("DEBUG_PAUSE_ON_START") == "1"
	return cfg
}

// Scope is the variable snapshot an injected call site hands the
// runtime: parallel name/value slices covering current lexical scope
// plus file globals.
type Scope struct {
	Names  []string
	Values []interface{}
}

func (s Scope) varLines(depth int) []VarLine {
	lines := make([]VarLine, len(s.Names))
	for i, name := range s.Names {
		var v interface{}
		if i < len(s.Values) {
			v = s.Values[i]
		}
		lines[i] = VarLine{
			Name:    name,
			Type:    format.TypeName(v),
			Summary: format.Format(v, depth, format.DefaultMaxBytes),
		}
	}
	return lines
}

func (s Scope) lookup(name string) (interface{}, bool) {
	for i, n := range s.Names {
		if n == name {
			if i < len(s.Values) {
				return s.Values[i], true
			}
			return nil, true
		}
	}
	return nil, false
}

// Runtime is the in-process debug runtime: it holds the
// active breakpoint set, polls the breakpoint file, and runs the
// pause/command/resume rendezvous on a hit. All of its state is
// process-wide. Lazy one-time initialization goes through initOnce;
// the mutex guards the scope snapshot of the current hit, which the
// command loop reads while answering vars and query commands.
type Runtime struct {
	cfg  Config
	bp   *Set
	step StepMode

	initOnce     sync.Once
	pollCounter  uint64
	bpModTime    time.Time
	startPending bool
	startOnce    sync.Once

	scope Scope
	mu    sync.Mutex
}

// New constructs a Runtime from an explicit configuration. Most
// callers use the package-level default instance via Init instead.
func New(cfg Config) *Runtime {
	return &Runtime{cfg: cfg, bp: NewSet()}
}

var (
	defaultOnce sync.Once
	defaultRT   *Runtime
)

// Default returns the process-wide runtime instance that the
// transformer's injected calls target, lazily initializing it from
// the environment on first use.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRT = New(ConfigFromEnv())
	})
	return defaultRT
}

// ensureInit creates the breakpoint file if absent, then loads it (a
// missing file is not an error either way), exactly once per Runtime -
// so an editor attaching right after the first instrumented statement
// runs always finds a breakpoints file to open.
func (r *Runtime) ensureInit() {
	r.initOnce.Do(func() {
		if err := r.EnsureBreakpointFile(); err != nil {
			fmt.Fprintf(os.Stderr, "kdbg: %v\n", err)
		}
		r.reloadBreakpoints()
		r.startPending = r.cfg.PauseOnStart
	})
}

// consumeStartPending reports whether this is the first call site the
// process has reached with DEBUG_PAUSE_ON_START set, firing at most once.
func (r *Runtime) consumeStartPending() bool {
	fired := false
	r.startOnce.Do(func() {
		fired = r.startPending
	})
	return fired
}

func (r *Runtime) reloadBreakpoints() {
	data, err := os.ReadFile(r.cfg.BreakpointsPath)
	if err != nil {
		return // missing file: treat as empty set
	}
	parsed, err := ParseBreakpointFile(data)
	if err != nil {
		// Keep whatever set was already active.
		fmt.Fprintf(os.Stderr, "kdbg: breakpoint file parse error: %v\n", err)
		return
	}
	entries := make([]*Breakpoint, 0, len(parsed))
	for _, pb := range parsed {
		entries = append(entries, newBreakpoint(pb.File, pb.Line, pb.Enabled))
	}
	r.bp.Replace(entries)
	if info, err := os.Stat(r.cfg.BreakpointsPath); err == nil {
		r.bpModTime = info.ModTime()
	}
}

// maybeReload throttles the breakpoint-file mtime check to once every
// PollEveryN calls.
func (r *Runtime) maybeReload() {
	r.pollCounter++
	if r.pollCounter%PollEveryN != 0 {
		return
	}
	info, err := os.Stat(r.cfg.BreakpointsPath)
	if err != nil {
		return
	}
	if info.ModTime().After(r.bpModTime) {
		r.reloadBreakpoints()
	}
}

// ShouldBreak reports whether a call site at (fileHash, line) should
// halt: either the breakpoint set matches, or a prior step command
// armed a one-shot trigger for this file.
func (r *Runtime) ShouldBreak(fileHash uint32, line int) bool {
	r.ensureInit()
	if r.consumeStartPending() {
		return true
	}
	r.maybeReload()
	if r.step.Consume(fileHash) {
		return true
	}
	return r.bp.Match(fileHash, line)
}

// SetBreakpointsForFile installs breakpoints programmatically (used
// by the DAP front-end after a setBreakpoints request), replacing any
// existing entries for that file and leaving other files' entries
// untouched.
func (r *Runtime) SetBreakpointsForFile(file string, lines []int) {
	r.ensureInit()
	kept := make([]*Breakpoint, 0, len(r.bp.entries))
	fileHash := transform.FileHash(file)
	for _, bp := range r.bp.entries {
		if bp.basenameHash != fileHash {
			kept = append(kept, bp)
		}
	}
	for _, line := range lines {
		kept = append(kept, newBreakpoint(file, line, true))
	}
	r.bp.Replace(kept)
}

// GetBreakpoints returns a snapshot view of the active set.
func (r *Runtime) GetBreakpoints() []*Breakpoint {
	r.ensureInit()
	return r.bp.All()
}

// EnsureBreakpointFile creates the breakpoints file with an empty
// breakpoint list if it doesn't already exist, so an editor attaching
// to a fresh debuggee has something to open and append to. An
// existing file, however stale or malformed, is left untouched.
func (r *Runtime) EnsureBreakpointFile() error {
	if _, err := os.Stat(r.cfg.BreakpointsPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &IOError{Op: "stat", Path: r.cfg.BreakpointsPath, Err: err}
	}
	return writeAtomic(r.cfg.BreakpointsPath, EncodeBreakpointFile(nil))
}

// OnBreak implements the breakpoint-hit half of the injected call
// ABI: write the state file, run the command loop, then resume.
func (r *Runtime) OnBreak(functionName, filePath string, fileHash uint32, line int, names []string, values []interface{}) {
	r.announce(functionName, filePath, line)

	r.mu.Lock()
	r.scope = Scope{Names: names, Values: values}
	r.mu.Unlock()

	if err := writeAtomic(r.cfg.StatePath, []byte(renderStateStopped(filePath, line, functionName, r.scope.varLines(stateFormatDepth)))); err != nil {
		fmt.Fprintf(os.Stderr, "kdbg: %v\n", err)
	}
	removeIfExists(r.cfg.CommandPath)

	r.runCommandLoop(fileHash)

	removeIfExists(r.cfg.CommandPath)
	removeIfExists(r.cfg.OutputPath)
	if err := writeAtomic(r.cfg.StatePath, []byte(stateRunning)); err != nil {
		fmt.Fprintf(os.Stderr, "kdbg: %v\n", err)
	}
}

// HandleStepBefore implements the step-injection half of the ABI:
// same scope payload as OnBreak, plus the stringified next
// statement, used only when step mode is force-enabled for a
// function (the transformer's StepEnable marker).
func (r *Runtime) HandleStepBefore(functionName, lineText string, line int, fileHash uint32, filePath string, names []string, values []interface{}) {
	_ = lineText
	if !r.ShouldBreak(fileHash, line) {
		return
	}
	r.OnBreak(functionName, filePath, fileHash, line, names, values)
}

func (r *Runtime) announce(functionName, filePath string, line int) {
	if r.cfg.Mode != ModeTerminal {
		return
	}
	fmt.Fprintf(os.Stderr, "kdbg: breakpoint hit in %s at %s:%d\n", functionName, filePath, line)
}

// runCommandLoop spin-polls the command file until a terminating
// command (continue/quit/step/next) is read.
func (r *Runtime) runCommandLoop(fileHash uint32) {
	ticks := 0
	for {
		ticks++
		if ticks%CommandSpinTicks != 0 {
			continue
		}

		cmd := readCommand(r.cfg.CommandPath)
		if cmd == "" {
			continue
		}

		switch {
		case cmd == "continue" || cmd == "c":
			r.step.Disarm()
			return

		case cmd == "quit" || cmd == "q":
			r.step.Disarm()
			os.Exit(0)

		case cmd == "step" || cmd == "s" || cmd == "next" || cmd == "n":
			r.step.Arm(fileHash)
			return

		case cmd == "vars" || cmd == "v":
			r.mu.Lock()
			out := renderVarsOutput(r.scope.varLines(varsFormatDepth))
			r.mu.Unlock()
			r.writeOutput(out)

		case strings.HasPrefix(cmd, "print "):
			r.handleQuery(strings.TrimSpace(strings.TrimPrefix(cmd, "print ")))

		default:
			r.handleQuery(cmd)
		}
	}
}

// handleQuery resolves a bare variable-path expression ("NAME",
// "NAME.field...", "NAME[i]", "NAME[i..j]") against current scope and
// writes the result to the output file.
func (r *Runtime) handleQuery(expr string) {
	name, path := format.SplitPath(expr)

	r.mu.Lock()
	value, ok := r.scope.lookup(name)
	r.mu.Unlock()

	if !ok {
		r.writeOutput("Unknown variable or command\n")
		return
	}

	if path == "" {
		out := name + ": " + format.TypeName(value) + "\n" + format.Format(value, varsFormatDepth, format.DefaultMaxBytes)
		r.writeOutput(out)
		return
	}

	out, err := format.Resolve(name, value, path)
	if err != nil {
		r.writeOutput(capitalize(err.Error()) + "\n")
		return
	}
	r.writeOutput(out)
}

func (r *Runtime) writeOutput(text string) {
	if err := writeAtomic(r.cfg.OutputPath, []byte(text)); err != nil {
		fmt.Fprintf(os.Stderr, "kdbg: %v\n", err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Package-level convenience wrappers over Default(), the shape the
// transformer's injected calls actually reference.

// ShouldBreak is the package-level entry point for the hash/line
// check. Runtime.HandleStepBefore makes the same check before halting;
// injected breakpoint calls go straight to OnBreak.
func ShouldBreak(fileHash uint32, line int) bool {
	return Default().ShouldBreak(fileHash, line)
}

// OnBreak is the package-level entry point a breakpoint marker
// expands a call to.
func OnBreak(functionName, filePath string, fileHash uint32, line int, names []string, values []interface{}) {
	Default().OnBreak(functionName, filePath, fileHash, line, names, values)
}

// HandleStepBefore is the package-level entry point a step injection
// expands a call to.
func HandleStepBefore(functionName, lineText string, line int, fileHash uint32, filePath string, names []string, values []interface{}) {
	Default().HandleStepBefore(functionName, lineText, line, fileHash, filePath, names, values)
}

// EnsureBreakpointFile is the package-level entry point a debuggee's
// startup code calls once, before the first instrumented statement
// runs, so an attaching editor has a breakpoints file to open.
func EnsureBreakpointFile() error {
	return Default().EnsureBreakpointFile()
}
