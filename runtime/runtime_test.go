package runtime

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdbg/kdbg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T) (*Runtime, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		Mode:            ModeSilent,
		BreakpointsPath: filepath.Join(dir, DefaultBreakpointsFile),
		StatePath:       filepath.Join(dir, DefaultStateFile),
		CommandPath:     filepath.Join(dir, DefaultCommandFile),
		OutputPath:      filepath.Join(dir, DefaultOutputFile),
	}
	return New(cfg), dir
}

func TestShouldBreakMissingBreakpointFileIsEmptySet(t *testing.T) {
	r, _ := newTestRuntime(t)
	assert.False(t, r.ShouldBreak(transform.FileHash("main.kdl"), 10))
}

func TestShouldBreakMatchesLoadedBreakpoint(t *testing.T) {
	r, _ := newTestRuntime(t)
	src := `.{ .breakpoints = .{ .{ .file = "main.kdl", .line = 42 }, }, }`
	require.NoError(t, os.WriteFile(r.cfg.BreakpointsPath, []byte(src), 0o644))

	r.ensureInit()
	assert.True(t, r.ShouldBreak(transform.FileHash("main.kdl"), 42))
	assert.False(t, r.ShouldBreak(transform.FileHash("main.kdl"), 43))
}

func TestShouldBreakStepModeFiresOnceForSameFile(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.ensureInit()
	hash := transform.FileHash("main.kdl")
	other := transform.FileHash("util.kdl")

	r.step.Arm(hash)
	assert.False(t, r.ShouldBreak(other, 1))
	assert.True(t, r.ShouldBreak(hash, 99))
	assert.False(t, r.ShouldBreak(hash, 99)) // one-shot: consumed above
}

func TestRunCommandLoopContinueReturnsImmediatelyOnNextCheck(t *testing.T) {
	r, _ := newTestRuntime(t)
	require.NoError(t, os.WriteFile(r.cfg.CommandPath, []byte("continue"), 0o644))

	done := make(chan struct{})
	go func() {
		r.runCommandLoop(transform.FileHash("main.kdl"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command loop did not observe pre-written continue command")
	}

	_, err := os.Stat(r.cfg.CommandPath)
	assert.True(t, os.IsNotExist(err), "command file should be consumed-and-deleted")
}

func TestRunCommandLoopStepArmsStepMode(t *testing.T) {
	r, _ := newTestRuntime(t)
	require.NoError(t, os.WriteFile(r.cfg.CommandPath, []byte("next"), 0o644))

	hash := transform.FileHash("main.kdl")
	done := make(chan struct{})
	go func() {
		r.runCommandLoop(hash)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command loop did not observe pre-written next command")
	}

	assert.True(t, r.step.active)
	assert.Equal(t, hash, r.step.fileHash)
}

func TestHandleQueryUnknownVariable(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.scope = Scope{Names: []string{"x"}, Values: []interface{}{41}}

	r.handleQuery("nope")

	out, err := os.ReadFile(r.cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Unknown variable or command")
}

func TestHandleQuerySimpleName(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.scope = Scope{Names: []string{"x"}, Values: []interface{}{41}}

	r.handleQuery("x")

	out, err := os.ReadFile(r.cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "x: int")
	assert.Contains(t, string(out), "41")
}

func TestHandleQueryFieldPath(t *testing.T) {
	type player struct{ HP int }
	r, _ := newTestRuntime(t)
	r.scope = Scope{Names: []string{"p"}, Values: []interface{}{player{HP: 7}}}

	r.handleQuery("p.HP")

	out, err := os.ReadFile(r.cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "7")
}

func TestRenderStateStopped(t *testing.T) {
	s := renderStateStopped("main.kdl", 10, "main", []VarLine{{Name: "x", Type: "int", Summary: "41"}})
	assert.Contains(t, s, "status=stopped\n")
	assert.Contains(t, s, "file=main.kdl\n")
	assert.Contains(t, s, "line=10\n")
	assert.Contains(t, s, "function=main\n")
	assert.Contains(t, s, "  x: int = 41\n")
}

func TestShouldBreakPauseOnStartFiresOnceThenFallsBackToBreakpoints(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Mode:            ModeSilent,
		BreakpointsPath: filepath.Join(dir, DefaultBreakpointsFile),
		StatePath:       filepath.Join(dir, DefaultStateFile),
		CommandPath:     filepath.Join(dir, DefaultCommandFile),
		OutputPath:      filepath.Join(dir, DefaultOutputFile),
		PauseOnStart:    true,
	}
	r := New(cfg)

	hash := transform.FileHash("main.kdl")
	assert.True(t, r.ShouldBreak(hash, 1), "first call should break regardless of the breakpoint set")
	assert.False(t, r.ShouldBreak(hash, 1), "pause-on-start is one-shot")
}

func TestEnsureBreakpointFileCreatesEmptyListWhenMissing(t *testing.T) {
	r, _ := newTestRuntime(t)
	require.NoError(t, r.EnsureBreakpointFile())

	data, err := os.ReadFile(r.cfg.BreakpointsPath)
	require.NoError(t, err)
	entries, err := ParseBreakpointFile(data)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureBreakpointFileLeavesExistingFileAlone(t *testing.T) {
	r, _ := newTestRuntime(t)
	src := `.{ .breakpoints = .{ .{ .file = "main.kdl", .line = 42 }, }, }`
	require.NoError(t, os.WriteFile(r.cfg.BreakpointsPath, []byte(src), 0o644))

	require.NoError(t, r.EnsureBreakpointFile())

	data, err := os.ReadFile(r.cfg.BreakpointsPath)
	require.NoError(t, err)
	assert.Equal(t, src, string(data))
}

func TestHandleStepBeforeOnlyBreaksWhenShouldBreakMatches(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.ensureInit()
	hash := transform.FileHash("main.kdl")

	// No breakpoint and no armed step: HandleStepBefore must not halt,
	// i.e. must not write a stopped state file.
	r.HandleStepBefore("main", "discard x;", 10, hash, "main.kdl", nil, nil)
	data, err := os.ReadFile(r.cfg.StatePath)
	assert.True(t, os.IsNotExist(err), "unarmed HandleStepBefore must not write a stopped state: %s", data)

	r.step.Arm(hash)

	done := make(chan struct{})
	go func() {
		r.HandleStepBefore("main", "discard x;", 11, hash, "main.kdl", nil, nil)
		close(done)
	}()
	// OnBreak deletes any stale command file before it starts polling,
	// so the continue command is re-sent until the halt resumes.
	deadline := time.After(5 * time.Second)
waitResume:
	for {
		select {
		case <-done:
			break waitResume
		case <-deadline:
			t.Fatal("armed HandleStepBefore did not observe the continue command")
		case <-time.After(50 * time.Millisecond):
			require.NoError(t, writeAtomic(r.cfg.CommandPath, []byte("continue")))
		}
	}

	data, err = os.ReadFile(r.cfg.StatePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status=running")
}

func TestSetBreakpointsForFileReplacesOnlyThatFile(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.ensureInit()
	r.SetBreakpointsForFile("a.kdl", []int{1, 2})
	r.SetBreakpointsForFile("b.kdl", []int{5})

	assert.True(t, r.ShouldBreak(transform.FileHash("a.kdl"), 1))
	assert.True(t, r.ShouldBreak(transform.FileHash("b.kdl"), 5))

	r.SetBreakpointsForFile("a.kdl", []int{3})
	assert.False(t, r.ShouldBreak(transform.FileHash("a.kdl"), 1))
	assert.True(t, r.ShouldBreak(transform.FileHash("a.kdl"), 3))
	assert.True(t, r.ShouldBreak(transform.FileHash("b.kdl"), 5))
}
