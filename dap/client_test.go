package dap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdbg/kdbg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := runtime.Config{
		BreakpointsPath: filepath.Join(dir, runtime.DefaultBreakpointsFile),
		StatePath:       filepath.Join(dir, runtime.DefaultStateFile),
		CommandPath:     filepath.Join(dir, runtime.DefaultCommandFile),
		OutputPath:      filepath.Join(dir, runtime.DefaultOutputFile),
	}
	return NewClient(cfg), dir
}

func TestReadStateMissingFileReadsAsRunning(t *testing.T) {
	c, _ := newTestClient(t)
	st, err := c.ReadState()
	require.NoError(t, err)
	assert.True(t, st.Running)
}

func TestReadStateParsesStoppedSnapshot(t *testing.T) {
	c, _ := newTestClient(t)
	body := "status=stopped\nfile=main.kdl\nline=12\nfunction=build\n---\n  x: int = 3\n  y: string = \"hi\"\n"
	require.NoError(t, os.WriteFile(c.StatePath, []byte(body), 0o644))

	st, err := c.ReadState()
	require.NoError(t, err)
	assert.False(t, st.Running)
	assert.Equal(t, "main.kdl", st.File)
	assert.Equal(t, 12, st.Line)
	assert.Equal(t, "build", st.Function)
	require.Len(t, st.Vars, 2)
	assert.Equal(t, runtime.VarLine{Name: "x", Type: "int", Summary: "3"}, st.Vars[0])
	assert.Equal(t, runtime.VarLine{Name: "y", Type: "string", Summary: `"hi"`}, st.Vars[1])
}

func TestWriteBreakpointsThenReadBackWithRuntimeParser(t *testing.T) {
	c, _ := newTestClient(t)
	entries := []runtime.ParsedBreakpoint{
		{File: "src/main", Line: 4, Enabled: true},
		{File: "src/util", Line: 9, Enabled: false},
	}
	require.NoError(t, c.WriteBreakpoints(entries))

	data, err := os.ReadFile(c.BreakpointsPath)
	require.NoError(t, err)
	got, err := runtime.ParseBreakpointFile(data)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestWriteCommandThenReadOutputConsumesIt(t *testing.T) {
	c, _ := newTestClient(t)
	require.NoError(t, c.WriteCommand("vars"))

	data, err := os.ReadFile(c.CommandPath)
	require.NoError(t, err)
	assert.Equal(t, "vars\n", string(data))

	out, err := c.ReadOutput()
	require.NoError(t, err)
	assert.Empty(t, out, "nothing has answered the command file yet")

	require.NoError(t, os.WriteFile(c.OutputPath, []byte("=== Variables ===\nx: int = 3\n"), 0o644))
	out, err = c.ReadOutput()
	require.NoError(t, err)
	assert.Equal(t, "=== Variables ===\nx: int = 3\n", out)

	// ReadOutput removes the file once consumed.
	out, err = c.ReadOutput()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWatchSendsOnlyOnStateChange(t *testing.T) {
	c, _ := newTestClient(t)
	stop := make(chan struct{})
	ch := make(chan StoppedState, 4)
	go c.Watch(stop, ch)
	defer close(stop)

	require.NoError(t, os.WriteFile(c.StatePath, []byte("status=stopped\nfile=a\nline=1\nfunction=f\n"), 0o644))

	select {
	case st := <-ch:
		assert.False(t, st.Running)
		assert.Equal(t, "a", st.File)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Watch to notice the state file")
	}

	// Rewriting the same content is not a change: nothing is sent.
	require.NoError(t, writeAtomic(c.StatePath, []byte("status=stopped\nfile=a\nline=1\nfunction=f\n")))
	select {
	case st := <-ch:
		t.Fatalf("Watch sent an unchanged state: %+v", st)
	case <-time.After(5 * PollEvery):
	}

	require.NoError(t, writeAtomic(c.StatePath, []byte("status=stopped\nfile=b\nline=2\nfunction=g\n")))
	select {
	case st := <-ch:
		assert.Equal(t, "b", st.File)
		assert.Equal(t, 2, st.Line)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Watch to notice the changed state file")
	}
}
