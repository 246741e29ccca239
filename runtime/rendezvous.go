package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default rendezvous file names; all four live in the
// debuggee's working directory.
const (
	DefaultBreakpointsFile = "breakpoints.list"
	DefaultStateFile       = "state.txt"
	DefaultCommandFile     = "command.txt"
	DefaultOutputFile      = "output.txt"
)

// VarLine is one rendered variable entry in the state file's variable
// table or the `vars` command's output.
type VarLine struct {
	Name    string
	Type    string
	Summary string
}

// writeAtomic replaces path's contents in one visible step: write to
// a sibling temp file, then rename over the target, so a poller never
// observes a partially-written file.
func writeAtomic(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

// readCommand consumes-and-deletes the command file. A missing file or any read
// failure is treated as no command, never an error the
// caller must handle - the scoped file handle opened here is closed
// by os.ReadFile before this function returns either way.
func readCommand(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	_ = os.Remove(path)
	return strings.TrimSpace(string(data))
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}

// renderStateStopped builds the state file's "stopped" form.
func renderStateStopped(file string, line int, function string, vars []VarLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=stopped\nfile=%s\nline=%d\nfunction=%s\n---\n", file, line, function)
	for _, v := range vars {
		fmt.Fprintf(&b, "  %s: %s = %s\n", v.Name, v.Type, v.Summary)
	}
	return b.String()
}

const stateRunning = "status=running\n"

// renderVarsOutput builds the `vars`/`v` command's response.
func renderVarsOutput(vars []VarLine) string {
	var b strings.Builder
	b.WriteString("=== Variables ===\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "%s: %s = %s\n", v.Name, v.Type, v.Summary)
	}
	return b.String()
}
