// Package dap bridges the Debug Adapter Protocol to the file-based
// rendezvous a debuggee process speaks: a DAP client (an editor) talks
// to Session over stdio, and Session talks to the debuggee by reading
// and writing the same breakpoints/state/command/output files the
// debuggee's runtime package reads and writes.
package dap

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kdbg/kdbg/runtime"
)

// StoppedState is the client-side parse of one state-file snapshot.
type StoppedState struct {
	Running  bool
	File     string
	Line     int
	Function string
	Vars     []runtime.VarLine
}

// Client is the UI side of the rendezvous protocol: it never imports
// the runtime's in-process control loop, only the file paths and wire
// formats the two sides agree on.
type Client struct {
	BreakpointsPath string
	StatePath       string
	CommandPath     string
	OutputPath      string
}

// NewClient builds a Client from a runtime.Config, so a front-end
// launched alongside its debuggee can share one source of truth for
// file paths.
func NewClient(cfg runtime.Config) *Client {
	return &Client{
		BreakpointsPath: cfg.BreakpointsPath,
		StatePath:       cfg.StatePath,
		CommandPath:     cfg.CommandPath,
		OutputPath:      cfg.OutputPath,
	}
}

// ReadState reads and parses the state file. A missing file (the
// debuggee hasn't written one yet, or has none because it's running)
// reads as a running state rather than an error.
func (c *Client) ReadState() (StoppedState, error) {
	data, err := os.ReadFile(c.StatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return StoppedState{Running: true}, nil
		}
		return StoppedState{}, err
	}
	return parseState(data)
}

func parseState(data []byte) (StoppedState, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	st := StoppedState{Running: true}
	inVars := false
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "status=running":
			return StoppedState{Running: true}, nil
		case line == "status=stopped":
			st.Running = false
		case strings.HasPrefix(line, "file="):
			st.File = strings.TrimPrefix(line, "file=")
		case strings.HasPrefix(line, "line="):
			n, _ := strconv.Atoi(strings.TrimPrefix(line, "line="))
			st.Line = n
		case strings.HasPrefix(line, "function="):
			st.Function = strings.TrimPrefix(line, "function=")
		case line == "---":
			inVars = true
		case inVars && strings.TrimSpace(line) != "":
			st.Vars = append(st.Vars, parseVarLine(line))
		}
	}
	if err := sc.Err(); err != nil {
		return StoppedState{}, err
	}
	return st, nil
}

func parseVarLine(line string) runtime.VarLine {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, ":")
	typ, summary, _ := strings.Cut(strings.TrimSpace(rest), " = ")
	return runtime.VarLine{
		Name:    strings.TrimSpace(name),
		Type:    strings.TrimSpace(typ),
		Summary: summary,
	}
}

// WriteBreakpoints replaces the whole breakpoints file with entries.
func (c *Client) WriteBreakpoints(entries []runtime.ParsedBreakpoint) error {
	return writeAtomic(c.BreakpointsPath, runtime.EncodeBreakpointFile(entries))
}

// WriteCommand sends a single command-file line (continue/quit/step/
// next/vars/print .../bare query) to the debuggee.
func (c *Client) WriteCommand(cmd string) error {
	return writeAtomic(c.CommandPath, []byte(cmd+"\n"))
}

// ReadOutput reads and removes the output file, returning "" if the
// debuggee hasn't produced one yet.
func (c *Client) ReadOutput() (string, error) {
	data, err := os.ReadFile(c.OutputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	os.Remove(c.OutputPath)
	return string(data), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// PollEvery is the interval Watch checks the state file for changes.
// A front-end process has no channel handoff from the debuggee, so
// this spin-poll is the DAP side's analog of runtime.PollEveryN.
const PollEvery = 50 * time.Millisecond

// Watch polls the state file and sends on ch every time its content
// changes, until stop is closed. It runs in the caller's goroutine.
func (c *Client) Watch(stop <-chan struct{}, ch chan<- StoppedState) {
	var last string
	ticker := time.NewTicker(PollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			data, err := os.ReadFile(c.StatePath)
			if err != nil {
				continue
			}
			if string(data) == last {
				continue
			}
			last = string(data)
			st, err := parseState(data)
			if err != nil {
				continue
			}
			ch <- st
		}
	}
}
