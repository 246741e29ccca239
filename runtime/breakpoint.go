// Package runtime implements the in-process debug runtime that
// transformer-injected calls invoke: the breakpoint set, the
// breakpoint-file poller, the onBreak pause/resume rendezvous, and
// dispatch of value queries to package format.
package runtime

import (
	"fmt"
	"os"

	"github.com/kdbg/kdbg/transform"
)

// MaxBreakpoints bounds the breakpoint set's capacity.
const MaxBreakpoints = 256

// Breakpoint is an intentional stopping point, identified by
// (File, Line).
type Breakpoint struct {
	File     string
	Line     int
	Enabled  bool
	HitCount uint64

	basenameHash uint32
	fullPathHash uint32
}

func newBreakpoint(file string, line int, enabled bool) *Breakpoint {
	return &Breakpoint{
		File:         file,
		Line:         line,
		Enabled:      enabled,
		basenameHash: transform.FileHash(file),
		fullPathHash: transform.FullPathHash(file),
	}
}

// matches reports whether a call site presenting fileHash and line
// hits this breakpoint.
func (bp *Breakpoint) matches(fileHash uint32, line int) bool {
	if !bp.Enabled || bp.Line != line {
		return false
	}
	return bp.basenameHash == fileHash || bp.fullPathHash == fileHash
}

// Set is the bounded, linearly-scanned breakpoint set.
// Invariant: HitCount is monotonically non-decreasing between reloads;
// ordering is insertion order; duplicate (file, line) pairs are
// tolerated but wasteful.
type Set struct {
	entries []*Breakpoint
}

// NewSet returns an empty breakpoint set.
func NewSet() *Set {
	return &Set{entries: make([]*Breakpoint, 0, MaxBreakpoints)}
}

// Add appends a breakpoint, silently dropping it past MaxBreakpoints
// capacity with a stderr diagnostic.
func (s *Set) Add(file string, line int, enabled bool) {
	if len(s.entries) >= MaxBreakpoints {
		fmt.Fprintf(os.Stderr, "kdbg: breakpoint set full (%d entries); dropping %s:%d\n", MaxBreakpoints, file, line)
		return
	}
	s.entries = append(s.entries, newBreakpoint(file, line, enabled))
}

// Replace atomically swaps the active entries for a freshly-parsed set.
func (s *Set) Replace(entries []*Breakpoint) {
	if len(entries) > MaxBreakpoints {
		fmt.Fprintf(os.Stderr, "kdbg: breakpoint file has %d entries, keeping first %d\n", len(entries), MaxBreakpoints)
		entries = entries[:MaxBreakpoints]
	}
	s.entries = entries
}

// Match linearly scans for a breakpoint at (fileHash, line) that is
// enabled, incrementing HitCount exactly once per hit.
func (s *Set) Match(fileHash uint32, line int) bool {
	for _, bp := range s.entries {
		if bp.matches(fileHash, line) {
			bp.HitCount++
			return true
		}
	}
	return false
}

// Len returns the number of breakpoints currently held.
func (s *Set) Len() int { return len(s.entries) }

// All returns a read-only snapshot view of the current entries.
func (s *Set) All() []*Breakpoint {
	out := make([]*Breakpoint, len(s.entries))
	copy(out, s.entries)
	return out
}
