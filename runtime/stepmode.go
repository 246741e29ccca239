package runtime

// StepMode implements the single-step half of the command loop: after a `step`/`next` command, the very
// next shouldBreak call from the same file hash must report a hit
// regardless of breakpoint-set membership, and a call from a
// different file hash must not. The runtime has no call-stack model
//, so "step into" and "step over" are not distinguished here -
// both arm the same file-scoped one-shot trigger.
type StepMode struct {
	active   bool
	fileHash uint32
}

// Arm enables the one-shot trigger for the given file hash.
func (s *StepMode) Arm(fileHash uint32) {
	s.active = true
	s.fileHash = fileHash
}

// Disarm clears the trigger without consuming it (used on `continue`
// and `quit`, which cancel any pending step).
func (s *StepMode) Disarm() {
	s.active = false
}

// Consume reports whether this call satisfies the armed step and, if
// so, fires exactly once by disarming it.
func (s *StepMode) Consume(fileHash uint32) bool {
	if !s.active || fileHash != s.fileHash {
		return false
	}
	s.active = false
	return true
}
