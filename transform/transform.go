// Package transform implements the instrumenting source transformer:
// parse source, scan globals, walk function bodies, compute a sorted
// list of textual edits, and apply them in a single pass. It never
// regenerates source from a syntax tree - it only ever slices and
// patches the original bytes, which is what keeps semantic-preservation
// exact for files with nothing to instrument.
package transform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kdbg/kdbg/lang"
	"github.com/pkg/errors"
)

// maxInputSize bounds how much source Transform will read into memory.
const maxInputSize = 10 << 20 // 10 MiB

// Exit codes returned by Transform.
const (
	ExitSuccess = 0
	ExitIOError = 1
	ExitUsage   = 2
)

// Options configures a single Transform call.
type Options struct {
	StepMode          bool
	RuntimeImportPath string
}

// Result describes what a Transform call actually did: the edits and
// globals it computed (for --explain) and the one-line stderr summary
// mandates.
type Result struct {
	Edits         []Edit
	Globals       []Global
	Summary       string
	PassedThrough bool
}

// Transform implements the transformer's full contract end to end
// and returns the process exit code alongside
// any error. Transform itself never returns a non-nil error for a parse
// failure - that degrades to pass-through with exit 0 -
// only genuine I/O failures produce a non-zero exit and an error.
func Transform(inputPath, outputPath string, opts Options) (*Result, int, error) {
	src, err := readBounded(inputPath, maxInputSize)
	if err != nil {
		return nil, ExitIOError, errors.Wrap(err, "read input")
	}

	if IsBuildFile(inputPath) {
		rewritten, n := RewriteBuildFile(src)
		if err := writeOutput(outputPath, []byte(rewritten)); err != nil {
			return nil, ExitIOError, errors.Wrap(err, "write output")
		}
		res := &Result{Summary: fmt.Sprintf("Preprocessed %s -> %s (%d edits, 0 globals)", inputPath, outputPath, n)}
		fmt.Fprintln(os.Stderr, res.Summary)
		return res, ExitSuccess, nil
	}

	if !opts.StepMode && !hasMarkers(src) {
		if err := writeOutput(outputPath, src); err != nil {
			return nil, ExitIOError, errors.Wrap(err, "write output")
		}
		res := &Result{PassedThrough: true, Summary: "(no debug needed)"}
		fmt.Fprintln(os.Stderr, res.Summary)
		return res, ExitSuccess, nil
	}

	mod, err := lang.Parse(inputPath, src)
	if err != nil {
		// Parse errors degrade to pass-through - the transformer never
		// corrupts or blocks on an unparseable file.
		if err := writeOutput(outputPath, src); err != nil {
			return nil, ExitIOError, errors.Wrap(err, "write output")
		}
		res := &Result{PassedThrough: true, Summary: "(parse errors, passed through)"}
		fmt.Fprintln(os.Stderr, res.Summary)
		return res, ExitSuccess, nil
	}

	globals := CollectGlobals(mod)

	var edits []Edit
	if !HeaderAlreadyPresent(src) {
		edits = append(edits, PlanHeader(src, opts.RuntimeImportPath))
	}

	ctx := &walkContext{
		src:            src,
		filename:       inputPath,
		fileHash:       FileHash(inputPath),
		globals:        globals,
		forcedStepMode: opts.StepMode,
	}
	edits = append(edits, WalkFunctions(ctx, mod)...)

	out, err := ApplyEdits(src, edits)
	if err != nil {
		return nil, ExitIOError, errors.Wrap(err, "apply edits")
	}

	if err := writeOutput(outputPath, []byte(out)); err != nil {
		return nil, ExitIOError, errors.Wrap(err, "write output")
	}

	res := &Result{
		Edits:   edits,
		Globals: globals,
		Summary: fmt.Sprintf("Preprocessed %s -> %s (%d edits, %d globals)", inputPath, outputPath, len(edits), len(globals)),
	}
	fmt.Fprintln(os.Stderr, res.Summary)
	return res, ExitSuccess, nil
}

func hasMarkers(src []byte) bool {
	return bytes.Contains(src, []byte(lang.BreakMarker)) || bytes.Contains(src, []byte(lang.StepEnableCall+"("))
}

func readBounded(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.Size() > max {
		return nil, errors.Errorf("%s: %d bytes exceeds %d byte limit", path, info.Size(), max)
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return buf, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
