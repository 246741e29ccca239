package diagnostic

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Type classifies how a span should be rendered.
type Type int

const (
	Primary Type = iota
	Secondary
)

// SpanError decorates an error with a source position so it can be
// pretty-printed with one line of surrounding source and a caret.
type SpanError struct {
	Err     error
	Pos     lexer.Position
	Type    Type
	Message string
}

// WithError wraps err (or synthesizes one from message) with position
// information for later pretty-printing.
func WithError(err error, pos lexer.Position, t Type, message string) error {
	if err == nil {
		err = fmt.Errorf("%s", message)
	}
	return &SpanError{Err: err, Pos: pos, Type: t, Message: message}
}

func (se *SpanError) Error() string {
	return fmt.Sprintf("%s %s", FormatPos(se.Pos), se.Err)
}

func (se *SpanError) Unwrap() error {
	return se.Err
}

// FormatPos renders a position the same way compilers traditionally do:
// "file:line:col".
func FormatPos(pos lexer.Position) string {
	return fmt.Sprintf("%s:%d:%d:", pos.Filename, pos.Line, pos.Column)
}

// Pretty renders a one-line "file:line:col: label: message" header (label
// is "error", or "note" for a Secondary span) followed by the offending
// source line and a caret pointing at the column, e.g.:
//
//	main.kdbg:7:5: error: unexpected token
//	    x = ;
//	        ^
func (se *SpanError) Pretty(ctx context.Context, source []byte) string {
	color := Color(ctx)
	var buf bytes.Buffer

	msg := se.Message
	if msg == "" {
		msg = se.Err.Error()
	}
	label := color.Red("error")
	if se.Type == Secondary {
		label = color.Yellow("note")
	}
	fmt.Fprintf(&buf, "%s %s: %s\n", FormatPos(se.Pos), label, msg)

	line := sourceLine(source, se.Pos.Line)
	if line != "" {
		fmt.Fprintf(&buf, "    %s\n", line)
		col := se.Pos.Column
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(&buf, "    %s^\n", strings.Repeat(" ", col-1))
	}
	return buf.String()
}

func sourceLine(source []byte, n int) string {
	if n < 1 {
		return ""
	}
	lines := bytes.Split(source, []byte("\n"))
	if n > len(lines) {
		return ""
	}
	return string(lines[n-1])
}
