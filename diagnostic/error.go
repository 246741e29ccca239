package diagnostic

import (
	"context"
	"fmt"
	"io"

	perrors "github.com/pkg/errors"
)

// Cause unwraps err to its root cause using pkg/errors semantics and
// returns its message, for one-line summaries where only the innermost
// message is useful.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	return perrors.Cause(err).Error()
}

// DisplayError writes a single pretty-printed SpanError to w, falling back
// to a plain one-liner if err carries no source position.
func DisplayError(ctx context.Context, w io.Writer, err error, source []byte) {
	if err == nil {
		return
	}
	var se *SpanError
	if ok := asSpanError(err, &se); ok {
		fmt.Fprint(w, se.Pretty(ctx, source))
		return
	}
	color := Color(ctx)
	fmt.Fprintf(w, "%s: %s\n", color.Red("error"), err)
}

func asSpanError(err error, target **SpanError) bool {
	for err != nil {
		if se, ok := err.(*SpanError); ok {
			*target = se
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
