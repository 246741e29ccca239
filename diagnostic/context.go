// Package diagnostic provides small, dependency-light helpers for
// reporting parse errors and diagnostics to a terminal, plus the
// edit-distance Suggestion that package format uses for "did you mean"
// hints.
package diagnostic

import (
	"context"

	"github.com/logrusorgru/aurora"
)

type colorKey struct{}

// WithColor attaches a color renderer to ctx. Pass aurora.NewAurora(false)
// to force plain text (e.g. when stderr is not a terminal).
func WithColor(ctx context.Context, color aurora.Aurora) context.Context {
	return context.WithValue(ctx, colorKey{}, color)
}

// Color returns the color renderer attached to ctx, or a no-op renderer if
// none was attached.
func Color(ctx context.Context) aurora.Aurora {
	color, ok := ctx.Value(colorKey{}).(aurora.Aurora)
	if !ok {
		return aurora.NewAurora(false)
	}
	return color
}
