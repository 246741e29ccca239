package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBreakpointFileBasic(t *testing.T) {
	src := `.{
	.breakpoints = .{
		.{ .file = "src/main", .line = 42 },
		.{ .file = "src/util", .line = 7, .enabled = false },
	},
}
`
	entries, err := ParseBreakpointFile([]byte(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "src/main", entries[0].File)
	assert.Equal(t, 42, entries[0].Line)
	assert.True(t, entries[0].Enabled) // missing `enabled` defaults to true

	assert.Equal(t, "src/util", entries[1].File)
	assert.False(t, entries[1].Enabled)
}

func TestParseBreakpointFileToleratesCommentsAndTrailingCommas(t *testing.T) {
	src := `.{
	// a leading comment
	.breakpoints = .{
		.{ .file = "a", .line = 1, }, // trailing comma + comment
	},
}`
	entries, err := ParseBreakpointFile([]byte(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].File)
}

func TestParseBreakpointFileIgnoresUnknownFields(t *testing.T) {
	src := `.{
	.breakpoints = .{
		.{ .file = "a", .line = 1, .condition = "x > 0" },
	},
}`
	entries, err := ParseBreakpointFile([]byte(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].File)
	assert.Equal(t, 1, entries[0].Line)
}

func TestParseBreakpointFileMissingBreakpointsFieldErrors(t *testing.T) {
	_, err := ParseBreakpointFile([]byte(`.{ .other = "x" }`))
	assert.Error(t, err)
}

func TestParseBreakpointFileEmptyList(t *testing.T) {
	entries, err := ParseBreakpointFile([]byte(`.{ .breakpoints = .{}, }`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeBreakpointFileRoundTrips(t *testing.T) {
	want := []ParsedBreakpoint{
		{File: "src/main", Line: 42, Enabled: true},
		{File: "src/util", Line: 7, Enabled: false},
	}
	encoded := EncodeBreakpointFile(want)

	got, err := ParseBreakpointFile(encoded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
