package transform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTransformPassThroughNoMarkers(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "plain.kdl", "fn main() {\n\tvar x = 1;\n\treturn x;\n}\n")
	out := filepath.Join(dir, "out", "plain.kdl")

	res, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.True(t, res.PassedThrough)

	inBytes, err := os.ReadFile(in)
	require.NoError(t, err)
	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(inBytes), string(outBytes))
}

func TestTransformParseFailurePassesThrough(t *testing.T) {
	dir := t.TempDir()
	src := "fn main( {{{ BREAK;\n"
	in := writeTemp(t, dir, "broken.kdl", src)
	out := filepath.Join(dir, "broken.kdl.out")

	res, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.True(t, res.PassedThrough)
	assert.Equal(t, "(parse errors, passed through)", res.Summary)

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, src, string(outBytes))
}

func TestTransformInjectsBreakpoint(t *testing.T) {
	dir := t.TempDir()
	src := "fn main() {\n\tvar x = 41;\n\tBREAK;\n\tx = x + 1;\n}\n"
	in := writeTemp(t, dir, "main.kdl", src)
	out := filepath.Join(dir, "main.out.kdl")

	res, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.False(t, res.PassedThrough)
	require.NotEmpty(t, res.Edits)

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(outBytes)

	assert.Contains(t, text, "onBreak(")
	assert.Contains(t, text, `"main"`)
	assert.Contains(t, text, `"x"`)
	assert.NotContains(t, text, "BREAK;")
	assert.Contains(t, text, headerMarker)
}

func TestTransformIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := "fn main() {\n\tvar x = 41;\n\tBREAK;\n}\n"
	in := writeTemp(t, dir, "main.kdl", src)
	firstOut := filepath.Join(dir, "first.kdl")

	_, code, err := Transform(in, firstOut, Options{})
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, code)

	secondOut := filepath.Join(dir, "second.kdl")
	res, code, err := Transform(firstOut, secondOut, Options{})
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, code)

	firstBytes, err := os.ReadFile(firstOut)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(secondOut)
	require.NoError(t, err)

	assert.Equal(t, string(firstBytes), string(secondBytes))
	assert.Equal(t, 1, strings.Count(string(secondBytes), headerMarker))
}

func TestTransformDiscardSuppression(t *testing.T) {
	dir := t.TempDir()
	src := "fn main() {\n\tvar name = \"z\";\n\tdiscard name;\n\tBREAK;\n}\n"
	in := writeTemp(t, dir, "discard.kdl", src)
	out := filepath.Join(dir, "discard.out.kdl")

	_, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, code)

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(outBytes)

	assert.NotContains(t, text, "discard name;")
	assert.Contains(t, text, `"name"`)
}

func TestTransformDiscardSuppressionSameLineAsBreakMarker(t *testing.T) {
	dir := t.TempDir()
	src := "fn main() {\n\tvar name = \"z\";\n\tdiscard name; BREAK;\n}\n"
	in := writeTemp(t, dir, "discard_same_line.kdl", src)
	out := filepath.Join(dir, "discard_same_line.out.kdl")

	_, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, code)

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(outBytes)

	assert.NotContains(t, text, "discard name;")
	assert.NotContains(t, text, "BREAK;")
	assert.Contains(t, text, "onBreak(")
}

func TestTransformDiscardSuppressionSameLineAsAnotherDiscard(t *testing.T) {
	dir := t.TempDir()
	src := "fn main() {\n\tvar a = \"x\";\n\tvar b = \"y\";\n\tdiscard a; discard b;\n\tBREAK;\n}\n"
	in := writeTemp(t, dir, "discard_discard.kdl", src)
	out := filepath.Join(dir, "discard_discard.out.kdl")

	_, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, code)

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(outBytes)

	assert.NotContains(t, text, "discard a;")
	assert.NotContains(t, text, "discard b;")
}

func TestTransformBuildFileRewrite(t *testing.T) {
	dir := t.TempDir()
	src := `fn build() {
	var root = host_path("../src");
	var other = host_path("../../outside");
}
`
	in := writeTemp(t, dir, "build.kdl", src)
	out := filepath.Join(dir, "processed", "build.kdl")

	res, code, err := Transform(in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, res.Summary, "2 edits")

	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(outBytes), `host_path("../../src")`)
	assert.Contains(t, string(outBytes), `host_path("../../../outside")`)
}

func TestApplyEditsDetectsOverlap(t *testing.T) {
	src := []byte("abcdef")
	_, err := ApplyEdits(src, []Edit{
		{Offset: 0, DeleteLen: 4},
		{Offset: 2, DeleteLen: 2},
	})
	assert.Error(t, err)
}

func TestFileHashIsBasenameOnly(t *testing.T) {
	assert.Equal(t, FileHash("/a/b/main.kdl"), FileHash("main.kdl"))
	assert.NotEqual(t, FileHash("main.kdl"), FileHash("util.kdl"))
}
