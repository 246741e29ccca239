package format

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type player struct {
	Name string
	HP   int
	Pos  point
}

type boxed struct {
	V interface{}
}

func TestFormatScalars(t *testing.T) {
	assert.Equal(t, "41", Format(41, 3, DefaultMaxBytes))
	assert.Equal(t, "true", Format(true, 3, DefaultMaxBytes))
	assert.Equal(t, `"hi"`, Format("hi", 3, DefaultMaxBytes))
}

func TestFormatStructRecursesUntilDepth(t *testing.T) {
	p := player{Name: "z", HP: 10, Pos: point{X: 1, Y: 2}}
	assert.Equal(t, `player{Name: "z", HP: 10, Pos: point{...}}`, Format(p, 1, DefaultMaxBytes))
	assert.Equal(t, `player{Name: "z", HP: 10, Pos: point{X: 1, Y: 2}}`, Format(p, 2, DefaultMaxBytes))
}

func TestFormatTruncatesAtMaxBytes(t *testing.T) {
	p := player{Name: "a very long name indeed", HP: 1}
	out := Format(p, 3, 8)
	assert.LessOrEqual(t, len(out), 8)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "int", TypeName(1))
	assert.Equal(t, "[]int", TypeName([]int{1, 2}))
}

func TestResolveFieldPath(t *testing.T) {
	p := player{Name: "z", HP: 10, Pos: point{X: 1, Y: 2}}
	_, err := Resolve("player", p, ".Hp")
	require.Error(t, err) // field name case-sensitive, "Hp" != "HP", but close enough to suggest
	assert.Contains(t, err.Error(), "did you mean")

	out, err := Resolve("player", p, ".HP")
	require.NoError(t, err)
	assert.Contains(t, out, "player.HP: int")
	assert.Contains(t, out, "10")
}

func TestResolveIndex(t *testing.T) {
	xs := []int{10, 20, 30}
	out, err := Resolve("xs", xs, "[1]")
	require.NoError(t, err)
	assert.Contains(t, out, "20")
}

func TestResolveSlice(t *testing.T) {
	xs := []int{10, 20, 30, 40}
	out, err := Resolve("xs", xs, "[1..3]")
	require.NoError(t, err)
	assert.Contains(t, out, "[](2 items) 0: 20, 1: 30")
}

func TestResolveMissingFieldReportsType(t *testing.T) {
	p := player{Name: "z"}
	_, err := Resolve("player", p, ".Level")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player")
}

func TestFormatByteStringQuotesShortSlice(t *testing.T) {
	assert.Equal(t, `"hi"`, Format([]byte("hi"), 3, DefaultMaxBytes))
}

func TestFormatByteStringTruncatesLongSlice(t *testing.T) {
	b := make([]byte, 200)
	for i := range b {
		b[i] = 'a'
	}
	out := Format(b, 3, DefaultMaxBytes)
	assert.Contains(t, out, "...(200 bytes)")
	assert.Equal(t, strconv.Quote(string(b[:120]))+"...(200 bytes)", out)
}

func TestFormatSequenceCapsAtTwentyElements(t *testing.T) {
	xs := make([]int, 25)
	for i := range xs {
		xs[i] = i
	}
	out := Format(xs, 3, DefaultMaxBytes)
	assert.True(t, strings.HasPrefix(out, "[](25 items) 0: 0, 1: 1"))
	assert.Contains(t, out, "19: 19")
	assert.NotContains(t, out, "20: 20")
	assert.Contains(t, out, "... (25 items total)")
}

type manyFields struct {
	F1, F2, F3, F4, F5, F6, F7, F8, F9, F10 int
	F11, F12, F13, F14, F15, F16, F17, F18, F19, F20 int
}

func TestFormatStructCollapsesBeyondSixteenFields(t *testing.T) {
	var m manyFields
	out := Format(m, 3, DefaultMaxBytes)
	assert.Equal(t, "manyFields{ ... }", out)
}

func TestFormatInterfaceRecursesAtSameDepth(t *testing.T) {
	b := boxed{V: point{X: 1, Y: 2}}
	assert.Equal(t, "boxed{V: point{X: 1, Y: 2}}", Format(b, 2, DefaultMaxBytes))
}

func TestFormatPointerToFuncRendersTypeName(t *testing.T) {
	f := func() {}
	assert.Equal(t, "*func()", Format(&f, 3, DefaultMaxBytes))
}

type nested1 struct{ Next *nested2 }
type nested2 struct{ Next *nested3 }
type nested3 struct{ Next *nested4 }
type nested4 struct{ Leaf int }

func TestResolveRefusesPathBeyondThreeStructLevels(t *testing.T) {
	root := nested1{Next: &nested2{Next: &nested3{Next: &nested4{Leaf: 9}}}}
	_, err := Resolve("root", root, ".Next.Next.Next.Leaf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "struct levels")
}

func TestResolveAllowsPathAtThreeStructLevels(t *testing.T) {
	root := nested1{Next: &nested2{Next: &nested3{Next: &nested4{Leaf: 9}}}}
	out, err := Resolve("root", root, ".Next.Next.Next")
	require.NoError(t, err)
	assert.Contains(t, out, "9")
}

func TestResolveRefusesFieldAccessOnWideStruct(t *testing.T) {
	type wide struct {
		F1, F2, F3, F4, F5, F6, F7, F8, F9, F10          int
		F11, F12, F13, F14, F15, F16, F17, F18, F19, F20 int
		F21                                               int
	}
	var w wide
	_, err := Resolve("w", w, ".F1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing field access")
}

func TestFormatTerminatesOnSelfReferentialPointer(t *testing.T) {
	var a interface{}
	a = &a

	done := make(chan string, 1)
	go func() { done <- Format(a, 3, DefaultMaxBytes) }()
	select {
	case out := <-done:
		assert.NotEmpty(t, out)
	case <-time.After(2 * time.Second):
		t.Fatal("Format did not terminate on a self-referential pointer")
	}
}
