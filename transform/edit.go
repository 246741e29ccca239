package transform

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Edit is a single textual patch against the original byte stream.
// Offset and DeleteLen are byte offsets into the original source;
// Insert is the replacement text.
type Edit struct {
	Offset    int
	DeleteLen int
	Insert    string
}

// ApplyEdits sorts edits by offset and emits the patched source in a
// single linear output pass. The walker guarantees edits never overlap; Apply still
// checks defensively rather than silently producing corrupt output.
func ApplyEdits(src []byte, edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out strings.Builder
	out.Grow(len(src))

	pos := 0
	for _, e := range sorted {
		if e.Offset < pos {
			return "", errors.Errorf("overlapping edit at offset %d (previous edit ended at %d)", e.Offset, pos)
		}
		if e.Offset > len(src) {
			return "", errors.Errorf("edit offset %d past end of %d-byte source", e.Offset, len(src))
		}
		out.Write(src[pos:e.Offset])
		out.WriteString(e.Insert)
		pos = e.Offset + e.DeleteLen
		if pos > len(src) {
			return "", errors.Errorf("edit at offset %d deletes past end of source", e.Offset)
		}
	}
	out.Write(src[pos:])
	return out.String(), nil
}
