package transform

import (
	"bytes"
	"fmt"
	"strings"
)

// headerMarker is the auto-generated marker comment the header step
// inserts. Its presence in a file is also the idempotence guard: a
// second transform pass over already-processed output must not
// insert a second header.
const headerMarker = "// kdbg:instrumented"

// DefaultRuntimeImportName is the package name assumed for the runtime
// import when no runtime_import_path is given.
const DefaultRuntimeImportName = "debug"

// HeaderAlreadyPresent reports whether src already carries a kdbg
// header.
func HeaderAlreadyPresent(src []byte) bool {
	return strings.Contains(string(src), headerMarker)
}

// PlanHeader computes the insertion point and text for the generated
// header: the marker comment, a standard-library import if not already
// present, and the runtime import.
func PlanHeader(src []byte, runtimeImportPath string) Edit {
	offset := headerInsertOffset(src)

	runtimeImport := runtimeImportPath
	if runtimeImport == "" {
		runtimeImport = DefaultRuntimeImportName
	}

	text := string(src)

	var b strings.Builder
	b.WriteString(headerMarker)
	b.WriteString(" - generated, do not edit below this line by hand\n")
	if !strings.Contains(text, `import "std";`) {
		b.WriteString(`import "std";` + "\n")
	}
	runtimeImportLine := fmt.Sprintf("import %q;", runtimeImport)
	if !strings.Contains(text, runtimeImportLine) {
		b.WriteString(runtimeImportLine + "\n")
	}

	return Edit{Offset: offset, DeleteLen: 0, Insert: b.String()}
}

// headerInsertOffset finds the byte offset immediately after any
// leading byte-order mark and any leading run of `//` comment lines
// (the file's module-doc-comment block, if any), the position a
// generated import line should be inserted after.
func headerInsertOffset(src []byte) int {
	offset := 0
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		offset = 3
	}
	for offset < len(src) {
		rest := src[offset:]
		trimmed := strings.TrimLeft(string(rest), " \t")
		if !strings.HasPrefix(trimmed, "//") {
			break
		}
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return len(src)
		}
		offset += nl + 1
	}
	return offset
}
