package transform

import (
	"regexp"
	"strings"
)

// buildFileName is the host build descriptor's well-known filename,
// which the transformer rewrites rather than instruments.
const buildFileName = "build.kdl"

// IsBuildFile reports whether path names the host build descriptor.
func IsBuildFile(path string) bool {
	return path == buildFileName || strings.HasSuffix(path, "/"+buildFileName)
}

var hostPathRelPattern = regexp.MustCompile(`host_path\("\.\./([^"]*)"\)`)

// RewriteBuildFile rewrites every host_path("../X") occurrence to
// account for the instrumented descriptor running one directory deeper,
// from a nested processed/ directory. This is a
// narrow textual pass and deliberately does not parse the file as the
// target language - the build descriptor has its own grammar, out of
// scope here.
func RewriteBuildFile(src []byte) (string, int) {
	count := 0
	out := hostPathRelPattern.ReplaceAllStringFunc(string(src), func(m string) string {
		count++
		sub := hostPathRelPattern.FindStringSubmatch(m)
		return `host_path("../../` + sub[1] + `")`
	})
	return out, count
}
