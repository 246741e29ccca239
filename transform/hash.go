package transform

import (
	"hash/fnv"
	"path/filepath"
)

// FileHash computes the FNV-1a 32-bit hash of path's basename, baked
// into every injected call site for comparison against a breakpoint
// entry's file field.
func FileHash(path string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(filepath.Base(path)))
	return h.Sum32()
}

// FullPathHash is the fallback hash: matched against a breakpoint
// entry's full path when basename matching misses.
func FullPathHash(path string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(path))
	return h.Sum32()
}
