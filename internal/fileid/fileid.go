// Package fileid derives the source key that ties imported contacts to the
// file they came from.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// SourceID returns a stable source key for the given absolute path. Equivalent
// spellings of the same path ("/a/b", "/a/./b/") give the same key, so
// re-importing a file replaces its contacts and removing it deletes them.
func SourceID(absolutePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return prefix + hex.EncodeToString(hash[:])
}

// IsSourceID reports whether s looks like a key produced by SourceID.
func IsSourceID(s string) bool {
	return len(s) == len(prefix)+sha256.Size*2 && s[:len(prefix)] == prefix
}
