// Package fileid derives stable embedding ids for files on disk.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// ForPath returns a name-based (version 5) UUID for the cleaned absolute path, so
// re-indexing a file overwrites its previous embedding instead of adding a new one.
func ForPath(absolutePath string) string {
	name := "file://" + filepath.ToSlash(filepath.Clean(absolutePath))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
