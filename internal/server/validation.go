package server

import (
	"path/filepath"
	"strings"
)

// sanitizeFilename reduces a client-supplied filename to a safe display
// name. The physical storage key never uses this name, so sanitisation only
// has to keep listings and downloads honest, not defend the object store.
func sanitizeFilename(filename string) string {
	// Drop any path components, whichever separator the client used.
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)

	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = strings.Trim(filename, " .")

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		filename = filename[:255-len(ext)] + ext
	}

	if filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}
