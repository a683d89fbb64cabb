package utils

import (
	"path/filepath"
	"strings"
)

// AllowedImgExtensions are the only upload types forwarded to the
// identification provider.
var AllowedImgExtensions = []string{"png", "jpg", "jpeg"}

// AllowedFile reports whether the filename carries one of the allowed
// extensions (case-insensitive).
func AllowedFile(filename string, extensions []string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SecureFilename strips path components and replaces everything outside
// [A-Za-z0-9._-] with underscores, so the result is safe to join with the
// upload directory.
func SecureFilename(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
