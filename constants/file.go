package constants

import "strings"

// Document classes assigned by first-page text probing.
const (
	DocTypeText    = "TEXT"
	DocTypeScanned = "SCANNED"
)

// AllowedExtensions holds the default allowed file extensions for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
