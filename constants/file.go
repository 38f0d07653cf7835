package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for document ingestion.
// The pipeline only submits PDFs to the document model.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
