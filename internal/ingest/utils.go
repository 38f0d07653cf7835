package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dnkideas/invoice-ingest/constants"
)

// ListDocuments returns the absolute paths of the processable documents in
// dir, sorted case-insensitively by name so batches run in a stable order.
// Hidden files and unsupported extensions are ignored.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", e.Name(), err)
		}
		files = append(files, abs)
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, nil
}

var unsafeFilenameChars = strings.NewReplacer(
	"<", "-", ">", "-", ":", "-", `"`, "-",
	"/", "-", `\`, "-", "|", "-", "?", "-", "*", "-",
)

// SanitizeFilename makes a name safe for use as an output file on common
// filesystems.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.Replace(name)
}
