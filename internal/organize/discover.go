package organize

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExtensions is the fixed set of file types the pipeline accepts,
// matched case-insensitively against the on-disk extension
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tiff": {},
	".tif":  {},
}

// Discover recursively finds all supported files under root, deduplicated
// and sorted by path
func Discover(root string) ([]string, error) {
	seen := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := supportedExtensions[ext]; ok {
			seen[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}
