package receipt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxConflictAttempts = 1000

var (
	// ErrConflictUnresolved means every probed suffix already exists, which
	// points at an environment problem rather than normal collision churn
	ErrConflictUnresolved = errors.New("could not resolve filename conflict")

	// ErrPathTraversal means a candidate name would escape the source
	// directory. It must never be downgraded to a warning.
	ErrPathTraversal = errors.New("path traversal detected")
)

// Renamer resolves filename conflicts and performs in-place renames.
//
// ResolveConflict is a read-then-decide probe against the directory's current
// contents; callers renaming concurrently into the same directory must hold
// one lock across ResolveConflict and Rename or two workers can both pass the
// existence check before either renames.
type Renamer struct{}

// ResolveConflict returns filename unchanged when it is free in dir, otherwise
// the first stem_n.ext (n = 1, 2, ...) not present in the directory.
func (Renamer) ResolveConflict(dir, filename string) (string, error) {
	if !exists(filepath.Join(dir, filename)) {
		return filename, nil
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for n := 1; n <= maxConflictAttempts; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !exists(filepath.Join(dir, candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrConflictUnresolved, maxConflictAttempts)
}

// Rename moves source to newName inside source's own directory and returns
// the new path. The traversal check runs even in dry-run mode; dry-run only
// skips the filesystem mutation.
func (Renamer) Rename(source, newName string, dryRun bool) (string, error) {
	dir := filepath.Dir(source)
	dest := filepath.Join(dir, newName)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving source directory: %w", err)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving destination: %w", err)
	}
	if filepath.Dir(absDest) != absDir {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, newName)
	}

	if dryRun {
		return dest, nil
	}
	if err := os.Rename(source, dest); err != nil {
		return "", fmt.Errorf("renaming file: %w", err)
	}
	return dest, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
