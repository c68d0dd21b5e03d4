package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStorageDir creates the parent directory of a storage file path.
// Used for the SQLite database before the first open.
func EnsureStorageDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "/" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
