package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SafeWrite replaces filePath with data in one step: readers see either the
// old content or the new one, never a partial write. Parent directories are
// created as needed; files private to the owner get a private parent.
func SafeWrite(filePath string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(filePath)
	if err := EnsureDir(dir, dirPerm(perm)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(filePath), err)
	}
	return nil
}

// dirPerm derives a directory mode from a file mode
func dirPerm(perm os.FileMode) os.FileMode {
	if perm&0o077 == 0 {
		return 0o700
	}
	return 0o755
}

// EnsureDir creates a directory and its parents if missing
func EnsureDir(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// RemoveDir removes a directory tree. A missing directory is not an error.
func RemoveDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	return nil
}

// Exists reports whether path exists
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
