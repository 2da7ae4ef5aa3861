package dirsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ValidateSourceDir checks that path exists and is a directory. It
// returns the cleaned path.
func ValidateSourceDir(path string) (string, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("source directory %q: %w", path, ErrPathNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("source directory %q: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %q: %w", path, ErrNotADirectory)
	}
	return path, nil
}

// ValidateDestDir checks that path is either absent or a directory. It
// returns the cleaned path.
func ValidateDestDir(path string) (string, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("destination directory %q: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("destination %q: %w", path, ErrNotADirectory)
	}
	return path, nil
}
