package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotRegular indicates the target exists but is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
	// ErrInvalidName indicates the requested file name is empty, contains
	// path separators, or contains characters rejected on common filesystems.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTargetExists indicates the rename destination is already taken.
	ErrTargetExists = errors.New("target file already exists")
)

// invalidNameChars are rejected in new names for portability with the usual
// suspects among filesystems.
const invalidNameChars = `<>:"|?*`

// Rename renames the file at path to newName within the same directory and
// returns the new path. newName must be a bare file name, not a path.
func Rename(path, newName string) (string, error) {
	if err := checkRegular(path); err != nil {
		return "", err
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return "", fmt.Errorf("%w: %q contains one of %s", ErrInvalidName, name, invalidNameChars)
	}

	target := filepath.Join(filepath.Dir(path), name)
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrTargetExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("check rename target: %w", err)
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return target, nil
}

// Delete removes the regular file at path.
func Delete(path string) error {
	if err := checkRegular(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func checkRegular(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}
	return nil
}
