// Package output manages the directory generated artifacts are written to.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrInvalidName indicates a file name that is empty or not a plain name.
var ErrInvalidName = errors.New("invalid artifact file name")

// ErrFileNotFound indicates an artifact file is missing on disk. It always
// wraps the underlying fs.ErrNotExist.
var ErrFileNotFound = errors.New("artifact file not found")

// Dir is an output directory. Files are only ever created, never rewritten.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root. The path is made absolute so stored
// file paths stay valid regardless of the working directory.
func NewDir(root string) (Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Dir{}, fmt.Errorf("resolve output directory: %w", err)
	}
	return Dir{root: abs}, nil
}

// Root returns the absolute directory path.
func (d Dir) Root() string { return d.root }

// Ensure creates the directory if it doesn't exist.
func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.root, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// Write creates name inside the directory and returns its full path. It
// fails if the file already exists.
func (d Dir) Write(name string, content []byte) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := d.Ensure(); err != nil {
		return "", err
	}

	path := filepath.Join(d.root, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", fmt.Errorf("writing file %s: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("writing file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing file %s: %w", name, err)
	}
	return path, nil
}

// Read returns the content of the file at path.
func (d Dir) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return b, nil
}

// Exists reports whether a regular file is present at path.
func (d Dir) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the file at path. A missing file is not an error.
func (d Dir) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing file %s: %w", path, err)
	}
	return nil
}
