// Package sandbox confines file reads and writes to a root directory.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessDenied is returned when a path resolves outside the root.
var ErrAccessDenied = errors.New("access denied")

// Dir is a root directory that all paths are resolved against.
type Dir struct {
	root string
}

// New returns a Dir rooted at the absolute form of root.
func New(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("sandbox root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root %s: %w", root, err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string { return d.root }

// Resolve joins name onto the root and returns the absolute path. The
// result must lie strictly inside the root; the root itself and anything
// reached through ".." or an absolute name is denied.
func (d *Dir) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s is absolute", ErrAccessDenied, name)
	}
	target := filepath.Join(d.root, name)
	if !strings.HasPrefix(target, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrAccessDenied, name, d.root)
	}
	return target, nil
}

// ReadFile reads a file inside the root.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	path, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// WriteFile writes data to a file inside the root, creating parent
// directories as needed.
func (d *Dir) WriteFile(name string, data []byte) error {
	path, err := d.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
