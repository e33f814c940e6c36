// Package adapter contains infrastructure adapters for the tracefix CLI.
package adapter

import (
	"os"
	"path/filepath"
	"strings"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

// SourceFSAdapter abstracts filesystem operations the workflow relies on
// when scanning user projects. It hides direct `os` access so the workflow
// logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Walk traverses the provided root path, calling fn for every entry.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path so the workflow can distinguish
	// files from directories.
	FileInfo(path m.Path) (os.FileInfo, error)

	// RelPath returns the slash-separated relative path from base to target,
	// falling back to target when the two share no prefix.
	RelPath(base, target m.Path) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type into the workflow.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the concrete implementation backed by the os
// package.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to be
// wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over all entries under root.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn FilepathWalkFunc) error {
	return filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		return fn(path, info, err)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target in slash form.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) m.Path {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return m.Path(filepath.ToSlash(string(target)))
	}

	return m.Path(filepath.ToSlash(rel))
}

// IsRustSource reports whether the path names a Rust file tracefix should
// process. Generated build scripts are never touched.
func IsRustSource(path string) bool {
	if filepath.Ext(path) != ".rs" {
		return false
	}

	return filepath.Base(path) != "build.rs"
}

// NormalizePatternPath converts a path to the slash form exclude globs are
// matched against.
func NormalizePatternPath(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "./")
}
