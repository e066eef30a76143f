// Package vfs provides the small filesystem capability set the transaction
// store needs, implemented by two variants: an OS-backed filesystem rooted
// at a directory, and an in-memory tree for the engine's in-memory mode.
// Both variants give the transaction store's atomic-write protocol the same
// observable behavior without the store needing to know which one it holds.
package vfs

import (
	"io/fs"
)

// ErrNotExist is returned by ReadFile and Size for a path that does not
// exist (Rename reports a missing source with an error matching it). It is
// fs.ErrNotExist itself, so callers can use errors.Is(err, fs.ErrNotExist)
// interchangeably.
var ErrNotExist = fs.ErrNotExist

// DirEntry describes one entry returned by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS is the filesystem capability set the transaction store is built
// against. Implementations must be safe for concurrent use.
type FS interface {
	// Exists reports whether path names a regular file.
	Exists(path string) (bool, error)

	// ReadFile returns the full contents of path, or ErrNotExist.
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or truncates path with the given contents.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Rename moves oldpath to newpath, replacing newpath if it exists.
	Rename(oldpath, newpath string) error

	// Remove deletes path. It is not an error if path does not exist.
	Remove(path string) error

	// Size returns the size in bytes of path, or ErrNotExist.
	Size(path string) (int64, error)

	// MkdirAll ensures dir and all parents exist.
	MkdirAll(dir string, perm fs.FileMode) error

	// ReadDir lists the entries of dir. It returns an empty slice, not an
	// error, for a directory that does not exist.
	ReadDir(dir string) ([]DirEntry, error)

	// TempName returns a filesystem-safe random suffix for use in a
	// temp-file name, without touching the filesystem.
	TempName() (string, error)
}
