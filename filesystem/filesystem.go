// Package filesystem provides interfaces and constants required for
// filesystem implementations. The one interesting implementation is
// github.com/ext2fs/ext2view/filesystem/ext2.
package filesystem

import (
	"errors"
	"os"
)

var (
	ErrNotSupported       = errors.New("method not supported by this filesystem")
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// FileSystem is a reference to a single filesystem on a disk. Mutating
// methods return ErrReadonlyFilesystem: every implementation in this module
// is read-only (spec.md §1 Non-goals).
type FileSystem interface {
	// Type returns the type of filesystem.
	Type() Type
	// Mkdir makes a directory. Always ErrReadonlyFilesystem.
	Mkdir(pathname string) error
	// Chmod changes the mode of the named file. Always ErrReadonlyFilesystem.
	Chmod(name string, mode os.FileMode) error
	// Chown changes the numeric uid and gid of the named file. Always ErrReadonlyFilesystem.
	Chown(name string, uid, gid int) error
	// ReadDir reads the contents of a directory.
	ReadDir(pathname string) ([]os.FileInfo, error)
	// OpenFile opens a handle to read a file. Any flag other than os.O_RDONLY returns ErrReadonlyFilesystem.
	OpenFile(pathname string, flag int) (File, error)
	// Remove removes the named file or directory. Always ErrReadonlyFilesystem.
	Remove(pathname string) error
	// Label returns the volume label, or "" if none.
	Label() string
	// SetLabel changes the label. Always ErrReadonlyFilesystem.
	SetLabel(label string) error
}

// Type represents the type of filesystem found on a disk or partition.
type Type int

const (
	// TypeExt2 is an ext2 compatible filesystem.
	TypeExt2 Type = iota
)
