// Package backend defines the device-handle abstraction the rest of the
// module reads through. An ext2 image never needs more than read access,
// so Storage deliberately has no write half (see DESIGN.md).
package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

var ErrNotSuitable = errors.New("backing file is not suitable")

// File is a readable, seekable, closable handle onto a disk image or block device.
type File interface {
	fs.File
	io.ReaderAt
	io.Seeker
	io.Closer
}

// Storage is the device handle consumed by the rest of the module (spec.md §6).
type Storage interface {
	File
	// Sys returns the underlying OS file, for ioctl calls that need a raw fd.
	// Returns ErrNotSuitable for backends with no OS file (e.g. in-memory test doubles).
	Sys() (*os.File, error)
}
