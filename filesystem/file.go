package filesystem

import (
	"io"
	"io/fs"
)

// File is a reference to a single open file on disk.
type File interface {
	fs.ReadDirFile
	io.Reader
	io.Seeker
}
