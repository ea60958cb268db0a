// Package file implements backend.Storage over a local path: a raw block
// device (e.g. /dev/sdb) or a plain disk image file.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ext2fs/ext2view/backend"
)

type rawBackend struct {
	storage *os.File
}

// New wraps an already-open *os.File as a backend.Storage.
func New(f *os.File) backend.Storage {
	return rawBackend{storage: f}
}

// OpenFromPath opens a path to a device or image for read-only access.
// Should pass a path to a block device (e.g. /dev/sda) or a disk image file.
// The provided device/file must exist at the time this is called.
func OpenFromPath(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass device or file name")
	}
	if _, err := os.Stat(pathName); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("provided device/file %s does not exist", pathName)
	}
	f, err := os.OpenFile(pathName, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open device %s read-only: %w", pathName, err)
	}
	return rawBackend{storage: f}, nil
}

var _ backend.Storage = rawBackend{}

func (f rawBackend) Sys() (*os.File, error) {
	return f.storage, nil
}

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

func (f rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	return f.storage.ReadAt(p, off)
}

func (f rawBackend) Seek(offset int64, whence int) (int64, error) {
	return f.storage.Seek(offset, whence)
}
