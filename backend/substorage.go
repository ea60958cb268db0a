package backend

import (
	"io"
	"io/fs"
	"os"
)

// SubStorage is a window onto an underlying Storage starting at offset and
// spanning size bytes. This is how the module addresses a partition as if
// it were its own device: partition_start (spec.md §3) becomes the offset
// of a SubStorage wrapping the whole-disk Storage.
type SubStorage struct {
	underlying Storage
	offset     int64
	size       int64
}

// Sub creates a SubStorage view of u starting at offset, size bytes long.
func Sub(u Storage, offset, size int64) Storage {
	return SubStorage{underlying: u, offset: offset, size: size}
}

func (s SubStorage) Stat() (fs.FileInfo, error) {
	return s.underlying.Stat()
}

func (s SubStorage) Read(b []byte) (int, error) {
	return s.underlying.Read(b)
}

func (s SubStorage) Close() error {
	return s.underlying.Close()
}

func (s SubStorage) ReadAt(p []byte, off int64) (n int, err error) {
	return s.underlying.ReadAt(p, s.offset+off)
}

func (s SubStorage) Seek(offset int64, whence int) (int64, error) {
	var (
		pos int64
		err error
	)
	switch whence {
	case io.SeekStart:
		pos, err = s.underlying.Seek(offset+s.offset, io.SeekStart)
	case io.SeekCurrent:
		pos, err = s.underlying.Seek(offset, io.SeekCurrent)
	case io.SeekEnd:
		pos, err = s.underlying.Seek(s.offset+s.size+offset, io.SeekStart)
	default:
		return -1, ErrNotSuitable
	}
	if err != nil {
		return -1, err
	}
	return pos - s.offset, nil
}

func (s SubStorage) Sys() (*os.File, error) {
	return s.underlying.Sys()
}
