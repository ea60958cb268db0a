// Package testhelper provides an in-memory backend.Storage test double so
// filesystem tests can exercise hand-built byte fixtures without touching a
// real file or device.
package testhelper

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/ext2fs/ext2view/backend"
)

// MemStorage is a backend.Storage backed entirely by an in-memory buffer.
type MemStorage struct {
	data []byte
	pos  int64
}

// NewMemStorage wraps data (not copied) as a backend.Storage.
func NewMemStorage(data []byte) *MemStorage {
	return &MemStorage{data: data}
}

var _ backend.Storage = (*MemStorage)(nil)

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memFileInfo{size: int64(len(m.data))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) Close() error { return nil }

func (m *MemStorage) ReadAt(b []byte, offset int64) (int, error) {
	if offset < 0 || offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[offset:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = m.pos + offset
	case io.SeekEnd:
		newPos = int64(len(m.data)) + offset
	}
	if newPos < 0 {
		return 0, os.ErrInvalid
	}
	m.pos = newPos
	return m.pos, nil
}

// Sys has no OS file to return: in-memory fixtures never need ioctls.
func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

type memFileInfo struct {
	size int64
}

func (m memFileInfo) Name() string       { return "memstorage" }
func (m memFileInfo) Size() int64        { return m.size }
func (m memFileInfo) Mode() fs.FileMode  { return 0644 }
func (m memFileInfo) ModTime() time.Time { return time.Time{} }
func (m memFileInfo) IsDir() bool        { return false }
func (m memFileInfo) Sys() interface{}   { return nil }
