// Package ext2 decodes a read-only ext2 filesystem from a backend.Storage
// (spec.md §§2-5). It never writes to the backing storage.
package ext2

import (
	"os"
	"path"

	"github.com/ext2fs/ext2view/backend"
	"github.com/ext2fs/ext2view/filesystem"
	"github.com/sirupsen/logrus"
)

// FileSystem is a single mounted ext2 filesystem (spec.md §3: one active
// session has exactly one of these, addressing a single partition_start
// window of the backing storage via backend.Storage/backend.SubStorage).
type FileSystem struct {
	storage backend.Storage
	reader  *blockReader
	sb      *superblock
	size    int64
}

// Read decodes the superblock at the fixed 1024-byte offset and validates
// its magic (spec.md §4.2, §4.3 step 1-2). It returns *Error with
// KindNotExt2 if the magic does not match, KindReadingDisk if the
// underlying storage faults.
func Read(storage backend.Storage, size int64) (*FileSystem, error) {
	reader := newBlockReader(storage)
	raw, err := reader.readAt(superblockOffset, superblockReadSize)
	if err != nil {
		return nil, err
	}
	sb, err := superblockFromBytes(raw)
	if err != nil {
		return nil, err
	}
	if sb.magic != superMagic {
		return nil, newError(KindNotExt2, "Read", nil)
	}
	if bs := sb.blockSize(); bs < minBlockSize || bs > maxBlockSize {
		return nil, newError(KindNotExt2, "Read", nil)
	}
	if sb.inodesPerGroup == 0 {
		return nil, newError(KindNotExt2, "Read", nil)
	}
	logrus.WithFields(logrus.Fields{
		"blockSize":   sb.blockSize(),
		"inodesCount": sb.inodesCount,
		"blocksCount": sb.blocksCount,
	}).Debug("ext2 superblock decoded")

	return &FileSystem{storage: storage, reader: reader, sb: sb, size: size}, nil
}

func (fs *FileSystem) Type() filesystem.Type { return filesystem.TypeExt2 }

// Mkdir always fails: this module only ever decodes ext2, never writes it
// (spec.md §1 Non-goals).
func (fs *FileSystem) Mkdir(pathname string) error { return filesystem.ErrReadonlyFilesystem }

func (fs *FileSystem) Chmod(name string, mode os.FileMode) error {
	return filesystem.ErrReadonlyFilesystem
}

func (fs *FileSystem) Chown(name string, uid, gid int) error {
	return filesystem.ErrReadonlyFilesystem
}

func (fs *FileSystem) Remove(pathname string) error { return filesystem.ErrReadonlyFilesystem }

// Label is always "": ext2 volume labels live past the 84 bytes this core
// decodes, and spec.md's glossary does not call out label display.
func (fs *FileSystem) Label() string { return "" }

func (fs *FileSystem) SetLabel(label string) error { return filesystem.ErrReadonlyFilesystem }

// ReadDir lists the children of pathname (spec.md §4.6, the "dir" operation).
func (fs *FileSystem) ReadDir(pathname string) ([]os.FileInfo, error) {
	_, in, err := fs.resolvePath(pathname)
	if err != nil {
		return nil, err
	}
	if !in.isDir() {
		return nil, newError(KindFileMissing, "ReadDir", nil)
	}
	entries, err := fs.readDirEntries(in)
	if err != nil {
		return nil, err
	}
	entries = visibleDirEntries(entries)
	out := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		childInode, err := fs.readInode(e.inode)
		if err != nil {
			return nil, err
		}
		out = append(out, &fileInfo{name: e.name, in: childInode, inode: e.inode})
	}
	return out, nil
}

// OpenFile opens pathname for reading (spec.md §4.7-4.9, the "read"
// operation). Any flag beyond os.O_RDONLY is rejected: the filesystem is
// read-only end to end.
func (fs *FileSystem) OpenFile(pathname string, flag int) (filesystem.File, error) {
	if flag != os.O_RDONLY {
		return nil, filesystem.ErrReadonlyFilesystem
	}
	inodeNum, in, err := fs.resolvePath(pathname)
	if err != nil {
		return nil, err
	}
	return newFile(fs, path.Base(pathname), inodeNum, in)
}
