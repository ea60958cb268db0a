package ext2

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// fileInfo adapts a decoded inode to io/fs.FileInfo.
type fileInfo struct {
	name  string
	in    *inode
	inode uint32
}

func (fi *fileInfo) Name() string { return fi.name }
func (fi *fileInfo) Size() int64  { return int64(fi.in.size()) }
func (fi *fileInfo) Mode() fs.FileMode {
	m := fs.FileMode(fi.in.mode & 0777)
	if fi.in.isDir() {
		m |= fs.ModeDir
	}
	if fi.in.isSymlink() {
		m |= fs.ModeSymlink
	}
	return m
}
func (fi *fileInfo) ModTime() time.Time { return time.Unix(int64(fi.in.mtime), 0) }
func (fi *fileInfo) IsDir() bool        { return fi.in.isDir() }
func (fi *fileInfo) Sys() interface{}   { return fi.inode }

// dirEntryInfo adapts a dirEntry (plus its resolved inode) to io/fs.DirEntry.
type dirEntryInfo struct {
	entry dirEntry
	in    *inode
}

func (d *dirEntryInfo) Name() string { return d.entry.name }
func (d *dirEntryInfo) IsDir() bool   { return d.in.isDir() }
func (d *dirEntryInfo) Type() fs.FileMode {
	info := &fileInfo{name: d.entry.name, in: d.in, inode: d.entry.inode}
	return info.Mode().Type()
}
func (d *dirEntryInfo) Info() (fs.FileInfo, error) {
	return &fileInfo{name: d.entry.name, in: d.in, inode: d.entry.inode}, nil
}

// File is an open handle onto a single ext2 inode, satisfying both
// filesystem.File (for regular-file Read/Seek) and fs.ReadDirFile (for
// directories opened via OpenFile, spec.md §5).
type File struct {
	fs       *FileSystem
	name     string
	inodeNum uint32
	in       *inode
	blocks   []uint64
	pos      int64

	// symlinkTarget holds a fast symlink's target text, read straight out
	// of the inode's block-pointer array rather than through blocks.
	symlinkTarget []byte

	entries []dirEntry
	dirRead int
}

func newFile(fsys *FileSystem, name string, inodeNum uint32, in *inode) (*File, error) {
	f := &File{fs: fsys, name: name, inodeNum: inodeNum, in: in}
	if target, ok := in.fastSymlinkTarget(); ok {
		f.symlinkTarget = []byte(target)
		return f, nil
	}
	if in.isFile() || in.isSymlink() {
		blocks, err := fsys.blockList(in)
		if err != nil {
			return nil, err
		}
		f.blocks = blocks
	}
	return f, nil
}

func (f *File) Stat() (fs.FileInfo, error) {
	return &fileInfo{name: path.Base(f.name), in: f.in, inode: f.inodeNum}, nil
}

// Read implements io.Reader over the file's materialized block list
// (spec.md §4.9): it walks blocks lazily and trims the read to the
// inode's logical size so a final partial block never bleeds padding.
func (f *File) Read(p []byte) (int, error) {
	if f.in.isDir() {
		return 0, newError(KindInternal, "Read", nil)
	}
	size := int64(f.in.size())
	if f.pos >= size {
		return 0, io.EOF
	}
	if f.symlinkTarget != nil {
		n := copy(p, f.symlinkTarget[f.pos:])
		f.pos += int64(n)
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	blockSize := int64(f.fs.sb.blockSize())
	total := 0
	for total < len(p) && f.pos < size {
		blockIdx := f.pos / blockSize
		if int(blockIdx) >= len(f.blocks) {
			break
		}
		offsetInBlock := f.pos % blockSize
		raw, err := f.fs.reader.readBlock(f.blocks[blockIdx], uint32(blockSize))
		if err != nil {
			return total, err
		}
		avail := blockSize - offsetInBlock
		if remaining := size - f.pos; avail > remaining {
			avail = remaining
		}
		n := copy(p[total:], raw[offsetInBlock:offsetInBlock+avail])
		total += n
		f.pos += int64(n)
		if int64(n) < avail {
			break
		}
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = int64(f.in.size()) + offset
	default:
		return 0, newError(KindInternal, "Seek", nil)
	}
	if newPos < 0 {
		return 0, newError(KindInternal, "Seek", nil)
	}
	f.pos = newPos
	return f.pos, nil
}

// ReadDir implements fs.ReadDirFile for directory handles.
func (f *File) ReadDir(n int) ([]fs.DirEntry, error) {
	if !f.in.isDir() {
		return nil, newError(KindFileMissing, "ReadDir", nil)
	}
	if f.entries == nil {
		entries, err := f.fs.readDirEntries(f.in)
		if err != nil {
			return nil, err
		}
		f.entries = visibleDirEntries(entries)
	}
	if n <= 0 {
		out := make([]fs.DirEntry, 0, len(f.entries)-f.dirRead)
		for ; f.dirRead < len(f.entries); f.dirRead++ {
			de, err := f.entryInfo(f.entries[f.dirRead])
			if err != nil {
				return nil, err
			}
			out = append(out, de)
		}
		return out, nil
	}
	var out []fs.DirEntry
	for len(out) < n && f.dirRead < len(f.entries) {
		de, err := f.entryInfo(f.entries[f.dirRead])
		if err != nil {
			return nil, err
		}
		out = append(out, de)
		f.dirRead++
	}
	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

func (f *File) entryInfo(e dirEntry) (fs.DirEntry, error) {
	childInode, err := f.fs.readInode(e.inode)
	if err != nil {
		return nil, err
	}
	return &dirEntryInfo{entry: e, in: childInode}, nil
}

func (f *File) Close() error { return nil }
