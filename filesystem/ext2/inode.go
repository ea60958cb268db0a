package ext2

import "encoding/binary"

// inode file-type bits carried in the top nibble of i_mode.
const (
	modeTypeMask = 0xF000
	modeFIFO     = 0x1000
	modeCharDev  = 0x2000
	modeDir      = 0x4000
	modeBlockDev = 0x6000
	modeRegular  = 0x8000
	modeSymlink  = 0xA000
	modeSocket   = 0xC000
)

const directPointerCount = 12

// inode is the decoded 128-byte on-disk inode (spec.md §4.4).
type inode struct {
	mode       uint16
	uid        uint16
	sizeLow    uint32
	atime      uint32
	ctime      uint32
	mtime      uint32
	dtime      uint32
	gid        uint16
	linksCount uint16
	blocks512  uint32
	flags      uint32
	block      [15]uint32
	generation uint32
	fileACL    uint32
	sizeHigh   uint32 // dir_acl for directories, high 32 bits of size for regular files
}

func inodeFromBytes(b []byte) (*inode, error) {
	if len(b) < inodeSize {
		return nil, newError(KindInternal, "inodeFromBytes", nil)
	}
	in := &inode{
		mode:       binary.LittleEndian.Uint16(b[0x00:0x02]),
		uid:        binary.LittleEndian.Uint16(b[0x02:0x04]),
		sizeLow:    binary.LittleEndian.Uint32(b[0x04:0x08]),
		atime:      binary.LittleEndian.Uint32(b[0x08:0x0c]),
		ctime:      binary.LittleEndian.Uint32(b[0x0c:0x10]),
		mtime:      binary.LittleEndian.Uint32(b[0x10:0x14]),
		dtime:      binary.LittleEndian.Uint32(b[0x14:0x18]),
		gid:        binary.LittleEndian.Uint16(b[0x18:0x1a]),
		linksCount: binary.LittleEndian.Uint16(b[0x1a:0x1c]),
		blocks512:  binary.LittleEndian.Uint32(b[0x1c:0x20]),
		flags:      binary.LittleEndian.Uint32(b[0x20:0x24]),
		generation: binary.LittleEndian.Uint32(b[0x64:0x68]),
		fileACL:    binary.LittleEndian.Uint32(b[0x68:0x6c]),
		sizeHigh:   binary.LittleEndian.Uint32(b[0x6c:0x70]),
	}
	for i := 0; i < 15; i++ {
		off := 0x28 + i*4
		in.block[i] = binary.LittleEndian.Uint32(b[off : off+4])
	}
	return in, nil
}

func (in *inode) isDir() bool  { return in.mode&modeTypeMask == modeDir }
func (in *inode) isFile() bool { return in.mode&modeTypeMask == modeRegular }
func (in *inode) isSymlink() bool {
	return in.mode&modeTypeMask == modeSymlink
}

// fastSymlinkTarget returns a symlink's target text when it is short enough
// (< 60 bytes) to be stored inline in the inode's block-pointer array
// instead of in a separate data block (the "fast symlink" on-disk layout).
// It reports whether this inode actually uses that layout.
func (in *inode) fastSymlinkTarget() (string, bool) {
	size := in.size()
	if !in.isSymlink() || size >= uint64(len(in.block)*4) {
		return "", false
	}
	raw := make([]byte, len(in.block)*4)
	for i, p := range in.block {
		binary.LittleEndian.PutUint32(raw[i*4:i*4+4], p)
	}
	return string(raw[:size]), true
}

// size is the file's logical byte length. Regular files use sizeHigh as the
// upper 32 bits (large file feature); for every other type dir_acl has no
// size meaning so only the low word applies (spec.md §4.4).
func (in *inode) size() uint64 {
	if in.isFile() {
		return uint64(in.sizeHigh)<<32 | uint64(in.sizeLow)
	}
	return uint64(in.sizeLow)
}

// readInode locates and decodes an inode by its 1-based inode number
// (spec.md §4.4): resolve its block group from the superblock's
// inodes_per_group, load that group's descriptor for inode_table, then
// index directly by inode size.
func (fs *FileSystem) readInode(number uint32) (*inode, error) {
	if number == 0 {
		return nil, newError(KindInternal, "readInode", nil)
	}
	group, indexInGroup := groupOf(number, fs.sb.inodesPerGroup)
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return nil, err
	}
	offset := int64(gd.inodeTable)*int64(fs.sb.blockSize()) + int64(indexInGroup)*inodeSize
	b, err := fs.reader.readAt(offset, inodeSize)
	if err != nil {
		return nil, err
	}
	return inodeFromBytes(b)
}
