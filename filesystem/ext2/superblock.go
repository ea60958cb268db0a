package ext2

import "encoding/binary"

const (
	// superMagic is the required value of the on-disk s_magic field (spec.md §3).
	superMagic uint16 = 0xEF53
	// superblockOffset is the partition-relative byte offset of the superblock.
	superblockOffset int64 = 1024
	// superblockReadSize is how much of the 1024-byte reserved superblock region the core decodes.
	superblockReadSize = 84

	minBlockSize = 1024
	maxBlockSize = 4096

	groupDescriptorSize = 32
	inodeSize           = 128

	rootInodeNumber uint32 = 2
)

// superblock holds the fields of the ext2 superblock this core interprets
// (spec.md §3). Fields past byte 84 on disk are never read.
type superblock struct {
	inodesCount     uint32
	blocksCount     uint32
	rBlocksCount    uint32
	freeBlocksCount uint32
	freeInodesCount uint32
	firstDataBlock  uint32
	logBlockSize    uint32
	logFragSize     uint32
	blocksPerGroup  uint32
	fragsPerGroup   uint32
	inodesPerGroup  uint32
	mtime           uint32
	wtime           uint32
	mntCount        uint16
	maxMntCount     uint16
	magic           uint16
	state           uint16
	errors          uint16
	minorRevLevel   uint16
	lastCheck       uint32
	checkInterval   uint32
	creatorOS       uint32
	revLevel        uint32
}

// blockSize derives the session's block size from log_block_size (spec.md §3):
// 1024 << log_block_size, one of {1024, 2048, 4096}.
func (s *superblock) blockSize() uint32 {
	return minBlockSize << s.logBlockSize
}

// descriptorTableBlock is the block holding the group descriptor array:
// block 2 when block size is 1024 (superblock occupies block 1 in that
// case), block 1 otherwise (the superblock shares block 0 with the boot
// sector, see spec.md §4.3 step 3).
func (s *superblock) descriptorTableBlock() uint64 {
	if s.blockSize() == minBlockSize {
		return 2
	}
	return 1
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) < superblockReadSize {
		return nil, newError(KindInternal, "superblockFromBytes", nil)
	}
	sb := &superblock{
		inodesCount:     binary.LittleEndian.Uint32(b[0x00:0x04]),
		blocksCount:     binary.LittleEndian.Uint32(b[0x04:0x08]),
		rBlocksCount:    binary.LittleEndian.Uint32(b[0x08:0x0c]),
		freeBlocksCount: binary.LittleEndian.Uint32(b[0x0c:0x10]),
		freeInodesCount: binary.LittleEndian.Uint32(b[0x10:0x14]),
		firstDataBlock:  binary.LittleEndian.Uint32(b[0x14:0x18]),
		logBlockSize:    binary.LittleEndian.Uint32(b[0x18:0x1c]),
		logFragSize:     binary.LittleEndian.Uint32(b[0x1c:0x20]),
		blocksPerGroup:  binary.LittleEndian.Uint32(b[0x20:0x24]),
		fragsPerGroup:   binary.LittleEndian.Uint32(b[0x24:0x28]),
		inodesPerGroup:  binary.LittleEndian.Uint32(b[0x28:0x2c]),
		mtime:           binary.LittleEndian.Uint32(b[0x2c:0x30]),
		wtime:           binary.LittleEndian.Uint32(b[0x30:0x34]),
		mntCount:        binary.LittleEndian.Uint16(b[0x34:0x36]),
		maxMntCount:     binary.LittleEndian.Uint16(b[0x36:0x38]),
		magic:           binary.LittleEndian.Uint16(b[0x38:0x3a]),
		state:           binary.LittleEndian.Uint16(b[0x3a:0x3c]),
		errors:          binary.LittleEndian.Uint16(b[0x3c:0x3e]),
		minorRevLevel:   binary.LittleEndian.Uint16(b[0x3e:0x40]),
		lastCheck:       binary.LittleEndian.Uint32(b[0x40:0x44]),
		checkInterval:   binary.LittleEndian.Uint32(b[0x44:0x48]),
		creatorOS:       binary.LittleEndian.Uint32(b[0x48:0x4c]),
		revLevel:        binary.LittleEndian.Uint32(b[0x4c:0x50]),
	}
	return sb, nil
}

func (s *superblock) equal(o *superblock) bool {
	if s == nil || o == nil {
		return s == o
	}
	return *s == *o
}
