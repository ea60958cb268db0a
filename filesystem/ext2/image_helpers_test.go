package ext2

import (
	"encoding/binary"
	"math/bits"
)

// imageBuilder hand-assembles a minimal ext2 image byte-for-byte, the way
// filesystem/ext4's tests build fixtures in code rather than shelling out
// to mke2fs. Every test in this package that needs a real backing image
// goes through this rather than depending on an external fixture file.
type imageBuilder struct {
	blockSize        uint32
	inodesPerGroup   uint32
	gdtBlock         uint64
	blockBitmapBlock uint64
	inodeBitmapBlock uint64
	inodeTableBlock  uint64
	inodeTableBlocks uint64
	nextFreeBlock    uint64

	blocks map[uint64][]byte
	inodes map[uint32][]byte
}

const testInodesPerGroup = 64

func newImageBuilder(blockSize uint32) *imageBuilder {
	gdtBlock := uint64(1)
	if blockSize == minBlockSize {
		gdtBlock = 2
	}
	inodeBytes := uint64(testInodesPerGroup) * inodeSize
	inodeTableBlocks := (inodeBytes + uint64(blockSize) - 1) / uint64(blockSize)
	blockBitmapBlock := gdtBlock + 1
	inodeBitmapBlock := gdtBlock + 2
	inodeTableBlock := gdtBlock + 3

	return &imageBuilder{
		blockSize:        blockSize,
		inodesPerGroup:   testInodesPerGroup,
		gdtBlock:         gdtBlock,
		blockBitmapBlock: blockBitmapBlock,
		inodeBitmapBlock: inodeBitmapBlock,
		inodeTableBlock:  inodeTableBlock,
		inodeTableBlocks: inodeTableBlocks,
		nextFreeBlock:    inodeTableBlock + inodeTableBlocks,
		blocks:           make(map[uint64][]byte),
		inodes:           make(map[uint32][]byte),
	}
}

// allocBlock reserves the next free block, fills it with content (padded
// or truncated to exactly one block) and returns its block number.
func (b *imageBuilder) allocBlock(content []byte) uint64 {
	num := b.nextFreeBlock
	b.nextFreeBlock++
	buf := make([]byte, b.blockSize)
	copy(buf, content)
	b.blocks[num] = buf
	return num
}

type inodeFields struct {
	mode    uint16
	size    uint64
	links   uint16
	block   [15]uint32
	mtime   uint32
}

func (b *imageBuilder) setInode(num uint32, f inodeFields) {
	b.inodes[num] = encodeInode(f)
}

func encodeInode(f inodeFields) []byte {
	raw := make([]byte, inodeSize)
	binary.LittleEndian.PutUint16(raw[0x00:0x02], f.mode)
	binary.LittleEndian.PutUint32(raw[0x04:0x08], uint32(f.size))
	binary.LittleEndian.PutUint32(raw[0x10:0x14], f.mtime)
	binary.LittleEndian.PutUint16(raw[0x1a:0x1c], f.links)
	for i, ptr := range f.block {
		off := 0x28 + i*4
		binary.LittleEndian.PutUint32(raw[off:off+4], ptr)
	}
	binary.LittleEndian.PutUint32(raw[0x6c:0x70], uint32(f.size>>32))
	return raw
}

type dirEntrySpec struct {
	inode    uint32
	name     string
	fileType byte
}

// encodeDirBlock packs entries with ext2's real rec_len rules: each
// record is padded to a 4-byte boundary, and the final record's rec_len
// is stretched to consume the rest of the block.
func encodeDirBlock(entries []dirEntrySpec, blockSize uint32) []byte {
	buf := make([]byte, blockSize)
	pos := 0
	for i, e := range entries {
		nameLen := len(e.name)
		recLen := 8 + nameLen
		if recLen%4 != 0 {
			recLen += 4 - recLen%4
		}
		if i == len(entries)-1 {
			recLen = int(blockSize) - pos
		}
		binary.LittleEndian.PutUint32(buf[pos:pos+4], e.inode)
		binary.LittleEndian.PutUint16(buf[pos+4:pos+6], uint16(recLen))
		buf[pos+6] = byte(nameLen)
		buf[pos+7] = e.fileType
		copy(buf[pos+8:pos+8+nameLen], e.name)
		pos += recLen
	}
	return buf
}

// encodePointerBlock lays out a block of little-endian uint32 block
// pointers, the format of an indirect block.
func encodePointerBlock(pointers []uint32, blockSize uint32) []byte {
	buf := make([]byte, blockSize)
	for i, p := range pointers {
		off := i * 4
		if off+4 > len(buf) {
			break
		}
		binary.LittleEndian.PutUint32(buf[off:off+4], p)
	}
	return buf
}

// build assembles the final byte image: superblock, group descriptor,
// inode table and every allocated data block, each at its true byte offset.
func (b *imageBuilder) build() []byte {
	total := b.nextFreeBlock
	buf := make([]byte, total*uint64(b.blockSize))

	logBlockSize := uint32(bits.TrailingZeros32(b.blockSize / minBlockSize))
	firstDataBlock := uint32(1)
	if b.blockSize != minBlockSize {
		firstDataBlock = 0
	}

	sbOff := superblockOffset
	binary.LittleEndian.PutUint32(buf[sbOff+0x00:sbOff+0x04], b.inodesPerGroup)
	binary.LittleEndian.PutUint32(buf[sbOff+0x04:sbOff+0x08], uint32(total))
	binary.LittleEndian.PutUint32(buf[sbOff+0x14:sbOff+0x18], firstDataBlock)
	binary.LittleEndian.PutUint32(buf[sbOff+0x18:sbOff+0x1c], logBlockSize)
	binary.LittleEndian.PutUint32(buf[sbOff+0x20:sbOff+0x24], uint32(total)) // blocks_per_group, single group
	binary.LittleEndian.PutUint32(buf[sbOff+0x28:sbOff+0x2c], b.inodesPerGroup)
	binary.LittleEndian.PutUint16(buf[sbOff+0x38:sbOff+0x3a], superMagic)

	gdOff := int64(b.gdtBlock) * int64(b.blockSize)
	binary.LittleEndian.PutUint32(buf[gdOff+0x00:gdOff+0x04], uint32(b.blockBitmapBlock))
	binary.LittleEndian.PutUint32(buf[gdOff+0x04:gdOff+0x08], uint32(b.inodeBitmapBlock))
	binary.LittleEndian.PutUint32(buf[gdOff+0x08:gdOff+0x0c], uint32(b.inodeTableBlock))

	for num, raw := range b.inodes {
		group, idx := groupOf(num, b.inodesPerGroup)
		if group != 0 {
			panic("test fixture only supports a single block group")
		}
		off := int64(b.inodeTableBlock)*int64(b.blockSize) + int64(idx)*inodeSize
		copy(buf[off:off+inodeSize], raw)
	}

	for num, content := range b.blocks {
		off := int64(num) * int64(b.blockSize)
		copy(buf[off:off+int64(b.blockSize)], content)
	}

	return buf
}
