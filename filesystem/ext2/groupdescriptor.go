package ext2

import "encoding/binary"

// groupDescriptor is one 32-byte entry of the block group descriptor table
// (spec.md §4.3 step 3). Only the fields the core needs are decoded.
type groupDescriptor struct {
	blockBitmap     uint32
	inodeBitmap     uint32
	inodeTable      uint32
	freeBlocksCount uint16
	freeInodesCount uint16
	usedDirsCount   uint16
}

func groupDescriptorFromBytes(b []byte) (*groupDescriptor, error) {
	if len(b) < groupDescriptorSize {
		return nil, newError(KindInternal, "groupDescriptorFromBytes", nil)
	}
	return &groupDescriptor{
		blockBitmap:     binary.LittleEndian.Uint32(b[0x00:0x04]),
		inodeBitmap:     binary.LittleEndian.Uint32(b[0x04:0x08]),
		inodeTable:      binary.LittleEndian.Uint32(b[0x08:0x0c]),
		freeBlocksCount: binary.LittleEndian.Uint16(b[0x0c:0x0e]),
		freeInodesCount: binary.LittleEndian.Uint16(b[0x0e:0x10]),
		usedDirsCount:   binary.LittleEndian.Uint16(b[0x10:0x12]),
	}, nil
}

// groupOf returns which block group an inode number belongs to, and its
// zero-based index within that group's inode table (spec.md §4.4).
func groupOf(inodeNum uint32, inodesPerGroup uint32) (group uint32, indexInGroup uint32) {
	group = (inodeNum - 1) / inodesPerGroup
	indexInGroup = (inodeNum - 1) % inodesPerGroup
	return
}

// readGroupDescriptor loads the descriptor for the group an inode lives in.
func (fs *FileSystem) readGroupDescriptor(group uint32) (*groupDescriptor, error) {
	tableOffset := int64(fs.sb.descriptorTableBlock())*int64(fs.sb.blockSize()) + int64(group)*groupDescriptorSize
	b, err := fs.reader.readAt(tableOffset, groupDescriptorSize)
	if err != nil {
		return nil, err
	}
	return groupDescriptorFromBytes(b)
}
