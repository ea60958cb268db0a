package ext2

// blockList materializes the ordered sequence of physical block numbers
// backing an inode's data, walking direct pointers then the singly,
// doubly and trebly indirect trees as needed (spec.md §4.5). A 0 entry
// denotes a hole; the reader already returns a zero-filled block for it.
//
// needed is the number of blocks required to cover the inode's logical
// size (ceil(size/blockSize)); traversal stops as soon as that many
// entries have been produced so a large trebly-indirect tree is never
// walked further than the file actually needs.
func (fs *FileSystem) blockList(in *inode) ([]uint64, error) {
	blockSize := fs.sb.blockSize()
	needed := blocksNeeded(in.size(), blockSize)
	if needed == 0 {
		return nil, nil
	}

	pointersPerBlock := int(blockSize / 4)
	out := make([]uint64, 0, needed)

	for i := 0; i < directPointerCount && len(out) < needed; i++ {
		out = append(out, uint64(in.block[i]))
	}
	if len(out) >= needed {
		return out, nil
	}

	if err := fs.appendIndirect(uint64(in.block[12]), 1, pointersPerBlock, needed, &out); err != nil {
		return nil, err
	}
	if len(out) >= needed {
		return out, nil
	}

	if err := fs.appendIndirect(uint64(in.block[13]), 2, pointersPerBlock, needed, &out); err != nil {
		return nil, err
	}
	if len(out) >= needed {
		return out, nil
	}

	if err := fs.appendIndirect(uint64(in.block[14]), 3, pointersPerBlock, needed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// appendIndirect walks an indirect block tree of the given depth (1 =
// singly, 2 = doubly, 3 = trebly), appending data block numbers to out
// until it has needed entries or the tree is exhausted. A 0 pointer at any
// level is a hole: readBlock(0, ...) already returns a zero-filled block,
// so reading it unconditionally and recursing naturally fills in the right
// number of zero placeholders for the whole subtree that pointer would
// otherwise have covered, keeping every later sibling's logical block
// index aligned.
func (fs *FileSystem) appendIndirect(ptr uint64, depth int, pointersPerBlock int, needed int, out *[]uint64) error {
	raw, err := fs.reader.readBlock(ptr, fs.sb.blockSize())
	if err != nil {
		return err
	}
	pointers := decodePointers(raw, pointersPerBlock)

	if depth == 1 {
		for _, p := range pointers {
			if len(*out) >= needed {
				break
			}
			*out = append(*out, uint64(p))
		}
		return nil
	}

	for _, p := range pointers {
		if len(*out) >= needed {
			break
		}
		if err := fs.appendIndirect(uint64(p), depth-1, pointersPerBlock, needed, out); err != nil {
			return err
		}
	}
	return nil
}

func decodePointers(raw []byte, count int) []uint32 {
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		off := i * 4
		out[i] = uint32(raw[off]) | uint32(raw[off+1])<<8 | uint32(raw[off+2])<<16 | uint32(raw[off+3])<<24
	}
	return out
}

func blocksNeeded(size uint64, blockSize uint32) int {
	if size == 0 {
		return 0
	}
	return int((size + uint64(blockSize) - 1) / uint64(blockSize))
}
