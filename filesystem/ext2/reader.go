package ext2

import "github.com/ext2fs/ext2view/backend"

// sectorSize is the alignment the Block Reader rounds every disk access to
// (spec.md §2 Block Reader). Real device geometry may report a larger
// physical sector, but 512 is the value dext2.h's ReadBytes used and is
// always a safe divisor of it.
const sectorSize = 512

// blockReader performs sector-aligned reads against a backend.Storage and
// slices out the caller's actual window. Every other component in this
// package goes through it rather than calling storage.ReadAt directly.
type blockReader struct {
	storage backend.Storage
}

func newBlockReader(s backend.Storage) *blockReader {
	return &blockReader{storage: s}
}

// readAt reads length bytes starting at offset, rounding the underlying
// device access down to the containing sector boundary and up to a whole
// number of sectors, then returns exactly the requested window.
func (r *blockReader) readAt(offset int64, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	alignedStart := (offset / sectorSize) * sectorSize
	end := offset + int64(length)
	alignedEnd := ((end + sectorSize - 1) / sectorSize) * sectorSize

	buf := make([]byte, alignedEnd-alignedStart)
	if _, err := r.storage.ReadAt(buf, alignedStart); err != nil {
		return nil, newError(KindReadingDisk, "readAt", err)
	}

	skip := offset - alignedStart
	return buf[skip : skip+int64(length)], nil
}

// readBlock reads one whole filesystem block by block number.
func (r *blockReader) readBlock(blockNum uint64, blockSize uint32) ([]byte, error) {
	if blockNum == 0 {
		return make([]byte, blockSize), nil
	}
	return r.readAt(int64(blockNum)*int64(blockSize), int(blockSize))
}
