package ext2

import "strings"

// directory entry file_type values (spec.md §4.6); only used for quick
// classification, the authoritative type always comes from the child's own inode.
const (
	dirEntryUnknown byte = 0
	dirEntryRegular byte = 1
	dirEntryDir     byte = 2
)

// maxNameLen is the longest name an 8-bit name_len can describe.
const maxNameLen = 255

// dirEntry is one decoded directory entry.
type dirEntry struct {
	inode    uint32
	fileType byte
	name     string
}

// readDirEntries decodes every entry of a directory inode's data, in block
// order (spec.md §4.6). Entries with inode == 0 (deleted) are skipped but
// still consumed via rec_len so the scan stays in sync.
func (fs *FileSystem) readDirEntries(in *inode) ([]dirEntry, error) {
	if !in.isDir() {
		return nil, newError(KindFileMissing, "readDirEntries", nil)
	}
	blocks, err := fs.blockList(in)
	if err != nil {
		return nil, err
	}
	blockSize := fs.sb.blockSize()

	var entries []dirEntry
	for _, blockNum := range blocks {
		raw, err := fs.reader.readBlock(blockNum, blockSize)
		if err != nil {
			return nil, err
		}
		pos := 0
		for pos < len(raw) {
			if pos+8 > len(raw) {
				break
			}
			inodeNum := uint32(raw[pos]) | uint32(raw[pos+1])<<8 | uint32(raw[pos+2])<<16 | uint32(raw[pos+3])<<24
			recLen := int(uint16(raw[pos+4]) | uint16(raw[pos+5])<<8)
			nameLen := int(raw[pos+6])
			fileType := raw[pos+7]

			if recLen == 0 {
				// A zero rec_len can never advance the scan and marks the
				// rest of the block unusable; treat it as "no such file"
				// rather than a disk-read failure (spec.md §4.5).
				return nil, newError(KindFileMissing, "readDirEntries", nil)
			}
			if recLen < 8 {
				return nil, newError(KindReadingDisk, "readDirEntries", nil)
			}
			if inodeNum != 0 {
				if pos+8+nameLen > len(raw) {
					return nil, newError(KindReadingDisk, "readDirEntries", nil)
				}
				name := string(raw[pos+8 : pos+8+nameLen])
				entries = append(entries, dirEntry{inode: inodeNum, fileType: fileType, name: name})
			}
			pos += recLen
		}
	}
	return entries, nil
}

// visibleDirEntries filters the synthetic "." and ".." entries mke2fs
// materializes in every directory out of a listing meant for io/fs
// consumers (fs.ReadDirFile, fs.WalkDir): unlike seekChild's path-walking
// use of readDirEntries, Go's directory-listing contract never includes them.
func visibleDirEntries(entries []dirEntry) []dirEntry {
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		if e.name == "." || e.name == ".." {
			continue
		}
		out = append(out, e)
	}
	return out
}

// seekChild finds a single named entry directly under the directory
// inode in (spec.md §4.7). "." and ".." are ordinary entries materialized
// by mke2fs and need no special casing here.
func (fs *FileSystem) seekChild(in *inode, name string) (uint32, error) {
	entries, err := fs.readDirEntries(in)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.name == name {
			return e.inode, nil
		}
	}
	return 0, newError(KindFileMissing, "seekChild", nil)
}

// resolvePath walks an absolute or root-relative path component by
// component starting from the root inode, returning the inode number and
// decoded inode of the final component (spec.md §4.7, §4.8). A trailing
// slash is permitted and ignored. Any non-final component that is not a
// directory is KindFileMissing; a component longer than maxNameLen bytes
// is KindInternal.
func (fs *FileSystem) resolvePath(path string) (uint32, *inode, error) {
	trimmed := strings.Trim(path, "/")
	current := rootInodeNumber
	currentInode, err := fs.readInode(current)
	if err != nil {
		return 0, nil, err
	}
	if trimmed == "" {
		return current, currentInode, nil
	}

	parts := strings.Split(trimmed, "/")
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) > maxNameLen {
			return 0, nil, newError(KindInternal, "resolvePath", nil)
		}
		if !currentInode.isDir() {
			return 0, nil, newError(KindFileMissing, "resolvePath", nil)
		}
		childNum, err := fs.seekChild(currentInode, part)
		if err != nil {
			return 0, nil, err
		}
		childInode, err := fs.readInode(childNum)
		if err != nil {
			return 0, nil, err
		}
		current, currentInode = childNum, childInode
	}
	return current, currentInode, nil
}
