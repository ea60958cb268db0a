package partition

import (
	"fmt"

	"github.com/ext2fs/ext2view/backend"
	"github.com/ext2fs/ext2view/partition/gpt"
	"github.com/ext2fs/ext2view/partition/mbr"
)

// Read tries each known table format in turn and returns the first that
// parses. GPT is tried first since a protective MBR can otherwise be
// mistaken for a real one.
func Read(f backend.Storage, logicalBlocksize, physicalBlocksize int) (Table, error) {
	gptTable, err := gpt.Read(f, logicalBlocksize, physicalBlocksize)
	if err == nil {
		return gptTable, nil
	}
	mbrTable, err := mbr.Read(f, logicalBlocksize, physicalBlocksize)
	if err == nil {
		return mbrTable, nil
	}
	return nil, fmt.Errorf("unknown disk partition type")
}
