// Package partition reads MBR and GPT partition tables. All useful
// implementations are subpackages of this package: github.com/ext2fs/ext2view/partition/mbr
// and github.com/ext2fs/ext2view/partition/gpt.
package partition

import (
	"github.com/ext2fs/ext2view/partition/part"
)

// Table is a decoded partitioning scheme on a disk (spec.md §1 Supplemented
// Feature). Writing, repairing and verifying a table are out of scope: this
// module only ever decodes.
type Table interface {
	Type() string
	GetPartitions() []part.Partition
	UUID() string
}
