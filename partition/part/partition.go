// Package part declares the per-partition-table-entry abstraction shared by
// the mbr and gpt implementations.
package part

import (
	"io"

	"github.com/ext2fs/ext2view/backend"
)

// Partition is a single entry of a partition table (spec.md §1 Supplemented
// Feature: multi-partition images). Only read access is exposed.
type Partition interface {
	GetIndex() int // Index of the partition in the table, starting at 1
	GetSize() int64
	GetStart() int64
	ReadContents(backend.File, io.Writer) (int64, error)
	UUID() string
	Label() string
}
