// Package mbr decodes a classic DOS/MBR partition table (spec.md §1
// Supplemented Feature: the module also accepts disk images partitioned
// with MBR rather than GPT, or with no table at all).
package mbr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ext2fs/ext2view/backend"
	"github.com/ext2fs/ext2view/partition/part"
)

const (
	mbrSize           = 512
	partitionEntrySize = 16
	partitionTableOffset = 0x1be
	signatureOffset   = 0x1fe
	bootableFlag      = 0x80
)

var signature = [2]byte{0x55, 0xaa}

// Type is an MBR partition type byte.
type Type byte

const (
	Empty Type = 0x00
	Fat32 Type = 0x0c
	Linux Type = 0x83
	LinuxExtended Type = 0x85
	LinuxLVM      Type = 0x8e
)

// Table is a decoded MBR.
type Table struct {
	LogicalSectorSize  int
	PhysicalSectorSize int
	Partitions         []*Partition

	partitionTableUUID string
}

// Partition is a single decoded MBR partition table entry.
type Partition struct {
	Bootable                            bool
	StartHead, StartSector, StartCylinder byte
	Type                                 Type
	EndHead, EndSector, EndCylinder     byte
	Start, Size                         uint32

	logicalSectorSize int
	partitionUUID     string
	index             int
}

func (t *Table) Type() string { return "mbr" }

func (t *Table) UUID() string { return t.partitionTableUUID }

func (t *Table) GetPartitions() []part.Partition {
	out := make([]part.Partition, 0, len(t.Partitions))
	for _, p := range t.Partitions {
		out = append(out, p)
	}
	return out
}

func (p *Partition) GetIndex() int    { return p.index }
func (p *Partition) GetSize() int64   { return int64(p.Size) * int64(p.logicalSectorSize) }
func (p *Partition) GetStart() int64  { return int64(p.Start) * int64(p.logicalSectorSize) }
func (p *Partition) UUID() string     { return p.partitionUUID }
func (p *Partition) Label() string    { return "" }

// ReadContents streams this partition's raw bytes from f to w.
func (p *Partition) ReadContents(f backend.File, w io.Writer) (int64, error) {
	section := io.NewSectionReader(f, p.GetStart(), p.GetSize())
	return io.Copy(w, section)
}

// Read decodes an MBR from the first 512 bytes of f.
func Read(f backend.Storage, logicalSectorSize, physicalSectorSize int) (*Table, error) {
	b := make([]byte, mbrSize)
	if _, err := f.ReadAt(b, 0); err != nil {
		return nil, fmt.Errorf("error reading MBR: %v", err)
	}
	if b[signatureOffset] != signature[0] || b[signatureOffset+1] != signature[1] {
		return nil, fmt.Errorf("invalid MBR signature")
	}

	table := &Table{
		LogicalSectorSize:   logicalSectorSize,
		PhysicalSectorSize:  physicalSectorSize,
		partitionTableUUID:  synthesizeTableUUID(b),
	}

	for i := 0; i < 4; i++ {
		off := partitionTableOffset + i*partitionEntrySize
		entry := b[off : off+partitionEntrySize]
		partType := Type(entry[4])
		if partType == Empty {
			continue
		}
		p := &Partition{
			Bootable:      entry[0] == bootableFlag,
			StartHead:     entry[1],
			StartSector:   entry[2] & 0x3f,
			StartCylinder: ((entry[2] & 0xc0) << 2) | entry[3],
			Type:          partType,
			EndHead:       entry[5],
			EndSector:     entry[6] & 0x3f,
			EndCylinder:   ((entry[6] & 0xc0) << 2) | entry[7],
			Start:         binary.LittleEndian.Uint32(entry[8:12]),
			Size:          binary.LittleEndian.Uint32(entry[12:16]),

			logicalSectorSize: logicalSectorSize,
			partitionUUID:     formatPartitionUUID(table.partitionTableUUID, i+1),
			index:             i + 1,
		}
		table.Partitions = append(table.Partitions, p)
	}
	if len(table.Partitions) == 0 {
		return nil, fmt.Errorf("MBR has no partitions")
	}
	return table, nil
}

// synthesizeTableUUID derives a stable identifier for a table that, unlike
// GPT, carries no real GUID: the disk signature at offset 0x1b8 when
// present, otherwise the empty string.
func synthesizeTableUUID(b []byte) string {
	if len(b) < 0x1bc {
		return ""
	}
	sig := binary.LittleEndian.Uint32(b[0x1b8:0x1bc])
	if sig == 0 {
		return ""
	}
	return fmt.Sprintf("%08x", sig)
}

func formatPartitionUUID(tableUUID string, index int) string {
	if tableUUID == "" {
		return fmt.Sprintf("mbr-%02d", index)
	}
	return fmt.Sprintf("%s-%02d", tableUUID, index)
}
