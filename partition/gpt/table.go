// Package gpt decodes a GUID Partition Table (spec.md §1 Supplemented
// Feature: GPT-partitioned disk images alongside MBR and unpartitioned ones).
package gpt

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/ext2fs/ext2view/backend"
	"github.com/ext2fs/ext2view/partition/part"
	"github.com/google/uuid"
)

const (
	headerSignature    = "EFI PART"
	defaultEntrySize   = 128
	headerNameLen      = 72
)

// Type identifies a GPT partition type GUID.
type Type string

const (
	Unused            Type = "00000000-0000-0000-0000-000000000000"
	EFISystemPartition Type = "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"
	LinuxFilesystem    Type = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"
)

// Table is a decoded GPT.
type Table struct {
	LogicalSectorSize  int
	PhysicalSectorSize int
	ProtectiveMBR      bool
	GUID               string
	Partitions         []*Partition

	partitionEntrySize uint
	primaryHeader      uint64
	secondaryHeader    uint64
	firstDataSector    uint64
	lastDataSector     uint64
	partitionArraySize int
}

// Partition is a single decoded GPT partition entry.
type Partition struct {
	Index      int
	Start, End uint64
	Size       uint64
	Name       string
	GUID       string
	Attributes uint64
	Type       Type

	logicalSectorSize  int
	physicalSectorSize int
}

func (t *Table) Type() string { return "gpt" }
func (t *Table) UUID() string { return t.GUID }

func (t *Table) GetPartitions() []part.Partition {
	out := make([]part.Partition, 0, len(t.Partitions))
	for _, p := range t.Partitions {
		out = append(out, p)
	}
	return out
}

func (p *Partition) GetIndex() int   { return p.Index }
func (p *Partition) GetSize() int64  { return int64(p.Size) }
func (p *Partition) GetStart() int64 { return int64(p.Start) * int64(p.logicalSectorSize) }
func (p *Partition) UUID() string    { return p.GUID }
func (p *Partition) Label() string   { return p.Name }

func (p *Partition) ReadContents(f backend.File, w io.Writer) (int64, error) {
	section := io.NewSectionReader(f, p.GetStart(), p.GetSize())
	return io.Copy(w, section)
}

// Read decodes a GPT, trying the primary header at LBA 1 and falling back to
// the secondary header at the final LBA if the primary is damaged.
func Read(f backend.Storage, logicalSectorSize, physicalSectorSize int) (*Table, error) {
	header := make([]byte, logicalSectorSize)
	if _, err := f.ReadAt(header, int64(logicalSectorSize)); err != nil {
		return nil, fmt.Errorf("error reading GPT header: %v", err)
	}
	if string(header[0:8]) != headerSignature {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("invalid GPT signature")
		}
		lastLBA := info.Size()/int64(logicalSectorSize) - 1
		if lastLBA <= 1 {
			return nil, fmt.Errorf("invalid GPT signature")
		}
		if _, err := f.ReadAt(header, lastLBA*int64(logicalSectorSize)); err != nil || string(header[0:8]) != headerSignature {
			return nil, fmt.Errorf("invalid GPT signature")
		}
	}

	entrySize := binary.LittleEndian.Uint32(header[0x54:0x58])
	if entrySize == 0 {
		entrySize = defaultEntrySize
	}
	if entrySize < defaultEntrySize {
		return nil, fmt.Errorf("GPT partition entry size %d is too small", entrySize)
	}
	numEntries := binary.LittleEndian.Uint32(header[0x50:0x54])
	entriesLBA := binary.LittleEndian.Uint64(header[0x48:0x50])

	guidBytes := header[0x38:0x48]
	diskGUID, err := parseMixedEndianGUID(guidBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid disk GUID: %v", err)
	}

	table := &Table{
		LogicalSectorSize:   logicalSectorSize,
		PhysicalSectorSize:  physicalSectorSize,
		ProtectiveMBR:       true,
		GUID:                diskGUID,
		partitionEntrySize:  uint(entrySize),
		primaryHeader:       binary.LittleEndian.Uint64(header[0x18:0x20]),
		secondaryHeader:     binary.LittleEndian.Uint64(header[0x20:0x28]),
		firstDataSector:     binary.LittleEndian.Uint64(header[0x28:0x30]),
		lastDataSector:      binary.LittleEndian.Uint64(header[0x30:0x38]),
		partitionArraySize:  int(numEntries),
	}

	entries := make([]byte, uint64(numEntries)*uint64(entrySize))
	if _, err := f.ReadAt(entries, int64(entriesLBA)*int64(logicalSectorSize)); err != nil {
		return nil, fmt.Errorf("error reading GPT partition array: %v", err)
	}

	for i := uint32(0); i < numEntries; i++ {
		off := uint64(i) * uint64(entrySize)
		entry := entries[off : off+uint64(entrySize)]
		typeGUID, err := parseMixedEndianGUID(entry[0:16])
		if err != nil {
			continue
		}
		if typeGUID == string(Unused) {
			continue
		}
		partGUID, err := parseMixedEndianGUID(entry[16:32])
		if err != nil {
			continue
		}
		start := binary.LittleEndian.Uint64(entry[32:40])
		end := binary.LittleEndian.Uint64(entry[40:48])
		attrs := binary.LittleEndian.Uint64(entry[48:56])
		name := decodeUTF16Name(entry[56 : 56+headerNameLen])

		p := &Partition{
			Index:              int(i) + 1,
			Start:              start,
			End:                end,
			Size:               (end - start + 1) * uint64(logicalSectorSize),
			Name:               name,
			GUID:               partGUID,
			Attributes:         attrs,
			Type:               Type(typeGUID),
			logicalSectorSize:  logicalSectorSize,
			physicalSectorSize: physicalSectorSize,
		}
		table.Partitions = append(table.Partitions, p)
	}
	if len(table.Partitions) == 0 {
		return nil, fmt.Errorf("GPT has no partitions")
	}
	return table, nil
}

// parseMixedEndianGUID decodes the 16-byte mixed-endian GUID encoding the
// GPT spec uses (first three fields little-endian, last two big-endian)
// into its canonical string form.
func parseMixedEndianGUID(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("short GUID")
	}
	reordered := make([]byte, 16)
	reordered[0], reordered[1], reordered[2], reordered[3] = b[3], b[2], b[1], b[0]
	reordered[4], reordered[5] = b[5], b[4]
	reordered[6], reordered[7] = b[7], b[6]
	copy(reordered[8:], b[8:])
	id, err := uuid.FromBytes(reordered)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func decodeUTF16Name(b []byte) string {
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	runes := utf16.Decode(u16)
	n := len(runes)
	for n > 0 && runes[n-1] == 0 {
		n--
	}
	return string(runes[:n])
}
