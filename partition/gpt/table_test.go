package gpt

import (
	"encoding/binary"
	"testing"

	"github.com/ext2fs/ext2view/testhelper"
	"github.com/google/uuid"
)

const testLogicalSectorSize = 512

// encodeMixedEndianGUID is the inverse of parseMixedEndianGUID: it takes a
// canonical GUID string and produces the on-disk mixed-endian byte layout.
func encodeMixedEndianGUID(t *testing.T, s string) []byte {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", s, err)
	}
	std := id[:]
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = std[3], std[2], std[1], std[0]
	b[4], b[5] = std[5], std[4]
	b[6], b[7] = std[7], std[6]
	copy(b[8:], std[8:])
	return b
}

func buildGPTImage(t *testing.T, diskGUID, partType, partGUID, name string) []byte {
	t.Helper()
	const entriesLBA = 2
	const numEntries = 1
	const entrySize = defaultEntrySize

	raw := make([]byte, (entriesLBA+1)*testLogicalSectorSize)
	header := raw[testLogicalSectorSize : 2*testLogicalSectorSize]
	copy(header[0:8], headerSignature)
	binary.LittleEndian.PutUint64(header[0x18:0x20], 1)
	binary.LittleEndian.PutUint64(header[0x20:0x28], 3)
	binary.LittleEndian.PutUint64(header[0x28:0x30], 34)
	binary.LittleEndian.PutUint64(header[0x30:0x38], 100)
	copy(header[0x38:0x48], encodeMixedEndianGUID(t, diskGUID))
	binary.LittleEndian.PutUint64(header[0x48:0x50], entriesLBA)
	binary.LittleEndian.PutUint32(header[0x50:0x54], numEntries)
	binary.LittleEndian.PutUint32(header[0x54:0x58], entrySize)

	entry := raw[entriesLBA*testLogicalSectorSize : entriesLBA*testLogicalSectorSize+entrySize]
	copy(entry[0:16], encodeMixedEndianGUID(t, partType))
	copy(entry[16:32], encodeMixedEndianGUID(t, partGUID))
	binary.LittleEndian.PutUint64(entry[32:40], 40)
	binary.LittleEndian.PutUint64(entry[40:48], 139)
	nameBytes := []byte(name)
	for i, c := range nameBytes {
		entry[56+i*2] = c
	}
	return raw
}

func TestReadGPTSinglePartition(t *testing.T) {
	diskGUID := "11111111-1111-1111-1111-111111111111"
	partGUID := "22222222-2222-2222-2222-222222222222"
	raw := buildGPTImage(t, diskGUID, string(LinuxFilesystem), partGUID, "root")

	table, err := Read(testhelper.NewMemStorage(raw), testLogicalSectorSize, testLogicalSectorSize)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.UUID() != diskGUID {
		t.Errorf("UUID() = %q, want %q", table.UUID(), diskGUID)
	}
	if len(table.Partitions) != 1 {
		t.Fatalf("len(Partitions) = %d, want 1", len(table.Partitions))
	}
	p := table.Partitions[0]
	if p.Type != LinuxFilesystem {
		t.Errorf("Type = %q, want %q", p.Type, LinuxFilesystem)
	}
	if p.UUID() != partGUID {
		t.Errorf("partition UUID = %q, want %q", p.UUID(), partGUID)
	}
	if p.Label() != "root" {
		t.Errorf("Label() = %q, want %q", p.Label(), "root")
	}
	wantStart := int64(40) * testLogicalSectorSize
	if p.GetStart() != wantStart {
		t.Errorf("GetStart() = %d, want %d", p.GetStart(), wantStart)
	}
	wantSize := int64(139-40+1) * testLogicalSectorSize
	if p.GetSize() != wantSize {
		t.Errorf("GetSize() = %d, want %d", p.GetSize(), wantSize)
	}
}

func TestReadGPTUnusedEntrySkipped(t *testing.T) {
	raw := buildGPTImage(t, "11111111-1111-1111-1111-111111111111", string(Unused), "00000000-0000-0000-0000-000000000000", "")
	if _, err := Read(testhelper.NewMemStorage(raw), testLogicalSectorSize, testLogicalSectorSize); err == nil {
		t.Fatal("expected error for GPT with only an unused entry")
	}
}

func TestReadGPTBadSignatureFails(t *testing.T) {
	raw := make([]byte, 3*testLogicalSectorSize)
	if _, err := Read(testhelper.NewMemStorage(raw), testLogicalSectorSize, testLogicalSectorSize); err == nil {
		t.Fatal("expected error for missing GPT signature")
	}
}
