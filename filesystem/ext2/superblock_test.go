package ext2

import (
	"testing"

	"github.com/go-test/deep"
)

func TestSuperblockFromBytes(t *testing.T) {
	b := newImageBuilder(1024)
	raw := b.build()
	totalBlocks := uint32(len(raw)) / b.blockSize

	sb, err := superblockFromBytes(raw[superblockOffset : superblockOffset+superblockReadSize])
	if err != nil {
		t.Fatalf("superblockFromBytes: %v", err)
	}

	expected := &superblock{
		inodesCount:    testInodesPerGroup,
		blocksCount:    totalBlocks,
		firstDataBlock: 1,
		blocksPerGroup: totalBlocks,
		inodesPerGroup: testInodesPerGroup,
		magic:          superMagic,
	}
	if diff := deep.Equal(expected, sb); diff != nil {
		t.Errorf("superblockFromBytes diff: %v", diff)
	}
}

func TestSuperblockFromBytesTooShort(t *testing.T) {
	if _, err := superblockFromBytes(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestBlockSize(t *testing.T) {
	cases := []struct {
		log  uint32
		want uint32
	}{
		{0, 1024},
		{1, 2048},
		{2, 4096},
	}
	for _, c := range cases {
		sb := &superblock{logBlockSize: c.log}
		if got := sb.blockSize(); got != c.want {
			t.Errorf("logBlockSize=%d: blockSize() = %d, want %d", c.log, got, c.want)
		}
	}
}

func TestDescriptorTableBlock(t *testing.T) {
	sb1024 := &superblock{logBlockSize: 0}
	if got := sb1024.descriptorTableBlock(); got != 2 {
		t.Errorf("1024-byte blocks: descriptorTableBlock() = %d, want 2", got)
	}
	sb4096 := &superblock{logBlockSize: 2}
	if got := sb4096.descriptorTableBlock(); got != 1 {
		t.Errorf("4096-byte blocks: descriptorTableBlock() = %d, want 1", got)
	}
}
