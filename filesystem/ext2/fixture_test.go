package ext2

import (
	"testing"

	"github.com/ext2fs/ext2view/testhelper"
)

const (
	fixtureSubdirInode = 13
	fixtureDeepInode   = 14
	fixtureHelloInode  = 12
)

var fixtureHelloContent = []byte("hello world\n")

// buildSampleFS builds a small, hand-crafted image with:
//
//	/               (inode 2)
//	/hello.txt      (inode 12, regular file, direct block only)
//	/subdir/        (inode 13, directory)
//	/subdir/deep.txt (inode 14, empty regular file)
func buildSampleFS(t *testing.T, blockSize uint32) *FileSystem {
	t.Helper()
	b := newImageBuilder(blockSize)

	helloBlock := b.allocBlock(fixtureHelloContent)
	b.setInode(fixtureHelloInode, inodeFields{
		mode:  modeRegular | 0644,
		size:  uint64(len(fixtureHelloContent)),
		links: 1,
		block: [15]uint32{uint32(helloBlock)},
	})

	deepBlock := b.allocBlock(nil)
	_ = deepBlock
	b.setInode(fixtureDeepInode, inodeFields{
		mode:  modeRegular | 0644,
		size:  0,
		links: 1,
	})

	subdirBlockContent := encodeDirBlock([]dirEntrySpec{
		{inode: fixtureSubdirInode, name: ".", fileType: dirEntryDir},
		{inode: rootInodeNumber, name: "..", fileType: dirEntryDir},
		{inode: fixtureDeepInode, name: "deep.txt", fileType: dirEntryRegular},
	}, blockSize)
	subdirBlock := b.allocBlock(subdirBlockContent)
	b.setInode(fixtureSubdirInode, inodeFields{
		mode:  modeDir | 0755,
		size:  uint64(blockSize),
		links: 2,
		block: [15]uint32{uint32(subdirBlock)},
	})

	rootBlockContent := encodeDirBlock([]dirEntrySpec{
		{inode: rootInodeNumber, name: ".", fileType: dirEntryDir},
		{inode: rootInodeNumber, name: "..", fileType: dirEntryDir},
		{inode: fixtureHelloInode, name: "hello.txt", fileType: dirEntryRegular},
		{inode: fixtureSubdirInode, name: "subdir", fileType: dirEntryDir},
	}, blockSize)
	rootBlock := b.allocBlock(rootBlockContent)
	b.setInode(rootInodeNumber, inodeFields{
		mode:  modeDir | 0755,
		size:  uint64(blockSize),
		links: 3,
		block: [15]uint32{uint32(rootBlock)},
	})

	return newTestFS(t, b.build())
}

// newTestFS wraps a raw image byte slice as a FileSystem.
func newTestFS(t *testing.T, raw []byte) *FileSystem {
	t.Helper()
	storage := testhelper.NewMemStorage(raw)
	fs, err := Read(storage, int64(len(raw)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return fs
}
