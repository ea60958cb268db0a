package ext2

import (
	"encoding/binary"
	"io"
	"testing"
)

func openFixtureFile(t *testing.T, fs *FileSystem, pathname string) *File {
	t.Helper()
	num, in, err := fs.resolvePath(pathname)
	if err != nil {
		t.Fatalf("resolvePath(%q): %v", pathname, err)
	}
	f, err := newFile(fs, pathname, num, in)
	if err != nil {
		t.Fatalf("newFile(%q): %v", pathname, err)
	}
	return f
}

func TestFileReadFull(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/hello.txt")

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != string(fixtureHelloContent) {
		t.Fatalf("data = %q, want %q", data, fixtureHelloContent)
	}
}

func TestFileReadEmpty(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/subdir/deep.txt")

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %d bytes", len(data))
	}
}

func TestFileSeekAndPartialRead(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/hello.txt")

	if _, err := f.Seek(6, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 5)
	n, err := f.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Fatalf("Read after seek = %q, want %q", buf[:n], "world")
	}
}

func TestFileStat(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/hello.txt")

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len(fixtureHelloContent)) {
		t.Fatalf("Size() = %d, want %d", info.Size(), len(fixtureHelloContent))
	}
	if info.IsDir() {
		t.Fatal("expected non-directory")
	}
}

func TestFileReadDir(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/")

	entries, err := f.ReadDir(-1)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			t.Fatalf("ReadDir leaked synthetic entry %q", e.Name())
		}
	}
}

// TestFileReadFastSymlink confirms a short symlink's target is read back
// out of the inode's inline block-pointer array rather than being treated
// as a list of real data blocks.
func TestFileReadFastSymlink(t *testing.T) {
	blockSize := uint32(1024)
	b := newImageBuilder(blockSize)

	const linkInode = 12
	target := "hello.txt"
	var blockPtrs [15]uint32
	raw := make([]byte, len(blockPtrs)*4)
	copy(raw, target)
	for i := range blockPtrs {
		blockPtrs[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
	}
	b.setInode(linkInode, inodeFields{
		mode:  modeSymlink | 0777,
		size:  uint64(len(target)),
		links: 1,
		block: blockPtrs,
	})

	rootContent := encodeDirBlock([]dirEntrySpec{
		{inode: rootInodeNumber, name: ".", fileType: dirEntryDir},
		{inode: rootInodeNumber, name: "..", fileType: dirEntryDir},
		{inode: linkInode, name: "link", fileType: dirEntryUnknown},
	}, blockSize)
	rootBlock := b.allocBlock(rootContent)
	b.setInode(rootInodeNumber, inodeFields{mode: modeDir | 0755, size: uint64(blockSize), block: [15]uint32{uint32(rootBlock)}})

	fs := newTestFS(t, b.build())
	f := openFixtureFile(t, fs, "/link")

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != target {
		t.Fatalf("symlink target = %q, want %q", data, target)
	}
}

func TestFileReadDirPaginated(t *testing.T) {
	fs := buildSampleFS(t, 1024)
	f := openFixtureFile(t, fs, "/")

	var all []string
	for {
		batch, err := f.ReadDir(2)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		for _, e := range batch {
			all = append(all, e.Name())
		}
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2, got %v", len(all), all)
	}
}
