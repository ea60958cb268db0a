package ext2

import (
	"os"
	"path"

	"github.com/ext2fs/ext2view/sync"
)

// Session tracks a single REPL-style interaction with one FileSystem: a
// current working directory, addressed the way cd/dir/read/stat/extract
// expect (spec.md §3 "session state", §6 CLI operations). A Session is not
// safe for concurrent use from multiple goroutines.
type Session struct {
	fs       *FileSystem
	cwd      string
	cwdInode uint32
}

// OpenSession starts a session rooted at "/".
func OpenSession(fs *FileSystem) (*Session, error) {
	root, _, err := fs.resolvePath("/")
	if err != nil {
		return nil, err
	}
	return &Session{fs: fs, cwd: "/", cwdInode: root}, nil
}

// Cwd returns the session's current absolute working directory.
func (s *Session) Cwd() string { return s.cwd }

// resolve turns a path argument (absolute, or relative to the session's
// cwd) into a normalized absolute path.
func (s *Session) resolve(pathArg string) string {
	if pathArg == "" {
		return s.cwd
	}
	if path.IsAbs(pathArg) {
		return path.Clean(pathArg)
	}
	return path.Clean(path.Join(s.cwd, pathArg))
}

// ChangeDir implements the "cd" operation: the destination must resolve to
// a directory inode, otherwise KindFileMissing (spec.md §4.7).
func (s *Session) ChangeDir(pathArg string) error {
	target := s.resolve(pathArg)
	inodeNum, in, err := s.fs.resolvePath(target)
	if err != nil {
		return err
	}
	if !in.isDir() {
		return newError(KindFileMissing, "ChangeDir", nil)
	}
	s.cwd, s.cwdInode = target, inodeNum
	return nil
}

// List implements the "dir" operation against an absolute or cwd-relative path.
func (s *Session) List(pathArg string) ([]os.FileInfo, error) {
	return s.fs.ReadDir(s.resolve(pathArg))
}

// Stat resolves pathArg and returns its metadata without opening it for reads.
func (s *Session) Stat(pathArg string) (os.FileInfo, error) {
	target := s.resolve(pathArg)
	inodeNum, in, err := s.fs.resolvePath(target)
	if err != nil {
		return nil, err
	}
	return &fileInfo{name: path.Base(target), in: in, inode: inodeNum}, nil
}

// Open implements the "read" operation: returns a handle positioned at the
// start of the named regular file.
func (s *Session) Open(pathArg string) (*File, error) {
	target := s.resolve(pathArg)
	inodeNum, in, err := s.fs.resolvePath(target)
	if err != nil {
		return nil, err
	}
	if in.isDir() {
		return nil, newError(KindFileMissing, "Open", nil)
	}
	return newFile(s.fs, path.Base(target), inodeNum, in)
}

// Check recomputes free block/inode counts from each group's own bitmaps
// and returns one GroupUsage per group, for the "check" operation.
func (s *Session) Check() ([]*GroupUsage, error) {
	groups := s.fs.GroupCount()
	usages := make([]*GroupUsage, 0, groups)
	for g := uint32(0); g < groups; g++ {
		usage, err := s.fs.CheckGroup(g)
		if err != nil {
			return nil, err
		}
		usages = append(usages, usage)
	}
	return usages, nil
}

// ResolvedNode is a path already walked down to its inode, for callers
// that resolve once and may want to act on the result more than once
// (dext2.h's CopyInodeDataToWindows takes an already-resolved inode rather
// than re-walking a path).
type ResolvedNode struct {
	path  string
	inode uint32
	in    *inode
}

// ResolvePath walks pathArg (absolute, or relative to the session's cwd)
// down to its inode without reading any file content.
func (s *Session) ResolvePath(pathArg string) (*ResolvedNode, error) {
	target := s.resolve(pathArg)
	inodeNum, in, err := s.fs.resolvePath(target)
	if err != nil {
		return nil, err
	}
	return &ResolvedNode{path: target, inode: inodeNum, in: in}, nil
}

// Extract copies an already-resolved node onto the host filesystem under
// destDir, preserving relative structure (supplemented feature grounded on
// dext2.h's CopyInodeDataToWindows). The recursive walk itself lives in
// package sync so the same traversal serves any filesystem.FileSystem, not
// just this one.
func (s *Session) Extract(node *ResolvedNode, destDir string) error {
	if err := sync.ExtractFileSystem(s.fs, node.path, destDir); err != nil {
		return newError(KindInternal, "Extract", err)
	}
	return nil
}

// ExtractPath resolves pathArg then extracts it, the bug-free composition
// of dext2.h's CopyFileToWindows (which in the original never initialized
// the inode it resolved into, so it always failed).
func (s *Session) ExtractPath(pathArg string, destDir string) error {
	node, err := s.ResolvePath(pathArg)
	if err != nil {
		return err
	}
	return s.Extract(node, destDir)
}
