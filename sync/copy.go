// Package sync copies files out of a decoded filesystem.FileSystem onto the
// host filesystem (spec.md §1 Supplemented Feature: recursive extraction).
// Everything here flows filesystem -> host; there is no write-back path,
// since every filesystem.FileSystem this module produces is read-only.
package sync

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/ext2fs/ext2view/filesystem"
)

// excludedPaths are skipped during a recursive extract. lost+found is the
// reserved directory every mke2fs-formatted filesystem carries; there is
// nothing meaningful to recover from it for a caller extracting a tree.
var excludedPaths = map[string]bool{
	"lost+found": true,
}

const maxReadAllSize = 64 * 1024 * 1024

// ExtractFileSystem recursively copies srcPath (a file or directory) out of
// src and into destDir on the host filesystem, preserving relative structure.
func ExtractFileSystem(src filesystem.FileSystem, srcPath string, destDir string) error {
	return extractPath(src, srcPath, destDir)
}

func extractPath(src filesystem.FileSystem, srcPath string, destDir string) error {
	info, err := statPath(src, srcPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	base := path.Base(srcPath)
	if excludedPaths[base] {
		return nil
	}

	if info.IsDir() {
		destPath := path.Join(destDir, base)
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", destPath, err)
		}
		entries, err := src.ReadDir(srcPath)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", srcPath, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if name == "." || name == ".." || excludedPaths[name] {
				continue
			}
			if err := extractPath(src, path.Join(srcPath, name), destPath); err != nil {
				return err
			}
		}
		return nil
	}

	return extractOneFile(src, srcPath, destDir, info)
}

func statPath(src filesystem.FileSystem, srcPath string) (os.FileInfo, error) {
	f, err := src.OpenFile(srcPath, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.Stat()
}

func extractOneFile(src filesystem.FileSystem, srcPath string, destDir string, info os.FileInfo) error {
	in, err := src.OpenFile(srcPath, os.O_RDONLY)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer func() { _ = in.Close() }()

	if info.Mode()&os.ModeSymlink != 0 {
		// Resolving a symlink's target is out of scope; an empty
		// placeholder preserves the tree's shape without it.
		return os.WriteFile(path.Join(destDir, info.Name()), nil, 0644)
	}

	destPath := path.Join(destDir, info.Name())
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	if info.Size() <= maxReadAllSize {
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	buf := make([]byte, 32*1024)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return nil
}
