// Command ext2view is an interactive, read-only explorer for ext2 disk
// images and block devices (spec.md §6).
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"strings"

	ext2view "github.com/ext2fs/ext2view"
	"github.com/ext2fs/ext2view/converter"
	"github.com/ext2fs/ext2view/disk"
	"github.com/ext2fs/ext2view/filesystem"
	"github.com/ext2fs/ext2view/filesystem/ext2"
	"github.com/ext2fs/ext2view/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var partitionFlag int

func main() {
	root := &cobra.Command{
		Use:   "ext2view <device-or-image>",
		Short: "browse a read-only ext2 filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], partitionFlag)
		},
		SilenceUsage: true,
	}
	root.Flags().IntVar(&partitionFlag, "partition", 0, "partition number to mount, 0 for an unpartitioned image")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list candidate disk devices (/dev/sd*, /dev/nvme*n*, /dev/vd*, /dev/loop*)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := disk.List()
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
		SilenceUsage: true,
	}
	root.AddCommand(listCmd)

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(path string, partitionIndex int) error {
	d, err := ext2view.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer d.Storage.Close()

	fsys, err := d.GetFilesystem(partitionIndex)
	if err != nil {
		return fmt.Errorf("reading ext2 filesystem: %w", err)
	}
	ext2fs, ok := fsys.(*ext2.FileSystem)
	if !ok {
		return fmt.Errorf("unexpected filesystem implementation")
	}
	session, err := ext2.OpenSession(ext2fs)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	logrus.WithField("path", path).WithField("partition", partitionIndex).Info("filesystem mounted")
	return repl(session, ext2fs, os.Stdin, os.Stdout)
}

// repl runs the cd/dir/read/stat/find/check/extract/exit command loop (spec.md §6).
func repl(session *ext2.Session, fsys filesystem.FileSystem, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", session.Cwd())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "cd":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: cd <path>")
				continue
			}
			if err := session.ChangeDir(args[0]); err != nil {
				printErr(out, err)
			}
		case "dir", "ls":
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			entries, err := session.List(target)
			if err != nil {
				printErr(out, err)
				continue
			}
			for _, e := range entries {
				marker := ""
				if e.IsDir() {
					marker = "/"
				}
				fmt.Fprintf(out, "%10d  %s%s\n", e.Size(), e.Name(), marker)
			}
		case "stat":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: stat <path>")
				continue
			}
			info, err := session.Stat(args[0])
			if err != nil {
				printErr(out, err)
				continue
			}
			fmt.Fprintf(out, "name:  %s\nsize:  %d\nmode:  %s\nmtime: %s\n", info.Name(), info.Size(), info.Mode(), info.ModTime())
		case "read":
			if len(args) != 1 && len(args) != 2 {
				fmt.Fprintln(out, "usage: read <path> [host-destination]")
				continue
			}
			f, err := session.Open(args[0])
			if err != nil {
				printErr(out, err)
				continue
			}
			data, err := io.ReadAll(f)
			if err != nil {
				printErr(out, err)
				continue
			}
			if len(args) == 2 {
				if err := os.WriteFile(args[1], data, 0644); err != nil {
					printErr(out, err)
					continue
				}
				fmt.Fprintf(out, "wrote %d bytes to %s\n", len(data), args[1])
				continue
			}
			fmt.Fprintln(out, util.DumpByteSlice(data, 16, true, true, false, nil))
		case "find":
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			err := iofs.WalkDir(converter.FS(fsys), root, func(p string, d iofs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				fmt.Fprintln(out, p)
				return nil
			})
			if err != nil {
				printErr(out, err)
			}
		case "check":
			usages, err := session.Check()
			if err != nil {
				printErr(out, err)
				continue
			}
			for i, u := range usages {
				mismatch := ""
				if u.FreeBlocks != uint32(u.DescriptorBlocks) || u.FreeInodes != uint32(u.DescriptorInodes) {
					mismatch = "  MISMATCH"
				}
				fmt.Fprintf(out, "group %d: free blocks %d (descriptor %d), free inodes %d (descriptor %d)%s\n",
					i, u.FreeBlocks, u.DescriptorBlocks, u.FreeInodes, u.DescriptorInodes, mismatch)
			}
		case "extract":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: extract <path> <destination-dir>")
				continue
			}
			if err := session.ExtractPath(args[0], args[1]); err != nil {
				printErr(out, err)
				continue
			}
			fmt.Fprintf(out, "extracted %s to %s\n", args[0], args[1])
		default:
			fmt.Fprintf(out, "unknown command %q (try cd, dir, read, stat, find, check, extract, exit)\n", cmd)
		}
	}
}

func printErr(out io.Writer, err error) {
	var e *ext2.Error
	if errors.As(err, &e) {
		fmt.Fprintf(out, "error: %s\n", e.Kind)
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}
