//go:build linux

package disk

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// GetSectorSizes reports the logical and physical sector size of the
// backing device. For a block device it asks the kernel via BLKSSZGET and
// BLKBSZGET; for a plain image file on Linux it falls back to the
// conventional 512-byte sector.
func GetSectorSizes(f *os.File, deviceType DeviceType) (logical int64, physical int64, err error) {
	if deviceType != DeviceTypeBlockDevice {
		return 512, 512, nil
	}
	fd := f.Fd()
	logicalSize, lerr := unix.IoctlGetInt(int(fd), unix.BLKSSZGET)
	if lerr != nil {
		logicalSize = readSysBlockSize(f.Name())
	}
	physicalSize, perr := unix.IoctlGetInt(int(fd), unix.BLKBSZGET)
	if perr != nil {
		physicalSize = logicalSize
	}
	if logicalSize <= 0 {
		logicalSize = 512
	}
	if physicalSize <= 0 {
		physicalSize = logicalSize
	}
	return int64(logicalSize), int64(physicalSize), nil
}

// readSysBlockSize is the fallback when BLKSSZGET is unavailable (e.g. the
// process lacks CAP_SYS_ADMIN in a container): it returns the value of
// /sys/class/block/<dev>/queue/logical_block_size, or 512 when that file is
// missing or does not hold a positive integer.
func readSysBlockSize(devicePath string) int {
	name := devicePath
	if idx := strings.LastIndex(devicePath, "/"); idx >= 0 {
		name = devicePath[idx+1:]
	}
	raw, err := os.ReadFile("/sys/class/block/" + name + "/queue/logical_block_size")
	if err != nil {
		return 512
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n <= 0 {
		return 512
	}
	return n
}
