//go:build !linux

package disk

import "os"

// GetSectorSizes on non-Linux platforms always reports the conventional
// 512-byte sector: none of the other example repos' ioctl paths (Darwin's
// DKIOCGETBLOCKSIZE, Windows' DeviceIoControl) were retrieved for this
// build, so this module only does device-geometry detection on Linux.
func GetSectorSizes(f *os.File, deviceType DeviceType) (logical int64, physical int64, err error) {
	return 512, 512, nil
}
