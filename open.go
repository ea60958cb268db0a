// Package ext2view opens a disk image or block device and decodes a
// read-only ext2 filesystem from it (spec.md §1, §6).
package ext2view

import (
	"fmt"

	backendfile "github.com/ext2fs/ext2view/backend/file"
	"github.com/ext2fs/ext2view/disk"
)

// Open opens the device or image at path read-only, determines its sector
// geometry and, if present, decodes its partition table. It does not yet
// decode any filesystem: call disk.GetFilesystem on the result to do that
// for a chosen partition (0 for an unpartitioned image).
func Open(path string) (*disk.Disk, error) {
	storage, err := backendfile.OpenFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := storage.Sys()
	if err != nil {
		return nil, fmt.Errorf("could not obtain OS file handle: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", path, err)
	}

	deviceType, err := disk.DetermineDeviceType(f)
	if err != nil {
		return nil, err
	}
	dType := disk.File
	if deviceType == disk.DeviceTypeBlockDevice {
		dType = disk.Device
	}

	logical, physical, err := disk.GetSectorSizes(f, deviceType)
	if err != nil {
		return nil, fmt.Errorf("could not determine sector size of %s: %w", path, err)
	}

	size := info.Size()
	if size == 0 && deviceType == disk.DeviceTypeBlockDevice {
		size, err = f.Seek(0, 2)
		if err != nil {
			return nil, fmt.Errorf("could not determine size of block device %s: %w", path, err)
		}
	}

	d := &disk.Disk{
		Storage:           storage,
		Info:              info,
		Type:              dType,
		Size:              size,
		LogicalBlocksize:  logical,
		PhysicalBlocksize: physical,
	}

	if table, err := d.GetPartitionTable(); err == nil {
		d.Table = table
	}

	return d, nil
}
