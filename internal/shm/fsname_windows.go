//go:build windows

package shm

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// FilesystemName returns the file system name of the volume holding path.
//
// Under Wine every host directory sits on the Z: volume, so this reports the
// volume's name rather than that of the directory's own mount.
func FilesystemName(path string) (string, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return "", err
	}
	root := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumePathName(p, &root[0], uint32(len(root))); err != nil {
		return "", fmt.Errorf("volume of %s: %w", path, err)
	}
	name := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumeInformation(&root[0], nil, 0, nil, nil, nil, &name[0], uint32(len(name))); err != nil {
		return "", fmt.Errorf("file system name of %s: %w", path, err)
	}
	return windows.UTF16ToString(name), nil
}
