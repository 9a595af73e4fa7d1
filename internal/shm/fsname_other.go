//go:build !windows

package shm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// FilesystemName returns the type of the filesystem mounted closest above
// path, e.g. "tmpfs" for /dev/shm.
func FilesystemName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	parts, err := disk.Partitions(true)
	if err != nil {
		return "", fmt.Errorf("list partitions: %w", err)
	}
	best, fstype := -1, ""
	for _, p := range parts {
		if !within(abs, p.Mountpoint) {
			continue
		}
		if len(p.Mountpoint) > best {
			best, fstype = len(p.Mountpoint), p.Fstype
		}
	}
	if best < 0 {
		return "", fmt.Errorf("no mount contains %s", abs)
	}
	return fstype, nil
}

func within(path, mountpoint string) bool {
	mp := filepath.Clean(mountpoint)
	if mp == "/" {
		return true
	}
	return path == mp || strings.HasPrefix(path, mp+string(filepath.Separator))
}
