// Package shm is the platform layer behind file-backed named mappings: it
// opens backing files, creates and releases the native mapping, and looks up
// filesystem properties of the backing directory.
//
// Implementations are in platform_unix.go and platform_windows.go.
package shm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrInvalidName is returned for mapping names the host cannot resolve back
// to the backing file.
var ErrInvalidName = errors.New("invalid mapping name")

// SplitSize splits a 64-bit mapping size into the high and low 32-bit halves
// the Windows mapping call takes. high<<32 | low == size for every size.
func SplitSize(size uint64) (high, low uint32) {
	return uint32(size >> 32), uint32(size & 0xFFFF_FFFF)
}

// JoinSize is the inverse of SplitSize.
func JoinSize(high, low uint32) uint64 {
	return uint64(high)<<32 | uint64(low)
}

// ValidateName checks that name can serve both as a file name inside the
// tmpfs directory and as a native mapping name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidName, name)
	}
	return nil
}

// FreeSpace returns the free bytes of the filesystem holding dir.
func FreeSpace(dir string) (uint64, error) {
	stat, err := disk.Usage(dir)
	if err != nil {
		return 0, err
	}
	return stat.Free, nil
}
