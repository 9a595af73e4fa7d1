//go:build windows

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// Region is a named file mapping object. Other Windows processes opening a
// mapping with the same name get this object instead of a new anonymous one.
type Region struct {
	Name       string
	NativeName string
	Size       uint64
	handle     windows.Handle
}

// Data returns nil: the bridge never maps a view of the region itself.
func (r *Region) Data() []byte {
	return nil
}

// OpenBackingFile opens path read-write, creating it when missing, with the
// temporary attribute so the file system may keep it out of persistent
// storage.
func OpenBackingFile(path string) (*os.File, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_TEMPORARY,
		0,
	)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(h), path), nil
}

// CreateNamedMapping creates a file mapping object named name over f.
//
// The size is always passed explicitly: with both halves zero the object
// takes the current file length, which consumers of the bridge do not
// tolerate.
func CreateNamedMapping(name string, f *os.File, size uint64) (*Region, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("mapping size %d out of range", size)
	}
	native, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	high, low := SplitSize(size)
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE, high, low, native)
	if err != nil {
		return nil, fmt.Errorf("CreateFileMapping: %w", err)
	}
	return &Region{
		Name:       name,
		NativeName: name,
		Size:       size,
		handle:     h,
	}, nil
}

// Release closes the mapping handle.
func (r *Region) Release() error {
	if r == nil || r.handle == 0 {
		return nil
	}
	h := r.handle
	r.handle = 0
	if err := windows.CloseHandle(h); err != nil {
		return fmt.Errorf("CloseHandle: %w", err)
	}
	return nil
}

// IsTransient reports whether err is worth retrying. Mapping creation on
// Windows has no transient failures.
func IsTransient(err error) bool {
	return false
}
