// Package api defines the capability contracts the bridge is composed from.
package api

import "os"

// Mapping is a native named shared memory mapping backed by a file.
type Mapping interface {
	// Name is the native name other processes resolve to reuse the mapping.
	Name() string
	// Size is the mapping size in bytes.
	Size() uint64
	// Close releases the native handle. Calls after the first return the
	// first call's result.
	Close() error
}

// SharedMemoryBackend creates file-backed named mappings.
type SharedMemoryBackend interface {
	// OpenBackingFile opens or creates the backing file at path.
	OpenBackingFile(path string) (*os.File, error)
	// CreateNamedMapping resizes file to exactly size bytes and creates a
	// mapping named name over it.
	CreateNamedMapping(name string, file *os.File, size uint64) (Mapping, error)
}
