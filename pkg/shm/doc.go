// Package shm provides file-backed named shared memory mappings.
//
// A Mapping is created over a backing file in a tmpfs directory and carries
// the same name as that file. A process in the other environment that asks
// its shared memory API for that name gets this mapping back instead of
// creating its own anonymous one, so whatever it writes is also visible as
// an ordinary file.
//
// Example usage:
//
//	f, err := os.OpenFile("/dev/shm/acpmf_physics", os.O_RDWR|os.O_CREATE, 0o600)
//	// ...
//	m, err := shm.Create("acpmf_physics", f, 2048)
//	// ...
//	_ = f.Close() // the mapping keeps the storage alive
//	defer m.Close()
//
// Platform-specific helpers are in internal/shm.
package shm
