package shm

import (
	"errors"
	"math"
	"os"
	"sync"

	internalshm "github.com/srediag/shm-bridge/internal/shm"
)

// Mapping is a native named shared memory mapping backed by a file. It owns
// the native handle; Close releases it exactly once.
type Mapping struct {
	region *internalshm.Region
	name   string
	size   uint64

	once     sync.Once
	closeErr error
}

// Create resizes file to exactly size bytes and creates a mapping named
// name over it.
//
// The file is resized even when it already has the right length: the native
// call can derive the size from the file, but the bridge always passes it
// explicitly so the mapping never depends on whatever length the file had.
// file may be closed once Create returns.
func Create(name string, file *os.File, size uint64) (*Mapping, error) {
	if size == 0 || size > math.MaxInt64 {
		return nil, &IOError{Segment: name, Op: "resize", Err: errors.New("size out of range")}
	}
	if err := file.Truncate(int64(size)); err != nil {
		return nil, &IOError{Segment: name, Op: "resize", Err: err}
	}
	region, err := internalshm.CreateNamedMapping(name, file, size)
	if err != nil {
		return nil, &MappingError{Segment: name, Err: err}
	}
	return &Mapping{
		region: region,
		name:   name,
		size:   size,
	}, nil
}

// Name returns the mapping's native name as given to Create.
func (m *Mapping) Name() string {
	return m.name
}

// Size returns the mapping size in bytes.
func (m *Mapping) Size() uint64 {
	return m.size
}

// Bytes returns the mapped memory, or nil where the platform does not map a
// view into this process.
func (m *Mapping) Bytes() []byte {
	return m.region.Data()
}

// Close releases the native handle. Only the first call does anything;
// later calls return its result.
func (m *Mapping) Close() error {
	m.once.Do(func() {
		m.closeErr = m.region.Release()
	})
	return m.closeErr
}
