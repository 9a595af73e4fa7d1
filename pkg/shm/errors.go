package shm

import "fmt"

// IOError is a failure to open or resize a segment's backing file.
type IOError struct {
	Segment string
	Op      string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("segment %s: %s backing file: %v", e.Segment, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// MappingError is a failure of the native mapping call. Err carries the
// native error.
type MappingError struct {
	Segment string
	Err     error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("segment %s: create named mapping: %v", e.Segment, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
