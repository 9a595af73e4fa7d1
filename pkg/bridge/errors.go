package bridge

import "fmt"

// StartupError names the segment whose creation aborted startup.
type StartupError struct {
	Segment string
	Err     error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("error creating a file mapping for %s: %v", e.Segment, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// TeardownError is a failed teardown step for one segment. Teardown keeps
// going after one; all of them are joined and returned at the end.
type TeardownError struct {
	Segment string
	Op      string
	Err     error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("segment %s: %s: %v", e.Segment, e.Op, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }
