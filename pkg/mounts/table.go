package mounts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/srediag/shm-bridge/internal/logging"
)

// Table reads a mount table lazily, one line at a time. Malformed lines are
// logged and skipped; they never stop the remaining lines from being read.
type Table struct {
	sc      *bufio.Scanner
	logger  *logging.Logger
	skipped []*ParseError
	err     error
	used    bool
}

// NewTable returns a Table over r. A nil logger uses the default one.
func NewTable(r io.Reader, logger *logging.Logger) *Table {
	return &Table{
		sc:     bufio.NewScanner(r),
		logger: logger.Or(),
	}
}

// All yields the parsed records in table order. The sequence can be consumed
// once; later calls yield nothing.
func (t *Table) All() iter.Seq[Mount] {
	return func(yield func(Mount) bool) {
		if t.used {
			return
		}
		t.used = true
		lineNo := 0
		for t.sc.Scan() {
			lineNo++
			line := t.sc.Text()
			trimmed := strings.TrimLeft(line, " \t")
			if trimmed == "" || trimmed[0] == '#' {
				continue
			}
			m, err := ParseLine(line)
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					pe.Line = lineNo
					t.skipped = append(t.skipped, pe)
				}
				t.logger.Warnf("skipping mount table line: %v", err)
				continue
			}
			if !yield(m) {
				return
			}
		}
		if err := t.sc.Err(); err != nil {
			t.err = fmt.Errorf("mounts: read table: %w", err)
		}
	}
}

// Skipped returns the lines rejected so far.
func (t *Table) Skipped() []*ParseError {
	return t.skipped
}

// Err returns the error that ended the table early, if any. Line level
// parse failures are not reported here.
func (t *Table) Err() error {
	return t.err
}

// ReadFile parses the mount table at path.
func ReadFile(path string, logger *logging.Logger) ([]Mount, []*ParseError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mounts: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Or().Warnf("close %s: %v", path, cerr)
		}
	}()

	t := NewTable(f, logger)
	var out []Mount
	for m := range t.All() {
		out = append(out, m)
	}
	return out, t.Skipped(), t.Err()
}
