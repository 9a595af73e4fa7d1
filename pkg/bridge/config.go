package bridge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	internalshm "github.com/srediag/shm-bridge/internal/shm"
)

// Segment is one named shared memory segment. Name is both the backing file
// name and the native mapping name; Size must match what the consumer of the
// segment expects.
type Segment struct {
	Name string `yaml:"name"`
	Size uint64 `yaml:"size"`
}

// DefaultSegments are the mappings Assetto Corsa and Assetto Corsa
// Competizione publish their telemetry in.
func DefaultSegments() []Segment {
	return []Segment{
		{Name: "acpmf_crewchief", Size: 15660},
		{Name: "acpmf_static", Size: 2048},
		{Name: "acpmf_physics", Size: 2048},
		{Name: "acpmf_graphics", Size: 2048},
	}
}

type segmentFile struct {
	Segments []Segment `yaml:"segments"`
}

// LoadSegments reads a segment table from a YAML file of the form
//
//	segments:
//	  - name: acpmf_physics
//	    size: 2048
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segment table: %w", err)
	}
	var sf segmentFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse segment table %s: %w", path, err)
	}
	if err := VerifySegments(sf.Segments); err != nil {
		return nil, fmt.Errorf("segment table %s: %w", path, err)
	}
	return sf.Segments, nil
}

// VerifySegments reports every problem with segs at once.
func VerifySegments(segs []Segment) error {
	if len(segs) == 0 {
		return errors.New("no segments configured")
	}
	var errs []error
	seen := make(map[string]bool, len(segs))
	for i, s := range segs {
		if err := internalshm.ValidateName(s.Name); err != nil {
			errs = append(errs, fmt.Errorf("segment %d: %w", i, err))
		}
		if s.Size == 0 {
			errs = append(errs, fmt.Errorf("segment %q: size must be greater than zero", s.Name))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("segment %q: duplicate name", s.Name))
		}
		seen[s.Name] = true
	}
	return errors.Join(errs...)
}
