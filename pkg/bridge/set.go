package bridge

import "github.com/srediag/shm-bridge/api"

type entry struct {
	segment Segment
	path    string
	mapping api.Mapping
}

// MappingSet is the ordered collection of mappings created by Start. It is
// owned by Start's caller and handed back to Shutdown; nothing else keeps a
// reference to it.
type MappingSet struct {
	dir     string
	entries []entry
}

// Dir returns the tmpfs directory the backing files live in.
func (s *MappingSet) Dir() string {
	return s.dir
}

// Len returns the number of mappings held.
func (s *MappingSet) Len() int {
	return len(s.entries)
}

// Paths returns the backing file paths in configuration order.
func (s *MappingSet) Paths() []string {
	paths := make([]string, len(s.entries))
	for i, e := range s.entries {
		paths[i] = e.path
	}
	return paths
}

// Segments returns the segments held, in configuration order.
func (s *MappingSet) Segments() []Segment {
	segs := make([]Segment, len(s.entries))
	for i, e := range s.entries {
		segs[i] = e.segment
	}
	return segs
}
