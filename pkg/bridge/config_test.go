package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySegments(t *testing.T) {
	assert.NoError(t, VerifySegments(DefaultSegments()))
	assert.ErrorContains(t, VerifySegments(nil), "no segments")

	err := VerifySegments([]Segment{
		{Name: "", Size: 1},
		{Name: "ok", Size: 0},
		{Name: "x/y", Size: 1},
		{Name: "dup", Size: 1},
		{Name: "dup", Size: 1},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "segment 0")
	assert.ErrorContains(t, err, `"ok": size must be greater than zero`)
	assert.ErrorContains(t, err, "segment 2")
	assert.ErrorContains(t, err, `"dup": duplicate name`)
}

func TestDefaultSegments(t *testing.T) {
	segs := DefaultSegments()
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Name: "acpmf_crewchief", Size: 15660}, segs[0])
	for _, s := range segs[1:] {
		assert.Equal(t, uint64(2048), s.Size, s.Name)
	}
}

func TestLoadSegments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
segments:
  - name: a
    size: 1024
  - name: b
    size: 2048
`), 0o600))

	segs, err := LoadSegments(path)
	require.NoError(t, err)
	assert.Equal(t, twoSegments, segs)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("segments:\n  - name: a\n    size: 0\n"), 0o600))
	_, err = LoadSegments(bad)
	assert.ErrorContains(t, err, "size must be greater than zero")

	_, err = LoadSegments(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("segments: [\n"), 0o600))
	_, err = LoadSegments(garbage)
	assert.Error(t, err)
}
