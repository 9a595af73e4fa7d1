package shm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemNameDevShm(t *testing.T) {
	if _, err := os.Stat("/dev/shm"); err != nil {
		t.Skip("/dev/shm not available")
	}
	name, err := FilesystemName("/dev/shm")
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/dev/shm/x", "/dev/shm"))
	assert.True(t, within("/dev/shm", "/dev/shm/"))
	assert.True(t, within("/anything", "/"))
	assert.False(t, within("/dev/shmem", "/dev/shm"))
}
