package mounts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	m, err := ParseLine("proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0")
	require.NoError(t, err)
	assert.Equal(t, Mount{
		Device:        "proc",
		MountPoint:    "/proc",
		Type:          "proc",
		Options:       []string{"rw", "nosuid", "nodev", "noexec", "relatime"},
		DumpFrequency: 0,
		PassNumber:    0,
	}, m)
	assert.False(t, m.Type.IsTmpfs())

	m, err = ParseLine("  tmpfs\t/dev/shm tmpfs rw,nosuid,nodev,inode64   255 2\t")
	require.NoError(t, err)
	assert.True(t, m.Type.IsTmpfs())
	assert.Equal(t, "/dev/shm", m.MountPoint)
	assert.Equal(t, uint8(255), m.DumpFrequency)
	assert.Equal(t, uint8(2), m.PassNumber)
}

func TestParseLineEscapes(t *testing.T) {
	m, err := ParseLine(`my\040dev\\ice /mnt/with\040space ext4 rw 0 1`)
	require.NoError(t, err)
	assert.Equal(t, `my dev\ice`, m.Device)
	assert.Equal(t, "/mnt/with space", m.MountPoint)

	m, err = ParseLine(`dev\x /mnt\0 ext4 rw 0 1`)
	require.NoError(t, err)
	assert.Equal(t, "devx", m.Device)
	assert.Equal(t, "/mnt0", m.MountPoint)

	_, err = ParseLine(`dev\ /mnt ext4 rw 0 1`)
	assert.Error(t, err)
}

func TestEscapeRoundTrip(t *testing.T) {
	const device = `my\040dev\\ice`
	m, err := ParseLine(device + " /mnt ext4 rw 0 0")
	require.NoError(t, err)
	assert.Equal(t, device, Escape(m.Device))

	for _, s := range []string{"", "plain", "a b", `a\b`, ` \ `, `\040`} {
		line := Escape(s+"x") + " /mnt tmpfs rw 0 0"
		m, err := ParseLine(line)
		require.NoError(t, err, line)
		assert.Equal(t, s+"x", m.Device)
	}
}

func TestParseLinePassNumber(t *testing.T) {
	for c := 0; c < 128; c++ {
		line := fmt.Sprintf("tmpfs /dev/shm tmpfs rw 0 %c", c)
		_, err := ParseLine(line)
		switch c {
		case '0', '1', '2':
			assert.NoError(t, err, "pass number %q", c)
		default:
			assert.Error(t, err, "pass number %q", c)
		}
	}
	for _, pass := range []string{"00", "10", "3", "-1", "+1", "01"} {
		_, err := ParseLine("tmpfs /dev/shm tmpfs rw 0 " + pass)
		assert.Error(t, err, pass)
	}
}

func TestParseLineRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"tmpfs /dev/shm tmpfs rw 0",
		"tmpfs /dev/shm tmpfs rw 0 0 extra",
		"tmpfs /dev/shm tmpfs rw 256 0",
		"tmpfs /dev/shm tmpfs rw -1 0",
		"tmpfs /dev/shm tmpfs rw +1 0",
		"tmpfs /dev/shm tmpfs rw x 0",
		"tmpfs /dev/shm tmpfs rw 0 0\r",
		"tmpfs /dev/shm\u00a0x tmpfs rw 0 0",
		"tmp\u2003fs /dev/shm tmpfs rw 0 0",
		"tmpfs /dev/shm tmpfs rw\u0085 0 0",
	} {
		_, err := ParseLine(line)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "%q", line)
		assert.Equal(t, line, pe.Text)
	}
}

func TestParseLineKeepsOptionOrder(t *testing.T) {
	m, err := ParseLine("none /x tmpfs size=1k,rw,,mode=1777 0 0")
	require.NoError(t, err)
	assert.Equal(t, []string{"size=1k", "rw", "", "mode=1777"}, m.Options)
}
