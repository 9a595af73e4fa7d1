//go:build unix

package shm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sys/unix"

	internalshm "github.com/srediag/shm-bridge/internal/shm"
)

type MappingTestSuite struct {
	suite.Suite
	dir string
}

func (s *MappingTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *MappingTestSuite) openFile(name string, initial int) *os.File {
	path := filepath.Join(s.dir, name)
	if initial >= 0 {
		s.Require().NoError(os.WriteFile(path, make([]byte, initial), 0o600))
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = f.Close() })
	return f
}

func (s *MappingTestSuite) TestCreateNormalizesFileLength() {
	for _, c := range []struct {
		initial int
		size    uint64
	}{
		{-1, 1024},
		{0, 2048},
		{100, 15660},
		{1 << 16, 4096},
		{4096, 4096},
	} {
		f := s.openFile("seg", c.initial)
		m, err := Create("seg", f, c.size)
		s.Require().NoError(err)

		st, err := os.Stat(f.Name())
		s.Require().NoError(err)
		s.Equal(int64(c.size), st.Size(), "initial length %d", c.initial)
		s.Equal(c.size, m.Size())
		s.Equal("seg", m.Name())
		s.Len(m.Bytes(), int(c.size))
		s.NoError(m.Close())
		s.Require().NoError(os.Remove(f.Name()))
	}
}

func (s *MappingTestSuite) TestMappingSurvivesClosedFile() {
	f := s.openFile("seg", -1)
	m, err := Create("seg", f, 64)
	s.Require().NoError(err)
	s.Require().NoError(f.Close())

	copy(m.Bytes(), "telemetry")
	got, err := os.ReadFile(filepath.Join(s.dir, "seg"))
	s.Require().NoError(err)
	s.Equal("telemetry", string(got[:9]))
	s.NoError(m.Close())
}

func (s *MappingTestSuite) TestCloseIsIdempotent() {
	m, err := Create("seg", s.openFile("seg", -1), 128)
	s.Require().NoError(err)
	s.NoError(m.Close())
	s.NoError(m.Close())
	s.Nil(m.Bytes())
}

func (s *MappingTestSuite) TestCreateErrors() {
	f := s.openFile("seg", -1)

	_, err := Create("seg", f, 0)
	var ioErr *IOError
	s.Require().ErrorAs(err, &ioErr)
	s.Equal("seg", ioErr.Segment)
	s.Equal("resize", ioErr.Op)

	_, err = Create("bad/name", f, 16)
	var mapErr *MappingError
	s.Require().ErrorAs(err, &mapErr)
	s.Equal("bad/name", mapErr.Segment)
	s.ErrorIs(err, internalshm.ErrInvalidName)

	ro, err := os.Open(f.Name())
	s.Require().NoError(err)
	defer ro.Close()
	_, err = Create("seg", ro, 16)
	s.Require().ErrorAs(err, &ioErr)
}

func (s *MappingTestSuite) TestNativeBackend() {
	n := NewNative(nil)
	f, err := n.OpenBackingFile(filepath.Join(s.dir, "native"))
	s.Require().NoError(err)
	defer f.Close()

	m, err := n.CreateNamedMapping("native", f, 512)
	s.Require().NoError(err)
	s.Equal(uint64(512), m.Size())
	s.NoError(m.Close())

	_, err = n.OpenBackingFile(filepath.Join(s.dir, "missing", "x"))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *MappingTestSuite) TestNativeRetriesTransientErrors() {
	n := &Native{Retries: 3}
	calls := 0
	err := n.retry("op", func() error {
		calls++
		if calls < 3 {
			return unix.EINTR
		}
		return nil
	})
	s.NoError(err)
	s.Equal(3, calls)

	calls = 0
	permanent := errors.New("boom")
	err = n.retry("op", func() error {
		calls++
		return permanent
	})
	s.ErrorIs(err, permanent)
	s.Equal(1, calls)

	calls = 0
	err = n.retry("op", func() error {
		calls++
		return unix.EAGAIN
	})
	s.ErrorIs(err, unix.EAGAIN)
	s.Equal(4, calls)
}

func TestMappingTestSuite(t *testing.T) {
	suite.Run(t, new(MappingTestSuite))
}
