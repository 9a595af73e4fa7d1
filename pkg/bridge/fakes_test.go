package bridge

import (
	"context"
	"errors"
	"os"

	"github.com/srediag/shm-bridge/api"
)

type fakeTable struct {
	dir string
	err error
}

func (f *fakeTable) DiscoverTmpfs(context.Context) (string, error) {
	return f.dir, f.err
}

type fakeMapping struct {
	name     string
	size     uint64
	path     string
	closes   int
	closeErr error
	// fileGoneAtClose records whether the backing file had already been
	// unlinked when Close ran.
	fileGoneAtClose bool
}

func (m *fakeMapping) Name() string { return m.name }
func (m *fakeMapping) Size() uint64 { return m.size }

func (m *fakeMapping) Close() error {
	m.closes++
	_, err := os.Stat(m.path)
	m.fileGoneAtClose = errors.Is(err, os.ErrNotExist)
	return m.closeErr
}

type fakeBackend struct {
	failOn   string
	failErr  error
	closeErr map[string]error
	mappings []*fakeMapping
}

func (b *fakeBackend) OpenBackingFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
}

func (b *fakeBackend) CreateNamedMapping(name string, file *os.File, size uint64) (api.Mapping, error) {
	if name == b.failOn {
		return nil, b.failErr
	}
	if err := file.Truncate(int64(size)); err != nil {
		return nil, err
	}
	m := &fakeMapping{name: name, size: size, path: file.Name(), closeErr: b.closeErr[name]}
	b.mappings = append(b.mappings, m)
	return m, nil
}
