package mounts

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/srediag/shm-bridge/internal/logging"
	internalshm "github.com/srediag/shm-bridge/internal/shm"
)

// DevShm is the conventional shared memory mount point. It wins over every
// other tmpfs candidate.
const DevShm = "/dev/shm"

// ErrNoTmpfsFound is returned when a mount table has no tmpfs record.
var ErrNoTmpfsFound = errors.New("mounts: no tmpfs mount found")

// FindTmpfsDirectory picks the tmpfs mount point to use as backing storage:
// /dev/shm when it is a tmpfs mount, otherwise the first tmpfs mount in
// table order.
func FindTmpfsDirectory(mounts iter.Seq[Mount]) (string, error) {
	first := ""
	for m := range mounts {
		if !m.Type.IsTmpfs() {
			continue
		}
		if filepath.Clean(m.MountPoint) == DevShm {
			return m.MountPoint, nil
		}
		if first == "" {
			first = m.MountPoint
		}
	}
	if first == "" {
		return "", ErrNoTmpfsFound
	}
	return first, nil
}

// DefaultSources are the mount tables ProcMountTable reads when none are
// configured, in order.
var DefaultSources = []string{"/proc/mounts", "/etc/fstab"}

// ProcMountTable discovers the tmpfs directory by parsing mount tables.
// Sources are tried in order until one yields a tmpfs mount.
type ProcMountTable struct {
	Sources   []string
	Logger    *logging.Logger
	OnSkipped func(source string, skipped []*ParseError)
}

func (p *ProcMountTable) DiscoverTmpfs(ctx context.Context) (string, error) {
	sources := p.Sources
	if len(sources) == 0 {
		sources = DefaultSources
	}
	logger := p.Logger.Or()

	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mounts, skipped, err := ReadFile(src, logger)
		if len(skipped) > 0 && p.OnSkipped != nil {
			p.OnSkipped(src, skipped)
		}
		if err != nil && len(mounts) == 0 {
			logger.Debugf("mount table %s unavailable: %v", src, err)
			errs = append(errs, err)
			continue
		}
		dir, err := FindTmpfsDirectory(slices.Values(mounts))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		logger.Debugf("found tmpfs %s in %s", dir, src)
		return dir, nil
	}
	if len(errs) == 0 {
		return "", ErrNoTmpfsFound
	}
	if !containsNoTmpfs(errs) {
		errs = append(errs, ErrNoTmpfsFound)
	}
	return "", fmt.Errorf("mounts: discover tmpfs in %s: %w", strings.Join(sources, ", "), errors.Join(errs...))
}

func containsNoTmpfs(errs []error) bool {
	for _, err := range errs {
		if errors.Is(err, ErrNoTmpfsFound) {
			return true
		}
	}
	return false
}

// DefaultFixedPath is the tmpfs directory used when mount tables are not
// consulted.
const DefaultFixedPath = "/dev/shm/"

// FixedMountTable returns a configured directory without reading any mount
// table. The directory's filesystem name is cross-checked against
// ExpectedFilesystem; a mismatch is only logged.
type FixedMountTable struct {
	Path               string
	ExpectedFilesystem string
	// Lookup resolves the filesystem name of a path. Defaults to the host
	// volume lookup.
	Lookup func(path string) (string, error)
	Logger *logging.Logger
}

func (f *FixedMountTable) DiscoverTmpfs(ctx context.Context) (string, error) {
	path := f.Path
	if path == "" {
		path = DefaultFixedPath
	}
	expected := f.ExpectedFilesystem
	if expected == "" {
		expected = string(TmpFS)
	}
	lookup := f.Lookup
	if lookup == nil {
		lookup = internalshm.FilesystemName
	}
	logger := f.Logger.Or()

	name, err := lookup(path)
	switch {
	case err != nil:
		logger.Warnf("could not verify the filesystem of %s: %v", path, err)
	case !strings.EqualFold(name, expected):
		logger.Warnf("%s is on a %q filesystem, expected %q", path, name, expected)
	default:
		logger.Debugf("%s is on a %s filesystem", path, name)
	}
	return path, nil
}
