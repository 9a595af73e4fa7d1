// Package bridge creates one file-backed named mapping per configured
// segment inside a tmpfs directory, holds them until asked to stop, and then
// tears them down: backing files are unlinked first, mapping handles are
// released afterwards.
//
// Unlinking first retires the files for new openers while every mapping
// that is already open, here or in another process, keeps working until its
// last handle goes away.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shm-bridge/adapter"
	"github.com/srediag/shm-bridge/api"
	"github.com/srediag/shm-bridge/internal/logging"
	internalshm "github.com/srediag/shm-bridge/internal/shm"
	"github.com/srediag/shm-bridge/pkg/shm"
)

// Bridge drives discovery, mapping creation and teardown. All of its work
// happens on the calling goroutine.
type Bridge struct {
	backend api.SharedMemoryBackend
	table   api.MountTable

	logger    *logging.Logger
	metrics   *adapter.Metrics
	tracer    trace.Tracer
	meter     metric.Meter
	live      metric.Int64UpDownCounter
	ready     func(*MappingSet)
	freeSpace func(dir string) (uint64, error)
}

// Option configures a Bridge.
type Option func(*Bridge)

func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

func WithMetrics(m *adapter.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(b *Bridge) { b.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(b *Bridge) { b.meter = m }
}

// WithReady registers a callback Run invokes once every mapping exists.
func WithReady(fn func(*MappingSet)) Option {
	return func(b *Bridge) { b.ready = fn }
}

// WithFreeSpace replaces the free space lookup used for the startup
// capacity warning.
func WithFreeSpace(fn func(dir string) (uint64, error)) Option {
	return func(b *Bridge) { b.freeSpace = fn }
}

// New returns a Bridge creating mappings through backend inside the
// directory table discovers.
func New(backend api.SharedMemoryBackend, table api.MountTable, opts ...Option) *Bridge {
	b := &Bridge{
		backend:   backend,
		table:     table,
		freeSpace: internalshm.FreeSpace,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Or()
	b.tracer = adapter.TracerOrNoop(b.tracer)
	live, err := adapter.NewLiveMappingsCounter(b.meter)
	if err != nil {
		b.logger.Warnf("live mappings counter unavailable: %v", err)
		live, _ = adapter.NewLiveMappingsCounter(nil)
	}
	b.live = live
	return b
}

// Start discovers the tmpfs directory and creates a mapping for every
// segment, in order. The first failure stops startup: every mapping created
// so far is torn down and a *StartupError naming the segment is returned.
//
// Start does not watch ctx for cancellation.
func (b *Bridge) Start(ctx context.Context, segs []Segment) (*MappingSet, error) {
	ctx, span := b.tracer.Start(ctx, "bridge.start")
	defer span.End()

	if err := VerifySegments(segs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid segment table: %w", err)
	}
	dir, err := b.table.DiscoverTmpfs(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find a tmpfs directory: %w", err)
	}
	b.logger.Infof("Found a tmpfs filesystem at %s", dir)
	b.checkCapacity(dir, segs)

	set := &MappingSet{dir: dir, entries: make([]entry, 0, len(segs))}
	for _, seg := range segs {
		path := filepath.Join(dir, seg.Name)
		m, err := b.createMapping(ctx, path, seg)
		if err != nil {
			b.logger.Errorf("creating %s failed, releasing %d mapping(s) created so far", seg.Name, set.Len())
			if terr := b.teardown(ctx, set); terr != nil {
				b.logger.Warnf("rollback: %v", terr)
			}
			span.SetStatus(codes.Error, err.Error())
			return nil, &StartupError{Segment: seg.Name, Err: err}
		}
		set.entries = append(set.entries, entry{segment: seg, path: path, mapping: m})
		b.logger.Infof("Created a tmpfs backed mapping for %s with size %d", seg.Name, seg.Size)
	}
	span.SetAttributes(attribute.Int("bridge.segments", set.Len()))
	return set, nil
}

func (b *Bridge) createMapping(ctx context.Context, path string, seg Segment) (api.Mapping, error) {
	ctx, span := b.tracer.Start(ctx, "bridge.segment", trace.WithAttributes(
		attribute.String("segment.name", seg.Name),
		attribute.Int64("segment.size", int64(seg.Size)),
	))
	defer span.End()

	f, err := b.backend.OpenBackingFile(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &shm.IOError{Segment: seg.Name, Op: "open", Err: err}
	}
	m, err := b.backend.CreateNamedMapping(seg.Name, f, seg.Size)
	// The mapping keeps the storage alive; the file handle is not needed
	// past this point.
	if cerr := f.Close(); cerr != nil {
		b.logger.Warnf("close backing file %s: %v", path, cerr)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			b.logger.Warnf("rollback: remove backing file %s: %v", path, rerr)
		}
		return nil, err
	}
	b.metrics.MappingCreated(seg.Size)
	b.live.Add(ctx, 1)
	return m, nil
}

func (b *Bridge) checkCapacity(dir string, segs []Segment) {
	if b.freeSpace == nil {
		return
	}
	var total uint64
	for _, s := range segs {
		total += s.Size
	}
	free, err := b.freeSpace(dir)
	if err != nil {
		b.logger.Debugf("free space of %s unknown: %v", dir, err)
		return
	}
	if free < total {
		b.logger.Warnf("%s has %d bytes free, segments need %d", dir, free, total)
	}
}

// Shutdown unlinks every backing file, then releases every mapping. Missing
// files are only logged. Every other failure is collected while the
// remaining steps still run, and all of them are returned joined.
//
// Shutdown empties set; calling it again does nothing. Mappings whose
// release failed stay counted as open in the metrics.
func (b *Bridge) Shutdown(ctx context.Context, set *MappingSet) error {
	ctx, span := b.tracer.Start(ctx, "bridge.shutdown")
	defer span.End()

	err := b.teardown(ctx, set)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (b *Bridge) teardown(ctx context.Context, set *MappingSet) error {
	if set == nil {
		return nil
	}
	var errs []error
	for _, e := range set.entries {
		b.logger.Infof("Removing mapping %s", e.segment.Name)
		if err := os.Remove(e.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				b.logger.Warnf("backing file %s was already removed", e.path)
				continue
			}
			b.metrics.TeardownFailed("unlink")
			errs = append(errs, &TeardownError{Segment: e.segment.Name, Op: "unlink", Err: err})
		}
	}
	for _, e := range set.entries {
		if err := e.mapping.Close(); err != nil {
			b.logger.Warnf("release mapping %s: %v", e.segment.Name, err)
			b.metrics.TeardownFailed("close")
			errs = append(errs, &TeardownError{Segment: e.segment.Name, Op: "close", Err: err})
			continue
		}
		b.metrics.MappingClosed(e.segment.Size)
		b.live.Add(ctx, -1)
	}
	set.entries = nil
	return errors.Join(errs...)
}

// Run starts the bridge, blocks until ctx is done and shuts it down.
func (b *Bridge) Run(ctx context.Context, segs []Segment) error {
	set, err := b.Start(ctx, segs)
	if err != nil {
		return err
	}
	if b.ready != nil {
		b.ready(set)
	}
	b.logger.Infof("All mappings were successfully created, waiting for an interrupt to exit.")

	<-ctx.Done()

	b.logger.Infof("Shutting down.")
	return b.Shutdown(context.WithoutCancel(ctx), set)
}
