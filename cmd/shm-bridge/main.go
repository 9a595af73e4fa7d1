// shm-bridge makes named shared memory created by Windows programs running
// under Wine or Proton visible as files in a Linux tmpfs.
//
// It creates one file-backed named mapping per segment before the Windows
// program starts. The program then reuses those mappings instead of creating
// anonymous ones, so its telemetry shows up in /dev/shm for Linux tools.
//
// Usage:
//
//	protontricks-launch --appid APPID shm-bridge.exe [flags]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/srediag/shm-bridge/adapter"
	"github.com/srediag/shm-bridge/api"
	"github.com/srediag/shm-bridge/internal/logging"
	"github.com/srediag/shm-bridge/pkg/bridge"
	"github.com/srediag/shm-bridge/pkg/mounts"
	"github.com/srediag/shm-bridge/pkg/shm"
)

const version = "0.3.0"

type options struct {
	discovery    string
	shmDir       string
	expectFS     string
	mountSources []string
	segments     string
	healthAddr   string
	logLevel     string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("shm-bridge", pflag.ContinueOnError)
	flagSet.StringVar(&opts.discovery, "discovery", "fixed", `how to find the tmpfs directory: "fixed" uses --shm-dir, "mounts" parses --mount-source`)
	flagSet.StringVar(&opts.shmDir, "shm-dir", mounts.DefaultFixedPath, "tmpfs directory used with --discovery=fixed")
	flagSet.StringVar(&opts.expectFS, "expect-fs", string(mounts.TmpFS), "filesystem name --shm-dir is expected to report")
	flagSet.StringArrayVar(&opts.mountSources, "mount-source", mounts.DefaultSources, "mount table read with --discovery=mounts, tried in order")
	flagSet.StringVar(&opts.segments, "segments", "", "YAML segment table (default: the Assetto Corsa segments)")
	flagSet.StringVar(&opts.healthAddr, "health-addr", "", "serve /live, /ready and /metrics on this address")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn, error or off (overrides "+logging.EnvLogLevel+")")
	showVersion := flagSet.Bool("version", false, "print the version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("shm-bridge %s\n", version)
		return nil
	}
	if opts.logLevel != "" {
		l, err := logging.ParseLevel(opts.logLevel)
		if err != nil {
			return err
		}
		logging.SetLevel(l)
	}
	logger := logging.Default()

	segs := bridge.DefaultSegments()
	if opts.segments != "" {
		var err error
		if segs, err = bridge.LoadSegments(opts.segments); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := adapter.NewMetrics(reg)
	if err != nil {
		return err
	}

	table, err := mountTable(opts, logger, metrics)
	if err != nil {
		return err
	}

	// The signal goroutine only cancels ctx; everything else stays on this
	// goroutine. A signal received while mappings are still being created
	// is acted upon once startup has finished.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	b := bridge.New(shm.NewNative(logger), table,
		bridge.WithLogger(logger),
		bridge.WithMetrics(metrics),
		bridge.WithReady(func(set *bridge.MappingSet) {
			if opts.healthAddr != "" {
				server = serveHealth(opts.healthAddr, reg, set.Paths(), logger)
			}
		}),
	)
	runErr := b.Run(ctx, segs)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("health server shutdown: %v", err)
		}
	}
	return runErr
}

func mountTable(opts options, logger *logging.Logger, metrics *adapter.Metrics) (api.MountTable, error) {
	switch opts.discovery {
	case "fixed":
		return &mounts.FixedMountTable{
			Path:               opts.shmDir,
			ExpectedFilesystem: opts.expectFS,
			Logger:             logger,
		}, nil
	case "mounts":
		return &mounts.ProcMountTable{
			Sources: opts.mountSources,
			Logger:  logger,
			OnSkipped: func(src string, skipped []*mounts.ParseError) {
				metrics.LinesSkipped(src, len(skipped))
			},
		}, nil
	}
	return nil, fmt.Errorf(`unknown discovery mode %q, want "fixed" or "mounts"`, opts.discovery)
}

func serveHealth(addr string, reg *prometheus.Registry, paths []string, logger *logging.Logger) *http.Server {
	health := adapter.NewHealthHandler(reg, paths)
	mux := http.NewServeMux()
	mux.Handle("/live", health)
	mux.Handle("/ready", health)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("health server: %v", err)
		}
	}()
	logger.Infof("Serving health checks on %s", addr)
	return server
}
