package adapter

import (
	"fmt"
	"os"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
)

const maxGoroutines = 100

// NewHealthHandler serves /live and /ready. The bridge is ready while every
// path in backingFiles exists. Check results are exported to reg when it is
// not nil.
func NewHealthHandler(reg prometheus.Registerer, backingFiles []string) healthcheck.Handler {
	var h healthcheck.Handler
	if reg != nil {
		h = healthcheck.NewMetricsHandler(reg, namespace)
	} else {
		h = healthcheck.NewHandler()
	}
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))
	h.AddReadinessCheck("backing-files", BackingFilesCheck(backingFiles))
	return h
}

// BackingFilesCheck fails when any of paths is missing. paths is copied.
func BackingFilesCheck(paths []string) healthcheck.Check {
	paths = append([]string(nil), paths...)
	return func() error {
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("backing file %s: %w", p, err)
			}
		}
		return nil
	}
}
