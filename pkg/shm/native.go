package shm

import (
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/srediag/shm-bridge/api"
	"github.com/srediag/shm-bridge/internal/logging"
	internalshm "github.com/srediag/shm-bridge/internal/shm"
)

const (
	defaultRetries       = 3
	defaultRetryInterval = 10 * time.Millisecond
)

var _ api.SharedMemoryBackend = (*Native)(nil)

// Native is the host's shared memory backend. Interrupted or temporarily
// unavailable system calls are retried a few times; every other error is
// returned as is.
type Native struct {
	Logger        *logging.Logger
	Retries       uint64
	RetryInterval time.Duration
}

// NewNative returns a Native backend with the default retry policy.
func NewNative(logger *logging.Logger) *Native {
	return &Native{
		Logger:        logger,
		Retries:       defaultRetries,
		RetryInterval: defaultRetryInterval,
	}
}

func (n *Native) OpenBackingFile(path string) (*os.File, error) {
	var f *os.File
	err := n.retry("open "+path, func() error {
		var err error
		f, err = internalshm.OpenBackingFile(path)
		return err
	})
	return f, err
}

func (n *Native) CreateNamedMapping(name string, file *os.File, size uint64) (api.Mapping, error) {
	var m *Mapping
	err := n.retry("map "+name, func() error {
		var err error
		m, err = Create(name, file, size)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (n *Native) retry(what string, op func() error) error {
	logger := n.Logger.Or()
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(n.RetryInterval), n.Retries)
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !internalshm.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		logger.Debugf("%s: %v, retrying in %s", what, err, wait)
	})
}
