package process

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/tendril/internal/logging"
)

// maxStderr bounds how much player output is kept for the exit log.
const maxStderr = 4 << 10

// Backend implements ports.MediaBackend with one external process at a time.
type Backend struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	done   chan struct{}
	stop   func() error
	source string
}

type Option func(*Backend)

// WithLogger sets the logger used for player exits.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// NewBackend returns a backend spawning cfg.Command.
func NewBackend(cfg Config, opts ...Option) (*Backend, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("player command is required")
	}
	b := &Backend{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Play kills the current player, if any, and starts source.
func (b *Backend) Play(source string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.stopLocked(); err != nil {
		return err
	}

	cmd := b.cfg.command(source)
	stderr := &limitedBuffer{max: maxStderr}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", b.cfg.Command, err)
	}

	done := make(chan struct{})
	b.done = done
	b.source = source
	b.stop = func() error {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill %s: %w", b.cfg.Command, err)
		}
		<-done
		return nil
	}

	go func() {
		defer close(done)
		err := cmd.Wait()
		if err != nil && cmd.ProcessState != nil && cmd.ProcessState.Exited() {
			b.logger.Warn("Player exited with error",
				"command", b.cfg.Command,
				"source", source,
				"error", err,
				"stderr", strings.TrimSpace(stderr.String()))
			return
		}
		b.logger.Debug("Player finished", "command", b.cfg.Command, "source", source)
	}()
	return nil
}

// Stop kills the current player. Stopping when idle is a no-op.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopLocked()
}

func (b *Backend) stopLocked() error {
	if b.stop == nil {
		return nil
	}
	err := b.stop()
	b.stop = nil
	return err
}

// IsPlaying reports whether the last player is still running.
func (b *Backend) IsPlaying() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		return false, nil
	}
	select {
	case <-b.done:
		return false, nil
	default:
		return true, nil
	}
}

// Source returns the last source given to Play.
func (b *Backend) Source() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

func (l *limitedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}
