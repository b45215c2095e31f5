// Package shutdown releases resources held by a command (the analytics
// database, the file watcher) exactly once, whether the command returns
// normally or the process is interrupted.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"supertask/internal/utils"
)

// CleanupFunc is a function that performs cleanup on shutdown.
// It receives a context that will be cancelled when the shutdown times out.
type CleanupFunc func(ctx context.Context) error

// cleanupEntry holds a registered cleanup function with its name.
type cleanupEntry struct {
	name string
	fn   CleanupFunc
}

// Manager handles shutdown coordination.
type Manager struct {
	mu       sync.Mutex
	cleanups []cleanupEntry
	shutdown bool
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
	waitOnce sync.Once
	waitErr  error
}

// NewManager creates a new shutdown manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first called).
func (m *Manager) RegisterCleanup(name string, fn CleanupFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups = append(m.cleanups, cleanupEntry{name: name, fn: fn})
}

// Shutdown marks the manager as shutting down and cancels Context.
// Safe to call multiple times; only the first call has effect.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.mu.Lock()
		m.shutdown = true
		m.mu.Unlock()
		m.cancel()
	})
}

// Wait runs the cleanups once, in LIFO order, and returns their joined
// errors. A failing cleanup does not stop the others. Later calls return the
// result of the first.
func (m *Manager) Wait(ctx context.Context) error {
	m.waitOnce.Do(func() {
		m.mu.Lock()
		cleanups := make([]cleanupEntry, len(m.cleanups))
		copy(cleanups, m.cleanups)
		m.mu.Unlock()

		done := make(chan error, 1)
		go func() {
			var errs []error
			for i := len(cleanups) - 1; i >= 0; i-- {
				if err := cleanups[i].fn(ctx); err != nil {
					utils.Debugf("cleanup %s failed: %v", cleanups[i].name, err)
					errs = append(errs, fmt.Errorf("%s: %w", cleanups[i].name, err))
				}
			}
			done <- errors.Join(errs...)
		}()

		select {
		case m.waitErr = <-done:
		case <-ctx.Done():
			m.waitErr = ctx.Err()
		}
	})
	return m.waitErr
}

// Close is Shutdown followed by Wait with a background context.
func (m *Manager) Close() error {
	m.Shutdown()
	return m.Wait(context.Background())
}

// IsShutdown returns true if shutdown has been initiated.
func (m *Manager) IsShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

// Context returns a context that is cancelled when shutdown is initiated.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// HandleSignals runs Close and then onSignal when one of sigs arrives.
// The returned stop function stops listening; call it when the command ends.
func (m *Manager) HandleSignals(onSignal func(os.Signal), sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			utils.Debugf("received %v, shutting down", sig)
			_ = m.Close()
			if onSignal != nil {
				onSignal(sig)
			}
		case <-done:
		}
	}()

	var stopOnce sync.Once
	return func() {
		stopOnce.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
