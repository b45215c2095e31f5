package shutdown_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"supertask/internal/shutdown"
)

// =============================================================================
// Cleanup ordering and idempotence
// =============================================================================

func TestCleanupsRunInReverseOrder(t *testing.T) {
	mgr := shutdown.NewManager()

	var order []string
	mgr.RegisterCleanup("analytics", func(ctx context.Context) error {
		order = append(order, "analytics")
		return nil
	})
	mgr.RegisterCleanup("watcher", func(ctx context.Context) error {
		order = append(order, "watcher")
		return nil
	})

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if strings.Join(order, ",") != "watcher,analytics" {
		t.Errorf("expected LIFO order, got %v", order)
	}
}

func TestCloseRunsCleanupsOnce(t *testing.T) {
	mgr := shutdown.NewManager()

	var calls atomic.Int32
	mgr.RegisterCleanup("count", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	_ = mgr.Close()
	_ = mgr.Close()
	mgr.Shutdown()

	if calls.Load() != 1 {
		t.Errorf("expected cleanup to run once, ran %d times", calls.Load())
	}
	if !mgr.IsShutdown() {
		t.Error("expected IsShutdown after Close")
	}
}

func TestFailingCleanupDoesNotStopOthers(t *testing.T) {
	mgr := shutdown.NewManager()

	var firstRan atomic.Bool
	mgr.RegisterCleanup("first", func(ctx context.Context) error {
		firstRan.Store(true)
		return nil
	})
	mgr.RegisterCleanup("broken", func(ctx context.Context) error {
		return errors.New("database is locked")
	})

	err := mgr.Close()
	if err == nil || !strings.Contains(err.Error(), "broken: database is locked") {
		t.Errorf("expected named cleanup error, got %v", err)
	}
	if !firstRan.Load() {
		t.Error("remaining cleanups must still run after a failure")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	mgr := shutdown.NewManager()

	select {
	case <-mgr.Context().Done():
		t.Fatal("context should not be cancelled before shutdown")
	default:
	}

	mgr.Shutdown()

	select {
	case <-mgr.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after shutdown")
	}
}

func TestWaitTimeout(t *testing.T) {
	mgr := shutdown.NewManager()

	release := make(chan struct{})
	defer close(release)
	mgr.RegisterCleanup("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	mgr.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := mgr.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
