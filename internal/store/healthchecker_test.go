package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// flakyStore implements Store and HealthPinger with a switchable failure.
type flakyStore struct {
	failing atomic.Bool
}

func (f *flakyStore) Users() Users           { return nil }
func (f *flakyStore) Activities() Activities { return nil }
func (f *flakyStore) Projects() Projects     { return nil }

func (f *flakyStore) HealthPing(ctx context.Context) error {
	if f.failing.Load() {
		return fmt.Errorf("connection refused")
	}
	return nil
}

func TestStoreHealthChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &flakyStore{}
	hc := NewStoreHealthChecker(st, zerolog.Nop(), time.Second)
	if hc.IsHealthy() {
		t.Fatal("checker must start unhealthy")
	}

	go hc.Start(ctx, 10*time.Millisecond)
	waitTrue(t, func() bool { return hc.IsHealthy() })

	st.failing.Store(true)
	waitTrue(t, func() bool { return !hc.IsHealthy() })

	st.failing.Store(false)
	waitTrue(t, func() bool { return hc.IsHealthy() })
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
