package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockPurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
	called  chan struct{}
}

func (m *mockPurger) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.cutoffs = append(m.cutoffs, cutoff)
	n := len(m.cutoffs)
	m.mu.Unlock()
	if n == 2 {
		close(m.called)
	}
	return 1, m.err
}

func TestRunVerificationSweeper(t *testing.T) {
	purger := &mockPurger{called: make(chan struct{}), err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	start := time.Now().UTC()
	go func() {
		RunVerificationSweeper(ctx, zap.NewNop(), purger, 5*time.Millisecond, time.Hour)
		close(done)
	}()

	select {
	case <-purger.called:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected sweeper to keep running after purge errors")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected sweeper to stop on cancel")
	}

	purger.mu.Lock()
	defer purger.mu.Unlock()
	if cutoff := purger.cutoffs[0]; cutoff.After(start.Add(-time.Hour + time.Second)) {
		t.Fatalf("expected cutoff to honour the grace period, got %v", cutoff)
	}
}

func TestRunVerificationSweeper_NilPurger(t *testing.T) {
	RunVerificationSweeper(context.Background(), zap.NewNop(), nil, time.Millisecond, 0)
}
