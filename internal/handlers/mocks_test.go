package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openmohaa/hiscores-dash/internal/hiscores"
	"github.com/openmohaa/hiscores-dash/internal/models"
)

// MockFetcher implements hiscores.Fetcher over a fixed set of players
type MockFetcher struct {
	mu      sync.Mutex
	Players map[string]*models.Snapshot
	calls   int
}

func (m *MockFetcher) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", hiscores.ErrCanceled, err)
	}
	snap, ok := m.Players[player]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hiscores.ErrNotFound, player)
	}
	return snap, nil
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

var errPingFailed = errors.New("dial tcp: connection refused")

// MockQueue implements RefreshQueue for testing
type MockQueue struct {
	Depth int
}

func (m *MockQueue) QueueDepth() int { return m.Depth }
