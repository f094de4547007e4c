package worker

import (
	"sync"
	"sync/atomic"
	"time"
)

// MockRefresher implements Refresher for testing
type MockRefresher struct {
	refreshes atomic.Int64
	Delay     time.Duration
	Block     chan struct{}
}

func (m *MockRefresher) Refresh() {
	m.refreshes.Add(1)
}

func (m *MockRefresher) Wait() {
	if m.Block != nil {
		<-m.Block
	}
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
}

func (m *MockRefresher) Count() int64 {
	return m.refreshes.Load()
}

// MockSource implements Source for testing
type MockSource struct {
	mu      sync.Mutex
	targets []Target
}

func (m *MockSource) Targets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Target(nil), m.targets...)
}

func (m *MockSource) Add(t Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, t)
}
