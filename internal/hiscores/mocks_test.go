package hiscores

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// MockFetcher implements Fetcher for testing
type MockFetcher struct {
	mu        sync.Mutex
	Calls     []string
	FetchFunc func(ctx context.Context, player string) (*models.Snapshot, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, player)
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, player)
	}
	return &models.Snapshot{Name: player}, nil
}

func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockRedisStore implements RedisStore for testing
type MockRedisStore struct {
	Data     map[string]string
	TTLs     map[string]time.Duration
	GetErr   error
	SetErr   error
	PingErr  error
	getCalls int
}

func NewMockRedisStore() *MockRedisStore {
	return &MockRedisStore{
		Data: make(map[string]string),
		TTLs: make(map[string]time.Duration),
	}
}

func (m *MockRedisStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.getCalls++
	if m.GetErr != nil {
		return redis.NewStringResult("", m.GetErr)
	}
	val, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *MockRedisStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.SetErr != nil {
		return redis.NewStatusResult("", m.SetErr)
	}
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	case string:
		m.Data[key] = v
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedisStore) Ping(ctx context.Context) *redis.StatusCmd {
	if m.PingErr != nil {
		return redis.NewStatusResult("", m.PingErr)
	}
	return redis.NewStatusResult("PONG", nil)
}
