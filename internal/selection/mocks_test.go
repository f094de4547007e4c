package selection

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// FakeClock implements Clock with time that only moves on Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every callback that comes due,
// including ones scheduled by earlier callbacks. Callbacks run without the
// clock lock held.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		due := c.dueLocked(target)
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.at
		due.fired = true
		c.mu.Unlock()

		due.f()
	}
}

func (c *FakeClock) dueLocked(target time.Duration) *fakeTimer {
	var pending []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
	return pending[0]
}

// Active counts armed timers.
func (c *FakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// MockFetcher implements hiscores.Fetcher and returns a fixed result
type MockFetcher struct {
	mu    sync.Mutex
	Snap  *models.Snapshot
	Err   error
	calls int
}

func (m *MockFetcher) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Snap, m.Err
}

func (m *MockFetcher) Set(snap *models.Snapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snap, m.Err = snap, err
}

type fetchResult struct {
	snap *models.Snapshot
	err  error
}

// PendingFetch is one call into BlockingFetcher, held until Resolve.
type PendingFetch struct {
	Player string
	Ctx    context.Context
	result chan fetchResult
}

func (p *PendingFetch) Resolve(snap *models.Snapshot, err error) {
	p.result <- fetchResult{snap: snap, err: err}
}

// BlockingFetcher hands every call to the test and waits for it to be
// resolved, so tests control completion order.
type BlockingFetcher struct {
	Started chan *PendingFetch
}

func NewBlockingFetcher() *BlockingFetcher {
	return &BlockingFetcher{Started: make(chan *PendingFetch, 16)}
}

func (b *BlockingFetcher) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	p := &PendingFetch{Player: player, Ctx: ctx, result: make(chan fetchResult, 1)}
	b.Started <- p
	r := <-p.result
	return r.snap, r.err
}
