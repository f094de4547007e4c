// Package worker runs background refreshes for live dashboard sessions.
// A scheduler enqueues one job per session every poll interval and a fixed
// set of workers drains the queue, which bounds how many upstream fetches
// run at once. A full queue sheds jobs instead of blocking the scheduler.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	refreshesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_refreshes_enqueued_total",
		Help: "Total number of session refreshes enqueued",
	})

	refreshesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_refreshes_processed_total",
		Help: "Total number of session refreshes run by workers",
	})

	refreshesShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_refreshes_load_shed_total",
		Help: "Total number of refreshes dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_worker_queue_depth",
		Help: "Current depth of the refresh queue",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_refresh_duration_seconds",
		Help:    "Duration of a background session refresh",
		Buckets: prometheus.DefBuckets,
	})
)

// Refresher is a session that can re-fetch its data in place. Refresh
// starts the fetch and Wait blocks until it has been applied.
type Refresher interface {
	Refresh()
	Wait()
}

// Target is one session to keep fresh.
type Target struct {
	ID        string
	Refresher Refresher
}

// Source lists the sessions that are currently live.
type Source interface {
	Targets() []Target
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []Target

func (f SourceFunc) Targets() []Target { return f() }

// Job represents a unit of work for the worker pool
type Job struct {
	Target    Target
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount  int
	QueueSize    int
	PollInterval time.Duration
	Source       Source
	Logger       *zap.Logger
}

// Pool manages the refresh scheduler and its workers
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	schedWG  sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
		pending:  make(map[string]struct{}),
	}
}

// Start launches the workers and the scheduler
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	if p.config.Source != nil {
		p.schedWG.Add(1)
		go p.schedule()
	}

	go p.reportQueueDepth()

	p.logger.Infow("Refresh pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"pollInterval", p.config.PollInterval,
	)
}

// Stop gracefully shuts down the pool. Queued jobs that have not started
// are dropped; a refresh already running is allowed to finish.
func (p *Pool) Stop() {
	p.logger.Info("Stopping refresh pool...")

	p.cancel()
	p.schedWG.Wait()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Refresh pool stopped")
}

// Enqueue schedules a refresh without blocking. It returns false when the
// target already has a job queued, the queue is full, or the pool is
// stopping.
func (p *Pool) Enqueue(t Target) bool {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue refresh (pool stopped)", "error", r)
		}
	}()

	if p.ctx.Err() != nil {
		return false
	}

	p.mu.Lock()
	if _, queued := p.pending[t.ID]; queued {
		p.mu.Unlock()
		return false
	}
	p.pending[t.ID] = struct{}{}
	p.mu.Unlock()

	select {
	case p.jobQueue <- Job{Target: t, Timestamp: time.Now()}:
		refreshesEnqueued.Inc()
		return true
	default:
		p.release(t.ID)
		p.logger.Warnw("Refresh queue full, dropping job", "session", t.ID)
		refreshesShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) release(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// schedule enqueues every live session once per poll interval
func (p *Pool) schedule() {
	defer p.schedWG.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			targets := p.config.Source.Targets()
			queued := 0
			for _, t := range targets {
				if p.Enqueue(t) {
					queued++
				}
			}
			p.logger.Debugw("Poll tick", "sessions", len(targets), "queued", queued)

		case <-p.ctx.Done():
			return
		}
	}
}

// worker runs queued refreshes one at a time
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.release(job.Target.ID)
			if p.ctx.Err() != nil {
				continue
			}

			start := time.Now()
			job.Target.Refresher.Refresh()
			job.Target.Refresher.Wait()
			refreshDuration.Observe(time.Since(start).Seconds())
			refreshesProcessed.Inc()

			p.logger.Debugw("Session refreshed",
				"worker", id,
				"session", job.Target.ID,
				"queued", start.Sub(job.Timestamp),
				"duration", time.Since(start),
			)

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
