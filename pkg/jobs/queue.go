package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrStopped is returned by Enqueue once the queue no longer accepts work.
var ErrStopped = errors.New("queue stopped")

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// DropFunc observes jobs that will not run again.
type DropFunc func(Job, error)

// QueueConfig configures the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the first backoff step; it doubles per attempt up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	// Limiter throttles handler invocations across all workers when set.
	Limiter *rate.Limiter
	OnDrop  DropFunc
	Logger  *zap.Logger
}

// Queue dispatches jobs to goroutine workers. It is in-memory only.
// Stop drains buffered jobs; cancelling the Start context abandons them.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs chan Job

	mu      sync.RWMutex
	started bool
	closed  bool

	// retryMu guards retriesOff and pendingRetry.Add; workers never take mu.
	retryMu    sync.Mutex
	retriesOff bool

	ctx          context.Context
	cancel       context.CancelFunc
	retryCtx     context.Context
	cancelRetry  context.CancelFunc
	workers      sync.WaitGroup
	pendingRetry sync.WaitGroup
}

// NewQueue builds a queue around handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = 30 * cfg.RetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.retryCtx, q.cancelRetry = context.WithCancel(q.ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, drops scheduled retries, runs what is buffered and waits for the workers.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.closed {
		q.closed = true
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.retryMu.Lock()
	q.retriesOff = true
	q.retryMu.Unlock()
	q.cancelRetry()
	q.pendingRetry.Wait()
	close(q.jobs)
	q.workers.Wait()
	q.cancel()
	q.logger.Info("queue stopped")
}

// Enqueue hands a job to the workers, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if q.closed {
		return fmt.Errorf("queue %s: %w", q.name, ErrStopped)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue %s: %w", q.name, q.ctx.Err())
	}
}

// Pending returns the number of buffered jobs awaiting a worker.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

func (q *Queue) work() {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			if q.cfg.Limiter != nil {
				if err := q.cfg.Limiter.Wait(q.ctx); err != nil {
					q.drop(job, err)
					return
				}
			}
			if err := q.run(job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.drop(job, cause)
		return
	}

	q.retryMu.Lock()
	if q.retriesOff {
		q.retryMu.Unlock()
		q.drop(job, cause)
		return
	}
	q.pendingRetry.Add(1)
	q.retryMu.Unlock()

	delay := q.backoff(job.Attempt)
	q.logger.Warn("job failed, retrying",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempt", job.Attempt),
		zap.Duration("delay", delay),
		zap.Error(cause))

	go func() {
		defer q.pendingRetry.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.retryCtx.Done():
			q.drop(job, cause)
		case <-timer.C:
			q.requeue(job, cause)
		}
	}()
}

// requeue sends without blocking on the closed flag: Stop waits for pending retries before closing the channel.
func (q *Queue) requeue(job Job, cause error) {
	select {
	case q.jobs <- job:
	case <-q.retryCtx.Done():
		q.drop(job, cause)
	}
}

func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < attempt && delay < q.cfg.MaxRetryDelay; i++ {
		delay *= 2
	}
	if delay > q.cfg.MaxRetryDelay {
		delay = q.cfg.MaxRetryDelay
	}
	return delay
}

func (q *Queue) drop(job Job, cause error) {
	q.logger.Error("job dropped",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempts", job.Attempt),
		zap.Error(cause))
	if q.cfg.OnDrop != nil {
		q.cfg.OnDrop(job, cause)
	}
}
