package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("queue is shut down")

// Handler processes one job. It is called from a worker goroutine with a
// context bounded by the pool's job timeout.
type Handler func(ctx context.Context, job Job) error

// Pool is a bounded in-process queue with a fixed worker count. Enqueue never
// blocks the caller beyond the buffer; processing happens in the background.
type Pool struct {
	jobs       chan Job
	handler    Handler
	jobTimeout time.Duration
	logger     *slog.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	shutdown bool
}

func NewPool(workers, buffer int, jobTimeout time.Duration, handler Handler, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = workers * 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		jobs:       make(chan Job, buffer),
		handler:    handler,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Enqueue submits a job. The read lock is held across the send so Shutdown
// cannot close the jobs channel while a sender is parked on a full buffer.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.shutdown {
		return ErrQueueClosed
	}

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for in-flight jobs until ctx expires.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("worker pool drained")
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out", "error", ctx.Err())
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		ctx := context.Background()
		var cancel context.CancelFunc
		if p.jobTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		}
		start := time.Now()
		err := p.handler(ctx, job)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			p.logger.Error("job failed",
				"worker", id,
				"document_id", job.DocumentID,
				"trace_id", job.TraceID,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			continue
		}
		p.logger.Info("job done",
			"worker", id,
			"document_id", job.DocumentID,
			"trace_id", job.TraceID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
