package async

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type options struct {
	workers    int
	queueSize  int
	jobTimeout time.Duration
}

type Option func(*options)

func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// WithJobTimeout bounds each handler call. Zero means no limit.
func WithJobTimeout(d time.Duration) Option {
	return func(o *options) { o.jobTimeout = d }
}

// Pool runs a fixed number of workers over a bounded job channel.
type Pool struct {
	opts    options
	handler Handler
	logger  *zap.Logger

	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
}

var _ Queue = (*Pool)(nil)

func NewPool(handler Handler, logger *zap.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{workers: 2, queueSize: 64}
	for _, fn := range opts {
		fn(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		opts:    o,
		handler: handler,
		logger:  logger,
		jobs:    make(chan Job, o.queueSize),
		baseCtx: ctx,
		cancel:  cancel,
	}
	for i := 0; i < o.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logger.Info("async.pool.started", zap.Int("workers", o.workers), zap.Int("queue_size", o.queueSize))
	return p
}

// Enqueue blocks until the job is accepted, ctx is done or the pool is closed.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case p.jobs <- job:
		p.logger.Debug("async.job.enqueued", zap.String("job_id", job.ID.String()), zap.String("path", job.Path))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. If ctx
// expires first, running handlers are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		p.logger.Info("async.pool.stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn("async.pool.stopped_early", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(n, job)
	}
}

func (p *Pool) run(worker int, job Job) {
	ctx := p.baseCtx
	if p.opts.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.jobTimeout)
		defer cancel()
	}
	log := p.logger.With(zap.Int("worker", worker), zap.String("job_id", job.ID.String()), zap.String("path", job.Path))

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("async.job.panic", zap.Any("panic", r))
		}
	}()
	if err := p.handler(ctx, job); err != nil {
		log.Warn("async.job.failed", zap.Error(err), zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return
	}
	log.Debug("async.job.ok", zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
}
