// Package worker runs the stats workers that drain the stats job queue.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/adapters/mq/queue"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Handler processes one stats job.
type Handler interface {
	Handle(ctx context.Context, job queue.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job queue.Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job queue.Job) error { return f(ctx, job) }

// Source is where workers read jobs from.
type Source interface {
	Jobs() <-chan queue.Job
}

// Worker consumes jobs until the source closes or ctx ends.
type Worker struct {
	source  Source
	handler Handler
	name    string
	done    chan struct{}
	logger  logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source Source, handler Handler, opts ...Option) *Worker {
	w := &Worker{
		source:  source,
		handler: handler,
		name:    "worker",
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Jobs()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, job)
		}
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	err := w.handler.Handle(ctx, job)
	metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "stats_job")
		w.logger.Warn(ctx, "stats job failed",
			logger.String("worker", w.name),
			logger.Int64("match_id", job.MatchID),
			logger.String("period", job.Period.String()),
			logger.String("tick", job.TickID),
			logger.Error(err),
		)
	}
}

// Pool manages a fixed set of workers over one source.
type Pool struct {
	workers []*Worker
	source  Source
	once    sync.Once
	logger  logger.Logger
}

// NewPool creates count workers. A non-positive count means one per CPU.
func NewPool(count int, source Source, handler Handler, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*Worker, count),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(source, handler, wopts...)
	}
	metrics.UpdateWorkerCount(count)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the source when it can be closed, lets workers drain the
// buffered jobs and waits for them until ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.source.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing stats queue", logger.Error(cerr))
			}
		}

		ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()
		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = errors.Wrap(ctx.Err(), "worker pool shutdown")
				return
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}
