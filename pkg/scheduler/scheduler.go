// Package scheduler runs named repeating tasks until stopped.
//
// Each task reschedules itself: the next run starts Interval after the
// previous run returned, so a task never overlaps itself. Tasks are
// independent of each other. Errors and panics of a run are reported and the
// task keeps going.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/okian/matchboard/pkg/logger"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Task is one repeating unit of work.
type Task struct {
	Name     string
	Interval time.Duration
	// Immediate runs the task once right away instead of after the first interval.
	Immediate bool
	Run       func(ctx context.Context) error
}

// RunFunc observes every finished run.
type RunFunc func(name string, took time.Duration, err error)

// Scheduler owns the goroutines of its tasks.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []Task
	wg      *conc.WaitGroup
	cancel  context.CancelFunc
	running bool
	onRun   RunFunc
	log     logger.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for failed runs.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRunHook sets a callback invoked after every run.
func WithRunHook(fn RunFunc) Option {
	return func(s *Scheduler) { s.onRun = fn }
}

// New creates a scheduler for tasks. Tasks with a non-positive interval or no
// Run func are ignored.
func New(tasks []Task, opts ...Option) *Scheduler {
	s := &Scheduler{log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range tasks {
		if t.Interval > 0 && t.Run != nil {
			s.tasks = append(s.tasks, t)
		}
	}
	return s
}

// Start launches one goroutine per task. Tasks stop when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg = conc.NewWaitGroup()
	s.running = true

	for _, t := range s.tasks {
		s.wg.Go(func() { s.loop(ctx, t) })
	}
	return nil
}

// Stop cancels every task and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	wg := s.wg
	s.running = false
	s.mu.Unlock()

	wg.Wait()
}

// Running reports whether Start was called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	if t.Immediate {
		s.runOnce(ctx, t)
	}

	timer := time.NewTimer(t.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runOnce(ctx, t)
			timer.Reset(t.Interval)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = t.Run(ctx) })
	if r := catcher.Recovered(); r != nil {
		err = errors.Wrapf(r.AsError(), "task %s panicked", t.Name)
	}
	took := time.Since(start)

	if err != nil && ctx.Err() == nil {
		s.log.Warn(ctx, "scheduled run failed",
			logger.String("task", t.Name),
			logger.Duration("took", took),
			logger.Error(err),
		)
	}
	if s.onRun != nil {
		s.onRun(t.Name, took, err)
	}
}
