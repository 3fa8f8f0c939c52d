package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// task is one periodic job
type task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	running  atomic.Bool
	skipped  atomic.Int64
}

// Scheduler runs named periodic tasks. A tick is skipped when the previous
// run of the same task is still in flight, so a slow flush or webhook can
// never pile up goroutines behind a ticker.
type Scheduler struct {
	logger *zap.Logger
	tasks  []*task
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Every registers a periodic task. Must be called before Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &task{name: name, interval: interval, fn: fn})
}

// Start launches all registered tasks
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.run(ctx, t)
	}
}

func (s *Scheduler) run(ctx context.Context, t *task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, t)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, t *task) {
	if !t.running.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		s.logger.Warn("tick skipped, previous run still in flight",
			zap.String("task", t.name))
		return
	}
	defer t.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked",
				zap.String("task", t.name), zap.Any("panic", r))
		}
	}()

	t.fn(ctx)
}

// Stop cancels all pending timers and waits for in-flight runs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// SkippedTicks returns how many ticks a task skipped due to overlap
func (s *Scheduler) SkippedTicks(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.name == name {
			return t.skipped.Load()
		}
	}
	return 0
}
