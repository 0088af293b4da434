package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one background sweep. The scheduler hands it the tick time so
// sweeps never read the wall clock themselves and can be driven with a fixed
// instant in tests.
type JobFunc func(ctx context.Context, now time.Time) error

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// Scheduler runs registered sweeps on fixed intervals, each on its own
// ticker, decoupled from request handling. Start launches them, Stop waits
// for in-flight runs to finish.
type Scheduler struct {
	jobs   []job
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// WithClock replaces the wall clock.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) AddJob(name string, interval time.Duration, run JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// First run happens at startup, not a full interval later.
	s.execute(j)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", j.name)
			return
		case <-ticker.C:
			s.execute(j)
		}
	}
}

func (s *Scheduler) execute(j job) {
	start := s.now()
	slog.Debug("Cron job starting", "name", j.name)

	if err := j.run(s.ctx, start); err != nil {
		slog.Error("Cron job failed", "name", j.name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", j.name, "duration", time.Since(start))
}

// RunOnce drives every registered job a single time at the scheduler's
// current clock reading, without starting the tickers.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, j := range s.jobs {
		if err := j.run(ctx, now); err != nil {
			slog.Error("Cron job failed", "name", j.name, "error", err)
		}
	}
}
