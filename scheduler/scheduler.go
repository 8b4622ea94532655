// Package scheduler runs periodic background jobs.
//
// A single goroutine wakes up every tick and starts, concurrently, every job
// whose own interval has elapsed. Job errors are logged and never stop the
// loop. Stop cancels the context handed to running jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one periodic task. Interval should not be shorter than the
// scheduler tick, a job never runs more than once per tick.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// entry keeps the nominal due time, so late ticks do not push the
// cadence back.
type entry struct {
	job  Job
	next time.Time
}

type Scheduler struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	jobs    []*entry
	started bool

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

func New(interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval:     interval,
		logger:       logger.With("component", "scheduler"),
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

// Add registers a job. Jobs added after Start are picked up on the next tick.
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no Run func", job.Name)
	}
	if job.Interval <= 0 {
		return fmt.Errorf("scheduler: job %q interval must be positive", job.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// first run one interval after registration
	s.jobs = append(s.jobs, &entry{job: job, next: time.Now().Add(job.Interval)})
	return nil
}

func (s *Scheduler) Name() string {
	return "scheduler"
}

// Start launches the scheduler goroutine. It returns an error if called twice.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("scheduler: already started")
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.shutdownDone)

		s.logger.Info("Starting scheduler", "interval", s.interval, "jobs", s.jobCount())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("Scheduler received shutdown signal")
				return
			case now := <-ticker.C:
				s.runDue(now)
			}
		}
	}()
	return nil
}

// Stop cancels the loop and running jobs, then waits for the loop to exit
// or for ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-s.shutdownDone:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) due(now time.Time) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []Job
	for _, e := range s.jobs {
		if now.Before(e.next) {
			continue
		}
		// skip missed runs, a job runs at most once per tick
		missed := now.Sub(e.next) / e.job.Interval
		e.next = e.next.Add((missed + 1) * e.job.Interval)
		jobs = append(jobs, e.job)
	}
	return jobs
}

// runDue runs the jobs due at now and waits for all of them.
func (s *Scheduler) runDue(now time.Time) {
	if s.ctx.Err() != nil {
		return
	}
	jobs := s.due(now)
	if len(jobs) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(s.ctx)
	for _, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			err := job.Run(ctx)
			switch {
			case err == nil:
				s.logger.Debug("job finished", "job", job.Name, "duration", time.Since(start))
			case errors.Is(err, context.Canceled):
				s.logger.Info("job interrupted", "job", job.Name)
			default:
				s.logger.Error("job failed", "job", job.Name, "err", err)
			}
			// never cancel sibling jobs
			return nil
		})
	}
	_ = g.Wait()
}
