package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is a task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on tickers until its context is cancelled.
type Scheduler struct {
	log  zerolog.Logger
	jobs []Job
	wg   sync.WaitGroup
}

// NewScheduler creates a scheduler for the given jobs.
func NewScheduler(log zerolog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{log: log, jobs: jobs}
}

// StartAllWorkers initializes and starts all background workers
func (s *Scheduler) StartAllWorkers(ctx context.Context) {
	s.log.Info().Int("jobs", len(s.jobs)).Msg("starting all workers")
	for _, job := range s.jobs {
		s.start(ctx, job)
	}
}

func (s *Scheduler) start(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Str("job", job.Name).Msg("worker stopped")
				return
			case <-ticker.C:
				if err := job.Run(ctx); err != nil {
					s.log.Error().Err(err).Str("job", job.Name).Msg("worker run failed")
				}
			}
		}
	}()
	s.log.Info().Str("job", job.Name).Dur("interval", job.Interval).Msg("worker started")
}

// Wait blocks until every worker has returned after cancellation.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
