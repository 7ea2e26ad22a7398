// Package jobs runs background work off the swipe path: currently the
// end-of-month report generation. Jobs are queued onto a single worker
// goroutine so they never contend with ledger writes.
package jobs

import (
	"context"
	"log/slog"
	"time"
)

const JobMonthlyReports = "monthly_reports"

type Service struct {
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) error
}

func New() *Service {
	return &Service{queue: make(chan job, 16)}
}

// Start launches the worker and, when interval is positive, the
// monthly report scheduler. generate receives the month to report on.
func (s *Service) Start(ctx context.Context, interval time.Duration, generate func(context.Context, time.Month, int) error) {
	go s.worker(ctx)
	if interval > 0 && generate != nil {
		go s.scheduleMonthlyReports(ctx, interval, generate)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) error) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			start := time.Now()
			if err := j.Run(ctx); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
				continue
			}
			slog.Info("job run finished", "jobType", j.Type, "durationMs", time.Since(start).Milliseconds())
		}
	}
}

// scheduleMonthlyReports enqueues one report job for the previous
// month as soon as a tick lands in a new month.
func (s *Service) scheduleMonthlyReports(ctx context.Context, interval time.Duration, generate func(context.Context, time.Month, int) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Month() == last.Month() && now.Year() == last.Year() {
				continue
			}
			month, year := last.Month(), last.Year()
			last = now
			s.Enqueue(JobMonthlyReports, func(ctx context.Context) error {
				return generate(ctx, month, year)
			})
		}
	}
}
