package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pardaaf/backoffice/pkg/schedule"
)

// Timezone is the calendar every schedule is evaluated in.
const Timezone = "Asia/Kabul"

const defaultTickInterval = 30 * time.Second

type registeredJob struct {
	name     string
	schedule schedule.Schedule
	fn       func(ctx context.Context) error
	next     time.Time
}

// Runner ticks through registered jobs and runs the due ones. Jobs run
// sequentially in registration order; a failing job is logged and never
// stops the loop.
type Runner struct {
	loc      *time.Location
	interval time.Duration
	logger   *slog.Logger
	jobs     []*registeredJob
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithTickInterval overrides how often due jobs are checked.
func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewRunner creates a runner on the Asia/Kabul calendar.
func NewRunner(logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		return nil, fmt.Errorf("jobs: load timezone %s: %w", Timezone, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{loc: loc, interval: defaultTickInterval, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register adds a named job. Must be called before Run.
func (r *Runner) Register(name string, sched schedule.Schedule, fn func(ctx context.Context) error) {
	r.jobs = append(r.jobs, &registeredJob{name: name, schedule: sched, fn: fn})
}

// Run blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	now := time.Now().In(r.loc)
	for _, job := range r.jobs {
		job.next = job.schedule.Next(now)
		r.logger.Info("job scheduled",
			slog.String("job", job.name),
			slog.String("cadence", job.schedule.String()),
			slog.Time("next_run", job.next))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-ticker.C:
			now := tick.In(r.loc)
			for _, job := range r.jobs {
				if now.Before(job.next) {
					continue
				}
				r.runOne(ctx, job)
				job.next = job.schedule.Next(now)
			}
		}
	}
}

func (r *Runner) runOne(ctx context.Context, job *registeredJob) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked",
				slog.String("job", job.name),
				slog.Any("panic", rec))
		}
	}()

	if err := job.fn(ctx); err != nil {
		r.logger.Error("job failed",
			slog.String("job", job.name),
			slog.Duration("elapsed", time.Since(started)),
			slog.String("error", err.Error()))
		return
	}
	r.logger.Info("job finished",
		slog.String("job", job.name),
		slog.Duration("elapsed", time.Since(started)))
}
