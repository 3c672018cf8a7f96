package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	JobDailyReportReminder = "daily_report_reminder"
	JobApprovalReminder    = "approval_reminder"
)

// Job represents a scheduled job
type Job struct {
	Name string
	Spec string
	Fn   func(ctx context.Context) error

	entryID cron.EntryID
}

// Scheduler runs named jobs on standard five-field cron specs in a fixed
// time zone. Jobs can be rescheduled while the scheduler is running.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	now    func() time.Time
	jobs   map[string]*Job
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	logger := slogLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		loc:    loc,
		now:    time.Now,
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler. An empty spec registers the job
// without scheduling it, so it can still be run by RunOnce or scheduled later.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron job %q already registered", name)
	}
	job := &Job{Name: name, Fn: fn}
	if err := s.scheduleLocked(job, spec); err != nil {
		return err
	}
	s.jobs[name] = job
	slog.Info("Cron job registered", "name", name, "spec", spec)
	return nil
}

// Reschedule moves a registered job to a new spec. An empty spec unschedules it.
func (s *Scheduler) Reschedule(name, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("cron job %q not registered", name)
	}
	if job.Spec == spec {
		return nil
	}
	old := job.entryID
	if err := s.scheduleLocked(job, spec); err != nil {
		return err
	}
	if old != 0 {
		s.cron.Remove(old)
	}
	slog.Info("Cron job rescheduled", "name", name, "spec", spec, "next_run", s.nextLocked(name))
	return nil
}

func (s *Scheduler) scheduleLocked(job *Job, spec string) error {
	if spec == "" {
		job.Spec, job.entryID = "", 0
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() { s.executeJob(job.Name, job.Fn) })
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for %s: %w", spec, job.Name, err)
	}
	job.Spec, job.entryID = spec, id
	return nil
}

// Next returns the next activation of a job, zero when it is unscheduled.
// It is computed from the schedule, so it is valid before Start too.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked(name)
}

func (s *Scheduler) nextLocked(name string) time.Time {
	job, ok := s.jobs[name]
	if !ok || job.entryID == 0 {
		return time.Time{}
	}
	entry := s.cron.Entry(job.entryID)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(s.now().In(s.loc))
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs and waits for running ones
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Cron scheduler stopped")
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(name string, fn func(ctx context.Context) error) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", name)

	if err := fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", name, "duration", time.Since(start))
	}
}

// RunOnce runs a single registered job immediately on the caller's goroutine.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("cron job %q not registered", name)
	}
	return job.Fn(ctx)
}

// slogLogger routes robfig/cron's internal logging through slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
