// Package jobs runs the background work of the quotation API, currently the
// quotation expiry sweep, on robfig/cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs named jobs on cron schedules with a leading seconds field.
// A job whose previous run has not finished skips the tick, and a panicking
// job is logged without stopping the scheduler.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	mu     sync.Mutex
	jobs   map[string]cron.EntryID
}

// NewScheduler creates a stopped scheduler that logs through logger
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Strings("jobs", s.Jobs()))
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once running jobs
// have returned.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// Schedule registers job under name. cronExpr is either six fields starting
// with seconds ("0 5 0 * * *" fires at 00:05:00 daily) or a descriptor such as
// "@every 1h". Names are unique.
func (s *Scheduler) Schedule(name, cronExpr string, job cron.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}
	id, err := s.cron.AddJob(cronExpr, job)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", cronExpr, name, err)
	}
	s.jobs[name] = id

	s.logger.Info("scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr))
	return nil
}

// NextRun reports when the named job fires next. It is zero until the
// scheduler has been started.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Jobs returns the registered job names in sorted order
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cronLogger routes cron's own messages into zap. cron reports every wakeup
// at info level, so those go to debug.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
