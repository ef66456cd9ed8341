package jobs

import (
	"context"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"go.uber.org/zap"
)

// ExpirySweepJobName is the name of the quotation expiry sweep job
const ExpirySweepJobName = "quotation_expiry_sweep"

// ExpirySweeper marks open quotations past their expiry date as expired.
// Implemented by service.ExpiryService.
type ExpirySweeper interface {
	Sweep(ctx context.Context) (*domain.SweepResult, error)
}

// ExpirySweepJob runs the expiry sweep across all stored scopes
type ExpirySweepJob struct {
	sweeper ExpirySweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewExpirySweepJob creates a new expiry sweep job.
// The timeout controls how long one sweep is allowed to run.
func NewExpirySweepJob(sweeper ExpirySweeper, logger *zap.Logger, timeout time.Duration) *ExpirySweepJob {
	return &ExpirySweepJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep, bounded by the job timeout
func (j *ExpirySweepJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.logger.Error("quotation expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}
	if result == nil {
		return
	}

	j.logger.Info("quotation expiry sweep completed",
		zap.Int("scopes", result.Scopes),
		zap.Int("expired", result.Expired),
		zap.Duration("duration", time.Since(start)))
}

// RegisterExpirySweepJob registers the expiry sweep with the scheduler.
// If runOnStartup is true, one sweep also runs immediately in a background
// goroutine so it doesn't block API startup.
func RegisterExpirySweepJob(scheduler *Scheduler, sweeper ExpirySweeper, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewExpirySweepJob(sweeper, logger, timeout)

	if err := scheduler.Schedule(ExpirySweepJobName, cronExpr, job); err != nil {
		return err
	}

	if runOnStartup {
		go job.Run()
	}
	return nil
}
