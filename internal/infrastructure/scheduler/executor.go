package scheduler

import (
	"context"
	"fmt"
	"time"

	assetapp "github.com/erp/accounting/internal/application/asset"
	financeapp "github.com/erp/accounting/internal/application/finance"
	"go.uber.org/zap"
)

// DepreciationRunner books depreciation for every due asset of a period
type DepreciationRunner interface {
	RunDue(ctx context.Context, period string) (assetapp.RunSummary, error)
}

// OverdueSweeper marks past-due documents overdue
type OverdueSweeper interface {
	Sweep(ctx context.Context, asOf time.Time) (financeapp.OverdueSweepResult, error)
}

// AccountingExecutor dispatches jobs to the depreciation and overdue services
type AccountingExecutor struct {
	depreciation DepreciationRunner
	overdue      OverdueSweeper
	logger       *zap.Logger
}

// NewAccountingExecutor creates the executor used by the scheduler
func NewAccountingExecutor(depreciation DepreciationRunner, overdue OverdueSweeper, logger *zap.Logger) *AccountingExecutor {
	return &AccountingExecutor{depreciation: depreciation, overdue: overdue, logger: logger}
}

// Execute runs job. A depreciation run with failed assets is reported as an
// error so the job is retried; assets already booked are skipped on retry.
func (e *AccountingExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeDepreciation:
		summary, err := e.depreciation.RunDue(ctx, job.Period)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("depreciation %s: %d of %d assets failed", job.Period, summary.Failed, summary.Scanned)
		}
		return nil
	case JobTypeOverdue:
		result, err := e.overdue.Sweep(ctx, job.AsOf)
		if err != nil {
			return err
		}
		e.logger.Debug("overdue job done", zap.Int("marked", result.Marked))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}
