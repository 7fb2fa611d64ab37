package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/shared"
	"go.uber.org/zap"
)

// OverdueService moves unpaid documents past their due date to overdue
type OverdueService struct {
	scope     writeset.TransactionScope
	batchSize int
	logger    *zap.Logger
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(scope writeset.TransactionScope, batchSize int, logger *zap.Logger) *OverdueService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueService{scope: scope, batchSize: batchSize, logger: logger}
}

// Sweep marks every sent or partial document due before asOf. Each document
// commits on its own; a concurrent payment wins over the sweep.
func (s *OverdueService) Sweep(ctx context.Context, asOf time.Time) (OverdueSweepResult, error) {
	var result OverdueSweepResult
	docs, err := s.scope.Repos().Documents().FindPastDue(ctx, asOf, s.batchSize)
	if err != nil {
		return result, err
	}
	result.Scanned = len(docs)

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		doc := &docs[i]
		marked := false
		err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
			changed, err := doc.MarkOverdue(asOf)
			if err != nil || !changed {
				return err
			}
			if err := repos.Documents().SaveWithLock(ctx, doc); err != nil {
				return err
			}
			marked = true
			return writeset.RecordEvents(ctx, repos, doc)
		})
		switch {
		case err == nil:
			if marked {
				result.Marked++
			}
		case errors.Is(err, shared.ErrConcurrencyConflict):
			result.Conflicts++
			s.logger.Debug("document changed during overdue sweep", zap.String("number", doc.Number))
		default:
			s.logger.Error("overdue sweep failed", zap.String("number", doc.Number), zap.Error(err))
			return result, err
		}
	}

	s.logger.Info("overdue sweep finished",
		zap.Time("as_of", asOf),
		zap.Int("scanned", result.Scanned),
		zap.Int("marked", result.Marked),
		zap.Int("conflicts", result.Conflicts),
	)
	return result, nil
}

