package asset

import (
	"context"
	"errors"
	"sync"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOptions bounds a depreciation sweep
type RunOptions struct {
	Workers   int
	BatchSize int
	// Attempts is how often a run is tried when it loses an optimistic lock
	Attempts int
}

// DefaultRunOptions returns the options used by the scheduler
func DefaultRunOptions() RunOptions {
	return RunOptions{Workers: 4, BatchSize: 200, Attempts: 3}
}

// DepreciationService books monthly depreciation
type DepreciationService struct {
	scope  writeset.TransactionScope
	poster *ledgerapp.Poster
	opts   RunOptions
	logger *zap.Logger
}

// NewDepreciationService creates a new DepreciationService
func NewDepreciationService(scope writeset.TransactionScope, poster *ledgerapp.Poster, opts RunOptions, logger *zap.Logger) *DepreciationService {
	def := DefaultRunOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepreciationService{scope: scope, poster: poster, opts: opts, logger: logger}
}

// PostDepreciationRun books one period of one asset: the run record, the
// asset's new book value and the journal entry commit together.
func (s *DepreciationService) PostDepreciationRun(ctx context.Context, companyID, assetID uuid.UUID, period string) (*DepreciationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "asset", "PostDepreciationRun")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCompanyID, companyID.String(), "asset.period", period)

	if _, err := asset.ParsePeriod(period); err != nil {
		return nil, err
	}

	var (
		a     *asset.FixedAsset
		run   *asset.Depreciation
		entry *ledger.JournalEntry
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		a, err = repos.Assets().FindByID(ctx, companyID, assetID)
		if err != nil {
			return err
		}
		exists, err := repos.Depreciations().ExistsForPeriod(ctx, companyID, assetID, period)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("DUPLICATE_PERIOD", "Asset "+a.Code+" is already depreciated for "+period)
		}
		run, err = a.Depreciate(period)
		if err != nil {
			return err
		}

		entry, err = s.poster.Post(ctx, repos, companyID, a.PostingEvent(run))
		if err != nil {
			return err
		}
		id := entry.ID
		run.JournalEntryID = &id

		if err := writeset.Step("save depreciation run", repos.Depreciations().Save(ctx, run)); err != nil {
			return err
		}
		if err := writeset.Step("save asset", repos.Assets().SaveWithLock(ctx, a)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, a)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("depreciation posted",
		zap.String("company_id", companyID.String()),
		zap.String("asset_id", a.ID.String()),
		zap.String("period", period),
		zap.String("amount", run.Amount.StringFixed(2)),
		zap.String("entry_number", entry.EntryNumber),
		zap.String("status", string(a.Status)),
	)
	resp := ToDepreciationResponse(run)
	resp.EntryNumber = entry.EntryNumber
	resp.AssetStatus = string(a.Status)
	return &resp, nil
}

// RunDue depreciates every active asset of every company not yet booked
// for period. Each asset is its own write-set; a failure is logged and
// counted without stopping the sweep.
func (s *DepreciationService) RunDue(ctx context.Context, period string) (RunSummary, error) {
	summary := RunSummary{Period: period}
	if _, err := asset.ParsePeriod(period); err != nil {
		return summary, err
	}

	var mu sync.Mutex
	attempted := make(map[uuid.UUID]bool)
	for {
		due, err := s.scope.Repos().Assets().FindDue(ctx, period, s.opts.BatchSize)
		if err != nil {
			return summary, err
		}
		var batch []asset.FixedAsset
		for _, a := range due {
			if !attempted[a.ID] {
				attempted[a.ID] = true
				batch = append(batch, a)
			}
		}
		if len(batch) == 0 {
			break
		}
		summary.Scanned += len(batch)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for _, a := range batch {
			g.Go(func() error {
				err := s.runWithRetry(gctx, a.CompanyID, a.ID, period)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					summary.Posted++
				case isSkippable(err):
					summary.Skipped++
					s.logger.Debug("depreciation skipped",
						zap.String("asset_id", a.ID.String()),
						zap.String("reason", err.Error()),
					)
				default:
					summary.Failed++
					s.logger.Error("depreciation failed",
						zap.String("company_id", a.CompanyID.String()),
						zap.String("asset_id", a.ID.String()),
						zap.String("period", period),
						zap.Error(err),
					)
				}
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if len(due) < s.opts.BatchSize {
			break
		}
	}

	s.logger.Info("depreciation sweep finished",
		zap.String("period", period),
		zap.Int("scanned", summary.Scanned),
		zap.Int("posted", summary.Posted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *DepreciationService) runWithRetry(ctx context.Context, companyID, assetID uuid.UUID, period string) error {
	var err error
	for attempt := 0; attempt < s.opts.Attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err = s.PostDepreciationRun(ctx, companyID, assetID, period)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// isSkippable reports errors that mean the asset has nothing to book for
// the period rather than a broken write
func isSkippable(err error) bool {
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return false
	}
	switch shared.KindOf(err) {
	case shared.KindConflict, shared.KindInvalidState:
		return true
	}
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "INVALID_PERIOD"
}
