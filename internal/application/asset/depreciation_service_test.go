package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type assetFixture struct {
	db           *gorm.DB
	companyID    uuid.UUID
	chart        testutil.Chart
	assets       *AssetService
	depreciation *DepreciationService
}

func newAssetFixture(t *testing.T) *assetFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db, nil)
	logger := zaptest.NewLogger(t)
	companyID := uuid.New()
	return &assetFixture{
		db:           db,
		companyID:    companyID,
		chart:        testutil.SeedChart(t, db, companyID),
		assets:       NewAssetService(scope, logger),
		depreciation: NewDepreciationService(scope, ledgerapp.NewPoster(ledger.PolicyStrict, nil), RunOptions{Workers: 1, BatchSize: 2}, logger),
	}
}

func (f *assetFixture) register(t *testing.T, companyID uuid.UUID, chart testutil.Chart, code string, price int64, life int, acquired time.Time) *AssetResponse {
	t.Helper()
	equipment := chart.ID(ledger.RoleAsset)
	resp, err := f.assets.Register(context.Background(), companyID, RegisterAssetRequest{
		Code:                 code,
		Name:                 "Mesin " + code,
		AcquisitionDate:      acquired,
		PurchasePrice:        decimal.NewFromInt(price),
		UsefulLifeMonths:     life,
		Method:               string(asset.MethodStraightLine),
		AssetAccountID:       &equipment,
		AccumulatedAccountID: chart.ID(ledger.RoleAccumulatedDepreciation),
		ExpenseAccountID:     chart.ID(ledger.RoleDepreciationExpense),
	})
	require.NoError(t, err)
	return resp
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %v", err)
	return de.Code
}

func TestDepreciationService_PostRun(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	a := f.register(t, f.companyID, f.chart, "FA-001", 12000, 12, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	run, err := f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "1000", run.Amount.String())
	assert.Equal(t, "11000", run.BookValueAfter.String())
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), run.Date)
	assert.Contains(t, run.EntryNumber, "JE-202401-")
	assert.Equal(t, string(asset.StatusActive), run.AssetStatus)
	require.NotNil(t, run.JournalEntryID)

	assert.Equal(t, "1000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleDepreciationExpense)))
	assert.Equal(t, "-1000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleAccumulatedDepreciation)))

	_, err = f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2024-01")
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_PERIOD", codeOf(t, err))

	_, err = f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2023-12")
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_PERIOD", codeOf(t, err))

	_, err = f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "Jan 2024")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PERIOD", codeOf(t, err))

	loaded, err := f.assets.GetByID(ctx, f.companyID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "11000", loaded.CurrentValue.String())
	assert.Equal(t, "1000", loaded.AccumulatedDepreciation.String())
	assert.Equal(t, 1, loaded.RunCount)
	assert.Equal(t, "2024-01", loaded.LastPeriod)

	history, err := f.assets.History(ctx, f.companyID, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2024-01", history[0].Period)
}

func TestDepreciationService_ExhaustsThenRejects(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	a := f.register(t, f.companyID, f.chart, "FA-002", 1000, 2, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2024-01")
	require.NoError(t, err)
	last, err := f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "500", last.Amount.String())
	assert.Equal(t, string(asset.StatusFullyDepreciated), last.AssetStatus)

	_, err = f.depreciation.PostDepreciationRun(ctx, f.companyID, a.ID, "2024-03")
	require.Error(t, err)
	assert.Equal(t, "ASSET_NOT_ACTIVE", codeOf(t, err))

	disposed, err := f.assets.Dispose(ctx, f.companyID, a.ID, DisposeAssetRequest{Note: " scrapped "})
	require.NoError(t, err)
	assert.Equal(t, string(asset.StatusDisposed), disposed.Status)
	assert.Equal(t, "scrapped", disposed.DisposalNote)
	assert.Equal(t, "1000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleDepreciationExpense)))
}

func TestDepreciationService_RunDueSweepsEveryCompany(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	otherCompany := uuid.New()
	otherChart := testutil.SeedChart(t, f.db, otherCompany)

	booked := f.register(t, f.companyID, f.chart, "FA-010", 2400, 24, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	_, err := f.depreciation.PostDepreciationRun(ctx, f.companyID, booked.ID, "2024-01")
	require.NoError(t, err)

	f.register(t, f.companyID, f.chart, "FA-011", 1200, 12, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))
	f.register(t, f.companyID, f.chart, "FA-012", 1200, 12, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	f.register(t, otherCompany, otherChart, "FA-010", 3600, 36, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	gone := f.register(t, f.companyID, f.chart, "FA-013", 1200, 12, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err = f.assets.Dispose(ctx, f.companyID, gone.ID, DisposeAssetRequest{})
	require.NoError(t, err)

	summary, err := f.depreciation.RunDue(ctx, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 3, summary.Posted)
	assert.Zero(t, summary.Failed)

	assert.Equal(t, "300.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleDepreciationExpense)))
	assert.Equal(t, "100.00", testutil.AccountBalance(t, f.db, otherCompany, otherChart.ID(ledger.RoleDepreciationExpense)))

	again, err := f.depreciation.RunDue(ctx, "2024-02")
	require.NoError(t, err)
	assert.Zero(t, again.Scanned)

	_, err = f.depreciation.RunDue(ctx, "2024/02")
	require.Error(t, err)
}

func TestAssetService_RegisterValidation(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	f.register(t, f.companyID, f.chart, "FA-100", 1000, 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	req := RegisterAssetRequest{
		Code:                 "FA-100",
		Name:                 "Duplicate",
		AcquisitionDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PurchasePrice:        decimal.NewFromInt(1000),
		UsefulLifeMonths:     10,
		Method:               string(asset.MethodStraightLine),
		AccumulatedAccountID: f.chart.ID(ledger.RoleAccumulatedDepreciation),
		ExpenseAccountID:     f.chart.ID(ledger.RoleDepreciationExpense),
	}
	_, err := f.assets.Register(ctx, f.companyID, req)
	require.Error(t, err)
	assert.Equal(t, "ASSET_CODE_EXISTS", codeOf(t, err))

	req.Code = "FA-101"
	req.ExpenseAccountID = uuid.New()
	_, err = f.assets.Register(ctx, f.companyID, req)
	require.Error(t, err)
	assert.Equal(t, "UNKNOWN_ACCOUNT", codeOf(t, err))

	list, err := f.assets.List(ctx, f.companyID, AssetListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	req.ExpenseAccountID = f.chart.ID(ledger.RoleDepreciationExpense)
	req.SalvageValue = decimal.NewFromInt(2000)
	_, err = f.assets.Register(ctx, f.companyID, req)
	require.Error(t, err)
	assert.Equal(t, "INVALID_VALUE", codeOf(t, err))
}
