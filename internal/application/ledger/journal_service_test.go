package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type journalFixture struct {
	db        *gorm.DB
	scope     *persistence.GormTransactionScope
	poster    *Poster
	service   *JournalService
	companyID uuid.UUID
	chart     testutil.Chart
}

func newJournalFixture(t *testing.T) *journalFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	companyID := uuid.New()
	scope := persistence.NewGormTransactionScope(db, nil)
	poster := NewPoster(ledger.PolicyStrict, nil)
	return &journalFixture{
		db:        db,
		scope:     scope,
		poster:    poster,
		service:   NewJournalService(scope, poster),
		companyID: companyID,
		chart:     testutil.SeedChart(t, db, companyID),
	}
}

func (f *journalFixture) balance(t *testing.T, role ledger.AccountRole) string {
	return testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(role))
}

type recordingObserver struct {
	posted   []ledger.ReferenceType
	rejected []string
}

func (o *recordingObserver) EntryPosted(_ context.Context, refType ledger.ReferenceType, _ decimal.Decimal) {
	o.posted = append(o.posted, refType)
}

func (o *recordingObserver) PostingRejected(_ context.Context, _ ledger.ReferenceType, code string) {
	o.rejected = append(o.rejected, code)
}

func manualRequest(debit, credit uuid.UUID, amount string) PostManualEntryRequest {
	return PostManualEntryRequest{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Owner capital",
		Lines: []JournalLineRequest{
			{AccountID: debit, Debit: decimal.RequireFromString(amount)},
			{AccountID: credit, Credit: decimal.RequireFromString(amount)},
		},
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %v", err)
	return de.Code
}

func TestJournalService_PostManual(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	resp, err := f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleCustomerDeposit), "150000.00"))
	require.NoError(t, err)

	assert.Equal(t, "JE-202403-00001", resp.EntryNumber)
	assert.Equal(t, string(ledger.RefManual), resp.ReferenceType)
	assert.True(t, resp.IsPosted)
	assert.Len(t, resp.Lines, 2)
	assert.Equal(t, "150000.00", f.balance(t, ledger.RoleCashBank))
	assert.Equal(t, "150000.00", f.balance(t, ledger.RoleCustomerDeposit))

	second, err := f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleCustomerDeposit), "1.00"))
	require.NoError(t, err)
	assert.Equal(t, "JE-202403-00002", second.EntryNumber)
}

func TestJournalService_PostManual_RejectsUnbalanced(t *testing.T) {
	f := newJournalFixture(t)
	obs := &recordingObserver{}
	f.poster.SetObserver(obs)

	req := manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleRevenue), "100.00")
	req.Lines[1].Credit = decimal.RequireFromString("99.99")

	_, err := f.service.PostManual(context.Background(), f.companyID, req)
	require.Error(t, err)
	assert.Equal(t, "UNBALANCED_ENTRY", domainCode(t, err))
	assert.Equal(t, []string{"UNBALANCED_ENTRY"}, obs.rejected)
	assert.Equal(t, "0.00", f.balance(t, ledger.RoleCashBank))
}

func TestJournalService_PostManual_UnknownAccountRollsBack(t *testing.T) {
	f := newJournalFixture(t)

	_, err := f.service.PostManual(context.Background(), f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), uuid.New(), "10.00"))
	require.Error(t, err)
	assert.Equal(t, "UNKNOWN_ACCOUNT", domainCode(t, err))

	list, err := f.service.List(context.Background(), f.companyID, JournalListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestPoster_PostsReferenceOnce(t *testing.T) {
	f := newJournalFixture(t)
	obs := &recordingObserver{}
	f.poster.SetObserver(obs)
	ctx := context.Background()

	rule := posting.Deposit{
		DepositID:   uuid.New(),
		OrderNumber: "SO-202403-00001",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("500.00"),
	}
	post := func() error {
		return f.scope.Execute(ctx, func(repos writeset.Repositories) error {
			_, err := f.poster.Post(ctx, repos, f.companyID, rule)
			return err
		})
	}

	require.NoError(t, post())
	err := post()
	require.Error(t, err)
	assert.Equal(t, "ALREADY_POSTED", domainCode(t, err))
	assert.Equal(t, []ledger.ReferenceType{ledger.RefDeposit}, obs.posted)
	assert.Equal(t, "500.00", f.balance(t, ledger.RoleCustomerDeposit))

	got, err := f.service.GetByReference(ctx, f.companyID, ledger.RefDeposit, rule.DepositID)
	require.NoError(t, err)
	assert.Equal(t, "500", got.TotalDebit.String())
}

func TestPoster_UnmappedRoleIsRejected(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	companyID := uuid.New()
	scope := persistence.NewGormTransactionScope(db, nil)
	obs := &recordingObserver{}
	poster := NewPoster(ledger.PolicyStrict, nil)
	poster.SetObserver(obs)
	ctx := context.Background()

	err := scope.Execute(ctx, func(repos writeset.Repositories) error {
		_, err := poster.Post(ctx, repos, companyID, posting.Deposit{
			DepositID: uuid.New(),
			Date:      time.Now(),
			Amount:    decimal.NewFromInt(10),
		})
		return err
	})
	require.Error(t, err)
	assert.Len(t, obs.rejected, 1)
	assert.Empty(t, obs.posted)
}

func TestJournalService_Reverse(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	original, err := f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleRevenue), "250.00"))
	require.NoError(t, err)

	date := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	reversal, err := f.service.Reverse(ctx, f.companyID, original.ID, ReverseEntryRequest{Date: &date, Reason: "typo"})
	require.NoError(t, err)

	assert.Equal(t, string(ledger.RefReversal), reversal.ReferenceType)
	require.NotNil(t, reversal.ReversalOfID)
	assert.Equal(t, original.ID, *reversal.ReversalOfID)
	assert.Equal(t, "0.00", f.balance(t, ledger.RoleCashBank))
	assert.Equal(t, "0.00", f.balance(t, ledger.RoleRevenue))

	reloaded, err := f.service.GetByID(ctx, f.companyID, original.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ReversedByID)
	assert.Equal(t, reversal.ID, *reloaded.ReversedByID)

	_, err = f.service.Reverse(ctx, f.companyID, original.ID, ReverseEntryRequest{})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_REVERSED", domainCode(t, err))

	_, err = f.service.Reverse(ctx, f.companyID, reversal.ID, ReverseEntryRequest{})
	require.Error(t, err)
	assert.Equal(t, "REVERSAL_OF_REVERSAL", domainCode(t, err))
}

func TestJournalService_TrialBalance(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	_, err := f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleRevenue), "300.00"))
	require.NoError(t, err)
	_, err = f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCOGS), f.chart.ID(ledger.RoleInventory), "120.00"))
	require.NoError(t, err)

	tb, err := f.service.TrialBalance(ctx, f.companyID, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
	assert.Equal(t, "420", tb.TotalDebit.String())
	assert.Equal(t, "420", tb.TotalCredit.String())
	assert.Len(t, tb.Lines, 4)

	early, err := f.service.TrialBalance(ctx, f.companyID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, early.Lines)
	assert.True(t, early.IsBalanced)
}

func TestJournalService_ListFilters(t *testing.T) {
	f := newJournalFixture(t)
	ctx := context.Background()

	_, err := f.service.PostManual(ctx, f.companyID,
		manualRequest(f.chart.ID(ledger.RoleCashBank), f.chart.ID(ledger.RoleRevenue), "10.00"))
	require.NoError(t, err)

	_, err = f.service.List(ctx, f.companyID, JournalListFilter{ReferenceType: "bogus"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_REFERENCE_TYPE", domainCode(t, err))

	revenue := f.chart.ID(ledger.RoleRevenue)
	page, err := f.service.List(ctx, f.companyID, JournalListFilter{AccountID: &revenue})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	other := uuid.New()
	empty, err := f.service.List(ctx, other, JournalListFilter{})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}
