package asset

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func accounts() Accounts {
	return Accounts{AssetAccountID: uuid.New(), AccumulatedAccountID: uuid.New(), ExpenseAccountID: uuid.New()}
}

func newAsset(t *testing.T, price, salvage string, life int, method Method) *FixedAsset {
	t.Helper()
	a, err := NewFixedAsset(uuid.New(), "FA-001", "Delivery van",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), dec(price), dec(salvage), life, method, accounts())
	require.NoError(t, err)
	return a
}

func period(start time.Time, i int) string {
	return start.AddDate(0, i, 0).Format(PeriodLayout)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestStraightLine_SixtyRuns(t *testing.T) {
	a := newAsset(t, "60000000", "0", 60, MethodStraightLine)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		before := a.CurrentValue
		run, err := a.Depreciate(period(start, i))
		require.NoError(t, err, "run %d", i+1)
		assert.True(t, run.Amount.Equal(dec("1000000")), "run %d amount %s", i+1, run.Amount)
		assert.True(t, a.CurrentValue.LessThanOrEqual(before))
		assert.False(t, a.CurrentValue.IsNegative())
		assert.True(t, a.CurrentValue.Add(a.AccumulatedDepreciation).Equal(a.PurchasePrice))
		if i < 59 {
			assert.Equal(t, StatusActive, a.Status)
		}
	}

	assert.Equal(t, StatusFullyDepreciated, a.Status)
	assert.True(t, a.CurrentValue.IsZero())
	assert.True(t, a.AccumulatedDepreciation.Equal(dec("60000000")))

	_, err := a.Depreciate(period(start, 60))
	assertCode(t, err, "ASSET_NOT_ACTIVE")
}

func TestStraightLine_StopsAtSalvageWithUnevenAmounts(t *testing.T) {
	a := newAsset(t, "10000000", "1000000", 7, MethodStraightLine)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	total := decimal.Zero
	for i := 0; i < 7; i++ {
		run, err := a.Depreciate(period(start, i))
		require.NoError(t, err)
		total = total.Add(run.Amount)
	}
	assert.True(t, total.Equal(dec("9000000")))
	assert.True(t, a.CurrentValue.Equal(dec("1000000")))
	assert.Equal(t, StatusFullyDepreciated, a.Status)
}

func TestDecliningBalance(t *testing.T) {
	a := newAsset(t, "12000000", "2000000", 24, MethodDecliningBalance)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := a.Depreciate(period(start, 0))
	require.NoError(t, err)
	// 12,000,000 * 2/24
	assert.True(t, first.Amount.Equal(dec("1000000")))

	second, err := a.Depreciate(period(start, 1))
	require.NoError(t, err)
	// 11,000,000 * 2/24
	assert.True(t, second.Amount.Equal(dec("916666.67")))
	assert.True(t, second.Amount.LessThan(first.Amount))

	for i := 2; a.Status == StatusActive; i++ {
		_, err := a.Depreciate(period(start, i))
		require.NoError(t, err)
		require.Less(t, i, 24)
	}
	assert.True(t, a.CurrentValue.Equal(a.SalvageValue))
}

func TestDecliningBalance_NoSweepAtEndOfLife(t *testing.T) {
	a := newAsset(t, "60000000", "0", 60, MethodDecliningBalance)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	life := decimal.NewFromInt(60)

	var last *Depreciation
	for i := 0; i < 60; i++ {
		before := a.CurrentValue
		run, err := a.Depreciate(period(start, i))
		require.NoError(t, err, "run %d", i+1)
		want := before.Mul(decimal.NewFromInt(2)).Div(life).Round(ledger.AmountPlaces)
		require.True(t, run.Amount.Equal(want), "run %d: want %s got %s", i+1, want, run.Amount)
		require.True(t, a.CurrentValue.Add(a.AccumulatedDepreciation).Equal(a.PurchasePrice))
		last = run
	}

	assert.True(t, last.BookValueBefore.Equal(dec("8118561.75")), "book value %s", last.BookValueBefore)
	assert.True(t, last.Amount.Equal(dec("270618.73")), "amount %s", last.Amount)
	assert.True(t, a.CurrentValue.Equal(dec("7847943.02")), "current value %s", a.CurrentValue)
	assert.Equal(t, StatusActive, a.Status)

	// past its useful life the asset keeps declining toward salvage
	next, err := a.Depreciate(period(start, 60))
	require.NoError(t, err)
	assert.True(t, next.Amount.LessThan(last.Amount))
	assert.Equal(t, StatusActive, a.Status)
}

func TestDepreciate_RejectsRepeatedAndInvalidPeriods(t *testing.T) {
	a := newAsset(t, "1200", "0", 12, MethodStraightLine)

	_, err := a.Depreciate("2026-02")
	require.NoError(t, err)

	_, err = a.Depreciate("2026-02")
	assertCode(t, err, "DUPLICATE_PERIOD")
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	_, err = a.Depreciate("2026-01")
	assertCode(t, err, "DUPLICATE_PERIOD")

	_, err = a.Depreciate("2026/03")
	assertCode(t, err, "INVALID_PERIOD")

	_, err = a.Depreciate("2025-12")
	assertCode(t, err, "DUPLICATE_PERIOD")
	assert.Equal(t, 1, a.RunCount)
}

func TestDepreciate_BeforeAcquisition(t *testing.T) {
	a := newAsset(t, "1200", "0", 12, MethodStraightLine)
	_, err := a.Depreciate("2025-11")
	assertCode(t, err, "INVALID_PERIOD")
}

func TestDepreciationRun_PostingEvent(t *testing.T) {
	a := newAsset(t, "60000000", "0", 60, MethodStraightLine)
	run, err := a.Depreciate("2026-03")
	require.NoError(t, err)

	ev := a.PostingEvent(run)
	assert.Equal(t, run.ID, ev.RunID)
	assert.Equal(t, a.ID, ev.AssetID)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), ev.Date)

	needs := ev.Requirements()
	require.Len(t, needs, 2)
	assert.Equal(t, a.Qualifier(), needs[0].Qualifier)

	links := a.RoleLinks()
	assert.Equal(t, a.Accounts.ExpenseAccountID, links[ledger.RoleDepreciationExpense])
	assert.Equal(t, a.Accounts.AccumulatedAccountID, links[ledger.RoleAccumulatedDepreciation])
}

func TestDispose(t *testing.T) {
	a := newAsset(t, "1000", "0", 1, MethodStraightLine)
	_, err := a.Depreciate("2026-01")
	require.NoError(t, err)
	assert.Equal(t, StatusFullyDepreciated, a.Status)

	require.NoError(t, a.Dispose(time.Time{}, "sold"))
	assert.Equal(t, StatusDisposed, a.Status)
	assert.NotNil(t, a.DisposedAt)

	err = a.Dispose(time.Now(), "")
	assertCode(t, err, shared.CodeInvalidTransition)
	_, err = a.Depreciate("2026-02")
	assertCode(t, err, "ASSET_NOT_ACTIVE")
}

func TestNewFixedAsset_Validation(t *testing.T) {
	tests := []struct {
		price, salvage string
		life           int
		method         Method
		code           string
	}{
		{"0", "0", 12, MethodStraightLine, "INVALID_VALUE"},
		{"100", "101", 12, MethodStraightLine, "INVALID_VALUE"},
		{"100", "0", 0, MethodStraightLine, "INVALID_USEFUL_LIFE"},
		{"100", "0", 12, "sum_of_years", "INVALID_METHOD"},
		{"100.001", "0", 12, MethodStraightLine, "INVALID_PRECISION"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%d/%s", tt.price, tt.salvage, tt.life, tt.method), func(t *testing.T) {
			_, err := NewFixedAsset(uuid.New(), "FA", "Asset", time.Now(), dec(tt.price), dec(tt.salvage), tt.life, tt.method, accounts())
			assertCode(t, err, tt.code)
		})
	}
}
