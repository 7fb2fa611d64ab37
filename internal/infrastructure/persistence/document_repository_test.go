package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, companyID uuid.UUID, number string, issue time.Time, due *time.Time, total int64) *finance.Document {
	t.Helper()
	doc, err := finance.NewDocument(companyID, finance.KindInvoice, number, uuid.New(), "Acme", issue, due,
		finance.DocumentAmounts{
			Subtotal:    decimal.NewFromInt(total),
			TotalAmount: decimal.NewFromInt(total),
		})
	require.NoError(t, err)
	return doc
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	doc := newTestInvoice(t, companyID, "INV-202603-00001", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil, 100)
	require.NoError(t, repo.Save(ctx, doc))

	stale, err := repo.FindByID(ctx, companyID, doc.ID)
	require.NoError(t, err)

	require.NoError(t, doc.Issue(nil))
	require.NoError(t, repo.SaveWithLock(ctx, doc))
	assert.Equal(t, 2, doc.Version)

	stored, err := repo.FindByID(ctx, companyID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusSent, stored.Status)
	assert.Equal(t, 2, stored.Version)

	t.Run("stale copy conflicts", func(t *testing.T) {
		require.NoError(t, stale.Cancel("late"))
		err := repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, companyID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, finance.StatusSent, stored.Status)
	})

	t.Run("another company cannot update", func(t *testing.T) {
		foreign := *stored
		foreign.CompanyID = uuid.New()
		assert.ErrorIs(t, repo.SaveWithLock(ctx, &foreign), shared.ErrConcurrencyConflict)
	})
}

func TestGormDocumentRepository_OpenAndPastDue(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	companyA, companyB := uuid.New(), uuid.New()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	dueFeb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	dueApr := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	overdue := newTestInvoice(t, companyA, "INV-A-1", jan, &dueFeb, 100)
	notDue := newTestInvoice(t, companyA, "INV-A-2", jan, &dueApr, 50)
	noDueDate := newTestInvoice(t, companyB, "INV-B-1", jan, nil, 70)
	draft := newTestInvoice(t, companyA, "INV-A-3", jan, &dueFeb, 30)

	for _, d := range []*finance.Document{overdue, notDue, noDueDate} {
		require.NoError(t, d.Issue(nil))
	}
	for _, d := range []*finance.Document{overdue, notDue, noDueDate, draft} {
		require.NoError(t, repo.Save(ctx, d))
	}

	t.Run("open documents skip drafts", func(t *testing.T) {
		open, err := repo.FindOpen(ctx, companyA, finance.KindInvoice, nil)
		require.NoError(t, err)
		assert.Len(t, open, 2)
		for _, d := range open {
			assert.NotEqual(t, finance.StatusDraft, d.Status)
		}
	})

	t.Run("past due spans companies and falls back to the issue date", func(t *testing.T) {
		asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		due, err := repo.FindPastDue(ctx, asOf, 0)
		require.NoError(t, err)

		numbers := make([]string, 0, len(due))
		for _, d := range due {
			numbers = append(numbers, d.Number)
		}
		assert.ElementsMatch(t, []string{"INV-A-1", "INV-B-1"}, numbers)
	})

	t.Run("a document due today is not yet past due", func(t *testing.T) {
		due, err := repo.FindPastDue(ctx, dueFeb.Add(8*time.Hour), 0)
		require.NoError(t, err)
		for _, d := range due {
			assert.NotEqual(t, "INV-A-1", d.Number)
		}
	})

	t.Run("numbers are per kind", func(t *testing.T) {
		inv, err := repo.NextNumber(ctx, companyA, finance.KindInvoice, jan)
		require.NoError(t, err)
		bill, err := repo.NextNumber(ctx, companyA, finance.KindBill, jan)
		require.NoError(t, err)
		assert.Equal(t, "INV-202601-00001", inv)
		assert.Equal(t, "BILL-202601-00001", bill)
	})
}
