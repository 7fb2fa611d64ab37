package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockRepository_IncreaseDecrease(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()
	companyID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()

	t.Run("missing level reads as zero", func(t *testing.T) {
		qty, err := repo.GetLevel(ctx, companyID, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, qty.IsZero())
	})

	t.Run("increase creates then accumulates", func(t *testing.T) {
		require.NoError(t, repo.Increase(ctx, companyID, warehouseID, productID, decimal.NewFromInt(10)))
		require.NoError(t, repo.Increase(ctx, companyID, warehouseID, productID, decimal.NewFromInt(5)))

		qty, err := repo.GetLevel(ctx, companyID, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(15)), "got %s", qty)
	})

	t.Run("decrease down to zero", func(t *testing.T) {
		require.NoError(t, repo.Decrease(ctx, companyID, warehouseID, productID, decimal.NewFromInt(15)))
		qty, err := repo.GetLevel(ctx, companyID, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, qty.IsZero())
	})

	t.Run("decrease below zero is rejected and leaves the level", func(t *testing.T) {
		require.NoError(t, repo.Increase(ctx, companyID, warehouseID, productID, decimal.NewFromInt(2)))
		err := repo.Decrease(ctx, companyID, warehouseID, productID, decimal.NewFromInt(3))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		qty, err := repo.GetLevel(ctx, companyID, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(2)))
	})

	t.Run("decrease without a level row is rejected", func(t *testing.T) {
		err := repo.Decrease(ctx, companyID, warehouseID, uuid.New(), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("levels are per warehouse", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, repo.Increase(ctx, companyID, other, productID, decimal.NewFromInt(7)))
		levels, err := repo.ListLevels(ctx, companyID, other)
		require.NoError(t, err)
		require.Len(t, levels, 1)
		assert.True(t, levels[0].Quantity.Equal(decimal.NewFromInt(7)))
	})
}

func TestGormStockRepository_Movements(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()
	companyID, refID := uuid.New(), uuid.New()

	movements := []inventory.StockMovement{
		{
			ID: uuid.New(), CompanyID: companyID, WarehouseID: uuid.New(), ProductID: uuid.New(),
			Type: inventory.MovementTransferOut, Quantity: decimal.NewFromInt(3),
			ReferenceType: "transfer", ReferenceID: refID, CreatedAt: time.Now().UTC(),
		},
		{
			ID: uuid.New(), CompanyID: companyID, WarehouseID: uuid.New(), ProductID: uuid.New(),
			Type: inventory.MovementTransferIn, Quantity: decimal.NewFromInt(3),
			ReferenceType: "transfer", ReferenceID: refID, CreatedAt: time.Now().UTC().Add(time.Millisecond),
		},
	}
	require.NoError(t, repo.AppendMovements(ctx, movements...))
	require.NoError(t, repo.AppendMovements(ctx))

	found, err := repo.ListMovements(ctx, companyID, "transfer", refID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, inventory.MovementTransferOut, found[0].Type)

	none, err := repo.ListMovements(ctx, uuid.New(), "transfer", refID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNextSequence_PerCompanyAndPeriod(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	companyA, companyB := uuid.New(), uuid.New()

	for want := 1; want <= 3; want++ {
		got, err := nextSequence(ctx, db, companyA, "journal", "202603")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := nextSequence(ctx, db, companyB, "journal", "202603")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = nextSequence(ctx, db, companyA, "journal", "202604")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	number, err := monthlyNumber(ctx, db, companyA, "TRF", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "TRF-202603-00001", number)
}
