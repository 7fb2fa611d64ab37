package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *stockFixture) countSheet(t *testing.T) *OpnameResponse {
	t.Helper()
	ctx := context.Background()
	date := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	sheet, err := f.opnames.Create(ctx, f.companyID, CreateOpnameRequest{WarehouseID: f.source, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, string(inventory.OpnameDraft), sheet.Status)

	sheet, err = f.opnames.AddItem(ctx, f.companyID, sheet.ID, AddOpnameItemRequest{
		ProductID:   f.productID,
		ProductName: "Kopi Susu",
		UnitCost:    decimal.NewFromInt(15000),
	})
	require.NoError(t, err)
	require.Len(t, sheet.Items, 1)
	assert.Equal(t, "10", sheet.Items[0].SystemQuantity.String())
	return sheet
}

func TestOpnameService_ShortageAdjustsStockAndLedger(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()
	sheet := f.countSheet(t)

	_, err := f.opnames.Start(ctx, f.companyID, sheet.ID)
	require.NoError(t, err)
	counted, err := f.opnames.RecordCount(ctx, f.companyID, sheet.ID, RecordCountRequest{
		ProductID: f.productID,
		Quantity:  decimal.NewFromInt(8),
		Remark:    "two broken",
	})
	require.NoError(t, err)
	assert.Equal(t, "-2", counted.Items[0].Difference.String())
	assert.Equal(t, "-30000", counted.Items[0].DifferenceValue.String())

	done, err := f.opnames.Complete(ctx, f.companyID, sheet.ID, CompleteOpnameRequest{ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, string(inventory.OpnameCompleted), done.Status)
	require.NotNil(t, done.JournalEntryID)

	assert.Equal(t, "8", f.level(t, f.source))
	assert.Equal(t, "30000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleInventoryAdjustment)))
	assert.Equal(t, "-30000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleInventory)))

	movements, err := f.warehouses.Movements(ctx, f.companyID, inventory.RefStockOpname, sheet.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, string(inventory.MovementAdjustmentOut), movements[0].Type)
	assert.Equal(t, "2", movements[0].Quantity.String())

	loaded, err := f.opnames.GetByID(ctx, f.companyID, sheet.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.JournalEntryID)
	assert.Equal(t, *done.JournalEntryID, *loaded.JournalEntryID)

	_, err = f.opnames.Complete(ctx, f.companyID, sheet.ID, CompleteOpnameRequest{ActorID: uuid.New()})
	assert.Error(t, err)
}

func TestOpnameService_MatchingCountPostsNothing(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()
	sheet := f.countSheet(t)

	_, err := f.opnames.Start(ctx, f.companyID, sheet.ID)
	require.NoError(t, err)
	_, err = f.opnames.RecordCount(ctx, f.companyID, sheet.ID, RecordCountRequest{ProductID: f.productID, Quantity: decimal.NewFromInt(10)})
	require.NoError(t, err)

	done, err := f.opnames.Complete(ctx, f.companyID, sheet.ID, CompleteOpnameRequest{ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, done.JournalEntryID)
	assert.Equal(t, "10", f.level(t, f.source))
	assert.Equal(t, "0.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleInventory)))
}

func TestOpnameService_LifecycleGuards(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()
	sheet := f.countSheet(t)

	_, err := f.opnames.RecordCount(ctx, f.companyID, sheet.ID, RecordCountRequest{ProductID: f.productID, Quantity: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, "OPNAME_NOT_IN_PROGRESS", codeOf(t, err))

	_, err = f.opnames.AddItem(ctx, f.companyID, sheet.ID, AddOpnameItemRequest{ProductID: f.productID})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_PRODUCT", codeOf(t, err))

	_, err = f.opnames.AddItem(ctx, f.companyID, sheet.ID, AddOpnameItemRequest{ProductID: uuid.New(), ProductName: "Teh"})
	require.NoError(t, err)
	_, err = f.opnames.Start(ctx, f.companyID, sheet.ID)
	require.NoError(t, err)
	_, err = f.opnames.RecordCount(ctx, f.companyID, sheet.ID, RecordCountRequest{ProductID: f.productID, Quantity: decimal.NewFromInt(9)})
	require.NoError(t, err)

	_, err = f.opnames.Complete(ctx, f.companyID, sheet.ID, CompleteOpnameRequest{ActorID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, "INCOMPLETE_COUNT", codeOf(t, err))
	assert.Equal(t, "10", f.level(t, f.source))

	list, err := f.opnames.List(ctx, f.companyID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, string(inventory.OpnameInProgress), list.Items[0].Status)
}
