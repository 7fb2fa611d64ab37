package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/cache"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type posFixture struct {
	db          *gorm.DB
	companyID   uuid.UUID
	chart       testutil.Chart
	sales       *SaleService
	sessions    *CashSessionService
	methods     *PaymentMethodService
	cash        uuid.UUID
	card        uuid.UUID
	warehouseID uuid.UUID
	productID   uuid.UUID
}

func newPOSFixture(t *testing.T) *posFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	companyID := uuid.New()
	scope := persistence.NewGormTransactionScope(db, nil)
	poster := ledgerapp.NewPoster(ledger.PolicyStrict, nil)

	f := &posFixture{
		db:          db,
		companyID:   companyID,
		chart:       testutil.SeedChart(t, db, companyID),
		sales:       NewSaleService(scope, poster, nil),
		sessions:    NewCashSessionService(scope, decimal.NewFromInt(50), nil),
		methods:     NewPaymentMethodService(scope),
		warehouseID: uuid.New(),
		productID:   uuid.New(),
	}

	ctx := context.Background()
	cash, err := f.methods.Create(ctx, companyID, CreatePaymentMethodRequest{Name: "Cash"})
	require.NoError(t, err)
	require.True(t, cash.IsCash)
	f.cash = cash.ID

	card, err := f.methods.Create(ctx, companyID, CreatePaymentMethodRequest{Name: "Debit Card"})
	require.NoError(t, err)
	require.False(t, card.IsCash)
	f.card = card.ID

	require.NoError(t, persistence.NewGormStockRepository(db).Increase(ctx, companyID, f.warehouseID, f.productID, decimal.NewFromInt(10)))
	return f
}

func (f *posFixture) saleRequest(qty int64, tenders ...TenderInput) PostSaleRequest {
	return PostSaleRequest{
		CashierID:   uuid.New(),
		WarehouseID: f.warehouseID,
		Lines: []SaleLineInput{{
			ProductID:   f.productID,
			ProductName: "Kopi Susu",
			Quantity:    decimal.NewFromInt(qty),
			UnitPrice:   decimal.NewFromInt(25000),
			UnitCost:    decimal.NewFromInt(15000),
		}},
		Payments: tenders,
	}
}

func (f *posFixture) stockLevel(t *testing.T) string {
	t.Helper()
	level, err := persistence.NewGormStockRepository(f.db).GetLevel(context.Background(), f.companyID, f.warehouseID, f.productID)
	require.NoError(t, err)
	return level.String()
}

type varianceRecorder struct {
	classes     []pos.VarianceClass
	differences []decimal.Decimal
}

func (r *varianceRecorder) SessionClosed(_ context.Context, _ uuid.UUID, v pos.VarianceClass, diff decimal.Decimal) {
	r.classes = append(r.classes, v)
	r.differences = append(r.differences, diff)
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %v", err)
	return de.Code
}

func TestSaleService_CashSaleWithChange(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	session, err := f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New(), OpeningBalance: decimal.NewFromInt(100000)})
	require.NoError(t, err)

	sale, err := f.sales.PostPOSSale(ctx, f.companyID,
		f.saleRequest(2, TenderInput{PaymentMethodID: f.cash, Amount: decimal.NewFromInt(60000)}))
	require.NoError(t, err)

	assert.Equal(t, "50000", sale.TotalAmount.String())
	assert.Equal(t, "10000", sale.ChangeAmount.String())
	require.NotNil(t, sale.SessionID)
	assert.Equal(t, session.ID, *sale.SessionID)
	require.NotNil(t, sale.JournalEntryID)

	assert.Equal(t, "50000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleCashBank)))
	assert.Equal(t, "50000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleRevenue)))
	assert.Equal(t, "30000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleCOGS)))
	assert.Equal(t, "-30000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleInventory)))
	assert.Equal(t, "8", f.stockLevel(t))

	current, err := f.sessions.GetOpen(ctx, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, "150000", current.ExpectedBalance.String())

	movements, err := f.sessions.ListMovements(ctx, f.companyID, session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, string(pos.MovementSale), movements[0].Type)
	assert.Equal(t, "50000", movements[0].Amount.String())
}

func TestSaleService_CashNeedsOpenSession(t *testing.T) {
	f := newPOSFixture(t)

	_, err := f.sales.PostPOSSale(context.Background(), f.companyID,
		f.saleRequest(1, TenderInput{PaymentMethodID: f.cash, Amount: decimal.NewFromInt(25000)}))
	require.Error(t, err)
	assert.Equal(t, "NO_OPEN_SESSION", codeOf(t, err))
	assert.Equal(t, "10", f.stockLevel(t))
	assert.Equal(t, "0.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleRevenue)))
}

func TestSaleService_CardSaleWithoutSession(t *testing.T) {
	f := newPOSFixture(t)

	sale, err := f.sales.PostPOSSale(context.Background(), f.companyID,
		f.saleRequest(1, TenderInput{PaymentMethodID: f.card, Amount: decimal.NewFromInt(25000)}))
	require.NoError(t, err)
	assert.Nil(t, sale.SessionID)
	assert.True(t, sale.ChangeAmount.IsZero())
	assert.Equal(t, "9", f.stockLevel(t))
}

func TestSaleService_InsufficientStockRollsBack(t *testing.T) {
	f := newPOSFixture(t)

	_, err := f.sales.PostPOSSale(context.Background(), f.companyID,
		f.saleRequest(11, TenderInput{PaymentMethodID: f.card, Amount: decimal.NewFromInt(275000)}))
	require.Error(t, err)
	assert.Equal(t, shared.ErrInsufficientStock.Code, codeOf(t, err))

	list, err := f.sales.List(context.Background(), f.companyID, nil, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Equal(t, "0.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleCashBank)))
}

func TestSaleService_IdempotencyKeyReplays(t *testing.T) {
	f := newPOSFixture(t)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	f.sales.SetIdempotencyStore(store, time.Minute)
	ctx := context.Background()

	req := f.saleRequest(1, TenderInput{PaymentMethodID: f.card, Amount: decimal.NewFromInt(25000)})
	req.IdempotencyKey = "till-7-0001"

	first, err := f.sales.PostPOSSale(ctx, f.companyID, req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.sales.PostPOSSale(ctx, f.companyID, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReceiptNumber, second.ReceiptNumber)

	assert.Equal(t, "9", f.stockLevel(t))
	assert.Equal(t, "25000.00", testutil.AccountBalance(t, f.db, f.companyID, f.chart.ID(ledger.RoleRevenue)))
}

func TestSaleService_FailedSaleReleasesIdempotencyKey(t *testing.T) {
	f := newPOSFixture(t)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	f.sales.SetIdempotencyStore(store, time.Minute)
	ctx := context.Background()

	req := f.saleRequest(1, TenderInput{PaymentMethodID: f.cash, Amount: decimal.NewFromInt(25000)})
	req.IdempotencyKey = "till-7-0002"

	_, err := f.sales.PostPOSSale(ctx, f.companyID, req)
	require.Error(t, err)

	_, err = f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New()})
	require.NoError(t, err)

	sale, err := f.sales.PostPOSSale(ctx, f.companyID, req)
	require.NoError(t, err)
	assert.False(t, sale.Replayed)
}

func TestSaleService_InactiveMethodRejected(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	_, err := f.methods.SetActive(ctx, f.companyID, f.card, false)
	require.NoError(t, err)

	_, err = f.sales.PostPOSSale(ctx, f.companyID,
		f.saleRequest(1, TenderInput{PaymentMethodID: f.card, Amount: decimal.NewFromInt(25000)}))
	require.Error(t, err)
	assert.Equal(t, "INVALID_PAYMENT_METHOD", codeOf(t, err))
}
