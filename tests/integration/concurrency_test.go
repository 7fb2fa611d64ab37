package integration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	posapp "github.com/erp/accounting/internal/application/pos"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentSales_NeverOversell(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	companyID := uuid.New()
	chart := testutil.SeedChart(t, tdb.DB, companyID)

	scope := persistence.NewGormTransactionScope(tdb.DB, nil)
	sales := posapp.NewSaleService(scope, ledgerapp.NewPoster(ledger.PolicyStrict, nil), nil)
	methods := posapp.NewPaymentMethodService(scope)

	card, err := methods.Create(ctx, companyID, posapp.CreatePaymentMethodRequest{Name: "Debit Card"})
	require.NoError(t, err)

	const (
		stock   = 5
		buyers  = 12
		price   = 20000
		unitCst = 12000
	)
	warehouseID, productID := uuid.New(), uuid.New()
	stocks := persistence.NewGormStockRepository(tdb.DB)
	require.NoError(t, stocks.Increase(ctx, companyID, warehouseID, productID, decimal.NewFromInt(stock)))

	var sold, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < buyers; i++ {
		g.Go(func() error {
			_, err := sales.PostPOSSale(ctx, companyID, posapp.PostSaleRequest{
				CashierID:   uuid.New(),
				WarehouseID: warehouseID,
				Lines: []posapp.SaleLineInput{{
					ProductID:   productID,
					ProductName: "Es Teh",
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   decimal.NewFromInt(price),
					UnitCost:    decimal.NewFromInt(unitCst),
				}},
				Payments: []posapp.TenderInput{{PaymentMethodID: card.ID, Amount: decimal.NewFromInt(price)}},
			})
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, stock, sold.Load())
	assert.EqualValues(t, buyers-stock, rejected.Load())

	level, err := stocks.GetLevel(ctx, companyID, warehouseID, productID)
	require.NoError(t, err)
	assert.True(t, level.IsZero(), "stock left: %s", level)

	revenue := decimal.NewFromInt(stock * price).StringFixed(2)
	assert.Equal(t, revenue, testutil.AccountBalance(t, tdb.DB, companyID, chart.ID(ledger.RoleRevenue)))
	assert.Equal(t, revenue, testutil.AccountBalance(t, tdb.DB, companyID, chart.ID(ledger.RoleCashBank)))
	assert.Equal(t, decimal.NewFromInt(stock*unitCst).StringFixed(2),
		testutil.AccountBalance(t, tdb.DB, companyID, chart.ID(ledger.RoleCOGS)))
}

func TestConcurrentPosting_UniqueEntryNumbers(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	companyID := uuid.New()
	chart := testutil.SeedChart(t, tdb.DB, companyID)

	scope := persistence.NewGormTransactionScope(tdb.DB, nil)
	journal := ledgerapp.NewJournalService(scope, ledgerapp.NewPoster(ledger.PolicyStrict, nil))

	const writers = 16
	date := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	var (
		mu      sync.Mutex
		numbers = make(map[string]bool, writers)
	)
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			entry, err := journal.PostManual(ctx, companyID, ledgerapp.PostManualEntryRequest{
				Date:        date,
				Description: "Petty cash float",
				Lines: []ledgerapp.JournalLineRequest{
					{AccountID: chart.ID(ledger.RoleCashBank), Debit: decimal.NewFromInt(1000)},
					{AccountID: chart.ID(ledger.RoleCustomerDeposit), Credit: decimal.NewFromInt(1000)},
				},
			})
			if err != nil {
				return err
			}
			mu.Lock()
			numbers[entry.EntryNumber] = true
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, numbers, writers)
	for n := range numbers {
		assert.True(t, strings.HasPrefix(n, "JE-202407-"), n)
	}
	assert.Equal(t, "16000.00", testutil.AccountBalance(t, tdb.DB, companyID, chart.ID(ledger.RoleCashBank)))
}
