package pos

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price, disc, tax, cost string) CartLine {
	return CartLine{
		ProductID:       uuid.New(),
		ProductName:     "Item",
		Quantity:        dec(qty),
		UnitPrice:       dec(price),
		DiscountPercent: dec(disc),
		TaxPercent:      dec(tax),
		UnitCost:        dec(cost),
	}
}

func methods(t *testing.T, companyID uuid.UUID) (cash, card *PaymentMethod, all map[uuid.UUID]*PaymentMethod) {
	t.Helper()
	cash, err := NewPaymentMethod(companyID, "Tunai", true)
	require.NoError(t, err)
	card, err = NewPaymentMethod(companyID, "Debit BCA", false)
	require.NoError(t, err)
	return cash, card, map[uuid.UUID]*PaymentMethod{cash.ID: cash, card.ID: card}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestComputeCart_FloorsOnlyTheFinalTotal(t *testing.T) {
	totals, err := ComputeCart([]CartLine{
		line("1", "100000.25", "0", "0", "60000"),
		line("2", "125.25", "0", "0", "50"),
	})
	require.NoError(t, err)

	assert.True(t, totals.Total.Equal(dec("100250.75")))
	assert.True(t, totals.RoundedTotal.Equal(dec("100250")))
	assert.True(t, totals.RoundingAmount.Equal(dec("0.75")))
	assert.True(t, totals.TotalCOGS.Equal(dec("60100")))
}

func TestComputeCart_DiscountThenTax(t *testing.T) {
	// 3 x 33333 = 99999, -10% = 89999.1, +11% = 9899.901 -> 99899.001
	totals, err := ComputeCart([]CartLine{line("3", "33333", "10", "11", "0")})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("99999")))
	assert.True(t, totals.Discount.Equal(dec("9999.9")))
	assert.True(t, totals.Tax.Equal(dec("9899.901")))
	assert.True(t, totals.Total.Equal(dec("99899.001")))
	assert.True(t, totals.RoundedTotal.Equal(dec("99899")))
	assert.True(t, totals.RoundingAmount.Equal(dec("0.001")))
}

func TestComputeCart_RejectsBadLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []CartLine
		code  string
	}{
		{"empty", nil, "EMPTY_CART"},
		{"zero quantity", []CartLine{line("0", "10", "0", "0", "0")}, "INVALID_QUANTITY"},
		{"negative price", []CartLine{line("1", "-10", "0", "0", "0")}, "INVALID_PRICE"},
		{"discount over 100", []CartLine{line("1", "10", "101", "0", "0")}, "INVALID_PERCENT"},
		{"no product", []CartLine{{Quantity: dec("1"), UnitPrice: dec("1")}}, "INVALID_PRODUCT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeCart(tt.lines)
			assertCode(t, err, tt.code)
		})
	}
}

func TestSettle(t *testing.T) {
	cash, card, all := methods(t, uuid.New())

	t.Run("change from cash", func(t *testing.T) {
		s, err := Settle(dec("85000"), []Tender{{PaymentMethodID: cash.ID, Amount: dec("100000")}}, all)
		require.NoError(t, err)
		assert.True(t, s.TotalPaid.Equal(dec("100000")))
		assert.True(t, s.ChangeAmount.Equal(dec("15000")))
		assert.True(t, s.NetCash().Equal(dec("85000")))
	})

	t.Run("split tender exact", func(t *testing.T) {
		s, err := Settle(dec("100000"), []Tender{
			{PaymentMethodID: cash.ID, Amount: dec("40000")},
			{PaymentMethodID: card.ID, Amount: dec("60000")},
		}, all)
		require.NoError(t, err)
		assert.True(t, s.ChangeAmount.IsZero())
		assert.True(t, s.NetCash().Equal(dec("40000")))
	})

	t.Run("mixed tenders with change", func(t *testing.T) {
		s, err := Settle(dec("85000"), []Tender{
			{PaymentMethodID: cash.ID, Amount: dec("60000")},
			{PaymentMethodID: card.ID, Amount: dec("40000")},
		}, all)
		require.NoError(t, err)
		assert.True(t, s.ChangeAmount.Equal(dec("15000")))
		// the whole change leaves the drawer
		assert.True(t, s.NetCash().Equal(dec("45000")))
	})

	t.Run("insufficient", func(t *testing.T) {
		_, err := Settle(dec("100250"), []Tender{{PaymentMethodID: cash.ID, Amount: dec("100000")}}, all)
		assertCode(t, err, "INSUFFICIENT_PAYMENT")
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("change against card only", func(t *testing.T) {
		_, err := Settle(dec("85000"), []Tender{{PaymentMethodID: card.ID, Amount: dec("90000")}}, all)
		assertCode(t, err, "CHANGE_WITHOUT_CASH")
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := Settle(dec("1"), []Tender{{PaymentMethodID: uuid.New(), Amount: dec("1")}}, all)
		assertCode(t, err, "INVALID_PAYMENT_METHOD")
	})

	t.Run("no tenders", func(t *testing.T) {
		_, err := Settle(dec("1"), nil, all)
		assertCode(t, err, "NO_PAYMENT")
	})
}

func TestCompleteSale(t *testing.T) {
	companyID := uuid.New()
	cash, _, all := methods(t, companyID)
	date := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	tx, err := CompleteSale(companyID, SaleInput{
		ReceiptNumber: FormatReceiptNumber(date, 7),
		CashierID:     uuid.New(),
		WarehouseID:   uuid.New(),
		Date:          date,
		Lines:         []CartLine{line("1", "100250.75", "0", "0", "70000")},
		Tenders:       []Tender{{PaymentMethodID: cash.ID, Amount: dec("100250")}},
	}, all)
	require.NoError(t, err)

	assert.Equal(t, "POS-20260502-0007", tx.ReceiptNumber)
	assert.True(t, tx.TotalAmount.Equal(dec("100250")))
	assert.True(t, tx.RoundingAmount.Equal(dec("0.75")))
	assert.True(t, tx.AmountPaid.Equal(dec("100250")))
	assert.True(t, tx.ChangeAmount.IsZero())
	assert.True(t, tx.CashReceived.Equal(dec("100250")))
	assert.True(t, tx.HasCash())
	require.Len(t, tx.Items, 1)
	assert.Equal(t, tx.ID, tx.Items[0].TransactionID)
	require.Len(t, tx.Payments, 1)
	assert.True(t, tx.Payments[0].IsCash)

	ev := tx.PostingEvent()
	assert.True(t, ev.GrandTotal.Equal(dec("100250")))
	assert.True(t, ev.TotalCOGS.Equal(dec("70000")))
	require.Len(t, ev.Payments, 1)
	assert.Equal(t, cash.ID, ev.Payments[0].PaymentMethodID)

	events := tx.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePOSSaleCompleted, events[0].EventType())
}

func TestCompleteSale_UnderpaidProducesNothing(t *testing.T) {
	companyID := uuid.New()
	cash, _, all := methods(t, companyID)

	tx, err := CompleteSale(companyID, SaleInput{
		ReceiptNumber: "POS-20260502-0001",
		WarehouseID:   uuid.New(),
		Lines:         []CartLine{line("1", "100250.75", "0", "0", "0")},
		Tenders:       []Tender{{PaymentMethodID: cash.ID, Amount: dec("100249")}},
	}, all)
	assert.Nil(t, tx)
	assertCode(t, err, "INSUFFICIENT_PAYMENT")
}

func TestLooksLikeCash(t *testing.T) {
	assert.True(t, LooksLikeCash("Cash"))
	assert.True(t, LooksLikeCash("Uang Tunai"))
	assert.True(t, LooksLikeCash("KAS KECIL"))
	assert.False(t, LooksLikeCash("QRIS"))
}
