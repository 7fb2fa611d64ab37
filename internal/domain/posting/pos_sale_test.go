package posting

import (
	"testing"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOSSale_ChangeAdjustedDebit(t *testing.T) {
	c := fullChart()
	sale := POSSale{
		TransactionID: uuid.New(),
		ReceiptNumber: "POS-20260504-0001",
		Date:          saleDate,
		GrandTotal:    dec("85000"),
		Payments:      []TenderedPayment{{PaymentMethodID: uuid.New(), Name: "Tunai", Amount: dec("100000")}},
	}

	draft, err := Build(sale, c.table(), ledger.PolicyStrict)
	require.NoError(t, err)
	assertBalanced(t, draft)

	cashDebit, _ := side(draft, c.id(ledger.RoleCashBank))
	_, revenueCredit := side(draft, c.id(ledger.RoleRevenue))
	assert.True(t, cashDebit.Equal(dec("85000")), "cash debit %s", cashDebit)
	assert.True(t, revenueCredit.Equal(dec("85000")))
	assert.Equal(t, ledger.RefPOSSale, draft.ReferenceType)
}

func TestPOSSale_SplitPaymentsScaledByMethod(t *testing.T) {
	c := fullChart()
	cashMethod, cardMethod := uuid.New(), uuid.New()
	cardAccount := c.with(ledger.RoleCashBank, cardMethod.String())

	sale := POSSale{
		TransactionID: uuid.New(),
		Date:          saleDate,
		GrandTotal:    dec("85000"),
		Payments: []TenderedPayment{
			{PaymentMethodID: cashMethod, Amount: dec("60000")},
			{PaymentMethodID: cardMethod, Amount: dec("40000")},
		},
	}

	draft, err := Build(sale, c.table(), ledger.PolicyStrict)
	require.NoError(t, err)
	assertBalanced(t, draft)

	drawer, _ := side(draft, c.id(ledger.RoleCashBank))
	card, _ := side(draft, cardAccount)
	assert.True(t, drawer.Equal(dec("51000")))
	assert.True(t, card.Equal(dec("34000")))
}

func TestPOSSale_LastPaymentAbsorbsResidue(t *testing.T) {
	sale := POSSale{
		GrandTotal: dec("100"),
		Payments: []TenderedPayment{
			{PaymentMethodID: uuid.New(), Amount: dec("33.33")},
			{PaymentMethodID: uuid.New(), Amount: dec("33.33")},
			{PaymentMethodID: uuid.New(), Amount: dec("33.35")},
		},
	}
	debits, err := sale.CashDebits()
	require.NoError(t, err)

	sum := decimal.Zero
	for _, d := range debits {
		sum = sum.Add(d)
	}
	assert.True(t, sum.Equal(dec("100")))
	assert.True(t, debits[0].Equal(dec("33.33")))
	assert.True(t, debits[2].Equal(dec("33.34")))
}

func TestPOSSale_COGSPair(t *testing.T) {
	sale := POSSale{
		TransactionID: uuid.New(),
		Date:          saleDate,
		GrandTotal:    dec("85000"),
		TotalCOGS:     dec("52000"),
		Payments:      []TenderedPayment{{PaymentMethodID: uuid.New(), Amount: dec("85000")}},
	}

	t.Run("both accounts mapped", func(t *testing.T) {
		c := fullChart()
		draft, err := Build(sale, c.table(), ledger.PolicyStrict)
		require.NoError(t, err)
		assertBalanced(t, draft)
		cogs, _ := side(draft, c.id(ledger.RoleCOGS))
		_, inv := side(draft, c.id(ledger.RoleInventory))
		assert.True(t, cogs.Equal(dec("52000")))
		assert.True(t, inv.Equal(dec("52000")))
	})

	t.Run("lenient omits both sides when one is missing", func(t *testing.T) {
		c := fullChart().without(ledger.RoleInventory)
		draft, err := Build(sale, c.table(), ledger.PolicyLenient)
		require.NoError(t, err)
		assertBalanced(t, draft)
		assert.Len(t, draft.Lines, 2)
		cogs, _ := side(draft, c.id(ledger.RoleCOGS))
		assert.True(t, cogs.IsZero())
	})
}

func TestPOSSale_Rejections(t *testing.T) {
	c := fullChart()
	base := POSSale{TransactionID: uuid.New(), Date: saleDate, GrandTotal: dec("85000")}

	short := base
	short.Payments = []TenderedPayment{{PaymentMethodID: uuid.New(), Amount: dec("84999")}}
	_, err := Build(short, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = Build(base, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	zero := base
	zero.Payments = []TenderedPayment{{PaymentMethodID: uuid.New(), Amount: dec("0")}, {PaymentMethodID: uuid.New(), Amount: dec("90000")}}
	_, err = Build(zero, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}
