package posting

import (
	"testing"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceWithDP() SalesInvoice {
	return SalesInvoice{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-0001",
		Date:          saleDate,
		Lines: []SalesLine{
			{ProductID: uuid.New(), Quantity: dec("2"), UnitPrice: dec("50000"), DiscountPercent: dec("10"), TaxPercent: dec("11")},
		},
		DownPaymentApplied: dec("20000"),
	}
}

func TestSalesInvoice_Totals(t *testing.T) {
	totals := invoiceWithDP().Totals()
	assert.True(t, totals.Gross.Equal(dec("100000")))
	assert.True(t, totals.Discount.Equal(dec("10000")))
	assert.True(t, totals.Tax.Equal(dec("9900")))
	assert.True(t, totals.Total.Equal(dec("99900")))
	assert.True(t, totals.Receivable.Equal(dec("79900")))
}

func TestSalesInvoice_FullChart(t *testing.T) {
	c := fullChart()
	draft, err := Build(invoiceWithDP(), c.table(), ledger.PolicyStrict)
	require.NoError(t, err)
	assertBalanced(t, draft)

	recv, _ := side(draft, c.id(ledger.RoleReceivable))
	dp, _ := side(draft, c.id(ledger.RoleCustomerDeposit))
	disc, _ := side(draft, c.id(ledger.RoleDiscount))
	_, rev := side(draft, c.id(ledger.RoleRevenue))
	_, tax := side(draft, c.id(ledger.RoleTax))

	assert.True(t, recv.Equal(dec("79900")))
	assert.True(t, dp.Equal(dec("20000")))
	assert.True(t, disc.Equal(dec("10000")))
	assert.True(t, rev.Equal(dec("100000")))
	assert.True(t, tax.Equal(dec("9900")))
}

func TestSalesInvoice_LenientFoldsOptionalRoles(t *testing.T) {
	c := fullChart().without(ledger.RoleTax).without(ledger.RoleDiscount)
	draft, err := Build(invoiceWithDP(), c.table(), ledger.PolicyLenient)
	require.NoError(t, err)
	assertBalanced(t, draft)

	_, rev := side(draft, c.id(ledger.RoleRevenue))
	assert.True(t, rev.Equal(dec("99900")), "revenue %s", rev)
	assert.Len(t, draft.Lines, 3)
}

func TestSalesInvoice_StrictNamesEveryGap(t *testing.T) {
	c := fullChart().without(ledger.RoleTax).without(ledger.RoleCustomerDeposit)
	_, err := Build(invoiceWithDP(), c.table(), ledger.PolicyStrict)
	require.Error(t, err)
	assert.Equal(t, shared.KindResolutionGap, shared.KindOf(err))
	assert.Contains(t, err.Error(), "customer_deposit, tax")
}

func TestSalesInvoice_RevenueByProduct(t *testing.T) {
	c := fullChart()
	dedicatedProduct := uuid.New()
	dedicatedProductRevenue := c.with(ledger.RoleRevenue, dedicatedProduct.String())

	inv := SalesInvoice{
		InvoiceID: uuid.New(),
		Date:      saleDate,
		Lines: []SalesLine{
			{ProductID: uuid.New(), Quantity: dec("1"), UnitPrice: dec("1000.005"), DiscountPercent: dec("0"), TaxPercent: dec("0")},
			{ProductID: dedicatedProduct, Quantity: dec("3"), UnitPrice: dec("333.333"), DiscountPercent: dec("0"), TaxPercent: dec("0")},
		},
		DownPaymentApplied: dec("0"),
	}
	draft, err := Build(inv, c.table(), ledger.PolicyStrict)
	require.NoError(t, err)
	assertBalanced(t, draft)

	_, generic := side(draft, c.id(ledger.RoleRevenue))
	_, dedicated := side(draft, dedicatedProductRevenue)
	assert.True(t, generic.Add(dedicated).Equal(inv.Totals().Gross))
	assert.True(t, dedicated.IsPositive())
}

func TestSalesInvoice_Validation(t *testing.T) {
	c := fullChart()

	inv := invoiceWithDP()
	inv.DownPaymentApplied = dec("100000")
	_, err := Build(inv, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	inv = invoiceWithDP()
	inv.Lines[0].TaxPercent = dec("120")
	_, err = Build(inv, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	inv = invoiceWithDP()
	inv.Lines = nil
	_, err = Build(inv, c.table(), ledger.PolicyStrict)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestSalesInvoice_FullyPrepaid(t *testing.T) {
	c := fullChart()
	inv := invoiceWithDP()
	inv.DownPaymentApplied = dec("99900")

	draft, err := Build(inv, c.table(), ledger.PolicyStrict)
	require.NoError(t, err)
	assertBalanced(t, draft)
	recv, _ := side(draft, c.id(ledger.RoleReceivable))
	assert.True(t, recv.IsZero())
}
