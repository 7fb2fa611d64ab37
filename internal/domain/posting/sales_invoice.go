package posting

import (
	"sort"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesLine is one priced line of a sales order
type SalesLine struct {
	ProductID       uuid.UUID
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

func (l SalesLine) amounts() valueobject.LineAmounts {
	return valueobject.ComputeLine(l.Quantity, l.UnitPrice, l.DiscountPercent, l.TaxPercent)
}

// SalesInvoice is the invoice generated from a confirmed sales order.
// DownPaymentApplied is the part of the order total already collected as a
// customer deposit; it is drawn down from the deposit liability instead of
// being billed again.
type SalesInvoice struct {
	InvoiceID          uuid.UUID
	InvoiceNumber      string
	Date               time.Time
	Lines              []SalesLine
	DownPaymentApplied decimal.Decimal
}

// InvoiceTotals is the rounded breakdown of a sales invoice
type InvoiceTotals struct {
	valueobject.DocumentTotals
	DownPayment decimal.Decimal
	Receivable  decimal.Decimal
}

// Totals computes gross, discount, tax and the receivable net of the down payment
func (e SalesInvoice) Totals() InvoiceTotals {
	amounts := make([]valueobject.LineAmounts, len(e.Lines))
	for i, l := range e.Lines {
		amounts[i] = l.amounts()
	}
	totals := valueobject.Totals(amounts, ledger.AmountPlaces)
	dp := round(e.DownPaymentApplied)
	return InvoiceTotals{
		DocumentTotals: totals,
		DownPayment:    dp,
		Receivable:     totals.Total.Sub(dp),
	}
}

func (e SalesInvoice) validate() error {
	if len(e.Lines) == 0 {
		return shared.NewValidationError("EMPTY_DOCUMENT", "Invoice has no lines")
	}
	for _, l := range e.Lines {
		if !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() {
			return shared.NewValidationError("INVALID_LINE", "Invoice lines need a positive quantity and a non-negative price")
		}
		if !valueobject.ValidPercent(l.DiscountPercent) || !valueobject.ValidPercent(l.TaxPercent) {
			return shared.NewValidationError("INVALID_PERCENT", "Discount and tax percent must be between 0 and 100")
		}
	}
	if e.DownPaymentApplied.IsNegative() {
		return shared.NewValidationError("INVALID_DOWN_PAYMENT", "Down payment cannot be negative")
	}
	if t := e.Totals(); t.DownPayment.GreaterThan(t.Total) {
		return shared.NewValidationError("DOWN_PAYMENT_EXCEEDS_TOTAL", "Down payment exceeds the invoice total")
	}
	return nil
}

func (e SalesInvoice) Requirements() []ledger.RoleKey {
	t := e.Totals()
	needs := []ledger.RoleKey{ledger.Need(ledger.RoleReceivable)}
	for _, l := range e.Lines {
		needs = append(needs, ledger.NeedFor(ledger.RoleRevenue, qualifier(l.ProductID)))
	}
	if t.Discount.IsPositive() {
		needs = append(needs, ledger.Need(ledger.RoleDiscount))
	}
	if t.Tax.IsPositive() {
		needs = append(needs, ledger.Need(ledger.RoleTax))
	}
	if t.DownPayment.IsPositive() {
		needs = append(needs, ledger.Need(ledger.RoleCustomerDeposit))
	}
	return needs
}

// Draft posts Dr Receivable (total net of DP), Dr Customer deposit (DP),
// Dr Discount, Cr Revenue (gross, per resolved revenue account), Cr Tax.
// Lenient policy folds an unmapped discount into a net revenue credit and an
// unmapped tax into revenue; the receivable side never changes.
func (e SalesInvoice) Draft(r ledger.AccountResolver, policy ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	if err := e.validate(); err != nil {
		return ledger.EntryDraft{}, err
	}
	t := e.Totals()
	if t.Total.IsZero() {
		return ledger.EntryDraft{}, ErrNothingToPost
	}
	desc := "Sales invoice " + e.InvoiceNumber

	receivable, err := mustResolve(r, ledger.RoleReceivable, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	var lines []ledger.LineDraft
	if t.Receivable.IsPositive() {
		lines = append(lines, ledger.DebitLine(receivable, ledger.RoleReceivable, t.Receivable, desc))
	}
	if t.DownPayment.IsPositive() {
		deposit, err := mustResolve(r, ledger.RoleCustomerDeposit, "")
		if err != nil {
			return ledger.EntryDraft{}, err
		}
		lines = append(lines, ledger.DebitLine(deposit, ledger.RoleCustomerDeposit, t.DownPayment, desc+" down payment applied"))
	}

	revenueTotal := t.Gross
	netOfDiscount := false
	if t.Discount.IsPositive() {
		if discount, ok := r.Resolve(ledger.RoleDiscount, ""); ok {
			lines = append(lines, ledger.DebitLine(discount, ledger.RoleDiscount, t.Discount, desc+" discount"))
		} else if policy == ledger.PolicyLenient {
			revenueTotal = revenueTotal.Sub(t.Discount)
			netOfDiscount = true
		} else {
			return ledger.EntryDraft{}, shared.NewResolutionGap(string(ledger.RoleDiscount))
		}
	}

	var taxLine *ledger.LineDraft
	if t.Tax.IsPositive() {
		if tax, ok := r.Resolve(ledger.RoleTax, ""); ok {
			l := ledger.CreditLine(tax, ledger.RoleTax, t.Tax, desc+" output tax")
			taxLine = &l
		} else if policy == ledger.PolicyLenient {
			revenueTotal = revenueTotal.Add(t.Tax)
		} else {
			return ledger.EntryDraft{}, shared.NewResolutionGap(string(ledger.RoleTax))
		}
	}

	revenueLines, err := e.revenueLines(r, revenueTotal, netOfDiscount, desc)
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	lines = append(lines, revenueLines...)
	if taxLine != nil {
		lines = append(lines, *taxLine)
	}

	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefSalesInvoice,
		ReferenceID:   e.InvoiceID,
		Lines:         lines,
	}, nil
}

// revenueLines splits amount across the resolved revenue accounts in
// proportion to each account's share of the invoice lines.
func (e SalesInvoice) revenueLines(r ledger.AccountResolver, amount decimal.Decimal, netOfDiscount bool, desc string) ([]ledger.LineDraft, error) {
	weights := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range e.Lines {
		acc, err := mustResolve(r, ledger.RoleRevenue, qualifier(l.ProductID))
		if err != nil {
			return nil, err
		}
		a := l.amounts()
		w := a.Subtotal
		if netOfDiscount {
			w = a.AfterDiscount
		}
		weights[acc] = weights[acc].Add(w)
	}

	accounts := make([]uuid.UUID, 0, len(weights))
	for acc := range weights {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].String() < accounts[j].String() })

	ws := make([]decimal.Decimal, len(accounts))
	for i, acc := range accounts {
		ws[i] = weights[acc]
	}
	shares, err := allocate(amount, ws)
	if err != nil {
		return nil, err
	}

	var lines []ledger.LineDraft
	for i, acc := range accounts {
		if shares[i].IsPositive() {
			lines = append(lines, ledger.CreditLine(acc, ledger.RoleRevenue, shares[i], desc+" revenue"))
		}
	}
	return lines, nil
}

// allocate splits amount by weights at ledger precision; equal weights are
// used when every weight is zero.
func allocate(amount decimal.Decimal, weights []decimal.Decimal) ([]decimal.Decimal, error) {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	if total.IsZero() {
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
	}
	shares, err := valueobject.NewIDR(amount).AllocateByWeights(weights, ledger.AmountPlaces)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_ALLOCATION", err.Error())
	}
	out := make([]decimal.Decimal, len(shares))
	for i, s := range shares {
		out[i] = s.Amount()
	}
	return out, nil
}
