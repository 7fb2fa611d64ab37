package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenderedPayment is the amount handed over with one payment method
type TenderedPayment struct {
	PaymentMethodID uuid.UUID
	Name            string
	Amount          decimal.Decimal
}

// POSSale is a completed point-of-sale transaction
type POSSale struct {
	TransactionID uuid.UUID
	ReceiptNumber string
	Date          time.Time
	GrandTotal    decimal.Decimal
	TotalCOGS     decimal.Decimal
	Payments      []TenderedPayment
}

func (e POSSale) Requirements() []ledger.RoleKey {
	needs := []ledger.RoleKey{ledger.Need(ledger.RoleRevenue)}
	for _, p := range e.Payments {
		needs = append(needs, ledger.NeedFor(ledger.RoleCashBank, qualifier(p.PaymentMethodID)))
	}
	if e.TotalCOGS.IsPositive() {
		needs = append(needs, ledger.Need(ledger.RoleCOGS), ledger.Need(ledger.RoleInventory))
	}
	return needs
}

// CashDebits returns the ledger debit of each payment. When more is tendered
// than the grand total, every debit is scaled by total/tendered and rounded;
// the last payment absorbs the rounding residue so the debits sum to the
// grand total exactly.
func (e POSSale) CashDebits() ([]decimal.Decimal, error) {
	if len(e.Payments) == 0 {
		return nil, shared.NewValidationError("NO_PAYMENT", "A sale needs at least one payment")
	}
	total := round(e.GrandTotal)
	paid := decimal.Zero
	weights := make([]decimal.Decimal, len(e.Payments))
	for i, p := range e.Payments {
		if !p.Amount.IsPositive() {
			return nil, shared.NewValidationError("INVALID_PAYMENT", "Payment amounts must be positive")
		}
		paid = paid.Add(p.Amount)
		weights[i] = p.Amount
	}
	if paid.LessThan(total) {
		return nil, shared.NewValidationError("INSUFFICIENT_PAYMENT",
			"Paid "+paid.StringFixed(ledger.AmountPlaces)+" is below the total "+total.StringFixed(ledger.AmountPlaces))
	}
	if paid.Equal(total) {
		return weights, nil
	}
	debits, err := allocate(total, weights)
	if err != nil {
		return nil, err
	}
	for _, d := range debits {
		if d.IsNegative() {
			return nil, shared.NewValidationError("INVALID_PAYMENT", "Payment split produced a negative debit")
		}
	}
	return debits, nil
}

// Draft posts one cash/bank debit per payment (change-adjusted), Cr Revenue
// for the grand total and, when both accounts resolve, the COGS pair. A
// missing COGS or inventory mapping drops both sides under lenient policy.
func (e POSSale) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	total := round(e.GrandTotal)
	if !total.IsPositive() {
		return ledger.EntryDraft{}, shared.NewValidationError("INVALID_AMOUNT", "Sale total must be positive")
	}
	debits, err := e.CashDebits()
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	revenue, err := mustResolve(r, ledger.RoleRevenue, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "POS sale " + e.ReceiptNumber
	var lines []ledger.LineDraft
	for i, p := range e.Payments {
		if !debits[i].IsPositive() {
			continue
		}
		cash, err := mustResolve(r, ledger.RoleCashBank, qualifier(p.PaymentMethodID))
		if err != nil {
			return ledger.EntryDraft{}, err
		}
		lineDesc := desc
		if p.Name != "" {
			lineDesc += " (" + p.Name + ")"
		}
		lines = append(lines, ledger.DebitLine(cash, ledger.RoleCashBank, debits[i], lineDesc))
	}
	lines = append(lines, ledger.CreditLine(revenue, ledger.RoleRevenue, total, desc))

	if cogs := round(e.TotalCOGS); cogs.IsPositive() {
		cogsAcc, okCogs := r.Resolve(ledger.RoleCOGS, "")
		invAcc, okInv := r.Resolve(ledger.RoleInventory, "")
		if okCogs && okInv {
			lines = append(lines,
				ledger.DebitLine(cogsAcc, ledger.RoleCOGS, cogs, desc+" cost of goods"),
				ledger.CreditLine(invAcc, ledger.RoleInventory, cogs, desc+" cost of goods"),
			)
		}
	}

	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefPOSSale,
		ReferenceID:   e.TransactionID,
		Lines:         lines,
	}, nil
}
