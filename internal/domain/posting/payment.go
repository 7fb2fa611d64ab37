package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is money received from a customer (Incoming) or paid to a supplier
type Payment struct {
	PaymentID       uuid.UUID
	PaymentNumber   string
	PaymentMethodID uuid.UUID
	Incoming        bool
	Date            time.Time
	Amount          decimal.Decimal
}

func (e Payment) counterRole() ledger.AccountRole {
	if e.Incoming {
		return ledger.RoleReceivable
	}
	return ledger.RolePayable
}

func (e Payment) Requirements() []ledger.RoleKey {
	return []ledger.RoleKey{
		ledger.NeedFor(ledger.RoleCashBank, qualifier(e.PaymentMethodID)),
		ledger.Need(e.counterRole()),
	}
}

// Draft posts Dr Cash / Cr Receivable for incoming payments and Dr Payable /
// Cr Cash for outgoing ones
func (e Payment) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	amount := round(e.Amount)
	if !amount.IsPositive() {
		return ledger.EntryDraft{}, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	cash, err := mustResolve(r, ledger.RoleCashBank, qualifier(e.PaymentMethodID))
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	role := e.counterRole()
	counter, err := mustResolve(r, role, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "Payment " + e.PaymentNumber
	var lines []ledger.LineDraft
	if e.Incoming {
		lines = []ledger.LineDraft{
			ledger.DebitLine(cash, ledger.RoleCashBank, amount, desc),
			ledger.CreditLine(counter, role, amount, desc),
		}
	} else {
		lines = []ledger.LineDraft{
			ledger.DebitLine(counter, role, amount, desc),
			ledger.CreditLine(cash, ledger.RoleCashBank, amount, desc),
		}
	}
	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefPayment,
		ReferenceID:   e.PaymentID,
		Lines:         lines,
	}, nil
}
