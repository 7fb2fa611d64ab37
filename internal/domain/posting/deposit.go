package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit is a down payment received against an order
type Deposit struct {
	DepositID       uuid.UUID
	OrderNumber     string
	PaymentMethodID uuid.UUID
	Date            time.Time
	Amount          decimal.Decimal
}

func (e Deposit) Requirements() []ledger.RoleKey {
	return []ledger.RoleKey{
		ledger.NeedFor(ledger.RoleCashBank, qualifier(e.PaymentMethodID)),
		ledger.Need(ledger.RoleCustomerDeposit),
	}
}

// Draft posts Dr Cash/bank / Cr Customer deposit. Both sides are mandatory
// under every policy; a deposit is never booked single-sided.
func (e Deposit) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	amount := round(e.Amount)
	if !amount.IsPositive() {
		return ledger.EntryDraft{}, shared.NewValidationError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	cash, err := mustResolve(r, ledger.RoleCashBank, qualifier(e.PaymentMethodID))
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	deposit, err := mustResolve(r, ledger.RoleCustomerDeposit, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "Down payment " + e.OrderNumber
	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefDeposit,
		ReferenceID:   e.DepositID,
		Lines: []ledger.LineDraft{
			ledger.DebitLine(cash, ledger.RoleCashBank, amount, desc),
			ledger.CreditLine(deposit, ledger.RoleCustomerDeposit, amount, desc),
		},
	}, nil
}
