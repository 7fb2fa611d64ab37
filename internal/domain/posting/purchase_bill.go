package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseBill is the bill generated from a confirmed purchase order
type PurchaseBill struct {
	BillID     uuid.UUID
	BillNumber string
	Date       time.Time
	Total      decimal.Decimal
}

func (e PurchaseBill) Requirements() []ledger.RoleKey {
	return []ledger.RoleKey{ledger.Need(ledger.RoleInventory), ledger.Need(ledger.RolePayable)}
}

// Draft posts a single Dr Inventory / Cr Payable pair for the bill total
func (e PurchaseBill) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	total := round(e.Total)
	if total.IsNegative() {
		return ledger.EntryDraft{}, shared.NewValidationError("INVALID_AMOUNT", "Bill total cannot be negative")
	}
	if total.IsZero() {
		return ledger.EntryDraft{}, ErrNothingToPost
	}
	inventory, err := mustResolve(r, ledger.RoleInventory, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	payable, err := mustResolve(r, ledger.RolePayable, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "Purchase bill " + e.BillNumber
	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefPurchaseBill,
		ReferenceID:   e.BillID,
		Lines: []ledger.LineDraft{
			ledger.DebitLine(inventory, ledger.RoleInventory, total, desc),
			ledger.CreditLine(payable, ledger.RolePayable, total, desc),
		},
	}, nil
}
