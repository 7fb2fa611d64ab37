package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Depreciation is one monthly depreciation run of a fixed asset. The amount
// is computed by the asset; the rule only books it.
type Depreciation struct {
	RunID     uuid.UUID
	AssetID   uuid.UUID
	AssetName string
	Period    string
	Date      time.Time
	Amount    decimal.Decimal
}

func (e Depreciation) Requirements() []ledger.RoleKey {
	q := qualifier(e.AssetID)
	return []ledger.RoleKey{
		ledger.NeedFor(ledger.RoleDepreciationExpense, q),
		ledger.NeedFor(ledger.RoleAccumulatedDepreciation, q),
	}
}

// Draft posts Dr Depreciation expense / Cr Accumulated depreciation
func (e Depreciation) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	amount := round(e.Amount)
	if amount.IsNegative() {
		return ledger.EntryDraft{}, shared.NewValidationError("INVALID_AMOUNT", "Depreciation cannot be negative")
	}
	if amount.IsZero() {
		return ledger.EntryDraft{}, ErrNothingToPost
	}
	q := qualifier(e.AssetID)
	expense, err := mustResolve(r, ledger.RoleDepreciationExpense, q)
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	accumulated, err := mustResolve(r, ledger.RoleAccumulatedDepreciation, q)
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "Depreciation " + e.AssetName + " " + e.Period
	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefDepreciation,
		ReferenceID:   e.RunID,
		Lines: []ledger.LineDraft{
			ledger.DebitLine(expense, ledger.RoleDepreciationExpense, amount, desc),
			ledger.CreditLine(accumulated, ledger.RoleAccumulatedDepreciation, amount, desc),
		},
	}, nil
}
