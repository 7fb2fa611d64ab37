package posting

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CountedLine is one product of a stock count
type CountedLine struct {
	ProductID  uuid.UUID
	SystemQty  decimal.Decimal
	CountedQty decimal.Decimal
	UnitCost   decimal.Decimal
}

// Difference returns counted - system valued at unit cost
func (l CountedLine) Difference() decimal.Decimal {
	return l.CountedQty.Sub(l.SystemQty).Mul(l.UnitCost)
}

// OpnameAdjustment books the net value difference of a completed stock count
type OpnameAdjustment struct {
	OpnameID     uuid.UUID
	OpnameNumber string
	Date         time.Time
	Lines        []CountedLine
}

// NetDifference is the rounded surplus (positive) or shortage (negative)
func (e OpnameAdjustment) NetDifference() decimal.Decimal {
	net := decimal.Zero
	for _, l := range e.Lines {
		net = net.Add(l.Difference())
	}
	return round(net)
}

func (e OpnameAdjustment) Requirements() []ledger.RoleKey {
	if e.NetDifference().IsZero() {
		return nil
	}
	return []ledger.RoleKey{ledger.Need(ledger.RoleInventory), ledger.Need(ledger.RoleInventoryAdjustment)}
}

// Draft posts Dr Inventory / Cr Adjustment for a surplus and the reverse for a shortage
func (e OpnameAdjustment) Draft(r ledger.AccountResolver, _ ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	net := e.NetDifference()
	if net.IsZero() {
		return ledger.EntryDraft{}, ErrNothingToPost
	}
	inventory, err := mustResolve(r, ledger.RoleInventory, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	adjustment, err := mustResolve(r, ledger.RoleInventoryAdjustment, "")
	if err != nil {
		return ledger.EntryDraft{}, err
	}

	desc := "Stock opname " + e.OpnameNumber
	amount := net.Abs()
	lines := []ledger.LineDraft{
		ledger.DebitLine(inventory, ledger.RoleInventory, amount, desc+" surplus"),
		ledger.CreditLine(adjustment, ledger.RoleInventoryAdjustment, amount, desc+" surplus"),
	}
	if net.IsNegative() {
		lines = []ledger.LineDraft{
			ledger.DebitLine(adjustment, ledger.RoleInventoryAdjustment, amount, desc+" shortage"),
			ledger.CreditLine(inventory, ledger.RoleInventory, amount, desc+" shortage"),
		}
	}
	return ledger.EntryDraft{
		Date:          e.Date,
		Description:   desc,
		ReferenceType: ledger.RefStockOpname,
		ReferenceID:   e.OpnameID,
		Lines:         lines,
	}, nil
}
