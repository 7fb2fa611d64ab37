package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the depreciation method of an asset
type Method string

const (
	MethodStraightLine     Method = "straight_line"
	MethodDecliningBalance Method = "declining_balance"
)

func (m Method) IsValid() bool {
	return m == MethodStraightLine || m == MethodDecliningBalance
}

// Status is the fixed asset lifecycle
type Status string

const (
	StatusActive           Status = "active"
	StatusFullyDepreciated Status = "fully_depreciated"
	StatusDisposed         Status = "disposed"
)

// Event drives the asset machine
type Event string

const (
	EventExhaust Event = "exhaust"
	EventDispose Event = "dispose"
)

type assetTransition = shared.Transition[Status, Event]

// Machine is the fixed asset transition table
var Machine = shared.NewStateMachine("fixed asset",
	assetTransition{From: StatusActive, Event: EventExhaust, To: StatusFullyDepreciated},
	assetTransition{From: StatusActive, Event: EventDispose, To: StatusDisposed},
	assetTransition{From: StatusFullyDepreciated, Event: EventDispose, To: StatusDisposed},
)

// PeriodLayout formats a depreciation period
const PeriodLayout = "2006-01"

// ParsePeriod validates a YYYY-MM period
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, shared.NewValidationError("INVALID_PERIOD", "Period must be formatted YYYY-MM: "+period)
	}
	return t, nil
}

// PeriodEnd is the last day of the period, the date depreciation is booked on
func PeriodEnd(period time.Time) time.Time {
	return period.AddDate(0, 1, -1)
}

// Accounts are the three ledger accounts linked to an asset
type Accounts struct {
	AssetAccountID       uuid.UUID
	AccumulatedAccountID uuid.UUID
	ExpenseAccountID     uuid.UUID
}

// FixedAsset is a depreciable asset owned by a company
type FixedAsset struct {
	shared.CompanyAggregateRoot
	Code                    string
	Name                    string
	AcquisitionDate         time.Time
	PurchasePrice           decimal.Decimal
	SalvageValue            decimal.Decimal
	UsefulLifeMonths        int
	Method                  Method
	CurrentValue            decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	RunCount                int
	LastPeriod              string
	Status                  Status
	Accounts                Accounts
	DisposedAt              *time.Time
	DisposalNote            string
}

// NewFixedAsset registers an active asset at its purchase price
func NewFixedAsset(companyID uuid.UUID, code, name string, acquired time.Time, price, salvage decimal.Decimal, lifeMonths int, method Method, accounts Accounts) (*FixedAsset, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, shared.NewValidationError("INVALID_ASSET", "Asset code and name are required")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_METHOD", "Invalid depreciation method: "+string(method))
	}
	if lifeMonths <= 0 {
		return nil, shared.NewValidationError("INVALID_USEFUL_LIFE", "Useful life must be at least one month")
	}
	if !price.IsPositive() || salvage.IsNegative() || salvage.GreaterThan(price) {
		return nil, shared.NewValidationError("INVALID_VALUE", "Purchase price must be positive and salvage between zero and the price")
	}
	if !price.Equal(price.Round(ledger.AmountPlaces)) || !salvage.Equal(salvage.Round(ledger.AmountPlaces)) {
		return nil, shared.NewValidationError("INVALID_PRECISION", "Asset values allow at most 2 decimals")
	}
	if accounts.AccumulatedAccountID == uuid.Nil || accounts.ExpenseAccountID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACCOUNT", "Accumulated depreciation and expense accounts are required")
	}

	a := &FixedAsset{
		CompanyAggregateRoot:    shared.NewCompanyAggregateRoot(companyID),
		Code:                    code,
		Name:                    name,
		AcquisitionDate:         acquired,
		PurchasePrice:           price,
		SalvageValue:            salvage,
		UsefulLifeMonths:        lifeMonths,
		Method:                  method,
		CurrentValue:            price,
		AccumulatedDepreciation: decimal.Zero,
		Status:                  StatusActive,
		Accounts:                accounts,
	}
	if price.Equal(salvage) {
		a.Status = StatusFullyDepreciated
	}
	a.AddDomainEvent(NewAssetRegisteredEvent(a))
	return a, nil
}

// Qualifier is the role-mapping qualifier of the asset's linked accounts
func (a *FixedAsset) Qualifier() string {
	return a.ID.String()
}

// RoleLinks returns the role/account pairs to register as qualified mappings
func (a *FixedAsset) RoleLinks() map[ledger.AccountRole]uuid.UUID {
	links := map[ledger.AccountRole]uuid.UUID{
		ledger.RoleAccumulatedDepreciation: a.Accounts.AccumulatedAccountID,
		ledger.RoleDepreciationExpense:     a.Accounts.ExpenseAccountID,
	}
	if a.Accounts.AssetAccountID != uuid.Nil {
		links[ledger.RoleAsset] = a.Accounts.AssetAccountID
	}
	return links
}

// Depreciable is the value still above salvage
func (a *FixedAsset) Depreciable() decimal.Decimal {
	return a.CurrentValue.Sub(a.SalvageValue)
}

// NextAmount is the depreciation of the next run: straight-line
// (cost - salvage) / life, or declining-balance currentValue * 2 / life,
// capped at the remaining depreciable value. For straight-line the final
// month of useful life takes whatever rounding left behind; declining balance
// has no final sweep and only stops at salvage.
func (a *FixedAsset) NextAmount() decimal.Decimal {
	remaining := a.Depreciable()
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	life := decimal.NewFromInt(int64(a.UsefulLifeMonths))
	var amount decimal.Decimal
	switch a.Method {
	case MethodDecliningBalance:
		amount = a.CurrentValue.Mul(decimal.NewFromInt(2)).Div(life)
	default:
		amount = a.PurchasePrice.Sub(a.SalvageValue).Div(life)
	}
	amount = decimal.Max(amount.Round(ledger.AmountPlaces), decimal.Zero)
	lastMonth := a.Method == MethodStraightLine && a.RunCount+1 >= a.UsefulLifeMonths
	if lastMonth || amount.GreaterThan(remaining) {
		amount = remaining
	}
	return amount
}

// Depreciation is the record of one run
type Depreciation struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	AssetID         uuid.UUID
	Period          string
	Date            time.Time
	Amount          decimal.Decimal
	BookValueBefore decimal.Decimal
	BookValueAfter  decimal.Decimal
	AccumulatedTo   decimal.Decimal
	JournalEntryID  *uuid.UUID
	CreatedAt       time.Time
}

// Depreciate runs one period. Periods must advance; a run on a non-active
// asset or a repeated period is rejected.
func (a *FixedAsset) Depreciate(period string) (*Depreciation, error) {
	start, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusActive {
		return nil, shared.NewInvalidStateError("ASSET_NOT_ACTIVE",
			fmt.Sprintf("Asset %s is %s and cannot be depreciated", a.Code, a.Status))
	}
	if a.LastPeriod != "" && period <= a.LastPeriod {
		return nil, shared.NewConflictError("DUPLICATE_PERIOD",
			fmt.Sprintf("Asset %s already depreciated through %s", a.Code, a.LastPeriod))
	}
	if !a.AcquisitionDate.IsZero() && PeriodEnd(start).Before(truncateMonth(a.AcquisitionDate)) {
		return nil, shared.NewValidationError("INVALID_PERIOD", "Period precedes the acquisition date")
	}

	amount := a.NextAmount()
	if !amount.IsPositive() {
		return nil, shared.NewInvalidStateError("NOTHING_TO_DEPRECIATE", "Asset "+a.Code+" has no depreciable value left")
	}

	before := a.CurrentValue
	a.CurrentValue = decimal.Max(a.CurrentValue.Sub(amount), a.SalvageValue)
	a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(amount)
	a.RunCount++
	a.LastPeriod = period
	if a.CurrentValue.LessThanOrEqual(a.SalvageValue) {
		next, err := Machine.Transition(a.Status, EventExhaust)
		if err != nil {
			return nil, err
		}
		a.Status = next
	}
	a.Touch()

	run := &Depreciation{
		ID:              uuid.New(),
		CompanyID:       a.CompanyID,
		AssetID:         a.ID,
		Period:          period,
		Date:            PeriodEnd(start),
		Amount:          amount,
		BookValueBefore: before,
		BookValueAfter:  a.CurrentValue,
		AccumulatedTo:   a.AccumulatedDepreciation,
		CreatedAt:       time.Now(),
	}
	a.AddDomainEvent(NewAssetDepreciatedEvent(a, run))
	return run, nil
}

// PostingEvent is the ledger event of a run
func (a *FixedAsset) PostingEvent(run *Depreciation) posting.Depreciation {
	return posting.Depreciation{
		RunID:     run.ID,
		AssetID:   a.ID,
		AssetName: a.Name,
		Period:    run.Period,
		Date:      run.Date,
		Amount:    run.Amount,
	}
}

// Dispose retires the asset
func (a *FixedAsset) Dispose(date time.Time, note string) error {
	next, err := Machine.Transition(a.Status, EventDispose)
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = time.Now()
	}
	a.Status = next
	a.DisposedAt = &date
	a.DisposalNote = strings.TrimSpace(note)
	a.Touch()
	a.AddDomainEvent(NewAssetDisposedEvent(a))
	return nil
}

func truncateMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
