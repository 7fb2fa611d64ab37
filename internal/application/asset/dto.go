package asset

import (
	"time"

	"github.com/erp/accounting/internal/domain/asset"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterAssetRequest represents a request to register a fixed asset
type RegisterAssetRequest struct {
	Code                 string          `json:"code" binding:"required,min=1,max=50"`
	Name                 string          `json:"name" binding:"required,min=1,max=200"`
	AcquisitionDate      time.Time       `json:"acquisition_date" binding:"required"`
	PurchasePrice        decimal.Decimal `json:"purchase_price" binding:"required,gt=0"`
	SalvageValue         decimal.Decimal `json:"salvage_value"`
	UsefulLifeMonths     int             `json:"useful_life_months" binding:"required,min=1,max=1200"`
	Method               string          `json:"depreciation_method" binding:"required,oneof=straight_line declining_balance"`
	AssetAccountID       *uuid.UUID      `json:"asset_account_id"`
	AccumulatedAccountID uuid.UUID       `json:"accumulated_account_id" binding:"required"`
	ExpenseAccountID     uuid.UUID       `json:"expense_account_id" binding:"required"`
}

// DisposeAssetRequest retires an asset
type DisposeAssetRequest struct {
	Date *time.Time `json:"date"`
	Note string     `json:"note" binding:"max=500"`
}

// DepreciationRunRequest runs one period for one asset
type DepreciationRunRequest struct {
	Period string `json:"period" binding:"required,len=7"`
}

// AssetListFilter represents filter options for asset listings
type AssetListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active fully_depreciated disposed"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// AssetResponse represents a fixed asset
type AssetResponse struct {
	ID                      uuid.UUID       `json:"id"`
	Code                    string          `json:"code"`
	Name                    string          `json:"name"`
	AcquisitionDate         time.Time       `json:"acquisition_date"`
	PurchasePrice           decimal.Decimal `json:"purchase_price"`
	SalvageValue            decimal.Decimal `json:"salvage_value"`
	UsefulLifeMonths        int             `json:"useful_life_months"`
	Method                  string          `json:"depreciation_method"`
	CurrentValue            decimal.Decimal `json:"current_value"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	RunCount                int             `json:"run_count"`
	LastPeriod              string          `json:"last_period,omitempty"`
	Status                  string          `json:"status"`
	AssetAccountID          *uuid.UUID      `json:"asset_account_id,omitempty"`
	AccumulatedAccountID    uuid.UUID       `json:"accumulated_account_id"`
	ExpenseAccountID        uuid.UUID       `json:"expense_account_id"`
	DisposedAt              *time.Time      `json:"disposed_at,omitempty"`
	DisposalNote            string          `json:"disposal_note,omitempty"`
	Version                 int             `json:"version"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ToAssetResponse converts a domain FixedAsset to AssetResponse
func ToAssetResponse(a *asset.FixedAsset) AssetResponse {
	resp := AssetResponse{
		ID:                      a.ID,
		Code:                    a.Code,
		Name:                    a.Name,
		AcquisitionDate:         a.AcquisitionDate,
		PurchasePrice:           a.PurchasePrice,
		SalvageValue:            a.SalvageValue,
		UsefulLifeMonths:        a.UsefulLifeMonths,
		Method:                  string(a.Method),
		CurrentValue:            a.CurrentValue,
		AccumulatedDepreciation: a.AccumulatedDepreciation,
		RunCount:                a.RunCount,
		LastPeriod:              a.LastPeriod,
		Status:                  string(a.Status),
		AccumulatedAccountID:    a.Accounts.AccumulatedAccountID,
		ExpenseAccountID:        a.Accounts.ExpenseAccountID,
		DisposedAt:              a.DisposedAt,
		DisposalNote:            a.DisposalNote,
		Version:                 a.Version,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
	if a.Accounts.AssetAccountID != uuid.Nil {
		id := a.Accounts.AssetAccountID
		resp.AssetAccountID = &id
	}
	return resp
}

// DepreciationResponse represents one depreciation run
type DepreciationResponse struct {
	ID              uuid.UUID       `json:"id"`
	AssetID         uuid.UUID       `json:"asset_id"`
	Period          string          `json:"period"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	BookValueBefore decimal.Decimal `json:"book_value_before"`
	BookValueAfter  decimal.Decimal `json:"book_value_after"`
	AccumulatedTo   decimal.Decimal `json:"accumulated_to"`
	JournalEntryID  *uuid.UUID      `json:"journal_entry_id,omitempty"`
	EntryNumber     string          `json:"entry_number,omitempty"`
	AssetStatus     string          `json:"asset_status,omitempty"`
}

// ToDepreciationResponse converts a run to its response
func ToDepreciationResponse(d *asset.Depreciation) DepreciationResponse {
	return DepreciationResponse{
		ID:              d.ID,
		AssetID:         d.AssetID,
		Period:          d.Period,
		Date:            d.Date,
		Amount:          d.Amount,
		BookValueBefore: d.BookValueBefore,
		BookValueAfter:  d.BookValueAfter,
		AccumulatedTo:   d.AccumulatedTo,
		JournalEntryID:  d.JournalEntryID,
	}
}

// RunSummary reports a depreciation sweep over every company
type RunSummary struct {
	Period  string `json:"period"`
	Scanned int    `json:"scanned"`
	Posted  int    `json:"posted"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}
