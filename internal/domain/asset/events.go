package asset

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeFixedAsset = "FixedAsset"

	EventTypeAssetRegistered  = "AssetRegistered"
	EventTypeAssetDepreciated = "AssetDepreciated"
	EventTypeAssetDisposed    = "AssetDisposed"
)

type AssetRegisteredEvent struct {
	shared.BaseDomainEvent
	Code          string          `json:"code"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Method        Method          `json:"method"`
}

func NewAssetRegisteredEvent(a *FixedAsset) *AssetRegisteredEvent {
	return &AssetRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetRegistered, AggregateTypeFixedAsset, a.ID, a.CompanyID),
		Code:            a.Code,
		PurchasePrice:   a.PurchasePrice,
		Method:          a.Method,
	}
}

// AssetDepreciatedEvent is raised per run
type AssetDepreciatedEvent struct {
	shared.BaseDomainEvent
	RunID        uuid.UUID       `json:"run_id"`
	Period       string          `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
	CurrentValue decimal.Decimal `json:"current_value"`
	Status       Status          `json:"status"`
}

func NewAssetDepreciatedEvent(a *FixedAsset, run *Depreciation) *AssetDepreciatedEvent {
	return &AssetDepreciatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetDepreciated, AggregateTypeFixedAsset, a.ID, a.CompanyID),
		RunID:           run.ID,
		Period:          run.Period,
		Amount:          run.Amount,
		CurrentValue:    a.CurrentValue,
		Status:          a.Status,
	}
}

type AssetDisposedEvent struct {
	shared.BaseDomainEvent
	Code         string          `json:"code"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

func NewAssetDisposedEvent(a *FixedAsset) *AssetDisposedEvent {
	return &AssetDisposedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetDisposed, AggregateTypeFixedAsset, a.ID, a.CompanyID),
		Code:            a.Code,
		CurrentValue:    a.CurrentValue,
	}
}
