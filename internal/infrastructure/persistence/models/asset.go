package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/asset"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedAssetModel is the persistence model for a fixed asset
type FixedAssetModel struct {
	CompanyAggregateModel
	Code                    string          `gorm:"type:varchar(50);not null;index"`
	Name                    string          `gorm:"type:varchar(200);not null"`
	AcquisitionDate         time.Time       `gorm:"not null"`
	PurchasePrice           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SalvageValue            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UsefulLifeMonths        int             `gorm:"not null"`
	Method                  asset.Method    `gorm:"type:varchar(30);not null"`
	CurrentValue            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AccumulatedDepreciation decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RunCount                int             `gorm:"not null;default:0"`
	LastPeriod              string          `gorm:"type:varchar(7)"`
	Status                  asset.Status    `gorm:"type:varchar(30);not null;index"`
	AssetAccountID          *uuid.UUID      `gorm:"type:uuid"`
	AccumulatedAccountID    uuid.UUID       `gorm:"type:uuid;not null"`
	ExpenseAccountID        uuid.UUID       `gorm:"type:uuid;not null"`
	DisposedAt              *time.Time
	DisposalNote            string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FixedAssetModel) TableName() string {
	return "fixed_assets"
}

// ToDomain converts the persistence model to a domain FixedAsset
func (m *FixedAssetModel) ToDomain() *asset.FixedAsset {
	a := &asset.FixedAsset{
		CompanyAggregateRoot:    m.ToDomainCompanyAggregateRoot(),
		Code:                    m.Code,
		Name:                    m.Name,
		AcquisitionDate:         m.AcquisitionDate,
		PurchasePrice:           m.PurchasePrice,
		SalvageValue:            m.SalvageValue,
		UsefulLifeMonths:        m.UsefulLifeMonths,
		Method:                  m.Method,
		CurrentValue:            m.CurrentValue,
		AccumulatedDepreciation: m.AccumulatedDepreciation,
		RunCount:                m.RunCount,
		LastPeriod:              m.LastPeriod,
		Status:                  m.Status,
		Accounts: asset.Accounts{
			AccumulatedAccountID: m.AccumulatedAccountID,
			ExpenseAccountID:     m.ExpenseAccountID,
		},
		DisposedAt:   m.DisposedAt,
		DisposalNote: m.DisposalNote,
	}
	if m.AssetAccountID != nil {
		a.Accounts.AssetAccountID = *m.AssetAccountID
	}
	return a
}

// FromDomain populates the persistence model from a domain FixedAsset
func (m *FixedAssetModel) FromDomain(a *asset.FixedAsset) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.AcquisitionDate = a.AcquisitionDate
	m.PurchasePrice = a.PurchasePrice
	m.SalvageValue = a.SalvageValue
	m.UsefulLifeMonths = a.UsefulLifeMonths
	m.Method = a.Method
	m.CurrentValue = a.CurrentValue
	m.AccumulatedDepreciation = a.AccumulatedDepreciation
	m.RunCount = a.RunCount
	m.LastPeriod = a.LastPeriod
	m.Status = a.Status
	m.AssetAccountID = nil
	if a.Accounts.AssetAccountID != uuid.Nil {
		id := a.Accounts.AssetAccountID
		m.AssetAccountID = &id
	}
	m.AccumulatedAccountID = a.Accounts.AccumulatedAccountID
	m.ExpenseAccountID = a.Accounts.ExpenseAccountID
	m.DisposedAt = a.DisposedAt
	m.DisposalNote = a.DisposalNote
}

// FixedAssetModelFromDomain creates a new persistence model from a domain FixedAsset
func FixedAssetModelFromDomain(a *asset.FixedAsset) *FixedAssetModel {
	m := &FixedAssetModel{}
	m.FromDomain(a)
	return m
}

// DepreciationModel is one booked depreciation period; (asset_id, period) is unique
type DepreciationModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AssetID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_depreciation_asset_period,priority:1"`
	Period          string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_depreciation_asset_period,priority:2"`
	Date            time.Time       `gorm:"not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BookValueBefore decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BookValueAfter  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AccumulatedTo   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	JournalEntryID  *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DepreciationModel) TableName() string {
	return "asset_depreciations"
}

// ToDomain converts the persistence model to a domain Depreciation
func (m *DepreciationModel) ToDomain() asset.Depreciation {
	return asset.Depreciation{
		ID:              m.ID,
		CompanyID:       m.CompanyID,
		AssetID:         m.AssetID,
		Period:          m.Period,
		Date:            m.Date,
		Amount:          m.Amount,
		BookValueBefore: m.BookValueBefore,
		BookValueAfter:  m.BookValueAfter,
		AccumulatedTo:   m.AccumulatedTo,
		JournalEntryID:  m.JournalEntryID,
		CreatedAt:       m.CreatedAt,
	}
}

// DepreciationModelFromDomain creates a new persistence model from a domain Depreciation
func DepreciationModelFromDomain(d *asset.Depreciation) *DepreciationModel {
	return &DepreciationModel{
		ID:              d.ID,
		CompanyID:       d.CompanyID,
		AssetID:         d.AssetID,
		Period:          d.Period,
		Date:            d.Date,
		Amount:          d.Amount,
		BookValueBefore: d.BookValueBefore,
		BookValueAfter:  d.BookValueAfter,
		AccumulatedTo:   d.AccumulatedTo,
		JournalEntryID:  d.JournalEntryID,
		CreatedAt:       d.CreatedAt,
	}
}
