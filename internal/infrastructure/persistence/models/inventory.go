package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseModel is the persistence model for a warehouse
type WarehouseModel struct {
	BaseModel
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Code      string     `gorm:"type:varchar(50);not null;index"`
	Name      string     `gorm:"type:varchar(200);not null"`
	PICUserID *uuid.UUID `gorm:"column:pic_user_id;type:uuid"`
	IsActive  bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *inventory.Warehouse {
	return &inventory.Warehouse{
		BaseEntity: m.BaseModel.ToDomain(),
		CompanyID:  m.CompanyID,
		Code:       m.Code,
		Name:       m.Name,
		PICUserID:  m.PICUserID,
		IsActive:   m.IsActive,
	}
}

// WarehouseModelFromDomain creates a new persistence model from a domain Warehouse
func WarehouseModelFromDomain(w *inventory.Warehouse) *WarehouseModel {
	m := &WarehouseModel{
		CompanyID: w.CompanyID,
		Code:      w.Code,
		Name:      w.Name,
		PICUserID: w.PICUserID,
		IsActive:  w.IsActive,
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// StockLevelModel is the on-hand quantity of one product in one warehouse.
// It is only written through atomic increments.
type StockLevelModel struct {
	CompanyID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel
func (m *StockLevelModel) ToDomain() inventory.StockLevel {
	return inventory.StockLevel{
		CompanyID:   m.CompanyID,
		WarehouseID: m.WarehouseID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		UpdatedAt:   m.UpdatedAt,
	}
}

// StockMovementModel is an immutable stock movement record
type StockMovementModel struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type          inventory.MovementType `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	ReferenceType string                 `gorm:"type:varchar(30);not null;index:idx_stock_movement_ref,priority:1"`
	ReferenceID   uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movement_ref,priority:2"`
	Note          string                 `gorm:"type:varchar(500)"`
	CreatedBy     *uuid.UUID             `gorm:"type:uuid"`
	CreatedAt     time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() inventory.StockMovement {
	return inventory.StockMovement{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(s inventory.StockMovement) StockMovementModel {
	return StockMovementModel{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		WarehouseID:   s.WarehouseID,
		ProductID:     s.ProductID,
		Type:          s.Type,
		Quantity:      s.Quantity,
		ReferenceType: s.ReferenceType,
		ReferenceID:   s.ReferenceID,
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
}

// StockTransferModel is the persistence model for a stock transfer
type StockTransferModel struct {
	CompanyAggregateModel
	TransferNumber  string                   `gorm:"type:varchar(50);not null;index"`
	FromWarehouseID uuid.UUID                `gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	Status          inventory.TransferStatus `gorm:"type:varchar(20);not null;index"`
	Items           []TransferItemModel      `gorm:"foreignKey:TransferID;references:ID"`
	Notes           string                   `gorm:"type:text"`
	RequestedBy     uuid.UUID                `gorm:"type:uuid;not null"`
	SubmittedAt     *time.Time
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectReason    string `gorm:"type:varchar(500)"`
	CompletedAt     *time.Time
}

// TableName returns the table name for GORM
func (StockTransferModel) TableName() string {
	return "stock_transfers"
}

// ToDomain converts the persistence model to a domain StockTransfer
func (m *StockTransferModel) ToDomain() *inventory.StockTransfer {
	t := &inventory.StockTransfer{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		TransferNumber:       m.TransferNumber,
		FromWarehouseID:      m.FromWarehouseID,
		ToWarehouseID:        m.ToWarehouseID,
		Status:               m.Status,
		Items:                make([]inventory.TransferItem, len(m.Items)),
		Notes:                m.Notes,
		RequestedBy:          m.RequestedBy,
		SubmittedAt:          m.SubmittedAt,
		DecidedBy:            m.DecidedBy,
		DecidedAt:            m.DecidedAt,
		RejectReason:         m.RejectReason,
		CompletedAt:          m.CompletedAt,
	}
	for i, it := range m.Items {
		t.Items[i] = inventory.TransferItem{
			ID:          it.ID,
			TransferID:  it.TransferID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		}
	}
	return t
}

// FromDomain populates the persistence model from a domain StockTransfer
func (m *StockTransferModel) FromDomain(t *inventory.StockTransfer) {
	m.FromDomainCompanyAggregateRoot(t.CompanyAggregateRoot)
	m.TransferNumber = t.TransferNumber
	m.FromWarehouseID = t.FromWarehouseID
	m.ToWarehouseID = t.ToWarehouseID
	m.Status = t.Status
	m.Notes = t.Notes
	m.RequestedBy = t.RequestedBy
	m.SubmittedAt = t.SubmittedAt
	m.DecidedBy = t.DecidedBy
	m.DecidedAt = t.DecidedAt
	m.RejectReason = t.RejectReason
	m.CompletedAt = t.CompletedAt
	m.Items = make([]TransferItemModel, len(t.Items))
	for i, it := range t.Items {
		m.Items[i] = TransferItemModel{
			ID:          it.ID,
			CompanyID:   t.CompanyID,
			TransferID:  t.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		}
	}
}

// StockTransferModelFromDomain creates a new persistence model from a domain StockTransfer
func StockTransferModelFromDomain(t *inventory.StockTransfer) *StockTransferModel {
	m := &StockTransferModel{}
	m.FromDomain(t)
	return m
}

// TransferItemModel is one product moved by a transfer
type TransferItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransferID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TransferItemModel) TableName() string {
	return "stock_transfer_items"
}

// StockOpnameModel is the persistence model for a physical count
type StockOpnameModel struct {
	CompanyAggregateModel
	OpnameNumber string                 `gorm:"type:varchar(50);not null;index"`
	WarehouseID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	OpnameDate   time.Time              `gorm:"not null"`
	Status       inventory.OpnameStatus `gorm:"type:varchar(20);not null;index"`
	Items        []OpnameItemModel      `gorm:"foreignKey:OpnameID;references:ID"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CompletedBy  *uuid.UUID `gorm:"type:uuid"`
	Notes        string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockOpnameModel) TableName() string {
	return "stock_opnames"
}

// ToDomain converts the persistence model to a domain StockOpname
func (m *StockOpnameModel) ToDomain() *inventory.StockOpname {
	o := &inventory.StockOpname{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		OpnameNumber:         m.OpnameNumber,
		WarehouseID:          m.WarehouseID,
		OpnameDate:           m.OpnameDate,
		Status:               m.Status,
		Items:                make([]inventory.OpnameItem, len(m.Items)),
		StartedAt:            m.StartedAt,
		CompletedAt:          m.CompletedAt,
		CompletedBy:          m.CompletedBy,
		Notes:                m.Notes,
	}
	for i, it := range m.Items {
		o.Items[i] = inventory.OpnameItem{
			ID:             it.ID,
			OpnameID:       it.OpnameID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			SystemQuantity: it.SystemQuantity,
			ActualQuantity: it.ActualQuantity,
			UnitCost:       it.UnitCost,
			Counted:        it.Counted,
			Remark:         it.Remark,
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain StockOpname
func (m *StockOpnameModel) FromDomain(o *inventory.StockOpname) {
	m.FromDomainCompanyAggregateRoot(o.CompanyAggregateRoot)
	m.OpnameNumber = o.OpnameNumber
	m.WarehouseID = o.WarehouseID
	m.OpnameDate = o.OpnameDate
	m.Status = o.Status
	m.StartedAt = o.StartedAt
	m.CompletedAt = o.CompletedAt
	m.CompletedBy = o.CompletedBy
	m.Notes = o.Notes
	m.Items = make([]OpnameItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OpnameItemModel{
			ID:             it.ID,
			CompanyID:      o.CompanyID,
			OpnameID:       o.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			SystemQuantity: it.SystemQuantity,
			ActualQuantity: it.ActualQuantity,
			UnitCost:       it.UnitCost,
			Counted:        it.Counted,
			Remark:         it.Remark,
		}
	}
}

// StockOpnameModelFromDomain creates a new persistence model from a domain StockOpname
func StockOpnameModelFromDomain(o *inventory.StockOpname) *StockOpnameModel {
	m := &StockOpnameModel{}
	m.FromDomain(o)
	return m
}

// OpnameItemModel is one counted product
type OpnameItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpnameID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	SystemQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActualQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Counted        bool            `gorm:"not null"`
	Remark         string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OpnameItemModel) TableName() string {
	return "stock_opname_items"
}
