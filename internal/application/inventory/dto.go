package inventory

import (
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest represents a request to create a warehouse
type CreateWarehouseRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	PICUserID *uuid.UUID `json:"pic_user_id"`
}

// AssignPICRequest sets the person in charge of a warehouse
type AssignPICRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	PICUserID *uuid.UUID `json:"pic_user_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToWarehouseResponse converts a domain Warehouse to WarehouseResponse
func ToWarehouseResponse(w *inventory.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		PICUserID: w.PICUserID,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// StockLevelResponse is the quantity of one product in one warehouse
type StockLevelResponse struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockMovementResponse represents an immutable movement record
type StockMovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Note          string          `json:"note,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToStockMovementResponse converts a movement to its response
func ToStockMovementResponse(m inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// TransferItemInput is one product to move
type TransferItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"max=200"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,gt=0"`
}

// CreateTransferRequest submits a transfer between two warehouses
type CreateTransferRequest struct {
	FromWarehouseID uuid.UUID           `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID           `json:"to_warehouse_id" binding:"required"`
	RequestedBy     uuid.UUID           `json:"requested_by" binding:"required"`
	Date            *time.Time          `json:"date"`
	Notes           string              `json:"notes" binding:"max=2000"`
	Items           []TransferItemInput `json:"items" binding:"required,min=1,dive"`
}

// TransitionTransferRequest fires an event on a pending transfer
type TransitionTransferRequest struct {
	Event   string    `json:"event" binding:"required,oneof=approve reject"`
	ActorID uuid.UUID `json:"actor_id" binding:"required"`
	Reason  string    `json:"reason" binding:"max=500"`
}

// TransferListFilter represents filter options for transfer listings
type TransferListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=draft pending approved rejected completed"`
	WarehouseID *uuid.UUID `form:"-"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
}

// TransferItemResponse represents a transfer item
type TransferItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferResponse represents a stock transfer
type TransferResponse struct {
	ID              uuid.UUID              `json:"id"`
	TransferNumber  string                 `json:"transfer_number"`
	FromWarehouseID uuid.UUID              `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID              `json:"to_warehouse_id"`
	Status          string                 `json:"status"`
	Items           []TransferItemResponse `json:"items"`
	TotalQuantity   decimal.Decimal        `json:"total_quantity"`
	Notes           string                 `json:"notes,omitempty"`
	RequestedBy     uuid.UUID              `json:"requested_by"`
	SubmittedAt     *time.Time             `json:"submitted_at,omitempty"`
	DecidedBy       *uuid.UUID             `json:"decided_by,omitempty"`
	DecidedAt       *time.Time             `json:"decided_at,omitempty"`
	RejectReason    string                 `json:"reject_reason,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	Version         int                    `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ToTransferResponse converts a domain StockTransfer to TransferResponse
func ToTransferResponse(t *inventory.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = TransferItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		}
	}
	return TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          string(t.Status),
		Items:           items,
		TotalQuantity:   t.TotalQuantity(),
		Notes:           t.Notes,
		RequestedBy:     t.RequestedBy,
		SubmittedAt:     t.SubmittedAt,
		DecidedBy:       t.DecidedBy,
		DecidedAt:       t.DecidedAt,
		RejectReason:    t.RejectReason,
		CompletedAt:     t.CompletedAt,
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// CreateOpnameRequest starts a draft stock count
type CreateOpnameRequest struct {
	WarehouseID uuid.UUID  `json:"warehouse_id" binding:"required"`
	Date        *time.Time `json:"date"`
	Notes       string     `json:"notes" binding:"max=2000"`
}

// AddOpnameItemRequest adds a product to a draft count. The system quantity
// is snapshotted from the current stock level.
type AddOpnameItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"max=200"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// RecordCountRequest stores a counted quantity
type RecordCountRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"gte=0"`
	Remark    string          `json:"remark" binding:"max=500"`
}

// CompleteOpnameRequest closes a count
type CompleteOpnameRequest struct {
	ActorID uuid.UUID `json:"actor_id" binding:"required"`
}

// OpnameItemResponse represents one counted product
type OpnameItemResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	SystemQuantity  decimal.Decimal `json:"system_quantity"`
	ActualQuantity  decimal.Decimal `json:"actual_quantity"`
	Counted         bool            `json:"counted"`
	Difference      decimal.Decimal `json:"difference"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	DifferenceValue decimal.Decimal `json:"difference_value"`
	Remark          string          `json:"remark,omitempty"`
}

// OpnameResponse represents a stock count
type OpnameResponse struct {
	ID             uuid.UUID            `json:"id"`
	OpnameNumber   string               `json:"opname_number"`
	WarehouseID    uuid.UUID            `json:"warehouse_id"`
	OpnameDate     time.Time            `json:"opname_date"`
	Status         string               `json:"status"`
	Items          []OpnameItemResponse `json:"items"`
	StartedAt      *time.Time           `json:"started_at,omitempty"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
	CompletedBy    *uuid.UUID           `json:"completed_by,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID           `json:"journal_entry_id,omitempty"`
	Version        int                  `json:"version"`
}

// ToOpnameResponse converts a domain StockOpname to OpnameResponse
func ToOpnameResponse(o *inventory.StockOpname) OpnameResponse {
	items := make([]OpnameItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OpnameItemResponse{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			SystemQuantity:  item.SystemQuantity,
			ActualQuantity:  item.ActualQuantity,
			Counted:         item.Counted,
			Difference:      item.Difference(),
			UnitCost:        item.UnitCost,
			DifferenceValue: item.DifferenceValue(),
			Remark:          item.Remark,
		}
	}
	return OpnameResponse{
		ID:           o.ID,
		OpnameNumber: o.OpnameNumber,
		WarehouseID:  o.WarehouseID,
		OpnameDate:   o.OpnameDate,
		Status:       string(o.Status),
		Items:        items,
		StartedAt:    o.StartedAt,
		CompletedAt:  o.CompletedAt,
		CompletedBy:  o.CompletedBy,
		Notes:        o.Notes,
		Version:      o.Version,
	}
}
