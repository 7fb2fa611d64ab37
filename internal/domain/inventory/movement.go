package inventory

import (
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies stock movements
type MovementType string

const (
	MovementSale          MovementType = "sale"
	MovementTransferOut   MovementType = "transfer_out"
	MovementTransferIn    MovementType = "transfer_in"
	MovementAdjustmentIn  MovementType = "adjustment_in"
	MovementAdjustmentOut MovementType = "adjustment_out"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementSale, MovementTransferOut, MovementTransferIn, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// IsDecrease reports whether the movement takes stock out of its warehouse
func (t MovementType) IsDecrease() bool {
	return t == MovementSale || t == MovementTransferOut || t == MovementAdjustmentOut
}

// Movement reference types
const (
	RefPOSSale       = "pos_sale"
	RefStockTransfer = "stock_transfer"
	RefStockOpname   = "stock_opname"
)

// StockMovement is an immutable record of a quantity change. Quantity is
// always positive; the direction comes from the type.
type StockMovement struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	WarehouseID   uuid.UUID
	ProductID     uuid.UUID
	Type          MovementType
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   uuid.UUID
	Note          string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// NewStockMovement validates and builds a movement
func NewStockMovement(companyID, warehouseID, productID uuid.UUID, t MovementType, qty decimal.Decimal, refType string, refID uuid.UUID) (StockMovement, error) {
	if warehouseID == uuid.Nil || productID == uuid.Nil {
		return StockMovement{}, shared.NewValidationError("INVALID_MOVEMENT", "Warehouse and product are required")
	}
	if !t.IsValid() {
		return StockMovement{}, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Invalid movement type: "+string(t))
	}
	if !qty.IsPositive() {
		return StockMovement{}, shared.NewValidationError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	return StockMovement{
		ID:            uuid.New(),
		CompanyID:     companyID,
		WarehouseID:   warehouseID,
		ProductID:     productID,
		Type:          t,
		Quantity:      qty,
		ReferenceType: refType,
		ReferenceID:   refID,
		CreatedAt:     time.Now(),
	}, nil
}

// SignedQuantity is the effect on the stock level
func (m StockMovement) SignedQuantity() decimal.Decimal {
	if m.Type.IsDecrease() {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockLevel is the current quantity of a product in a warehouse. It only
// changes through atomic increments driven by movements.
type StockLevel struct {
	CompanyID   uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// LevelKey identifies a stock level row
type LevelKey struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
}

// NetChanges folds movements into one signed delta per level
func NetChanges(movements []StockMovement) map[LevelKey]decimal.Decimal {
	out := make(map[LevelKey]decimal.Decimal)
	for _, m := range movements {
		k := LevelKey{WarehouseID: m.WarehouseID, ProductID: m.ProductID}
		out[k] = out[k].Add(m.SignedQuantity())
	}
	return out
}
