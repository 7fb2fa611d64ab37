package inventory

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseRepository persists warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Warehouse, error)
	FindAll(ctx context.Context, companyID uuid.UUID) ([]Warehouse, error)
	Save(ctx context.Context, w *Warehouse) error
}

// StockRepository owns stock levels and the movement log. Levels change
// only through the atomic methods below.
type StockRepository interface {
	// AppendMovements inserts immutable movement records
	AppendMovements(ctx context.Context, movements ...StockMovement) error
	// Decrease subtracts qty with a guarded UPDATE and fails with
	// shared.ErrInsufficientStock when the level would go negative
	Decrease(ctx context.Context, companyID, warehouseID, productID uuid.UUID, qty decimal.Decimal) error
	// Increase adds qty, creating the level row when missing
	Increase(ctx context.Context, companyID, warehouseID, productID uuid.UUID, qty decimal.Decimal) error
	GetLevel(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (decimal.Decimal, error)
	ListLevels(ctx context.Context, companyID, warehouseID uuid.UUID) ([]StockLevel, error)
	ListMovements(ctx context.Context, companyID uuid.UUID, refType string, refID uuid.UUID) ([]StockMovement, error)
}

// TransferFilter narrows transfer listings
type TransferFilter struct {
	shared.Filter
	Status      *TransferStatus
	WarehouseID *uuid.UUID
}

// TransferRepository persists stock transfers
type TransferRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*StockTransfer, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter TransferFilter) ([]StockTransfer, int64, error)
	Save(ctx context.Context, t *StockTransfer) error
	SaveWithLock(ctx context.Context, t *StockTransfer) error
	NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error)
}

// OpnameRepository persists stock counts
type OpnameRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*StockOpname, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]StockOpname, int64, error)
	Save(ctx context.Context, o *StockOpname) error
	SaveWithLock(ctx context.Context, o *StockOpname) error
	NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error)
}
