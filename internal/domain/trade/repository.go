package trade

import (
	"context"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Type    *OrderType
	Status  *OrderStatus
	PartyID *uuid.UUID
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID within a company
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by number within a company
	FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*Order, error)

	// FindAll lists orders with filtering and the total count
	FindAll(ctx context.Context, companyID uuid.UUID, filter OrderFilter) ([]Order, int64, error)

	// Save creates the order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates header and items when the stored version still
	// matches, then bumps the version
	SaveWithLock(ctx context.Context, order *Order) error

	// ExistsByOrderNumber checks if an order number is taken within a company
	ExistsByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (bool, error)
}
