package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/shared"
)

// ApplyMovements moves stock levels by each movement with an atomic
// statement, then appends the movement records. A decrease below zero
// aborts the caller's write-set with INSUFFICIENT_STOCK.
func ApplyMovements(ctx context.Context, repos writeset.Repositories, movements ...inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	stock := repos.Stock()
	for _, m := range movements {
		var err error
		if m.Type.IsDecrease() {
			err = stock.Decrease(ctx, m.CompanyID, m.WarehouseID, m.ProductID, m.Quantity)
		} else {
			err = stock.Increase(ctx, m.CompanyID, m.WarehouseID, m.ProductID, m.Quantity)
		}
		if errors.Is(err, shared.ErrInsufficientStock) {
			return shared.NewValidationError(shared.ErrInsufficientStock.Code,
				fmt.Sprintf("Insufficient stock of product %s in warehouse %s for %s", m.ProductID, m.WarehouseID, m.Quantity))
		}
		if err != nil {
			return writeset.Step("update stock level", err)
		}
	}
	return writeset.Step("append stock movements", stock.AppendMovements(ctx, movements...))
}
