package trade

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/trade"
	"github.com/google/uuid"
)

// OrderService handles order lifecycle up to invoicing
type OrderService struct {
	scope writeset.TransactionScope
}

// NewOrderService creates a new OrderService
func NewOrderService(scope writeset.TransactionScope) *OrderService {
	return &OrderService{scope: scope}
}

// Create creates a draft order with its items, optionally confirming it
func (s *OrderService) Create(ctx context.Context, companyID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := trade.NewOrder(companyID, trade.OrderType(req.Type), req.OrderNumber, req.PartyID, req.PartyName, orderDate)
	if err != nil {
		return nil, err
	}
	order.PaymentTermDays = req.PaymentTermDays
	order.Notes = req.Notes
	for _, item := range req.Items {
		if _, err := order.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
			item.DiscountPercent, item.TaxPercent, item.UnitCost); err != nil {
			return nil, err
		}
	}
	if req.Confirm {
		if err := order.Confirm(); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		exists, err := repos.Orders().ExistsByOrderNumber(ctx, companyID, order.OrderNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("ORDER_NUMBER_EXISTS", "Order number "+order.OrderNumber+" already exists")
		}
		if err := writeset.Step("save order", repos.Orders().Save(ctx, order)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Confirm locks a draft order's lines
func (s *OrderService) Confirm(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, companyID, orderID, func(o *trade.Order) error { return o.Confirm() })
}

// Cancel voids an order that has not been invoiced
func (s *OrderService) Cancel(ctx context.Context, companyID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, companyID, orderID, func(o *trade.Order) error { return o.Cancel(req.Reason) })
}

func (s *OrderService) mutate(ctx context.Context, companyID, orderID uuid.UUID, fn func(*trade.Order) error) (*OrderResponse, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		if err := writeset.Step("update order", repos.Orders().SaveWithLock(ctx, order)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID returns an order with its items
func (s *OrderService) GetByID(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.scope.Repos().Orders().FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns orders matching the filter
func (s *OrderService) List(ctx context.Context, companyID uuid.UUID, f OrderListFilter) (shared.Paginated[OrderResponse], error) {
	filter := trade.OrderFilter{Filter: shared.DefaultFilter(), PartyID: f.PartyID}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = f.Search
	if f.Type != "" {
		t := trade.OrderType(f.Type)
		filter.Type = &t
	}
	if f.Status != "" {
		st := trade.OrderStatus(f.Status)
		filter.Status = &st
	}

	orders, total, err := s.scope.Repos().Orders().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
