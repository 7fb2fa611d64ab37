package trade

import (
	"context"
	"fmt"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/trade"
	"go.uber.org/zap"
)

// DocumentPaidHandler closes the originating order once its invoice or bill
// is fully paid.
type DocumentPaidHandler struct {
	scope  writeset.TransactionScope
	logger *zap.Logger
}

// NewDocumentPaidHandler creates a new handler for document paid events
func NewDocumentPaidHandler(scope writeset.TransactionScope, logger *zap.Logger) *DocumentPaidHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentPaidHandler{scope: scope, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DocumentPaidHandler) EventTypes() []string {
	return []string{finance.EventTypeDocumentPaid}
}

// Handle marks the linked order paid. Redelivered events are no-ops.
func (h *DocumentPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*finance.DocumentPaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", finance.EventTypeDocumentPaid),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s", finance.EventTypeDocumentPaid, event.EventType())
	}
	if paid.OrderID == nil {
		return nil
	}

	return h.scope.Execute(ctx, func(repos writeset.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, paid.CompanyID(), *paid.OrderID)
		if err != nil {
			return err
		}
		if order.Status != trade.OrderStatusInvoiced {
			h.logger.Debug("order not awaiting payment, skipping",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", order.Status.String()),
			)
			return nil
		}
		if err := order.MarkPaid(); err != nil {
			return err
		}
		if err := writeset.Step("update order", repos.Orders().SaveWithLock(ctx, order)); err != nil {
			return err
		}
		h.logger.Info("order paid",
			zap.String("order_number", order.OrderNumber),
			zap.String("document_number", paid.Number),
		)
		return writeset.RecordEvents(ctx, repos, order)
	})
}
