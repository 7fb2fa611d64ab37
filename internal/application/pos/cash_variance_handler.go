package pos

import (
	"context"
	"fmt"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"go.uber.org/zap"
)

// CashVarianceHandler raises an alert log line for every session that
// closes outside tolerance.
type CashVarianceHandler struct {
	logger *zap.Logger
}

// NewCashVarianceHandler creates a new CashVarianceHandler
func NewCashVarianceHandler(logger *zap.Logger) *CashVarianceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashVarianceHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CashVarianceHandler) EventTypes() []string {
	return []string{pos.EventTypeCashSessionClosed}
}

// Handle logs major variances at warn level
func (h *CashVarianceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closed, ok := event.(*pos.CashSessionClosedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", pos.EventTypeCashSessionClosed, event.EventType())
	}
	fields := []zap.Field{
		zap.String("company_id", closed.CompanyID().String()),
		zap.String("session_id", closed.AggregateID().String()),
		zap.String("cashier_id", closed.CashierID.String()),
		zap.String("expected", closed.ExpectedBalance.StringFixed(2)),
		zap.String("closing", closed.ClosingBalance.StringFixed(2)),
		zap.String("difference", closed.Difference.StringFixed(2)),
	}
	switch closed.Variance {
	case pos.VarianceMajor:
		h.logger.Warn("cash session closed with major variance", fields...)
	case pos.VarianceMinor:
		h.logger.Info("cash session closed with minor variance", fields...)
	}
	return nil
}
