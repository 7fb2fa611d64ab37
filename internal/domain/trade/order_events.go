package trade

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeOrder = "Order"

	EventTypeOrderConfirmed      = "OrderConfirmed"
	EventTypeOrderInvoiced       = "OrderInvoiced"
	EventTypeOrderPaid           = "OrderPaid"
	EventTypeOrderCancelled      = "OrderCancelled"
	EventTypeOrderReopened       = "OrderReopened"
	EventTypeDownPaymentRecorded = "DownPaymentRecorded"
)

// OrderConfirmedEvent is raised when an order is confirmed
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	Type        OrderType       `json:"type"`
	PartyID     uuid.UUID       `json:"party_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		Type:            o.Type,
		PartyID:         o.PartyID,
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
	}
}

// OrderInvoicedEvent is raised when the invoice or bill is generated
type OrderInvoicedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string          `json:"order_number"`
	Type         OrderType       `json:"type"`
	DocumentID   uuid.UUID       `json:"document_id"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
}

func NewOrderInvoicedEvent(o *Order) *OrderInvoicedEvent {
	var docID uuid.UUID
	if o.DocumentID != nil {
		docID = *o.DocumentID
	}
	return &OrderInvoicedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderInvoiced, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		Type:            o.Type,
		DocumentID:      docID,
		InvoiceTotal:    o.InvoiceTotal(),
	}
}

// OrderPaidEvent is raised when the order's document is settled
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
	}
}

// OrderCancelledEvent is raised when an order is voided
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
	}
}

// OrderReopenedEvent is raised when the order's document is cancelled
type OrderReopenedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	DocumentID  uuid.UUID `json:"document_id"`
}

func NewOrderReopenedEvent(o *Order, documentID uuid.UUID) *OrderReopenedEvent {
	return &OrderReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReopened, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		DocumentID:      documentID,
	}
}

// DownPaymentRecordedEvent is raised for each customer deposit
type DownPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderNumber     string          `json:"order_number"`
	Amount          decimal.Decimal `json:"amount"`
	DownPaymentPaid decimal.Decimal `json:"down_payment_paid"`
}

func NewDownPaymentRecordedEvent(o *Order, amount decimal.Decimal) *DownPaymentRecordedEvent {
	return &DownPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDownPaymentRecorded, AggregateTypeOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		DownPaymentPaid: o.DownPaymentPaid,
	}
}
