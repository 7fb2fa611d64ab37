package finance

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeDocument = "Document"
	AggregateTypePayment  = "Payment"

	EventTypeDocumentIssued         = "DocumentIssued"
	EventTypeDocumentPaymentApplied = "DocumentPaymentApplied"
	EventTypeDocumentPaid           = "DocumentPaid"
	EventTypeDocumentOverdue        = "DocumentOverdue"
	EventTypeDocumentCancelled      = "DocumentCancelled"
	EventTypePaymentRecorded        = "PaymentRecorded"
)

// DocumentIssuedEvent is raised when an invoice or bill is sent
type DocumentIssuedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	Kind        DocumentKind    `json:"kind"`
	PartyID     uuid.UUID       `json:"party_id"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewDocumentIssuedEvent(d *Document) *DocumentIssuedEvent {
	return &DocumentIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentIssued, AggregateTypeDocument, d.ID, d.CompanyID),
		Number:          d.Number,
		Kind:            d.Kind,
		PartyID:         d.PartyID,
		OrderID:         d.OrderID,
		TotalAmount:     d.TotalAmount,
	}
}

// DocumentPaymentAppliedEvent is raised for every allocation
type DocumentPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	Number            string          `json:"number"`
	PaymentID         uuid.UUID       `json:"payment_id"`
	Amount            decimal.Decimal `json:"amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

func NewDocumentPaymentAppliedEvent(d *Document, paymentID uuid.UUID, amount decimal.Decimal) *DocumentPaymentAppliedEvent {
	return &DocumentPaymentAppliedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeDocumentPaymentApplied, AggregateTypeDocument, d.ID, d.CompanyID),
		Number:            d.Number,
		PaymentID:         paymentID,
		Amount:            amount,
		OutstandingAmount: d.OutstandingAmount,
	}
}

// DocumentPaidEvent is raised when outstanding reaches zero. Orders listen to
// it to move to paid.
type DocumentPaidEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	Kind        DocumentKind    `json:"kind"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewDocumentPaidEvent(d *Document) *DocumentPaidEvent {
	return &DocumentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaid, AggregateTypeDocument, d.ID, d.CompanyID),
		Number:          d.Number,
		Kind:            d.Kind,
		OrderID:         d.OrderID,
		TotalAmount:     d.TotalAmount,
	}
}

// DocumentOverdueEvent is raised by the overdue sweep
type DocumentOverdueEvent struct {
	shared.BaseDomainEvent
	Number            string          `json:"number"`
	DaysPast          int             `json:"days_past"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

func NewDocumentOverdueEvent(d *Document, daysPast int) *DocumentOverdueEvent {
	return &DocumentOverdueEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeDocumentOverdue, AggregateTypeDocument, d.ID, d.CompanyID),
		Number:            d.Number,
		DaysPast:          daysPast,
		OutstandingAmount: d.OutstandingAmount,
	}
}

// DocumentCancelledEvent is raised when a document is voided
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason,omitempty"`
}

func NewDocumentCancelledEvent(d *Document) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeDocument, d.ID, d.CompanyID),
		Number:          d.Number,
		Reason:          d.CancelReason,
	}
}

// PaymentRecordedEvent is raised once a payment and its allocations commit
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber   string          `json:"payment_number"`
	Type            PaymentType     `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Allocated       decimal.Decimal `json:"allocated"`
	AllocationCount int             `json:"allocation_count"`
}

func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.CompanyID),
		PaymentNumber:   p.PaymentNumber,
		Type:            p.Type,
		Amount:          p.Amount,
		Allocated:       p.Allocated(),
		AllocationCount: len(p.Allocations),
	}
}
