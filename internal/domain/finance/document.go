package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind separates receivables (invoices) from payables (bills)
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindBill    DocumentKind = "bill"
)

func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindBill
}

func (k DocumentKind) String() string {
	return string(k)
}

// DocumentStatus is the invoice_status enumeration
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusSent      DocumentStatus = "sent"
	StatusPartial   DocumentStatus = "partial"
	StatusPaid      DocumentStatus = "paid"
	StatusOverdue   DocumentStatus = "overdue"
	StatusCancelled DocumentStatus = "cancelled"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartial, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

func (s DocumentStatus) String() string {
	return string(s)
}

// IsOpen reports whether the document still accepts payments
func (s DocumentStatus) IsOpen() bool {
	return s == StatusSent || s == StatusPartial || s == StatusOverdue
}

// DocumentEvent drives the document state machine
type DocumentEvent string

const (
	EventSend       DocumentEvent = "send"
	EventPayPartial DocumentEvent = "pay_partial"
	EventPayFull    DocumentEvent = "pay_full"
	EventFallDue    DocumentEvent = "fall_due"
	EventCancel     DocumentEvent = "cancel"
)

type documentTransition = shared.Transition[DocumentStatus, DocumentEvent]

// DocumentMachine is the transition table of invoices and bills
var DocumentMachine = shared.NewStateMachine("document",
	documentTransition{From: StatusDraft, Event: EventSend, To: StatusSent},
	documentTransition{From: StatusDraft, Event: EventCancel, To: StatusCancelled},
	documentTransition{From: StatusSent, Event: EventPayPartial, To: StatusPartial},
	documentTransition{From: StatusSent, Event: EventPayFull, To: StatusPaid},
	documentTransition{From: StatusSent, Event: EventFallDue, To: StatusOverdue},
	documentTransition{From: StatusSent, Event: EventCancel, To: StatusCancelled},
	documentTransition{From: StatusPartial, Event: EventPayPartial, To: StatusPartial},
	documentTransition{From: StatusPartial, Event: EventPayFull, To: StatusPaid},
	documentTransition{From: StatusPartial, Event: EventFallDue, To: StatusOverdue},
	documentTransition{From: StatusOverdue, Event: EventPayPartial, To: StatusPartial},
	documentTransition{From: StatusOverdue, Event: EventPayFull, To: StatusPaid},
	documentTransition{From: StatusOverdue, Event: EventCancel, To: StatusCancelled},
)

// DocumentAmounts is the rounded breakdown a document is issued with
type DocumentAmounts struct {
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxAmount          decimal.Decimal
	DownPaymentApplied decimal.Decimal
	TotalAmount        decimal.Decimal
}

// Document is an invoice or a bill with a running outstanding balance.
// outstanding == max(total - paid, 0) holds after every mutation.
type Document struct {
	shared.CompanyAggregateRoot
	Number             string
	Kind               DocumentKind
	PartyID            uuid.UUID
	PartyName          string
	OrderID            *uuid.UUID
	IssueDate          time.Time
	DueDate            *time.Time
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxAmount          decimal.Decimal
	DownPaymentApplied decimal.Decimal
	TotalAmount        decimal.Decimal
	PaidAmount         decimal.Decimal
	OutstandingAmount  decimal.Decimal
	Status             DocumentStatus
	JournalEntryID     *uuid.UUID
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancelReason       string
}

// NewDocument creates a draft document
func NewDocument(companyID uuid.UUID, kind DocumentKind, number string, partyID uuid.UUID, partyName string,
	issueDate time.Time, dueDate *time.Time, amounts DocumentAmounts) (*Document, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", "Document kind must be invoice or bill")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Document number cannot be empty")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if amounts.TotalAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Total amount cannot be negative")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewValidationError("INVALID_DUE_DATE", "Due date cannot be before the issue date")
	}

	return &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Number:               number,
		Kind:                 kind,
		PartyID:              partyID,
		PartyName:            partyName,
		IssueDate:            issueDate,
		DueDate:              dueDate,
		Subtotal:             amounts.Subtotal,
		DiscountAmount:       amounts.DiscountAmount,
		TaxAmount:            amounts.TaxAmount,
		DownPaymentApplied:   amounts.DownPaymentApplied,
		TotalAmount:          amounts.TotalAmount,
		PaidAmount:           decimal.Zero,
		OutstandingAmount:    amounts.TotalAmount,
		Status:               StatusDraft,
	}, nil
}

func (d *Document) transition(event DocumentEvent) error {
	next, err := DocumentMachine.Transition(d.Status, event)
	if err != nil {
		return err
	}
	d.Status = next
	d.Touch()
	return nil
}

// Issue sends a draft document. A document fully covered by its down
// payment is settled on issue.
func (d *Document) Issue(journalEntryID *uuid.UUID) error {
	if err := d.transition(EventSend); err != nil {
		return err
	}
	d.JournalEntryID = journalEntryID
	d.AddDomainEvent(NewDocumentIssuedEvent(d))
	if d.OutstandingAmount.IsZero() {
		return d.settle()
	}
	return nil
}

func (d *Document) settle() error {
	if err := d.transition(EventPayFull); err != nil {
		return err
	}
	now := time.Now()
	d.PaidAt = &now
	d.AddDomainEvent(NewDocumentPaidEvent(d))
	return nil
}

// ApplyAllocation records amount of a payment against the document
func (d *Document) ApplyAllocation(paymentID uuid.UUID, amount decimal.Decimal) error {
	if !d.Status.IsOpen() {
		return shared.NewValidationError("DOCUMENT_NOT_OPEN",
			fmt.Sprintf("Cannot allocate to %s %s in %s status", d.Kind, d.Number, d.Status))
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.GreaterThan(d.OutstandingAmount) {
		return shared.NewValidationError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Allocation %s exceeds outstanding %s on %s", amount.StringFixed(2), d.OutstandingAmount.StringFixed(2), d.Number))
	}

	d.PaidAmount = d.PaidAmount.Add(amount)
	d.OutstandingAmount = decimal.Max(d.TotalAmount.Sub(d.PaidAmount), decimal.Zero)
	d.AddDomainEvent(NewDocumentPaymentAppliedEvent(d, paymentID, amount))

	if d.OutstandingAmount.IsZero() {
		return d.settle()
	}
	return d.transition(EventPayPartial)
}

// IsPastDue reports whether the due date lies before asOf's calendar day
func (d *Document) IsPastDue(asOf time.Time) bool {
	return DaysPast(d.EffectiveDueDate(), asOf) > 0
}

// EffectiveDueDate is the due date, or the issue date when none was set
func (d *Document) EffectiveDueDate() time.Time {
	if d.DueDate != nil {
		return *d.DueDate
	}
	return d.IssueDate
}

// MarkOverdue moves an unpaid document past its due date to overdue. It
// reports whether the status changed.
func (d *Document) MarkOverdue(asOf time.Time) (bool, error) {
	if !DocumentMachine.Can(d.Status, EventFallDue) || !d.IsPastDue(asOf) {
		return false, nil
	}
	if err := d.transition(EventFallDue); err != nil {
		return false, err
	}
	d.AddDomainEvent(NewDocumentOverdueEvent(d, DaysPast(d.EffectiveDueDate(), asOf)))
	return true, nil
}

// Cancel voids a document that has not received any payment
func (d *Document) Cancel(reason string) error {
	if d.PaidAmount.IsPositive() {
		return shared.NewValidationError("HAS_PAYMENTS", "Cannot cancel a document with payments")
	}
	if err := d.transition(EventCancel); err != nil {
		return err
	}
	now := time.Now()
	d.CancelledAt = &now
	d.CancelReason = reason
	d.OutstandingAmount = decimal.Zero
	d.AddDomainEvent(NewDocumentCancelledEvent(d))
	return nil
}

// CheckBalance verifies the paid/outstanding split against the total
func (d *Document) CheckBalance() error {
	if d.Status == StatusCancelled {
		return nil
	}
	if d.OutstandingAmount.IsNegative() || !d.PaidAmount.Add(d.OutstandingAmount).Equal(d.TotalAmount) {
		return shared.NewInvalidStateError("OUTSTANDING_MISMATCH",
			fmt.Sprintf("%s: paid %s + outstanding %s != total %s", d.Number, d.PaidAmount, d.OutstandingAmount, d.TotalAmount))
	}
	return nil
}
