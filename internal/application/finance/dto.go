package finance

import (
	"time"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationInput directs part of a payment to one document
type AllocationInput struct {
	DocumentID uuid.UUID       `json:"document_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// RecordPaymentRequest represents money received from a customer or paid to
// a supplier. Without explicit allocations and with AutoAllocate set the
// amount is spread over the party's open documents, oldest due first.
type RecordPaymentRequest struct {
	Type            string            `json:"type" binding:"required,oneof=incoming outgoing"`
	PartyID         uuid.UUID         `json:"party_id" binding:"required"`
	PaymentMethodID uuid.UUID         `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal   `json:"amount" binding:"required,gt=0"`
	Date            *time.Time        `json:"date"`
	Notes           string            `json:"notes" binding:"max=500"`
	Allocations     []AllocationInput `json:"allocations" binding:"omitempty,dive"`
	AutoAllocate    bool              `json:"auto_allocate"`
	IdempotencyKey  string            `json:"-"`
}

// AllocatePaymentRequest applies the unallocated part of an existing payment
type AllocatePaymentRequest struct {
	Allocations  []AllocationInput `json:"allocations" binding:"omitempty,dive"`
	AutoAllocate bool              `json:"auto_allocate"`
}

// AllocationResponse represents one allocation
type AllocationResponse struct {
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment with its allocations
type PaymentResponse struct {
	ID              uuid.UUID            `json:"id"`
	PaymentNumber   string               `json:"payment_number"`
	Type            string               `json:"type"`
	PartyID         uuid.UUID            `json:"party_id"`
	PaymentMethodID uuid.UUID            `json:"payment_method_id"`
	Amount          decimal.Decimal      `json:"amount"`
	Allocated       decimal.Decimal      `json:"allocated"`
	Unallocated     decimal.Decimal      `json:"unallocated"`
	PaymentDate     time.Time            `json:"payment_date"`
	Notes           string               `json:"notes,omitempty"`
	JournalEntryID  *uuid.UUID           `json:"journal_entry_id,omitempty"`
	Allocations     []AllocationResponse `json:"allocations"`
	Documents       []DocumentResponse   `json:"documents,omitempty"`
}

// ToPaymentResponse converts a domain Payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	allocs := make([]AllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocs[i] = AllocationResponse{DocumentID: a.DocumentID, DocumentNumber: a.DocumentNumber, Amount: a.Amount}
	}
	return PaymentResponse{
		ID:              p.ID,
		PaymentNumber:   p.PaymentNumber,
		Type:            string(p.Type),
		PartyID:         p.PartyID,
		PaymentMethodID: p.PaymentMethodID,
		Amount:          p.Amount,
		Allocated:       p.Allocated(),
		Unallocated:     p.Unallocated(),
		PaymentDate:     p.PaymentDate,
		Notes:           p.Notes,
		JournalEntryID:  p.JournalEntryID,
		Allocations:     allocs,
	}
}

// DocumentResponse represents an invoice or bill
type DocumentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Number             string          `json:"number"`
	Kind               string          `json:"kind"`
	PartyID            uuid.UUID       `json:"party_id"`
	PartyName          string          `json:"party_name"`
	OrderID            *uuid.UUID      `json:"order_id,omitempty"`
	IssueDate          time.Time       `json:"issue_date"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	DownPaymentApplied decimal.Decimal `json:"down_payment_applied"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	Status             string          `json:"status"`
	JournalEntryID     *uuid.UUID      `json:"journal_entry_id,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason       string          `json:"cancel_reason,omitempty"`
	Version            int             `json:"version"`
}

// ToDocumentResponse converts a domain Document
func ToDocumentResponse(d *finance.Document) DocumentResponse {
	return DocumentResponse{
		ID:                 d.ID,
		Number:             d.Number,
		Kind:               string(d.Kind),
		PartyID:            d.PartyID,
		PartyName:          d.PartyName,
		OrderID:            d.OrderID,
		IssueDate:          d.IssueDate,
		DueDate:            d.DueDate,
		Subtotal:           d.Subtotal,
		DiscountAmount:     d.DiscountAmount,
		TaxAmount:          d.TaxAmount,
		DownPaymentApplied: d.DownPaymentApplied,
		TotalAmount:        d.TotalAmount,
		PaidAmount:         d.PaidAmount,
		OutstandingAmount:  d.OutstandingAmount,
		Status:             string(d.Status),
		JournalEntryID:     d.JournalEntryID,
		PaidAt:             d.PaidAt,
		CancelledAt:        d.CancelledAt,
		CancelReason:       d.CancelReason,
		Version:            d.Version,
	}
}

// DocumentListFilter represents filter options for document listings
type DocumentListFilter struct {
	Search   string     `form:"search"`
	Kind     string     `form:"kind" binding:"omitempty,oneof=invoice bill"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft sent partial paid overdue cancelled"`
	PartyID  *uuid.UUID `form:"-"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// CancelDocumentRequest represents a request to void an unpaid document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AgingRequest represents the parameters of an aging report
type AgingRequest struct {
	Kind    string     `form:"kind" binding:"required,oneof=invoice bill"`
	AsOf    *time.Time `form:"as_of" time_format:"2006-01-02"`
	PartyID *uuid.UUID `form:"-"`
	ByParty bool       `form:"by_party"`
}

// OverdueSweepResult summarizes one overdue sweep
type OverdueSweepResult struct {
	Scanned   int `json:"scanned"`
	Marked    int `json:"marked"`
	Conflicts int `json:"conflicts"`
}
