package finance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType is the payment_type enumeration
type PaymentType string

const (
	PaymentIncoming PaymentType = "incoming"
	PaymentOutgoing PaymentType = "outgoing"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentIncoming || t == PaymentOutgoing
}

// DocumentKind returns the kind of document this payment settles
func (t PaymentType) DocumentKind() DocumentKind {
	if t == PaymentIncoming {
		return KindInvoice
	}
	return KindBill
}

// Allocation is the part of a payment applied to one document
type Allocation struct {
	ID             uuid.UUID
	PaymentID      uuid.UUID
	DocumentID     uuid.UUID
	DocumentNumber string
	Amount         decimal.Decimal
}

// AllocationTarget asks for amount of the payment to go to DocumentID
type AllocationTarget struct {
	DocumentID uuid.UUID
	Amount     decimal.Decimal
}

// Payment is money received or paid. The sum of its allocations never
// exceeds its amount.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber   string
	Type            PaymentType
	PartyID         uuid.UUID
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Notes           string
	JournalEntryID  *uuid.UUID
	Allocations     []Allocation
}

// NewPayment creates an unallocated payment
func NewPayment(companyID uuid.UUID, number string, paymentType PaymentType, partyID, methodID uuid.UUID,
	amount decimal.Decimal, date time.Time) (*Payment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Payment number cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_TYPE", "Payment type must be incoming or outgoing")
	}
	if methodID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, shared.NewValidationError("INVALID_PRECISION", "Payment amount has more than 2 decimals")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentNumber:        strings.TrimSpace(number),
		Type:                 paymentType,
		PartyID:              partyID,
		PaymentMethodID:      methodID,
		Amount:               amount,
		PaymentDate:          date,
	}, nil
}

// Allocated sums the allocations
func (p *Payment) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Unallocated is what remains to be applied
func (p *Payment) Unallocated() decimal.Decimal {
	return p.Amount.Sub(p.Allocated())
}

// Allocate applies targets to docs. Every target is validated against the
// payment and the documents before any document changes, so a rejected call
// leaves all of them untouched.
func (p *Payment) Allocate(docs map[uuid.UUID]*Document, targets []AllocationTarget) error {
	if len(targets) == 0 {
		return shared.NewValidationError("NO_TARGETS", "At least one allocation target is required")
	}

	requested := decimal.Zero
	perDoc := make(map[uuid.UUID]decimal.Decimal)
	for _, t := range targets {
		if !t.Amount.IsPositive() {
			return shared.NewValidationError("INVALID_AMOUNT", "Allocation amount must be positive")
		}
		if !t.Amount.Equal(t.Amount.Round(2)) {
			return shared.NewValidationError("INVALID_PRECISION", "Allocation amount has more than 2 decimals")
		}
		doc, ok := docs[t.DocumentID]
		if !ok {
			return shared.NewValidationError("UNKNOWN_DOCUMENT", "Document "+t.DocumentID.String()+" not found")
		}
		if err := p.checkDocument(doc); err != nil {
			return err
		}
		perDoc[t.DocumentID] = perDoc[t.DocumentID].Add(t.Amount)
		if perDoc[t.DocumentID].GreaterThan(doc.OutstandingAmount) {
			return shared.NewValidationError("EXCEEDS_OUTSTANDING",
				fmt.Sprintf("Allocation to %s exceeds its outstanding %s", doc.Number, doc.OutstandingAmount.StringFixed(2)))
		}
		requested = requested.Add(t.Amount)
	}
	if requested.GreaterThan(p.Unallocated()) {
		return shared.NewValidationError("EXCEEDS_PAYMENT",
			fmt.Sprintf("Allocations %s exceed the unallocated payment %s", requested.StringFixed(2), p.Unallocated().StringFixed(2)))
	}

	for _, t := range targets {
		doc := docs[t.DocumentID]
		if err := doc.ApplyAllocation(p.ID, t.Amount); err != nil {
			return err
		}
		p.Allocations = append(p.Allocations, Allocation{
			ID:             uuid.New(),
			PaymentID:      p.ID,
			DocumentID:     doc.ID,
			DocumentNumber: doc.Number,
			Amount:         t.Amount,
		})
	}
	p.Touch()
	return nil
}

func (p *Payment) checkDocument(doc *Document) error {
	if doc.CompanyID != p.CompanyID {
		return shared.NewValidationError("UNKNOWN_DOCUMENT", "Document "+doc.Number+" belongs to another company")
	}
	if doc.Kind != p.Type.DocumentKind() {
		return shared.NewValidationError("KIND_MISMATCH",
			fmt.Sprintf("A %s payment cannot settle %s %s", p.Type, doc.Kind, doc.Number))
	}
	if p.PartyID != uuid.Nil && doc.PartyID != p.PartyID {
		return shared.NewValidationError("PARTY_MISMATCH", "Document "+doc.Number+" belongs to another party")
	}
	if !doc.Status.IsOpen() {
		return shared.NewValidationError("DOCUMENT_NOT_OPEN",
			fmt.Sprintf("Cannot allocate to %s %s in %s status", doc.Kind, doc.Number, doc.Status))
	}
	return nil
}

// Record marks the payment as committed with its journal entry
func (p *Payment) Record(journalEntryID uuid.UUID) {
	p.JournalEntryID = &journalEntryID
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
}

// PlanFIFO spreads amount over open documents, oldest due date first. The
// returned targets never exceed a document's outstanding amount; whatever
// cannot be placed stays unallocated.
func PlanFIFO(amount decimal.Decimal, docs []*Document) []AllocationTarget {
	open := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if d.Status.IsOpen() && d.OutstandingAmount.IsPositive() {
			open = append(open, d)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		di, dj := open[i].EffectiveDueDate(), open[j].EffectiveDueDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if !open[i].IssueDate.Equal(open[j].IssueDate) {
			return open[i].IssueDate.Before(open[j].IssueDate)
		}
		return open[i].Number < open[j].Number
	})

	remaining := amount
	var targets []AllocationTarget
	for _, d := range open {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, d.OutstandingAmount)
		targets = append(targets, AllocationTarget{DocumentID: d.ID, Amount: take})
		remaining = remaining.Sub(take)
	}
	return targets
}
