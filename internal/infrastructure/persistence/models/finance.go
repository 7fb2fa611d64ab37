package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for invoices and bills
type DocumentModel struct {
	CompanyAggregateModel
	Number             string                 `gorm:"type:varchar(50);not null;index"`
	Kind               finance.DocumentKind   `gorm:"type:varchar(20);not null;index"`
	PartyID            uuid.UUID              `gorm:"type:uuid;not null;index"`
	PartyName          string                 `gorm:"type:varchar(200);not null"`
	OrderID            *uuid.UUID             `gorm:"type:uuid;index"`
	IssueDate          time.Time              `gorm:"not null"`
	DueDate            *time.Time             `gorm:"index"`
	Subtotal           decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	DiscountAmount     decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	TaxAmount          decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	DownPaymentApplied decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	TotalAmount        decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	PaidAmount         decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	OutstandingAmount  decimal.Decimal        `gorm:"type:decimal(18,2);not null;index"`
	Status             finance.DocumentStatus `gorm:"type:varchar(20);not null;index"`
	JournalEntryID     *uuid.UUID             `gorm:"type:uuid"`
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *finance.Document {
	return &finance.Document{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		Number:               m.Number,
		Kind:                 m.Kind,
		PartyID:              m.PartyID,
		PartyName:            m.PartyName,
		OrderID:              m.OrderID,
		IssueDate:            m.IssueDate,
		DueDate:              m.DueDate,
		Subtotal:             m.Subtotal,
		DiscountAmount:       m.DiscountAmount,
		TaxAmount:            m.TaxAmount,
		DownPaymentApplied:   m.DownPaymentApplied,
		TotalAmount:          m.TotalAmount,
		PaidAmount:           m.PaidAmount,
		OutstandingAmount:    m.OutstandingAmount,
		Status:               m.Status,
		JournalEntryID:       m.JournalEntryID,
		PaidAt:               m.PaidAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(d *finance.Document) {
	m.FromDomainCompanyAggregateRoot(d.CompanyAggregateRoot)
	m.Number = d.Number
	m.Kind = d.Kind
	m.PartyID = d.PartyID
	m.PartyName = d.PartyName
	m.OrderID = d.OrderID
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.Subtotal = d.Subtotal
	m.DiscountAmount = d.DiscountAmount
	m.TaxAmount = d.TaxAmount
	m.DownPaymentApplied = d.DownPaymentApplied
	m.TotalAmount = d.TotalAmount
	m.PaidAmount = d.PaidAmount
	m.OutstandingAmount = d.OutstandingAmount
	m.Status = d.Status
	m.JournalEntryID = d.JournalEntryID
	m.PaidAt = d.PaidAt
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason
}

// DocumentModelFromDomain creates a new persistence model from a domain Document
func DocumentModelFromDomain(d *finance.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// PaymentModel is the persistence model for a payment
type PaymentModel struct {
	CompanyAggregateModel
	PaymentNumber   string                   `gorm:"type:varchar(50);not null;index"`
	Type            finance.PaymentType      `gorm:"type:varchar(20);not null;index"`
	PartyID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID                `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time                `gorm:"not null;index"`
	Notes           string                   `gorm:"type:text"`
	JournalEntryID  *uuid.UUID               `gorm:"type:uuid"`
	Allocations     []PaymentAllocationModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	p := &finance.Payment{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		PaymentNumber:        m.PaymentNumber,
		Type:                 m.Type,
		PartyID:              m.PartyID,
		PaymentMethodID:      m.PaymentMethodID,
		Amount:               m.Amount,
		PaymentDate:          m.PaymentDate,
		Notes:                m.Notes,
		JournalEntryID:       m.JournalEntryID,
		Allocations:          make([]finance.Allocation, len(m.Allocations)),
	}
	for i, a := range m.Allocations {
		p.Allocations[i] = finance.Allocation{
			ID:             a.ID,
			PaymentID:      a.PaymentID,
			DocumentID:     a.DocumentID,
			DocumentNumber: a.DocumentNumber,
			Amount:         a.Amount,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.Type = p.Type
	m.PartyID = p.PartyID
	m.PaymentMethodID = p.PaymentMethodID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Notes = p.Notes
	m.JournalEntryID = p.JournalEntryID
	m.Allocations = make([]PaymentAllocationModel, len(p.Allocations))
	for i, a := range p.Allocations {
		m.Allocations[i] = PaymentAllocationModel{
			ID:             a.ID,
			CompanyID:      p.CompanyID,
			PaymentID:      p.ID,
			DocumentID:     a.DocumentID,
			DocumentNumber: a.DocumentNumber,
			Amount:         a.Amount,
			CreatedAt:      p.UpdatedAt,
		}
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentAllocationModel links part of a payment to one document
type PaymentAllocationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentNumber string          `gorm:"type:varchar(50);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}
