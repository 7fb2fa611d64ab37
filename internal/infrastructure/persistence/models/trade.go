package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for sales and purchase orders
type OrderModel struct {
	CompanyAggregateModel
	OrderNumber     string            `gorm:"type:varchar(50);not null;index"`
	Type            trade.OrderType   `gorm:"type:varchar(20);not null;index"`
	PartyID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	PartyName       string            `gorm:"type:varchar(200);not null"`
	OrderDate       time.Time         `gorm:"not null"`
	PaymentTermDays int               `gorm:"not null;default:0"`
	Items           []OrderItemModel  `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DownPaymentPaid decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;index"`
	DocumentID      *uuid.UUID        `gorm:"type:uuid;index"`
	Notes           string            `gorm:"type:text"`
	ConfirmedAt     *time.Time
	InvoicedAt      *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		OrderNumber:          m.OrderNumber,
		Type:                 m.Type,
		PartyID:              m.PartyID,
		PartyName:            m.PartyName,
		OrderDate:            m.OrderDate,
		PaymentTermDays:      m.PaymentTermDays,
		Items:                make([]trade.OrderItem, len(m.Items)),
		Subtotal:             m.Subtotal,
		DiscountAmount:       m.DiscountAmount,
		TaxAmount:            m.TaxAmount,
		TotalAmount:          m.TotalAmount,
		DownPaymentPaid:      m.DownPaymentPaid,
		Status:               m.Status,
		DocumentID:           m.DocumentID,
		Notes:                m.Notes,
		ConfirmedAt:          m.ConfirmedAt,
		InvoicedAt:           m.InvoicedAt,
		PaidAt:               m.PaidAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
	for i, it := range m.Items {
		o.Items[i] = trade.OrderItem{
			ID:              it.ID,
			OrderID:         it.OrderID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TaxPercent:      it.TaxPercent,
			UnitCost:        it.UnitCost,
			LineTotal:       it.LineTotal,
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainCompanyAggregateRoot(o.CompanyAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Type = o.Type
	m.PartyID = o.PartyID
	m.PartyName = o.PartyName
	m.OrderDate = o.OrderDate
	m.PaymentTermDays = o.PaymentTermDays
	m.Subtotal = o.Subtotal
	m.DiscountAmount = o.DiscountAmount
	m.TaxAmount = o.TaxAmount
	m.TotalAmount = o.TotalAmount
	m.DownPaymentPaid = o.DownPaymentPaid
	m.Status = o.Status
	m.DocumentID = o.DocumentID
	m.Notes = o.Notes
	m.ConfirmedAt = o.ConfirmedAt
	m.InvoicedAt = o.InvoicedAt
	m.PaidAt = o.PaidAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:              it.ID,
			CompanyID:       o.CompanyID,
			OrderID:         o.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TaxPercent:      it.TaxPercent,
			UnitCost:        it.UnitCost,
			LineTotal:       it.LineTotal,
		}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is one order line
type OrderItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}
