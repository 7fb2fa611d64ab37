package trade

import (
	"time"

	"github.com/erp/accounting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput represents an item in a create order request
type OrderItemInput struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	ProductName     string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest represents a request to create a sales or purchase order
type CreateOrderRequest struct {
	Type            string           `json:"type" binding:"required,oneof=sales purchase"`
	OrderNumber     string           `json:"order_number" binding:"required,min=1,max=50"`
	PartyID         uuid.UUID        `json:"party_id" binding:"required"`
	PartyName       string           `json:"party_name" binding:"max=200"`
	OrderDate       *time.Time       `json:"order_date"`
	PaymentTermDays int              `json:"payment_term_days" binding:"min=0,max=365"`
	Notes           string           `json:"notes" binding:"max=2000"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Confirm         bool             `json:"confirm"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// GenerateDocumentRequest represents a request to invoice or bill an order
type GenerateDocumentRequest struct {
	IssueDate *time.Time `json:"issue_date"`
}

// RecordDepositRequest represents a down payment received against a sales order
type RecordDepositRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Date            *time.Time      `json:"date"`
}

// OrderListFilter represents filter options for order listings
type OrderListFilter struct {
	Search   string     `form:"search"`
	Type     string     `form:"type" binding:"omitempty,oneof=sales purchase"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft confirmed invoiced paid cancelled"`
	PartyID  *uuid.UUID `form:"-"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// OrderItemResponse represents an order item in API responses
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Type            string              `json:"type"`
	PartyID         uuid.UUID           `json:"party_id"`
	PartyName       string              `json:"party_name"`
	OrderDate       time.Time           `json:"order_date"`
	PaymentTermDays int                 `json:"payment_term_days"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DownPaymentPaid decimal.Decimal     `json:"down_payment_paid"`
	InvoiceTotal    decimal.Decimal     `json:"invoice_total"`
	Status          string              `json:"status"`
	DocumentID      *uuid.UUID          `json:"document_id,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	InvoicedAt      *time.Time          `json:"invoiced_at,omitempty"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
			UnitCost:        item.UnitCost,
			LineTotal:       item.LineTotal,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Type:            string(o.Type),
		PartyID:         o.PartyID,
		PartyName:       o.PartyName,
		OrderDate:       o.OrderDate,
		PaymentTermDays: o.PaymentTermDays,
		Items:           items,
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		TotalAmount:     o.TotalAmount,
		DownPaymentPaid: o.DownPaymentPaid,
		InvoiceTotal:    o.InvoiceTotal(),
		Status:          string(o.Status),
		DocumentID:      o.DocumentID,
		Notes:           o.Notes,
		ConfirmedAt:     o.ConfirmedAt,
		InvoicedAt:      o.InvoicedAt,
		PaidAt:          o.PaidAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// DocumentResult is returned by invoice and bill generation
type DocumentResult struct {
	OrderID           uuid.UUID       `json:"order_id"`
	DocumentID        uuid.UUID       `json:"document_id"`
	DocumentNumber    string          `json:"document_number"`
	Kind              string          `json:"kind"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	JournalEntryID    *uuid.UUID      `json:"journal_entry_id,omitempty"`
	EntryNumber       string          `json:"entry_number,omitempty"`
}

// DepositResult is returned when a down payment is recorded
type DepositResult struct {
	DepositID       uuid.UUID       `json:"deposit_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	DownPaymentPaid decimal.Decimal `json:"down_payment_paid"`
	JournalEntryID  uuid.UUID       `json:"journal_entry_id"`
	EntryNumber     string          `json:"entry_number"`
	CashMovementID  *uuid.UUID      `json:"cash_movement_id,omitempty"`
}
