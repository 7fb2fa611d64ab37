package pos

import (
	"time"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineInput is one scanned product
type SaleLineInput struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	ProductName     string          `json:"product_name" binding:"max=200"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// TenderInput is one payment handed over at the till
type TenderInput struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// PostSaleRequest represents a completed checkout
type PostSaleRequest struct {
	CashierID      uuid.UUID       `json:"cashier_id" binding:"required"`
	WarehouseID    uuid.UUID       `json:"warehouse_id" binding:"required"`
	Date           *time.Time      `json:"date"`
	Lines          []SaleLineInput `json:"lines" binding:"required,min=1,dive"`
	Payments       []TenderInput   `json:"payments" binding:"required,min=1,dive"`
	IdempotencyKey string          `json:"-"`
}

// SaleItemResponse represents a sold line
type SaleItemResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
}

// SalePaymentResponse represents a tender
type SalePaymentResponse struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	MethodName      string          `json:"method_name"`
	IsCash          bool            `json:"is_cash"`
	Amount          decimal.Decimal `json:"amount"`
}

// SaleResponse represents a completed POS transaction
type SaleResponse struct {
	ID              uuid.UUID             `json:"id"`
	ReceiptNumber   string                `json:"receipt_number"`
	CashierID       uuid.UUID             `json:"cashier_id"`
	WarehouseID     uuid.UUID             `json:"warehouse_id"`
	SessionID       *uuid.UUID            `json:"session_id,omitempty"`
	TransactionDate time.Time             `json:"transaction_date"`
	Items           []SaleItemResponse    `json:"items"`
	Payments        []SalePaymentResponse `json:"payments"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	RoundingAmount  decimal.Decimal       `json:"rounding_amount"`
	TotalCOGS       decimal.Decimal       `json:"total_cogs"`
	AmountPaid      decimal.Decimal       `json:"amount_paid"`
	ChangeAmount    decimal.Decimal       `json:"change_amount"`
	JournalEntryID  *uuid.UUID            `json:"journal_entry_id,omitempty"`
	Replayed        bool                  `json:"replayed,omitempty"`
}

// ToSaleResponse converts a domain POSTransaction
func ToSaleResponse(t *pos.POSTransaction) SaleResponse {
	resp := SaleResponse{
		ID:              t.ID,
		ReceiptNumber:   t.ReceiptNumber,
		CashierID:       t.CashierID,
		WarehouseID:     t.WarehouseID,
		SessionID:       t.SessionID,
		TransactionDate: t.TransactionDate,
		Items:           make([]SaleItemResponse, len(t.Items)),
		Payments:        make([]SalePaymentResponse, len(t.Payments)),
		Subtotal:        t.Subtotal,
		DiscountAmount:  t.DiscountAmount,
		TaxAmount:       t.TaxAmount,
		TotalAmount:     t.TotalAmount,
		RoundingAmount:  t.RoundingAmount,
		TotalCOGS:       t.TotalCOGS,
		AmountPaid:      t.AmountPaid,
		ChangeAmount:    t.ChangeAmount,
		JournalEntryID:  t.JournalEntryID,
	}
	for i, it := range t.Items {
		resp.Items[i] = SaleItemResponse{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,
			TaxPercent:      it.TaxPercent,
			TaxAmount:       it.TaxAmount,
			Total:           it.Total,
		}
	}
	for i, p := range t.Payments {
		resp.Payments[i] = SalePaymentResponse{
			PaymentMethodID: p.PaymentMethodID,
			MethodName:      p.MethodName,
			IsCash:          p.IsCash,
			Amount:          p.Amount,
		}
	}
	return resp
}

// OpenSessionRequest represents the opening float count
type OpenSessionRequest struct {
	CashierID      uuid.UUID       `json:"cashier_id" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// RecordMovementRequest represents a manual drawer movement
type RecordMovementRequest struct {
	Type   string          `json:"type" binding:"required,oneof=manual_in manual_out"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Note   string          `json:"note" binding:"required,max=500"`
	UserID *uuid.UUID      `json:"user_id"`
}

// CloseSessionRequest represents the closing count
type CloseSessionRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// CashMovementResponse represents one drawer movement
type CashMovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToCashMovementResponse converts a domain CashMovement
func ToCashMovementResponse(m pos.CashMovement) CashMovementResponse {
	return CashMovementResponse{
		ID:            m.ID,
		Type:          string(m.Type),
		Amount:        m.Amount,
		SignedAmount:  m.SignedAmount(),
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}

// CashSessionResponse represents a drawer session
type CashSessionResponse struct {
	ID              uuid.UUID        `json:"id"`
	CashierID       uuid.UUID        `json:"cashier_id"`
	Status          string           `json:"status"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	MovementTotal   decimal.Decimal  `json:"movement_total"`
	ExpectedBalance decimal.Decimal  `json:"expected_balance"`
	ClosingBalance  *decimal.Decimal `json:"closing_balance,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	Variance        string           `json:"variance,omitempty"`
	OpenedAt        time.Time        `json:"opened_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// ToCashSessionResponse converts a session with its aggregated movement total
func ToCashSessionResponse(s *pos.CashSession, movementTotal decimal.Decimal) CashSessionResponse {
	expected := s.ExpectedFrom(movementTotal)
	if s.ExpectedBalance != nil {
		expected = *s.ExpectedBalance
	}
	return CashSessionResponse{
		ID:              s.ID,
		CashierID:       s.CashierID,
		Status:          string(s.Status),
		OpeningBalance:  s.OpeningBalance,
		MovementTotal:   movementTotal,
		ExpectedBalance: expected,
		ClosingBalance:  s.ClosingBalance,
		Difference:      s.Difference,
		Variance:        string(s.Variance),
		OpenedAt:        s.OpenedAt,
		ClosedAt:        s.ClosedAt,
		Notes:           s.Notes,
	}
}

// CreatePaymentMethodRequest represents a new tender type. IsCash defaults
// to a suggestion from the name when omitted.
type CreatePaymentMethodRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=100"`
	IsCash *bool  `json:"is_cash"`
}

// PaymentMethodResponse represents a tender type
type PaymentMethodResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsCash   bool      `json:"is_cash"`
	IsActive bool      `json:"is_active"`
}
