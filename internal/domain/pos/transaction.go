package pos

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormatReceiptNumber renders POS-YYYYMMDD-NNNN
func FormatReceiptNumber(date time.Time, seq int) string {
	return fmt.Sprintf("POS-%s-%04d", date.Format("20060102"), seq)
}

// ReceiptPeriod is the numbering period of a receipt
func ReceiptPeriod(date time.Time) string {
	return date.Format("20060102")
}

// POSItem is a persisted sale line
type POSItem struct {
	ID              uuid.UUID
	TransactionID   uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxPercent      decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	UnitCost        decimal.Decimal
}

// POSPayment is a persisted tender
type POSPayment struct {
	ID              uuid.UUID
	TransactionID   uuid.UUID
	PaymentMethodID uuid.UUID
	MethodName      string
	IsCash          bool
	Amount          decimal.Decimal
}

// POSTransaction is a completed sale
type POSTransaction struct {
	shared.CompanyAggregateRoot
	ReceiptNumber   string
	CashierID       uuid.UUID
	WarehouseID     uuid.UUID
	SessionID       *uuid.UUID
	TransactionDate time.Time
	Items           []POSItem
	Payments        []POSPayment
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	RoundingAmount  decimal.Decimal
	TotalCOGS       decimal.Decimal
	AmountPaid      decimal.Decimal
	ChangeAmount    decimal.Decimal
	CashReceived    decimal.Decimal
	JournalEntryID  *uuid.UUID
	IdempotencyKey  string
}

// SaleInput carries everything the till collected
type SaleInput struct {
	ReceiptNumber  string
	CashierID      uuid.UUID
	WarehouseID    uuid.UUID
	Date           time.Time
	Lines          []CartLine
	Tenders        []Tender
	IdempotencyKey string
}

// CompleteSale computes the cart, settles the tenders and returns the
// completed transaction. It fails before producing anything when the
// payment does not cover the rounded total.
func CompleteSale(companyID uuid.UUID, in SaleInput, methods map[uuid.UUID]*PaymentMethod) (*POSTransaction, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if strings.TrimSpace(in.ReceiptNumber) == "" {
		return nil, shared.NewValidationError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if in.WarehouseID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_WAREHOUSE", "Warehouse is required")
	}
	totals, err := ComputeCart(in.Lines)
	if err != nil {
		return nil, err
	}
	if !totals.RoundedTotal.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Sale total must be at least one currency unit")
	}
	settlement, err := Settle(totals.RoundedTotal, in.Tenders, methods)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	tx := &POSTransaction{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ReceiptNumber:        in.ReceiptNumber,
		CashierID:            in.CashierID,
		WarehouseID:          in.WarehouseID,
		TransactionDate:      in.Date,
		Subtotal:             totals.Subtotal,
		DiscountAmount:       totals.Discount,
		TaxAmount:            totals.Tax,
		TotalAmount:          totals.RoundedTotal,
		RoundingAmount:       totals.RoundingAmount,
		TotalCOGS:            totals.TotalCOGS,
		AmountPaid:           settlement.TotalPaid,
		ChangeAmount:         settlement.ChangeAmount,
		CashReceived:         settlement.NetCash(),
		IdempotencyKey:       in.IdempotencyKey,
	}
	for i, l := range in.Lines {
		a := totals.Lines[i]
		tx.Items = append(tx.Items, POSItem{
			ID:              uuid.New(),
			TransactionID:   tx.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  a.Discount,
			TaxPercent:      l.TaxPercent,
			TaxAmount:       a.Tax,
			Total:           a.Total,
			UnitCost:        l.UnitCost,
		})
	}
	for _, t := range in.Tenders {
		m := methods[t.PaymentMethodID]
		tx.Payments = append(tx.Payments, POSPayment{
			ID:              uuid.New(),
			TransactionID:   tx.ID,
			PaymentMethodID: m.ID,
			MethodName:      m.Name,
			IsCash:          m.IsCash,
			Amount:          t.Amount,
		})
	}
	tx.AddDomainEvent(NewPOSSaleCompletedEvent(tx))
	return tx, nil
}

// PostingEvent converts the sale into its ledger posting
func (t *POSTransaction) PostingEvent() posting.POSSale {
	ev := posting.POSSale{
		TransactionID: t.ID,
		ReceiptNumber: t.ReceiptNumber,
		Date:          t.TransactionDate,
		GrandTotal:    t.TotalAmount,
		TotalCOGS:     t.TotalCOGS,
	}
	for _, p := range t.Payments {
		ev.Payments = append(ev.Payments, posting.TenderedPayment{
			PaymentMethodID: p.PaymentMethodID,
			Name:            p.MethodName,
			Amount:          p.Amount,
		})
	}
	return ev
}

// HasCash reports whether any tender went into the drawer
func (t *POSTransaction) HasCash() bool {
	return t.CashReceived.IsPositive()
}

// AttachSession links the sale to the open cash session
func (t *POSTransaction) AttachSession(sessionID uuid.UUID) {
	t.SessionID = &sessionID
}

// AttachJournalEntry records the posted entry
func (t *POSTransaction) AttachJournalEntry(entryID uuid.UUID) {
	t.JournalEntryID = &entryID
}
