package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType separates sales orders from purchase orders
type OrderType string

const (
	OrderTypeSales    OrderType = "sales"
	OrderTypePurchase OrderType = "purchase"
)

func (t OrderType) IsValid() bool {
	return t == OrderTypeSales || t == OrderTypePurchase
}

// OrderStatus is the order_status enumeration
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusInvoiced  OrderStatus = "invoiced"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInvoiced, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderEvent drives the order state machine
type OrderEvent string

const (
	OrderEventConfirm OrderEvent = "confirm"
	OrderEventInvoice OrderEvent = "invoice"
	OrderEventPay     OrderEvent = "pay"
	OrderEventCancel  OrderEvent = "cancel"
	OrderEventReopen  OrderEvent = "reopen"
)

type orderTransition = shared.Transition[OrderStatus, OrderEvent]

// OrderMachine is the transition table of sales and purchase orders
var OrderMachine = shared.NewStateMachine("order",
	orderTransition{From: OrderStatusDraft, Event: OrderEventConfirm, To: OrderStatusConfirmed},
	orderTransition{From: OrderStatusDraft, Event: OrderEventCancel, To: OrderStatusCancelled},
	orderTransition{From: OrderStatusConfirmed, Event: OrderEventInvoice, To: OrderStatusInvoiced},
	orderTransition{From: OrderStatusConfirmed, Event: OrderEventCancel, To: OrderStatusCancelled},
	orderTransition{From: OrderStatusInvoiced, Event: OrderEventPay, To: OrderStatusPaid},
	orderTransition{From: OrderStatusInvoiced, Event: OrderEventReopen, To: OrderStatusConfirmed},
)

// OrderItem is one priced line
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	UnitCost        decimal.Decimal
	LineTotal       decimal.Decimal
}

// Amounts returns the full-precision breakdown of the line
func (i OrderItem) Amounts() valueobject.LineAmounts {
	return valueobject.ComputeLine(i.Quantity, i.UnitPrice, i.DiscountPercent, i.TaxPercent)
}

// Order is a sales or purchase order
type Order struct {
	shared.CompanyAggregateRoot
	OrderNumber     string
	Type            OrderType
	PartyID         uuid.UUID
	PartyName       string
	OrderDate       time.Time
	PaymentTermDays int
	Items           []OrderItem
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	DownPaymentPaid decimal.Decimal
	Status          OrderStatus
	DocumentID      *uuid.UUID
	Notes           string
	ConfirmedAt     *time.Time
	InvoicedAt      *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string
}

// NewOrder creates a draft order
func NewOrder(companyID uuid.UUID, orderType OrderType, orderNumber string, partyID uuid.UUID, partyName string, orderDate time.Time) (*Order, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if !orderType.IsValid() {
		return nil, shared.NewValidationError("INVALID_ORDER_TYPE", "Order type must be sales or purchase")
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PARTY", "Customer or supplier is required")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &Order{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderNumber:          orderNumber,
		Type:                 orderType,
		PartyID:              partyID,
		PartyName:            partyName,
		OrderDate:            orderDate,
		Items:                make([]OrderItem, 0),
		Subtotal:             decimal.Zero,
		DiscountAmount:       decimal.Zero,
		TaxAmount:            decimal.Zero,
		TotalAmount:          decimal.Zero,
		DownPaymentPaid:      decimal.Zero,
		Status:               OrderStatusDraft,
	}, nil
}

func (o *Order) transition(event OrderEvent) error {
	next, err := OrderMachine.Transition(o.Status, event)
	if err != nil {
		return err
	}
	o.Status = next
	o.Touch()
	return nil
}

// AddItem appends a line; only drafts can change
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity, unitPrice, discountPercent, taxPercent, unitCost decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewInvalidStateError("INVALID_STATE", "Cannot add items to a non-draft order")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() || unitCost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Price and cost cannot be negative")
	}
	if !valueobject.ValidPercent(discountPercent) || !valueobject.ValidPercent(taxPercent) {
		return nil, shared.NewValidationError("INVALID_PERCENT", "Discount and tax percent must be between 0 and 100")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewValidationError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item := OrderItem{
		ID:              uuid.New(),
		OrderID:         o.ID,
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		TaxPercent:      taxPercent,
		UnitCost:        unitCost,
	}
	item.LineTotal = item.Amounts().Total.Round(ledger.AmountPlaces)
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.Touch()
	return &item, nil
}

// RemoveItem drops a line from a draft order
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewInvalidStateError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

func (o *Order) recalculateTotals() {
	amounts := make([]valueobject.LineAmounts, len(o.Items))
	for i, item := range o.Items {
		amounts[i] = item.Amounts()
	}
	totals := valueobject.Totals(amounts, ledger.AmountPlaces)
	o.Subtotal = totals.Gross
	o.DiscountAmount = totals.Discount
	o.TaxAmount = totals.Tax
	o.TotalAmount = totals.Total
}

// Confirm locks the lines
func (o *Order) Confirm() error {
	if len(o.Items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Cannot confirm order without items")
	}
	if !o.TotalAmount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Order total must be positive")
	}
	if err := o.transition(OrderEventConfirm); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewOrderConfirmedEvent(o))
	return nil
}

// RecordDownPayment adds a customer deposit against a sales order that has
// not been invoiced yet
func (o *Order) RecordDownPayment(amount decimal.Decimal) error {
	if o.Type != OrderTypeSales {
		return shared.NewValidationError("INVALID_ORDER_TYPE", "Down payments apply to sales orders only")
	}
	if o.Status != OrderStatusDraft && o.Status != OrderStatusConfirmed {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot take a down payment on a %s order", o.Status))
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Down payment must be positive")
	}
	if !amount.Equal(amount.Round(ledger.AmountPlaces)) {
		return shared.NewValidationError("INVALID_PRECISION", "Down payment has more than 2 decimals")
	}
	if o.DownPaymentPaid.Add(amount).GreaterThan(o.TotalAmount) {
		return shared.NewValidationError("DOWN_PAYMENT_EXCEEDS_TOTAL",
			fmt.Sprintf("Down payments would exceed the order total %s", o.TotalAmount.StringFixed(2)))
	}
	o.DownPaymentPaid = o.DownPaymentPaid.Add(amount)
	o.Touch()
	o.AddDomainEvent(NewDownPaymentRecordedEvent(o, amount))
	return nil
}

// InvoiceTotal is what the invoice bills: the order total net of deposits
func (o *Order) InvoiceTotal() decimal.Decimal {
	return o.TotalAmount.Sub(o.DownPaymentPaid)
}

// TotalCost values the lines at unit cost
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity.Mul(item.UnitCost))
	}
	return total.Round(ledger.AmountPlaces)
}

// DueDate derives the document due date from the payment term
func (o *Order) DueDate(issueDate time.Time) *time.Time {
	due := issueDate.AddDate(0, 0, o.PaymentTermDays)
	return &due
}

// SalesInvoiceEvent converts the confirmed sales order into its posting event
func (o *Order) SalesInvoiceEvent(invoiceID uuid.UUID, invoiceNumber string, date time.Time) (posting.SalesInvoice, error) {
	if o.Type != OrderTypeSales {
		return posting.SalesInvoice{}, shared.NewValidationError("INVALID_ORDER_TYPE", "Only sales orders are invoiced")
	}
	if o.Status != OrderStatusConfirmed {
		return posting.SalesInvoice{}, shared.NewInvalidStateError(shared.CodeInvalidTransition, fmt.Sprintf("order: cannot invoice when %s", o.Status))
	}
	lines := make([]posting.SalesLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = posting.SalesLine{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
		}
	}
	return posting.SalesInvoice{
		InvoiceID:          invoiceID,
		InvoiceNumber:      invoiceNumber,
		Date:               date,
		Lines:              lines,
		DownPaymentApplied: o.DownPaymentPaid,
	}, nil
}

// PurchaseBillEvent converts the confirmed purchase order into its posting event
func (o *Order) PurchaseBillEvent(billID uuid.UUID, billNumber string, date time.Time) (posting.PurchaseBill, error) {
	if o.Type != OrderTypePurchase {
		return posting.PurchaseBill{}, shared.NewValidationError("INVALID_ORDER_TYPE", "Only purchase orders are billed")
	}
	if o.Status != OrderStatusConfirmed {
		return posting.PurchaseBill{}, shared.NewInvalidStateError(shared.CodeInvalidTransition, fmt.Sprintf("order: cannot invoice when %s", o.Status))
	}
	return posting.PurchaseBill{BillID: billID, BillNumber: billNumber, Date: date, Total: o.TotalAmount}, nil
}

// MarkInvoiced links the generated document
func (o *Order) MarkInvoiced(documentID uuid.UUID) error {
	if err := o.transition(OrderEventInvoice); err != nil {
		return err
	}
	now := time.Now()
	o.InvoicedAt = &now
	o.DocumentID = &documentID
	o.AddDomainEvent(NewOrderInvoicedEvent(o))
	return nil
}

// ReopenInvoice returns an invoiced order to confirmed after its document was
// cancelled, so it can be invoiced again or cancelled.
func (o *Order) ReopenInvoice(documentID uuid.UUID) error {
	if o.DocumentID == nil || *o.DocumentID != documentID {
		return shared.NewInvalidStateError("DOCUMENT_MISMATCH",
			fmt.Sprintf("Order %s is not invoiced by document %s", o.OrderNumber, documentID))
	}
	if err := o.transition(OrderEventReopen); err != nil {
		return err
	}
	o.AddDomainEvent(NewOrderReopenedEvent(o, documentID))
	o.DocumentID = nil
	o.InvoicedAt = nil
	return nil
}

// MarkPaid closes the order once its document is settled
func (o *Order) MarkPaid() error {
	if err := o.transition(OrderEventPay); err != nil {
		return err
	}
	now := time.Now()
	o.PaidAt = &now
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// Cancel voids an order that has not been invoiced and holds no deposit
func (o *Order) Cancel(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancel reason is required")
	}
	if o.DownPaymentPaid.IsPositive() {
		return shared.NewValidationError("HAS_DOWN_PAYMENT", "Refund the down payment before cancelling the order")
	}
	if err := o.transition(OrderEventCancel); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = reason
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}
