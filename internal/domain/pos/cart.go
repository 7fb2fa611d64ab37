package pos

import (
	"fmt"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product scanned at the till
type CartLine struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	UnitCost        decimal.Decimal
}

func (l CartLine) validate(i int) error {
	if l.ProductID == uuid.Nil {
		return shared.NewValidationError("INVALID_PRODUCT", fmt.Sprintf("Line %d has no product", i+1))
	}
	if !l.Quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", fmt.Sprintf("Line %d needs a positive quantity", i+1))
	}
	if l.UnitPrice.IsNegative() || l.UnitCost.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", fmt.Sprintf("Line %d has a negative price or cost", i+1))
	}
	if !valueobject.ValidPercent(l.DiscountPercent) || !valueobject.ValidPercent(l.TaxPercent) {
		return shared.NewValidationError("INVALID_PERCENT", fmt.Sprintf("Line %d discount and tax must be between 0 and 100", i+1))
	}
	return nil
}

// CartTotals aggregates a cart at full precision. Only the final total is
// rounded: RoundedTotal = floor(Total), RoundingAmount = Total - RoundedTotal.
type CartTotals struct {
	Lines          []valueobject.LineAmounts
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	RoundedTotal   decimal.Decimal
	RoundingAmount decimal.Decimal
	TotalCOGS      decimal.Decimal
}

// ComputeCart applies discount then tax per line and floors the cart total
// to a whole currency unit
func ComputeCart(lines []CartLine) (CartTotals, error) {
	if len(lines) == 0 {
		return CartTotals{}, shared.NewValidationError("EMPTY_CART", "Cart has no lines")
	}
	totals := CartTotals{
		Lines:     make([]valueobject.LineAmounts, len(lines)),
		TotalCOGS: decimal.Zero,
	}
	var sum valueobject.LineAmounts
	for i, l := range lines {
		if err := l.validate(i); err != nil {
			return CartTotals{}, err
		}
		a := valueobject.ComputeLine(l.Quantity, l.UnitPrice, l.DiscountPercent, l.TaxPercent)
		totals.Lines[i] = a
		sum = sum.Add(a)
		totals.TotalCOGS = totals.TotalCOGS.Add(l.Quantity.Mul(l.UnitCost))
	}
	totals.Subtotal = sum.Subtotal
	totals.Discount = sum.Discount
	totals.Tax = sum.Tax
	totals.Total = sum.Total
	totals.RoundedTotal = sum.Total.Floor()
	totals.RoundingAmount = sum.Total.Sub(totals.RoundedTotal)
	totals.TotalCOGS = totals.TotalCOGS.Round(2)
	return totals, nil
}

// Tender is an amount handed over with one payment method
type Tender struct {
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
}

// Settlement is the payment side of a sale
type Settlement struct {
	TotalPaid    decimal.Decimal
	ChangeAmount decimal.Decimal
	CashPaid     decimal.Decimal
}

// NetCash is the cash that stays in the drawer after change is handed back
func (s Settlement) NetCash() decimal.Decimal {
	return s.CashPaid.Sub(s.ChangeAmount)
}

// Settle checks tenders against the rounded total. Change is always paid out
// of the drawer, so it may not exceed the cash tendered.
func Settle(roundedTotal decimal.Decimal, tenders []Tender, methods map[uuid.UUID]*PaymentMethod) (Settlement, error) {
	if len(tenders) == 0 {
		return Settlement{}, shared.NewValidationError("NO_PAYMENT", "A sale needs at least one payment")
	}
	s := Settlement{TotalPaid: decimal.Zero, CashPaid: decimal.Zero}
	for _, t := range tenders {
		m, ok := methods[t.PaymentMethodID]
		if !ok || !m.IsActive {
			return Settlement{}, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Unknown or inactive payment method "+t.PaymentMethodID.String())
		}
		if !t.Amount.IsPositive() || !t.Amount.Equal(t.Amount.Round(2)) {
			return Settlement{}, shared.NewValidationError("INVALID_PAYMENT", "Payment amounts must be positive with at most 2 decimals")
		}
		s.TotalPaid = s.TotalPaid.Add(t.Amount)
		if m.IsCash {
			s.CashPaid = s.CashPaid.Add(t.Amount)
		}
	}
	if s.TotalPaid.LessThan(roundedTotal) {
		return Settlement{}, shared.NewValidationError("INSUFFICIENT_PAYMENT",
			fmt.Sprintf("Paid %s is below the total %s", s.TotalPaid.StringFixed(2), roundedTotal.StringFixed(2)))
	}
	s.ChangeAmount = s.TotalPaid.Sub(roundedTotal)
	if s.ChangeAmount.GreaterThan(s.CashPaid) {
		return Settlement{}, shared.NewValidationError("CHANGE_WITHOUT_CASH", "Change can only be given against cash payments")
	}
	return s, nil
}
