package valueobject

import "github.com/shopspring/decimal"

// LineAmounts is the discount -> tax breakdown of one priced line, kept at
// full precision. Rounding is applied by the caller on aggregated totals.
type LineAmounts struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	AfterDiscount decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// ComputeLine applies subtotal = qty*price, discount = subtotal*disc%/100,
// tax = (subtotal-discount)*tax%/100.
func ComputeLine(quantity, unitPrice, discountPercent, taxPercent decimal.Decimal) LineAmounts {
	subtotal := quantity.Mul(unitPrice)
	discount := subtotal.Mul(discountPercent).Div(hundred)
	after := subtotal.Sub(discount)
	tax := after.Mul(taxPercent).Div(hundred)
	return LineAmounts{
		Subtotal:      subtotal,
		Discount:      discount,
		AfterDiscount: after,
		Tax:           tax,
		Total:         after.Add(tax),
	}
}

// Add sums two breakdowns
func (l LineAmounts) Add(other LineAmounts) LineAmounts {
	return LineAmounts{
		Subtotal:      l.Subtotal.Add(other.Subtotal),
		Discount:      l.Discount.Add(other.Discount),
		AfterDiscount: l.AfterDiscount.Add(other.AfterDiscount),
		Tax:           l.Tax.Add(other.Tax),
		Total:         l.Total.Add(other.Total),
	}
}

// ValidPercent reports whether p lies in [0, 100]
func ValidPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// DocumentTotals are the rounded totals of a set of lines. Total is derived
// from the rounded parts so Gross - Discount + Tax == Total holds exactly.
type DocumentTotals struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals aggregates lines and rounds each total to places
func Totals(lines []LineAmounts, places int32) DocumentTotals {
	var sum LineAmounts
	for _, l := range lines {
		sum = sum.Add(l)
	}
	gross := sum.Subtotal.Round(places)
	discount := sum.Discount.Round(places)
	tax := sum.Tax.Round(places)
	return DocumentTotals{
		Gross:    gross,
		Discount: discount,
		Tax:      tax,
		Total:    gross.Sub(discount).Add(tax),
	}
}
