package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	IDR Currency = "IDR" // Indonesian Rupiah (default)
	USD Currency = "USD"
	SGD Currency = "SGD"
)

// DefaultCurrency is the currency of every company ledger unless configured otherwise
const DefaultCurrency = IDR

// MoneyPlaces is the number of decimal places kept on posted amounts.
const MoneyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is an immutable monetary amount. Intermediate arithmetic keeps full
// precision; rounding happens only where a caller asks for it.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewIDR creates Money in Rupiah
func NewIDR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: IDR}
}

// NewIDRFromInt creates Money in Rupiah from a whole amount
func NewIDRFromInt(amount int64) Money {
	return NewIDR(decimal.NewFromInt(amount))
}

// NewIDRFromString parses a decimal string into Rupiah
func NewIDRFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewIDR(d), nil
}

// Zero returns a zero amount in currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns the sum; currencies must match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for callers that already guarantee a single currency
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference; currencies must match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MustSubtract is Subtract for callers that already guarantee a single currency
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply returns m*factor at full precision
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Percent returns m*percent/100 at full precision
func (m Money) Percent(percent decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(percent).Div(hundred), currency: m.currency}
}

// Round rounds half away from zero to places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Floor drops the fractional part (towards negative infinity)
func (m Money) Floor() Money {
	return Money{amount: m.amount.Floor(), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Cmp compares amounts; currencies must match
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("cannot compare %s with %s", m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// GreaterThanOrEqual reports m >= other; currencies must match
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyPlaces), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A missing currency defaults to IDR.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value stores the amount only
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads an amount column; currency defaults to DefaultCurrency
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// AllocateByWeights splits m proportionally to weights, rounding each share
// to places. The last share absorbs the rounding residue so the shares always
// sum to m exactly.
func (m Money) AllocateByWeights(weights []decimal.Decimal, places int32) ([]Money, error) {
	if len(weights) == 0 {
		return nil, errors.New("weights cannot be empty")
	}
	total := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil, errors.New("weights cannot be negative")
		}
		total = total.Add(w)
	}
	if total.IsZero() {
		return nil, errors.New("weights sum to zero")
	}

	result := make([]Money, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		if i == len(weights)-1 {
			result[i] = Money{amount: m.amount.Sub(allocated), currency: m.currency}
			break
		}
		share := m.amount.Mul(w).Div(total).Round(places)
		allocated = allocated.Add(share)
		result[i] = Money{amount: share, currency: m.currency}
	}
	return result, nil
}

// Sum adds amounts of a single currency; an empty list is zero IDR
func Sum(values ...Money) (Money, error) {
	if len(values) == 0 {
		return Zero(DefaultCurrency), nil
	}
	total := Zero(values[0].currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
