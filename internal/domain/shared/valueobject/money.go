package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	IDR Currency = "IDR" // display currency
	USD Currency = "USD" // catalog source currency
)

// ErrInvalidCurrency is returned for a code that is not three uppercase letters
var ErrInvalidCurrency = errors.New("currency must be a three-letter ISO 4217 code")

// Valid reports whether c looks like an ISO 4217 code
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// Money is an immutable amount in one currency.
// Amounts in different currencies never mix: Add fails on a mismatch and
// Convert is the only way to change currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money, rejecting malformed currency codes
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNewMoney is NewMoney for currencies fixed at compile time, such as USD.
// It panics on a malformed code.
func MustNewMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns nothing in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

// IntPart returns the whole units, truncating any fraction
func (m Money) IntPart() int64 {
	return m.amount.IntPart()
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Convert multiplies by rate into the target currency and rounds to whole
// units, half away from zero.
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	return Money{
		amount:   m.amount.Mul(rate).Round(0),
		currency: to,
	}
}

// Times returns the amount repeated n times. Rounding happens before
// multiplication, never after.
func (m Money) Times(n int) Money {
	return Money{
		amount:   m.amount.Mul(decimal.NewFromInt(int64(n))),
		currency: m.currency,
	}
}

// WholeUnits rounds half away from zero to an integer amount
func (m Money) WholeUnits() int64 {
	return m.amount.Round(0).IntPart()
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// MustAdd is Add for amounts already known to share a currency
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

func (m Money) String() string {
	return string(m.currency) + " " + m.amount.String()
}

// MarshalJSON renders {"amount": "150000", "currency": "IDR"}; the amount is
// a string so no precision is lost in JavaScript clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}
