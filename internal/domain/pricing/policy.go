// Package pricing converts catalog prices into display-currency amounts.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Config holds the fixed conversion and presentation settings
type Config struct {
	Rate          decimal.Decimal      // display units per source unit
	Currency      valueobject.Currency // display currency
	CurrencyLabel string               // prefix used when formatting, e.g. "Rp"
	Locale        string               // BCP 47 tag used for digit grouping
}

// DefaultConfig returns the storefront defaults: USD catalog prices shown in Rupiah
func DefaultConfig() Config {
	return Config{
		Rate:          decimal.NewFromInt(15000),
		Currency:      valueobject.IDR,
		CurrencyLabel: "Rp",
		Locale:        "id",
	}
}

// Policy converts source prices with a fixed multiplier.
//
// Rounding is half away from zero to whole display units, which equals
// round-half-up for the non-negative prices a catalog carries. Unit prices
// are rounded first and then multiplied by quantity; order totals are the sum
// of those line totals. Rounding a raw sum instead can differ by whole
// display units, so every total in the system goes through LineTotal.
type Policy struct {
	rate     decimal.Decimal
	currency valueobject.Currency
	label    string
	printer  *message.Printer
}

// NewPolicy creates a Policy from the given configuration
func NewPolicy(cfg Config) (*Policy, error) {
	if !cfg.Rate.IsPositive() {
		return nil, errors.New("pricing: rate must be positive")
	}
	if !cfg.Currency.Valid() {
		return nil, fmt.Errorf("pricing: %w: %q", valueobject.ErrInvalidCurrency, cfg.Currency)
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("pricing: invalid locale %q: %w", cfg.Locale, err)
	}

	return &Policy{
		rate:     cfg.Rate,
		currency: cfg.Currency,
		label:    cfg.CurrencyLabel,
		printer:  message.NewPrinter(tag),
	}, nil
}

// Zero returns a zero amount in the display currency
func (p *Policy) Zero() valueobject.Money {
	return valueobject.Zero(p.currency)
}

// DisplayPrice returns round(source × rate) in the display currency
func (p *Policy) DisplayPrice(source decimal.Decimal) valueobject.Money {
	return valueobject.MustNewMoney(source, valueobject.USD).Convert(p.rate, p.currency)
}

// LineTotal returns DisplayPrice(source) × quantity
func (p *Policy) LineTotal(source decimal.Decimal, quantity int) valueobject.Money {
	return p.DisplayPrice(source).Times(quantity)
}

// Format renders a display amount with locale digit grouping, e.g. "Rp 150.000"
func (p *Policy) Format(m valueobject.Money) string {
	grouped := p.printer.Sprintf("%d", m.WholeUnits())
	if p.label == "" {
		return grouped
	}
	return p.label + " " + grouped
}
