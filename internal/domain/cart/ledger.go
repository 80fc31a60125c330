// Package cart holds the visitor's line items and their totals.
package cart

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductResolver resolves product ids against the current catalog
type ProductResolver interface {
	Get(id int64) (catalog.Product, error)
}

// Line is one distinct product in the cart and its quantity (always >= 1)
type Line struct {
	ProductID int64
	Quantity  int
}

// Ledger is the ordered sequence of cart lines.
// Insertion order is display order, and line indexes follow it.
// A Ledger is not safe for concurrent use; its owner serializes access.
type Ledger struct {
	lines    []Line
	products ProductResolver
	pricing  *pricing.Policy
}

// NewLedger creates an empty ledger
func NewLedger(products ProductResolver, policy *pricing.Policy) *Ledger {
	return &Ledger{
		products: products,
		pricing:  policy,
	}
}

// Add adds one unit of the product and returns its resulting quantity.
// An existing line is incremented; otherwise a new line is appended.
func (l *Ledger) Add(productID int64) (int, error) {
	if _, err := l.products.Get(productID); err != nil {
		return 0, err
	}

	for i := range l.lines {
		if l.lines[i].ProductID == productID {
			l.lines[i].Quantity++
			return l.lines[i].Quantity, nil
		}
	}

	l.lines = append(l.lines, Line{ProductID: productID, Quantity: 1})
	return 1, nil
}

// RemoveAt removes the whole line at index and returns it
func (l *Ledger) RemoveAt(index int) (Line, error) {
	if index < 0 || index >= len(l.lines) {
		return Line{}, fmt.Errorf("index %d of %d lines: %w", index, len(l.lines), shared.ErrIndexOutOfRange)
	}

	removed := l.lines[index]
	l.lines = append(l.lines[:index], l.lines[index+1:]...)
	return removed, nil
}

// RemoveAtChecked removes the line at index only if it still holds
// expectedProductID. An index taken from an older snapshot that now points
// at another product is treated as out of range.
func (l *Ledger) RemoveAtChecked(index int, expectedProductID int64) (Line, error) {
	if index >= 0 && index < len(l.lines) && l.lines[index].ProductID != expectedProductID {
		return Line{}, fmt.Errorf("index %d holds product %d, expected %d: %w",
			index, l.lines[index].ProductID, expectedProductID, shared.ErrIndexOutOfRange)
	}
	return l.RemoveAt(index)
}

// TotalQuantity returns the sum of all line quantities
func (l *Ledger) TotalQuantity() int {
	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

// UnitPrice returns the rounded display price of the line's product
func (l *Ledger) UnitPrice(line Line) (valueobject.Money, error) {
	p, err := l.products.Get(line.ProductID)
	if err != nil {
		return valueobject.Money{}, err
	}
	return l.pricing.DisplayPrice(p.Price), nil
}

// LineTotal returns round(price × rate) × quantity for the line
func (l *Ledger) LineTotal(line Line) (valueobject.Money, error) {
	p, err := l.products.Get(line.ProductID)
	if err != nil {
		return valueobject.Money{}, err
	}
	return l.pricing.LineTotal(p.Price, line.Quantity), nil
}

// GrandTotal returns the sum of all line totals
func (l *Ledger) GrandTotal() (valueobject.Money, error) {
	total := l.pricing.Zero()
	for _, line := range l.lines {
		lineTotal, err := l.LineTotal(line)
		if err != nil {
			return valueobject.Money{}, err
		}
		total = total.MustAdd(lineTotal)
	}
	return total, nil
}

// Lines returns a copy of the lines in display order
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of lines
func (l *Ledger) Len() int {
	return len(l.lines)
}

// IsEmpty reports whether the ledger has no lines
func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Clear removes every line
func (l *Ledger) Clear() {
	l.lines = nil
}

// Prune drops the lines whose product keep rejects and returns them
func (l *Ledger) Prune(keep func(productID int64) bool) []Line {
	var dropped []Line
	kept := l.lines[:0]
	for _, line := range l.lines {
		if keep(line.ProductID) {
			kept = append(kept, line)
		} else {
			dropped = append(dropped, line)
		}
	}
	l.lines = kept
	return dropped
}
