// Package view tracks which storefront overlay is visible.
package view

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// Kind identifies an overlay
type Kind string

const (
	KindClosed        Kind = "closed"
	KindProductDetail Kind = "product_detail"
	KindCart          Kind = "cart"
	KindCheckout      Kind = "checkout"
)

// State is the active overlay. ProductID is set only for KindProductDetail.
type State struct {
	Kind      Kind
	ProductID int64
}

// Closed is the state with no overlay open
var Closed = State{Kind: KindClosed}

// IsOpen reports whether an overlay is visible
func (s State) IsOpen() bool {
	return s.Kind != KindClosed
}

func (s State) String() string {
	if s.Kind == KindProductDetail {
		return fmt.Sprintf("%s(%d)", s.Kind, s.ProductID)
	}
	return string(s.Kind)
}

// Transition records a state change produced by one intent
type Transition struct {
	From State
	To   State
}

// Changed reports whether the state actually changed
func (t Transition) Changed() bool {
	return t.From != t.To
}

// ScrollLockChanged reports whether the host surface scroll lock must flip:
// entering any overlay from Closed locks it, returning to Closed releases it.
func (t Transition) ScrollLockChanged() bool {
	return t.From.IsOpen() != t.To.IsOpen()
}

// Machine is the overlay state machine. Exactly one state is active.
// A Machine is not safe for concurrent use; its owner serializes access.
type Machine struct {
	state    State
	resolves func(productID int64) bool
}

// NewMachine creates a machine in the Closed state. resolves reports whether
// a product id exists in the catalog.
func NewMachine(resolves func(productID int64) bool) *Machine {
	return &Machine{
		state:    Closed,
		resolves: resolves,
	}
}

// State returns the active state
func (m *Machine) State() State {
	return m.state
}

// ScrollLocked reports whether background scroll should be suspended
func (m *Machine) ScrollLocked() bool {
	return m.state.IsOpen()
}

// OpenProduct shows the detail overlay of a product, from any state
func (m *Machine) OpenProduct(productID int64) (Transition, error) {
	if !m.resolves(productID) {
		return m.stay(), fmt.Errorf("open product %d: %w", productID, shared.ErrUnknownProduct)
	}
	return m.moveTo(State{Kind: KindProductDetail, ProductID: productID}), nil
}

// ProductAdded applies the add-to-cart effect on the view: the detail
// overlay of the added product closes. Any other state, including the detail
// of a different product, is left as is (grid quick-add).
func (m *Machine) ProductAdded(productID int64) Transition {
	if m.state.Kind == KindProductDetail && m.state.ProductID == productID {
		return m.moveTo(Closed)
	}
	return m.stay()
}

// Dismiss closes whatever overlay is open
func (m *Machine) Dismiss() Transition {
	return m.moveTo(Closed)
}

// OpenCart shows the cart overlay from Closed or ProductDetail.
// Opening it again while visible is a no-op.
func (m *Machine) OpenCart() (Transition, error) {
	switch m.state.Kind {
	case KindClosed, KindProductDetail, KindCart:
		return m.moveTo(State{Kind: KindCart}), nil
	default:
		return m.stay(), fmt.Errorf("open cart from %s: %w", m.state, shared.ErrInvalidTransition)
	}
}

// OpenCheckout moves from the cart to checkout when the cart has lines
func (m *Machine) OpenCheckout(cartEmpty bool) (Transition, error) {
	if m.state.Kind != KindCart {
		return m.stay(), fmt.Errorf("open checkout from %s: %w", m.state, shared.ErrInvalidTransition)
	}
	if cartEmpty {
		return m.stay(), shared.ErrEmptyCart
	}
	return m.moveTo(State{Kind: KindCheckout}), nil
}

// RequireCheckout fails unless the checkout overlay is active
func (m *Machine) RequireCheckout() error {
	if m.state.Kind != KindCheckout {
		return fmt.Errorf("submit from %s: %w", m.state, shared.ErrInvalidTransition)
	}
	return nil
}

// Submitted closes the checkout overlay after a successful submission
func (m *Machine) Submitted() (Transition, error) {
	if err := m.RequireCheckout(); err != nil {
		return m.stay(), err
	}
	return m.moveTo(Closed), nil
}

// CancelKey closes exactly one overlay level per press, preferring
// Checkout, then Cart, then ProductDetail. With nothing open it is a no-op.
func (m *Machine) CancelKey() Transition {
	switch m.state.Kind {
	case KindCheckout, KindCart, KindProductDetail:
		return m.moveTo(Closed)
	default:
		return m.stay()
	}
}

// Invalidate forces Closed when the product shown in detail no longer resolves
func (m *Machine) Invalidate() Transition {
	if m.state.Kind == KindProductDetail && !m.resolves(m.state.ProductID) {
		return m.moveTo(Closed)
	}
	return m.stay()
}

func (m *Machine) moveTo(next State) Transition {
	t := Transition{From: m.state, To: next}
	m.state = next
	return t
}

func (m *Machine) stay() Transition {
	return Transition{From: m.state, To: m.state}
}
