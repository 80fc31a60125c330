// Package order composes the finalized order message and its handoff URL.
package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// DefaultTitleWidth is the number of title runes kept per order line
const DefaultTitleWidth = 30

// Draft holds the customer fields entered at checkout
type Draft struct {
	CustomerName    string `validate:"required"`
	CustomerAddress string `validate:"required"`
}

// NewDraft creates a draft with surrounding whitespace trimmed
func NewDraft(name, address string) Draft {
	return Draft{
		CustomerName:    strings.TrimSpace(name),
		CustomerAddress: strings.TrimSpace(address),
	}
}

// Ledger is the read side of the cart the composer needs
type Ledger interface {
	IsEmpty() bool
	Lines() []cart.Line
	UnitPrice(line cart.Line) (valueobject.Money, error)
	LineTotal(line cart.Line) (valueobject.Money, error)
	GrandTotal() (valueobject.Money, error)
}

// Handoff is the payload delegated to the external messaging channel
type Handoff struct {
	Message   string
	Recipient string
	URL       string
}

// Config holds the handoff channel settings
type Config struct {
	BaseURL    string // e.g. https://wa.me
	Recipient  string // fixed recipient id, e.g. a phone number
	TitleWidth int
}

// Composer builds order messages. It never mutates the ledger: clearing the
// cart, closing the view and raising the confirmation are the caller's job.
type Composer struct {
	cfg      Config
	products cart.ProductResolver
	pricing  *pricing.Policy
	validate *validator.Validate
}

// NewComposer creates a Composer
func NewComposer(cfg Config, products cart.ProductResolver, policy *pricing.Policy) (*Composer, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("order: handoff base URL is required")
	}
	if cfg.Recipient == "" {
		return nil, errors.New("order: handoff recipient is required")
	}
	if cfg.TitleWidth <= 0 {
		cfg.TitleWidth = DefaultTitleWidth
	}
	return &Composer{
		cfg:      cfg,
		products: products,
		pricing:  policy,
		validate: validator.New(),
	}, nil
}

// Submit validates the draft against the ledger and composes the handoff.
// An empty ledger is reported before an incomplete draft.
func (c *Composer) Submit(draft Draft, ledger Ledger) (Handoff, error) {
	if ledger.IsEmpty() {
		return Handoff{}, shared.ErrEmptyCart
	}

	draft = NewDraft(draft.CustomerName, draft.CustomerAddress)
	if err := c.validate.Struct(draft); err != nil {
		return Handoff{}, shared.ErrIncompleteDraft
	}

	msg, err := c.Message(draft, ledger)
	if err != nil {
		return Handoff{}, err
	}

	return Handoff{
		Message:   msg,
		Recipient: c.cfg.Recipient,
		URL:       c.HandoffURL(msg),
	}, nil
}

// Message renders the order text: header, numbered lines and total
func (c *Composer) Message(draft Draft, ledger Ledger) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "*Pesanan dari %s*\n", draft.CustomerName)
	fmt.Fprintf(&b, "Alamat: %s\n\n", draft.CustomerAddress)
	b.WriteString("*Detail Pesanan:*\n")

	for i, line := range ledger.Lines() {
		product, err := c.products.Get(line.ProductID)
		if err != nil {
			return "", err
		}
		unit, err := ledger.UnitPrice(line)
		if err != nil {
			return "", err
		}
		total, err := ledger.LineTotal(line)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d. %s - %d x %s = %s\n",
			i+1,
			product.ShortTitle(c.cfg.TitleWidth),
			line.Quantity,
			c.pricing.Format(unit),
			c.pricing.Format(total),
		)
	}

	grand, err := ledger.GrandTotal()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\n*Total: %s*", c.pricing.Format(grand))

	return b.String(), nil
}

// HandoffURL returns <base>/<recipient>?text=<message>, percent-encoded
func (c *Composer) HandoffURL(message string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + url.PathEscape(c.cfg.Recipient) + "?text=" + EncodeComponent(message)
}

// EncodeComponent percent-encodes s for use as a query value. Spaces become
// %20 rather than "+", and UTF-8 multibyte characters are encoded byte-wise.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
