package storefront

import "time"

// IntentType enumerates the user intents a session accepts
type IntentType string

const (
	IntentOpenProduct    IntentType = "open_product"
	IntentAddToCart      IntentType = "add_to_cart"
	IntentRemoveLine     IntentType = "remove_line"
	IntentOpenCart       IntentType = "open_cart"
	IntentOpenCheckout   IntentType = "open_checkout"
	IntentSubmitCheckout IntentType = "submit_checkout"
	IntentDismiss        IntentType = "dismiss"
	IntentCancelKey      IntentType = "cancel_key"
)

// Intent is one user action. Only the payload fields of its type are read.
type Intent struct {
	Type IntentType `json:"type" binding:"required,oneof=open_product add_to_cart remove_line open_cart open_checkout submit_checkout dismiss cancel_key"`

	// open_product, add_to_cart
	ProductID int64 `json:"product_id,omitempty"`

	// remove_line; ExpectedProductID guards against an index taken from a stale snapshot
	Index             int    `json:"index,omitempty" binding:"min=0"`
	ExpectedProductID *int64 `json:"expected_product_id,omitempty"`

	// submit_checkout
	CustomerName    string `json:"customer_name,omitempty" binding:"max=200"`
	CustomerAddress string `json:"customer_address,omitempty" binding:"max=1000"`
}

// EffectType identifies a signal for the host surface
type EffectType string

const (
	EffectScrollLock EffectType = "scroll_lock"
	EffectHandoff    EffectType = "handoff"
)

// Effect is a side effect the core signals but never performs itself
type Effect struct {
	Type         EffectType   `json:"type"`
	ScrollLocked *bool        `json:"scroll_locked,omitempty"`
	Handoff      *HandoffView `json:"handoff,omitempty"`
}

// HandoffView is the composed order ready to open in the messaging channel
type HandoffView struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	URL       string `json:"url"`
}

// Result is the outcome of one dispatched intent
type Result struct {
	Snapshot Snapshot `json:"snapshot"`
	Effects  []Effect `json:"effects"`
}

// Snapshot is the render input for the view collaborator
type Snapshot struct {
	SessionID    string        `json:"session_id"`
	Catalog      CatalogState  `json:"catalog"`
	View         ViewStateView `json:"view"`
	ScrollLocked bool          `json:"scroll_locked"`
	Cart         CartView      `json:"cart"`
	Toasts       []ToastView   `json:"toasts"`
}

// ViewStateView describes the active overlay
type ViewStateView struct {
	Kind      string `json:"kind"`
	ProductID *int64 `json:"product_id,omitempty"`
}

// CartView is the cart overlay content plus the header badge count
type CartView struct {
	Lines            []CartLineView `json:"lines"`
	TotalQuantity    int            `json:"total_quantity"`
	GrandTotal       string         `json:"grand_total"`
	GrandTotalAmount int64          `json:"grand_total_amount"`
	CanCheckout      bool           `json:"can_checkout"`
}

// CartLineView is one rendered cart line. Index is its position for remove_line.
type CartLineView struct {
	Index           int    `json:"index"`
	ProductID       int64  `json:"product_id"`
	Title           string `json:"title"`
	ImageURL        string `json:"image_url"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	UnitPriceAmount int64  `json:"unit_price_amount"`
	LineTotal       string `json:"line_total"`
	LineTotalAmount int64  `json:"line_total_amount"`
}

// ToastView is a transient notification
type ToastView struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CatalogStatus is the lifecycle of the shared catalog
type CatalogStatus string

const (
	CatalogLoading CatalogStatus = "loading"
	CatalogReady   CatalogStatus = "ready"
	CatalogFailed  CatalogStatus = "failed"
)

// CatalogState is the catalog status shown alongside every snapshot
type CatalogState struct {
	Status    CatalogStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	Version   uint64        `json:"version"`
	LoadedAt  *time.Time    `json:"loaded_at,omitempty"`
}

// ProductView is a product card in the grid, or the detail overlay content
type ProductView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CardTitle   string `json:"card_title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       string `json:"price"`
	PriceAmount int64  `json:"price_amount"`
}

// CatalogView is the catalog listing
type CatalogView struct {
	CatalogState
	Products []ProductView `json:"products"`
}
