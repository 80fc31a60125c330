package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Catalog errors
var (
	// ErrCatalogFetchFailed is a network or HTTP failure while fetching the catalog
	ErrCatalogFetchFailed = NewDomainError("CATALOG_FETCH_FAILED", "Failed to fetch product catalog")
	// ErrCatalogDataInvalid is a malformed catalog payload or record
	ErrCatalogDataInvalid = NewDomainError("CATALOG_DATA_INVALID", "Product catalog data is invalid")
	// ErrUnknownProduct is returned when a product id does not resolve in the catalog
	ErrUnknownProduct = NewDomainError("UNKNOWN_PRODUCT", "Product not found in catalog")
)

// Cart and checkout errors
var (
	ErrIndexOutOfRange   = NewDomainError("INDEX_OUT_OF_RANGE", "Cart line index is out of range")
	ErrEmptyCart         = NewDomainError("EMPTY_CART", "Keranjang kosong. Tambahkan produk terlebih dahulu.")
	ErrIncompleteDraft   = NewDomainError("INCOMPLETE_DRAFT", "Mohon lengkapi semua data pada form checkout.")
	ErrInvalidTransition = NewDomainError("INVALID_TRANSITION", "Operation not allowed in current view")
	ErrSessionNotFound   = NewDomainError("SESSION_NOT_FOUND", "Session not found")
	ErrTooManySessions   = NewDomainError("TOO_MANY_SESSIONS", "Too many active sessions, try again later")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
)

// IsDefect reports whether err is a defect-class error: a reference to a
// product or cart line that should never reach the end user.
func IsDefect(err error) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr == ErrUnknownProduct || domainErr == ErrIndexOutOfRange
}
