package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
)

// Storefront error codes, equal to the domain error codes
const (
	ErrCodeCatalogFetchFailed = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogDataInvalid = "CATALOG_DATA_INVALID"
	ErrCodeUnknownProduct     = "UNKNOWN_PRODUCT"
	ErrCodeIndexOutOfRange    = "INDEX_OUT_OF_RANGE"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeIncompleteDraft    = "INCOMPLETE_DRAFT"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeTooManySessions    = "TOO_MANY_SESSIONS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// The upstream catalog failed, not the client
	ErrCodeCatalogFetchFailed: http.StatusBadGateway,
	ErrCodeCatalogDataInvalid: http.StatusBadGateway,

	ErrCodeUnknownProduct:  http.StatusNotFound,
	ErrCodeIndexOutOfRange: http.StatusConflict,
	ErrCodeSessionNotFound: http.StatusNotFound,

	// User-correctable checkout errors
	ErrCodeEmptyCart:         http.StatusUnprocessableEntity,
	ErrCodeIncompleteDraft:   http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,

	ErrCodeTooManySessions: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
