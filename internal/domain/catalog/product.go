package catalog

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Product represents a purchasable item of the catalog.
// Products are created in bulk on catalog load and never mutated afterwards.
type Product struct {
	ID          int64
	Title       string
	Category    string
	Description string
	ImageURL    string
	Price       decimal.Decimal // source currency unit
}

// RawProduct is a product record exactly as delivered by the catalog source.
// Pointer fields distinguish a missing field from a zero value.
type RawProduct struct {
	ID          *int64           `json:"id" validate:"required"`
	Title       *string          `json:"title" validate:"required,min=1"`
	Category    *string          `json:"category" validate:"required"`
	Description *string          `json:"description" validate:"required"`
	Image       *string          `json:"image" validate:"required,url"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewProductFromRaw validates a raw record and converts it into a Product
func NewProductFromRaw(raw RawProduct) (Product, error) {
	if err := recordValidator.Struct(raw); err != nil {
		return Product{}, fmt.Errorf("%w: %s", shared.ErrCatalogDataInvalid, describeValidation(err))
	}
	if raw.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price cannot be negative", shared.ErrCatalogDataInvalid)
	}

	return Product{
		ID:          *raw.ID,
		Title:       *raw.Title,
		Category:    *raw.Category,
		Description: *raw.Description,
		ImageURL:    *raw.Image,
		Price:       *raw.Price,
	}, nil
}

// ShortTitle returns the first n runes of the title followed by an ellipsis.
// The ellipsis is always appended, matching how titles are shown on cards,
// in the cart and in order messages.
func (p Product) ShortTitle(n int) string {
	return Truncate(p.Title, n) + "..."
}

// Truncate cuts s to at most n runes without splitting a multibyte character
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func describeValidation(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			parts = append(parts, e.Field()+" is required")
		case "url":
			parts = append(parts, e.Field()+" must be a valid URL")
		default:
			parts = append(parts, e.Field()+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
