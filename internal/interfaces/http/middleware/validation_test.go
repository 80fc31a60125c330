package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationProbe struct {
	Type  string `json:"type" binding:"required,oneof=open_cart dismiss"`
	Index int    `json:"index" binding:"min=0"`
	Name  string `json:"customer_name" binding:"max=5"`
}

func bindProbe(t *testing.T, body string) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var probe validationProbe
	return c.ShouldBindJSON(&probe)
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	t.Run("reports JSON field names and messages", func(t *testing.T) {
		err := bindProbe(t, `{"index": -1, "customer_name": "toolongname"}`)
		require.Error(t, err)

		details, ok := ValidationDetails(err)
		require.True(t, ok)

		byField := map[string]string{}
		for _, d := range details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", byField["type"])
		assert.Equal(t, "Must be at least 0", byField["index"])
		assert.Equal(t, "Must be at most 5 characters", byField["customer_name"])
	})

	t.Run("oneof lists the allowed values", func(t *testing.T) {
		err := bindProbe(t, `{"type": "explode"}`)
		details, ok := ValidationDetails(err)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "Must be one of: open_cart, dismiss", details[0].Message)
	})

	t.Run("malformed JSON is not a validation error", func(t *testing.T) {
		err := bindProbe(t, `{"type":`)
		require.Error(t, err)
		_, ok := ValidationDetails(err)
		assert.False(t, ok)
	})
}
