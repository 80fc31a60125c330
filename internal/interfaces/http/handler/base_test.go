package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-1")
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_Success(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "world", resp.Data.(map[string]any)["hello"])
}

func TestBaseHandler_Created(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Created(c, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "domain error",
			err:        shared.ErrUnknownProduct,
			wantStatus: http.StatusNotFound,
			wantCode:   "UNKNOWN_PRODUCT",
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("dispatch: %w", shared.ErrEmptyCart),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EMPTY_CART",
		},
		{
			name:       "catalog failure is a bad gateway",
			err:        fmt.Errorf("%w: %w", shared.ErrCatalogFetchFailed, assert.AnError),
			wantStatus: http.StatusBadGateway,
			wantCode:   "CATALOG_FETCH_FAILED",
		},
		{
			name:       "index out of range",
			err:        shared.ErrIndexOutOfRange,
			wantStatus: http.StatusConflict,
			wantCode:   "INDEX_OUT_OF_RANGE",
		},
		{
			name:       "unknown error",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}

	t.Run("internal errors keep the cause off the wire", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, fmt.Errorf("secret detail"))

		assert.NotContains(t, w.Body.String(), "secret detail")
		require.Len(t, c.Errors, 1)
		assert.Contains(t, c.Errors.String(), "secret detail")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandler_HandleBindError(t *testing.T) {
	t.Run("malformed JSON", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleBindError(c, &json.SyntaxError{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleBindError(c, fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 10}))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeTooLarge, decodeResponse(t, w).Error.Code)
	})
}
