package storefront

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordIntent(ctx context.Context, intent string, outcome string) {
	m.Called(ctx, intent, outcome)
}

func (m *MockMetrics) RecordOrderSubmitted(ctx context.Context, lines int, total decimal.Decimal) {
	m.Called(ctx, lines, total)
}

func (m *MockMetrics) RecordCatalogLoad(ctx context.Context, outcome string, products int, duration time.Duration) {
	m.Called(ctx, outcome, products, duration)
}

func TestSession_RecordsIntentOutcomes(t *testing.T) {
	f := newFixture(t, defaultRecords()...)
	metrics := new(MockMetrics)
	metrics.On("RecordIntent", mock.Anything, "add_to_cart", OutcomeApplied).Return().Once()
	metrics.On("RecordIntent", mock.Anything, "open_cart", OutcomeApplied).Return().Once()
	metrics.On("RecordIntent", mock.Anything, "open_checkout", OutcomeApplied).Return().Once()
	metrics.On("RecordIntent", mock.Anything, "submit_checkout", OutcomeRejected).Return().Once()
	metrics.On("RecordIntent", mock.Anything, "submit_checkout", OutcomeApplied).Return().Once()
	metrics.On("RecordIntent", mock.Anything, "add_to_cart", OutcomeIgnored).Return().Once()
	metrics.On("RecordOrderSubmitted", mock.Anything, 1, mock.MatchedBy(func(total decimal.Decimal) bool {
		return total.Equal(decimal.NewFromInt(150000))
	})).Return().Once()

	deps := f.deps()
	deps.Metrics = metrics
	s := NewSession("s-metrics", SessionConfig{ToastDuration: time.Minute}, deps)
	defer s.Close()

	dispatch(t, s, Intent{Type: IntentAddToCart, ProductID: 1})
	dispatch(t, s, Intent{Type: IntentOpenCart})
	dispatch(t, s, Intent{Type: IntentOpenCheckout})

	_, err := s.Dispatch(context.Background(), Intent{Type: IntentSubmitCheckout, CustomerName: "Ada"})
	assert.ErrorIs(t, err, shared.ErrIncompleteDraft)

	dispatch(t, s, Intent{Type: IntentSubmitCheckout, CustomerName: "Ada", CustomerAddress: "123 Lane"})
	dispatch(t, s, Intent{Type: IntentAddToCart, ProductID: 99})

	metrics.AssertExpectations(t)
}

func TestCatalogService_RecordsLoadOutcomes(t *testing.T) {
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	t.Run("success", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(defaultRecords(), nil)
		metrics := new(MockMetrics)
		metrics.On("RecordCatalogLoad", mock.Anything, LoadSucceeded, 3, time.Duration(0)).Return().Once()

		svc, _ := newCatalogService(t, source, WithMetrics(metrics), WithClock(now))
		require.NoError(t, svc.Load(context.Background()))
		metrics.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(nil, errors.New("boom"))
		metrics := new(MockMetrics)
		metrics.On("RecordCatalogLoad", mock.Anything, LoadFailed, 0, time.Duration(0)).Return().Once()

		f := newFixture(t, defaultRecords()...)
		svc := NewCatalogService(f.store, source, f.policy, zap.NewNop(), WithMetrics(metrics), WithClock(now))
		assert.ErrorIs(t, svc.Load(context.Background()), shared.ErrCatalogFetchFailed)
		metrics.AssertExpectations(t)
	})
}
