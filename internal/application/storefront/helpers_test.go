package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/pricing"
)

// MockCatalogSource is a mock implementation of CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Fetch(ctx context.Context) ([]catalog.RawProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RawProduct), args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}

func raw(id int64, title, price string) catalog.RawProduct {
	return catalog.RawProduct{
		ID:          ptr(id),
		Title:       ptr(title),
		Category:    ptr("misc"),
		Description: ptr("desc"),
		Image:       ptr("https://example.com/p.png"),
		Price:       ptr(decimal.RequireFromString(price)),
	}
}

func defaultRecords() []catalog.RawProduct {
	return []catalog.RawProduct{
		raw(1, "Widget", "10"),
		raw(2, "Gadget", "109.95"),
		raw(3, "Mens Casual Premium Slim Fit T-Shirts", "22.3"),
	}
}

type fixture struct {
	store    *catalog.Store
	policy   *pricing.Policy
	composer *order.Composer
}

func newFixture(t *testing.T, records ...catalog.RawProduct) fixture {
	t.Helper()
	store := catalog.NewStore()
	if len(records) > 0 {
		require.NoError(t, store.Load(records))
	}
	policy, err := pricing.NewPolicy(pricing.DefaultConfig())
	require.NoError(t, err)
	composer, err := order.NewComposer(order.Config{
		BaseURL:   "https://wa.me",
		Recipient: "6288991162533",
	}, store, policy)
	require.NoError(t, err)
	return fixture{store: store, policy: policy, composer: composer}
}

func (f fixture) deps() SessionDeps {
	return SessionDeps{
		Store:    f.store,
		Pricing:  f.policy,
		Composer: f.composer,
	}
}

func (f fixture) session(strict bool) *Session {
	return NewSession("s-1", SessionConfig{ToastDuration: time.Minute, Strict: strict}, f.deps())
}

func dispatch(t *testing.T, s *Session, intent Intent) Result {
	t.Helper()
	res, err := s.Dispatch(context.Background(), intent)
	require.NoError(t, err)
	return res
}
