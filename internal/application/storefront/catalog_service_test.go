package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

func newCatalogService(t *testing.T, source CatalogSource, opts ...CatalogOption) (*CatalogService, fixture) {
	t.Helper()
	f := newFixture(t)
	return NewCatalogService(f.store, source, f.policy, zap.NewNop(), opts...), f
}

func TestCatalogService_InitialState(t *testing.T) {
	svc, _ := newCatalogService(t, new(MockCatalogSource))

	state := svc.State()
	assert.Equal(t, CatalogLoading, state.Status)
	assert.Empty(t, svc.View().Products)
}

func TestCatalogService_Load(t *testing.T) {
	t.Run("success installs the products", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(defaultRecords(), nil).Once()

		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		svc, f := newCatalogService(t, source, WithClock(func() time.Time { return fixed }))

		require.NoError(t, svc.Load(context.Background()))

		state := svc.State()
		assert.Equal(t, CatalogReady, state.Status)
		assert.Empty(t, state.Error)
		require.NotNil(t, state.LoadedAt)
		assert.Equal(t, fixed, *state.LoadedAt)
		assert.Equal(t, 3, f.store.Len())
		source.AssertExpectations(t)
	})

	t.Run("fetch failure clears the store and stays failed", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(defaultRecords(), nil).Once()
		source.On("Fetch", mock.Anything).
			Return(nil, fmt.Errorf("status 503: %w", shared.ErrCatalogFetchFailed)).Once()

		svc, f := newCatalogService(t, source)
		require.NoError(t, svc.Load(context.Background()))

		err := svc.Load(context.Background())
		assert.ErrorIs(t, err, shared.ErrCatalogFetchFailed)

		state := svc.State()
		assert.Equal(t, CatalogFailed, state.Status)
		assert.Equal(t, "CATALOG_FETCH_FAILED", state.ErrorCode)
		assert.NotEmpty(t, state.Error)
		assert.Equal(t, 0, f.store.Len())

		_, err = f.store.Get(1)
		assert.ErrorIs(t, err, shared.ErrUnknownProduct)
		source.AssertNumberOfCalls(t, "Fetch", 2)
	})

	t.Run("malformed record rejects the load", func(t *testing.T) {
		bad := raw(2, "Gadget", "1")
		bad.Title = nil

		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return([]catalog.RawProduct{raw(1, "Widget", "10"), bad}, nil)

		svc, f := newCatalogService(t, source)
		err := svc.Load(context.Background())

		assert.ErrorIs(t, err, shared.ErrCatalogDataInvalid)
		assert.Equal(t, "CATALOG_DATA_INVALID", svc.State().ErrorCode)
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("unclassified errors count as fetch failures", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(nil, context.DeadlineExceeded)

		svc, _ := newCatalogService(t, source)
		err := svc.Load(context.Background())

		assert.ErrorIs(t, err, shared.ErrCatalogFetchFailed)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("caller cancellation does not abort the shared fetch", func(t *testing.T) {
		live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
		source := new(MockCatalogSource)
		source.On("Fetch", live).Return(defaultRecords(), nil).Twice()

		svc, f := newCatalogService(t, source)
		require.NoError(t, svc.Load(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, svc.Load(ctx))

		assert.Equal(t, CatalogReady, svc.State().Status)
		assert.Equal(t, 3, f.store.Len())
		source.AssertNumberOfCalls(t, "Fetch", 2)
	})

	t.Run("a later reload recovers", func(t *testing.T) {
		source := new(MockCatalogSource)
		source.On("Fetch", mock.Anything).Return(nil, shared.ErrCatalogFetchFailed).Once()
		source.On("Fetch", mock.Anything).Return(defaultRecords(), nil).Once()

		svc, _ := newCatalogService(t, source)
		require.Error(t, svc.Load(context.Background()))
		require.NoError(t, svc.Load(context.Background()))

		assert.Equal(t, CatalogReady, svc.State().Status)
		assert.Len(t, svc.View().Products, 3)
	})
}

func TestCatalogService_NotifiesObservers(t *testing.T) {
	source := new(MockCatalogSource)
	source.On("Fetch", mock.Anything).Return(defaultRecords(), nil).Once()
	source.On("Fetch", mock.Anything).Return(nil, shared.ErrCatalogFetchFailed).Once()

	svc, _ := newCatalogService(t, source)
	var calls int32
	svc.Subscribe(func() { atomic.AddInt32(&calls, 1) })

	require.NoError(t, svc.Load(context.Background()))
	require.Error(t, svc.Load(context.Background()))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// blockingSource counts fetches and holds each one until released
type blockingSource struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context) ([]catalog.RawProduct, error) {
	atomic.AddInt32(&b.calls, 1)
	b.started <- struct{}{}
	<-b.release
	return defaultRecords(), nil
}

func TestCatalogService_ConcurrentLoadsShareOneFetch(t *testing.T) {
	source := &blockingSource{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
	svc, _ := newCatalogService(t, source)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = svc.Load(context.Background())
	}()
	<-source.started

	for i := 1; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Load(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}

func TestCatalogService_LoadAsync(t *testing.T) {
	source := new(MockCatalogSource)
	source.On("Fetch", mock.Anything).Return(defaultRecords(), nil)

	svc, _ := newCatalogService(t, source)
	svc.LoadAsync(context.Background())

	assert.Eventually(t, func() bool {
		return svc.State().Status == CatalogReady
	}, time.Second, 5*time.Millisecond)
}

func TestCatalogService_View(t *testing.T) {
	source := new(MockCatalogSource)
	source.On("Fetch", mock.Anything).Return(defaultRecords(), nil)

	svc, _ := newCatalogService(t, source, WithCardTitleWidth(10))
	require.NoError(t, svc.Load(context.Background()))

	view := svc.View()
	assert.Equal(t, CatalogReady, view.Status)
	require.Len(t, view.Products, 3)

	assert.Equal(t, int64(1), view.Products[0].ID)
	assert.Equal(t, "Rp 150.000", view.Products[0].Price)
	assert.Equal(t, int64(150000), view.Products[0].PriceAmount)
	assert.Equal(t, "Widget...", view.Products[0].CardTitle)

	assert.Equal(t, "Rp 1.649.250", view.Products[1].Price)
	assert.Equal(t, "Mens Casua...", view.Products[2].CardTitle)
	assert.Equal(t, "Mens Casual Premium Slim Fit T-Shirts", view.Products[2].Title)

	p, err := svc.Product(2)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", p.Title)

	_, err = svc.Product(42)
	assert.ErrorIs(t, err, shared.ErrUnknownProduct)
}
