package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultCardTitleWidth is the number of title runes shown on a grid card
const DefaultCardTitleWidth = 40

// catalogFailureMessage is shown while the catalog is in the failed state
const catalogFailureMessage = "Gagal memuat produk. Silakan coba lagi nanti."

// CatalogSource fetches the raw product records from the remote catalog
type CatalogSource interface {
	Fetch(ctx context.Context) ([]catalog.RawProduct, error)
}

// CatalogOption configures a CatalogService
type CatalogOption func(*CatalogService)

// WithCardTitleWidth sets how many title runes a grid card shows
func WithCardTitleWidth(n int) CatalogOption {
	return func(s *CatalogService) {
		if n > 0 {
			s.cardTitleWidth = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) {
		s.now = now
	}
}

// WithMetrics reports load outcomes to m
func WithMetrics(m Metrics) CatalogOption {
	return func(s *CatalogService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// CatalogService loads the shared catalog store from its source and tracks
// the load status. A failed load clears the store and stays failed until
// the next explicit reload.
type CatalogService struct {
	store   *catalog.Store
	source  CatalogSource
	pricing *pricing.Policy
	logger  *zap.Logger
	metrics Metrics

	cardTitleWidth int
	now            func() time.Time
	group          singleflight.Group

	mu        sync.RWMutex
	state     CatalogState
	observers []func()
}

// NewCatalogService creates a CatalogService in the loading state
func NewCatalogService(
	store *catalog.Store,
	source CatalogSource,
	policy *pricing.Policy,
	logger *zap.Logger,
	opts ...CatalogOption,
) *CatalogService {
	s := &CatalogService{
		store:          store,
		source:         source,
		pricing:        policy,
		logger:         logger,
		metrics:        nopMetrics{},
		cardTitleWidth: DefaultCardTitleWidth,
		now:            time.Now,
		state:          CatalogState{Status: CatalogLoading},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after every load attempt, successful or not
func (s *CatalogService) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// State returns the current catalog status
func (s *CatalogService) State() CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Load fetches and installs the catalog. Concurrent calls share one fetch.
// The fetch ignores the caller's cancellation: the store is shared, so an
// aborted request must not leave every session with an empty catalog. The
// source's own timeout bounds the wait.
func (s *CatalogService) Load(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	_, err, joined := s.group.Do("catalog", func() (any, error) {
		return nil, s.load(ctx)
	})
	if joined {
		s.logger.Debug("Catalog load joined in-flight fetch")
	}
	return err
}

// LoadAsync starts a load in the background and returns immediately
func (s *CatalogService) LoadAsync(ctx context.Context) {
	go func() {
		_ = s.Load(ctx)
	}()
}

func (s *CatalogService) load(ctx context.Context) error {
	s.setState(CatalogState{Status: CatalogLoading, Version: s.store.Version()})
	start := s.now()

	raw, err := s.source.Fetch(ctx)
	if err == nil {
		err = s.store.Load(raw)
	}
	if err != nil {
		err = classifyLoadError(err)
		s.store.Clear()
		s.setState(CatalogState{
			Status:    CatalogFailed,
			Error:     catalogFailureMessage,
			ErrorCode: errorCode(err),
			Version:   s.store.Version(),
		})
		s.logger.Error("Failed to load catalog", zap.Error(err))
		s.metrics.RecordCatalogLoad(ctx, LoadFailed, 0, s.now().Sub(start))
		s.notify()
		return err
	}

	loadedAt := s.now()
	s.setState(CatalogState{
		Status:   CatalogReady,
		Version:  s.store.Version(),
		LoadedAt: &loadedAt,
	})
	s.logger.Info("Catalog loaded",
		zap.Int("products", s.store.Len()),
		zap.Uint64("version", s.store.Version()),
		zap.Duration("duration", loadedAt.Sub(start)))
	s.metrics.RecordCatalogLoad(ctx, LoadSucceeded, s.store.Len(), loadedAt.Sub(start))
	s.notify()
	return nil
}

// View returns the catalog listing in source order
func (s *CatalogService) View() CatalogView {
	products := s.store.All()
	view := CatalogView{
		CatalogState: s.State(),
		Products:     make([]ProductView, 0, len(products)),
	}
	for _, p := range products {
		view.Products = append(view.Products, s.productView(p))
	}
	return view
}

// Product returns the detail view of one product
func (s *CatalogService) Product(id int64) (ProductView, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return ProductView{}, err
	}
	return s.productView(p), nil
}

func (s *CatalogService) productView(p catalog.Product) ProductView {
	price := s.pricing.DisplayPrice(p.Price)
	return ProductView{
		ID:          p.ID,
		Title:       p.Title,
		CardTitle:   p.ShortTitle(s.cardTitleWidth),
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       s.pricing.Format(price),
		PriceAmount: price.IntPart(),
	}
}

func (s *CatalogService) setState(state CatalogState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *CatalogService) notify() {
	s.mu.RLock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}

// classifyLoadError keeps catalog errors as they are and treats anything
// else (context cancellation, transport) as a fetch failure.
func classifyLoadError(err error) error {
	if errors.Is(err, shared.ErrCatalogFetchFailed) || errors.Is(err, shared.ErrCatalogDataInvalid) {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrCatalogFetchFailed, err)
}

func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
