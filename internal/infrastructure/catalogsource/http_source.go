// Package catalogsource fetches the product catalog from a remote JSON endpoint.
package catalogsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	// DefaultEndpoint is the public demo catalog
	DefaultEndpoint = "https://fakestoreapi.com/products"

	// DefaultTimeout bounds one catalog fetch
	DefaultTimeout = 15 * time.Second

	// DefaultMaxResponseSize is the largest catalog body accepted (5MB)
	DefaultMaxResponseSize = 5 * 1024 * 1024

	tracerName = "github.com/storefront/backend/internal/infrastructure/catalogsource"
)

// ErrInvalidEndpoint indicates a catalog endpoint that is not an absolute http(s) URL
var ErrInvalidEndpoint = errors.New("catalogsource: endpoint must be an absolute http or https URL")

// Config holds the remote catalog settings
type Config struct {
	Endpoint        string
	Timeout         time.Duration
	MaxResponseSize int64
	UserAgent       string
}

// DefaultConfig returns the configuration for the public demo catalog
func DefaultConfig() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		Timeout:         DefaultTimeout,
		MaxResponseSize: DefaultMaxResponseSize,
		UserAgent:       "storefront-backend/1.0",
	}
}

// HTTPSource fetches the catalog with a single GET. It never retries;
// recovering from a failure is left to an explicit reload.
type HTTPSource struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPSource creates an HTTPSource
func NewHTTPSource(cfg Config, logger *zap.Logger) (*HTTPSource, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = DefaultMaxResponseSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// Fetch retrieves and decodes the raw product records.
// Transport and HTTP status failures wrap shared.ErrCatalogFetchFailed;
// a body that is not a JSON array of records wraps shared.ErrCatalogDataInvalid.
func (s *HTTPSource) Fetch(ctx context.Context) ([]catalog.RawProduct, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", s.cfg.Endpoint))

	records, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.records", len(records)))
	return records, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]catalog.RawProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", shared.ErrCatalogFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogFetchFailed, err)
	}
	defer resp.Body.Close()

	// Read one byte past the limit to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", shared.ErrCatalogFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrCatalogFetchFailed, resp.StatusCode)
	}
	if int64(len(body)) > s.cfg.MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", shared.ErrCatalogDataInvalid, s.cfg.MaxResponseSize)
	}

	var records []catalog.RawProduct
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogDataInvalid, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", shared.ErrCatalogDataInvalid)
	}

	s.logger.Debug("Catalog fetched",
		zap.String("endpoint", s.cfg.Endpoint),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))

	return records, nil
}
