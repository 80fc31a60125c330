package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when StorefrontMetrics is built without a meter
var ErrMeterNil = errors.New("NewStorefrontMetrics: meter cannot be nil")

// Metric attribute keys
var (
	AttrIntent   = attribute.Key("intent")
	AttrOutcome  = attribute.Key("outcome")
	AttrCurrency = attribute.Key("currency")
)

// StorefrontMetrics records storefront activity as OpenTelemetry instruments.
type StorefrontMetrics struct {
	currency string

	intents         metric.Int64Counter
	ordersSubmitted metric.Int64Counter
	orderLines      metric.Int64Histogram
	orderAmount     metric.Float64Counter
	catalogLoads    metric.Int64Counter
	catalogDuration metric.Float64Histogram
	catalogProducts metric.Int64Gauge
}

// NewStorefrontMetrics creates the storefront instruments on meter.
// currency labels order amounts, which are in display currency units.
func NewStorefrontMetrics(meter metric.Meter, currency string) (*StorefrontMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &StorefrontMetrics{currency: currency}

	var err error
	if m.intents, err = meter.Int64Counter(
		"storefront_intents_total",
		metric.WithDescription("Intents dispatched to sessions"),
		metric.WithUnit("{intents}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter storefront_intents_total: %w", err)
	}
	if m.ordersSubmitted, err = meter.Int64Counter(
		"storefront_orders_submitted_total",
		metric.WithDescription("Orders handed off to the messaging app"),
		metric.WithUnit("{orders}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter storefront_orders_submitted_total: %w", err)
	}
	if m.orderLines, err = meter.Int64Histogram(
		"storefront_order_lines",
		metric.WithDescription("Cart lines per submitted order"),
		metric.WithUnit("{lines}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 20),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram storefront_order_lines: %w", err)
	}
	if m.orderAmount, err = meter.Float64Counter(
		"storefront_order_amount_total",
		metric.WithDescription("Grand total of submitted orders in display currency"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter storefront_order_amount_total: %w", err)
	}
	if m.catalogLoads, err = meter.Int64Counter(
		"storefront_catalog_loads_total",
		metric.WithDescription("Catalog load attempts"),
		metric.WithUnit("{loads}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter storefront_catalog_loads_total: %w", err)
	}
	if m.catalogDuration, err = meter.Float64Histogram(
		"storefront_catalog_load_duration_seconds",
		metric.WithDescription("Catalog fetch and install latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(CatalogLoadBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram storefront_catalog_load_duration_seconds: %w", err)
	}
	if m.catalogProducts, err = meter.Int64Gauge(
		"storefront_catalog_products",
		metric.WithDescription("Products in the catalog after the last load"),
		metric.WithUnit("{products}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create gauge storefront_catalog_products: %w", err)
	}

	return m, nil
}

// RecordIntent counts one dispatched intent by type and outcome.
func (m *StorefrontMetrics) RecordIntent(ctx context.Context, intent string, outcome string) {
	m.intents.Add(ctx, 1, metric.WithAttributes(AttrIntent.String(intent), AttrOutcome.String(outcome)))
}

// RecordOrderSubmitted counts a handed-off order with its size and total.
func (m *StorefrontMetrics) RecordOrderSubmitted(ctx context.Context, lines int, total decimal.Decimal) {
	attrs := metric.WithAttributes(AttrCurrency.String(m.currency))
	m.ordersSubmitted.Add(ctx, 1, attrs)
	m.orderLines.Record(ctx, int64(lines))
	m.orderAmount.Add(ctx, total.InexactFloat64(), attrs)
}

// RecordCatalogLoad counts a load attempt, its latency and the resulting product count.
func (m *StorefrontMetrics) RecordCatalogLoad(ctx context.Context, outcome string, products int, duration time.Duration) {
	attrs := metric.WithAttributes(AttrOutcome.String(outcome))
	m.catalogLoads.Add(ctx, 1, attrs)
	m.catalogDuration.Record(ctx, duration.Seconds(), attrs)
	m.catalogProducts.Record(ctx, int64(products))
}

// ObserveActiveSessions registers an asynchronous gauge reading count on every collection.
func ObserveActiveSessions(meter metric.Meter, count func() int) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"storefront_active_sessions",
		metric.WithDescription("Live storefront sessions"),
		metric.WithUnit("{sessions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge storefront_active_sessions: %w", err)
	}
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(count()))
		return nil
	}, gauge)
}
