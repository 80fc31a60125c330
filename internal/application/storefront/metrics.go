package storefront

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Intent outcomes reported to Metrics
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeIgnored  = "ignored"
	OutcomeFailed   = "failed"
)

// Catalog load outcomes reported to Metrics
const (
	LoadSucceeded = "succeeded"
	LoadFailed    = "failed"
)

// Metrics receives storefront activity counters.
// The telemetry package provides the OpenTelemetry implementation.
type Metrics interface {
	RecordIntent(ctx context.Context, intent string, outcome string)
	RecordOrderSubmitted(ctx context.Context, lines int, total decimal.Decimal)
	RecordCatalogLoad(ctx context.Context, outcome string, products int, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordIntent(context.Context, string, string) {}
func (nopMetrics) RecordOrderSubmitted(context.Context, int, decimal.Decimal) {}
func (nopMetrics) RecordCatalogLoad(context.Context, string, int, time.Duration) {}
