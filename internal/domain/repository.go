package domain

import (
	"context"
	"time"
)

// RecordStore is the sole I/O boundary to the relational backend. All methods
// are filtered/sorted reads; the store never mutates. Failures are ErrTransport
// (connectivity) or ErrQuery (predicate rejected), wrapped with detail.
type RecordStore interface {
	Products(ctx context.Context, q Query) ([]Product, error)
	SaleItems(ctx context.Context, q Query) ([]SaleLineItem, error)
	SaleHeaders(ctx context.Context, q Query) ([]SaleHeader, error)
	CustomerActivities(ctx context.Context, q Query) ([]CustomerActivity, error)
	CustomerRanking(ctx context.Context, q Query) ([]RankedCustomer, error)
	CategoryAnalytics(ctx context.Context, q Query) ([]CategoryAnalytics, error)
	MonthlySales(ctx context.Context, q Query) ([]MonthlySales, error)
}

// MessageDrafter drafts outreach text from structured context. The returned
// text is opaque and editable; the core never parses it. Failure is
// ErrDraftUnavailable; the draft stays empty rather than being fabricated.
type MessageDrafter interface {
	RecoveryMessage(ctx context.Context, customer RankedCustomer) (string, error)
	SniperPitch(ctx context.Context, match AffinityMatch, newProduct string) (string, error)
	TrendInsights(ctx context.Context, monthly []MonthlySales) (string, error)
}

// CacheRepository defines the interface for caching computed views.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
