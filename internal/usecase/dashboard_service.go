package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/modainteligente/backend/internal/domain"
)

const dashboardCacheKey = "dashboard:stats"

// DashboardService aggregates the precomputed analytics views into the KPI
// snapshot the dashboard renders. The whole computed snapshot is cached under
// a short TTL; derived state is never mutated incrementally.
type DashboardService struct {
	store    domain.RecordStore
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewDashboardService creates the service. ttl <= 0 selects 5 minutes.
func NewDashboardService(store domain.RecordStore, cache domain.CacheRepository, ttl time.Duration) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{store: store, cache: cache, cacheTTL: ttl}
}

// Stats returns the KPI snapshot: top categories by gross revenue, the full
// monthly evolution, and their sums. Flow: check cache -> fetch views ->
// aggregate -> cache -> return. Store failure is ErrSourceUnavailable.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if cached, err := s.cache.Get(ctx, dashboardCacheKey); err == nil {
		if stats, ok := cached.(*domain.DashboardStats); ok {
			return stats, nil
		}
	}

	categories, err := s.store.CategoryAnalytics(ctx,
		domain.Query{}.Order("faturamento_bruto", true).Cap(5))
	if err != nil {
		return nil, fmt.Errorf("%w: loading category analytics: %v", domain.ErrSourceUnavailable, err)
	}

	evolution, err := s.store.MonthlySales(ctx, domain.Query{}.Order("mes_ano", false))
	if err != nil {
		return nil, fmt.Errorf("%w: loading monthly evolution: %v", domain.ErrSourceUnavailable, err)
	}

	stats := &domain.DashboardStats{
		Categories: categories,
		Evolution:  evolution,
	}
	for _, c := range categories {
		stats.Revenue += c.GrossRevenue
		stats.EstimatedProfit += c.EstimatedProfit
	}
	for _, m := range evolution {
		stats.OrderCount += m.SaleCount
	}

	// Cache write is best effort.
	_ = s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL)

	return stats, nil
}
