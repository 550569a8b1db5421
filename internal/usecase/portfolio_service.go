package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modainteligente/backend/internal/domain"
)

// allSalespeople is the filter value meaning "no salesperson filter".
const allSalespeople = "Todos"

// PortfolioService serves ranked, filterable, groupable views over the
// customer-activity feed. The transform itself is pure; the service only adds
// the store call and its failure semantics.
type PortfolioService struct {
	store    domain.RecordStore
	pageSize int
}

// NewPortfolioService creates the aggregator. pageSize <= 0 selects the
// default of 100 rows per page.
func NewPortfolioService(store domain.RecordStore, pageSize int) *PortfolioService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &PortfolioService{store: store, pageSize: pageSize}
}

// View fetches a fresh snapshot of the feed and applies the query. Store
// failure surfaces as ErrSourceUnavailable so the caller can tell "store
// down" from "zero qualifying rows".
func (s *PortfolioService) View(ctx context.Context, query domain.PortfolioQuery) (*domain.PortfolioView, error) {
	feed, err := s.store.CustomerActivities(ctx, domain.Query{}.Order("total_gasto_acumulado", true))
	if err != nil {
		return nil, fmt.Errorf("%w: loading customer portfolio: %v", domain.ErrSourceUnavailable, err)
	}

	view := BuildPortfolioView(feed, query, s.pageSize)
	return &view, nil
}

// BuildPortfolioView is the pure transform from (feed, query) to a displayed
// slice: filter, stable sort, optional salesperson grouping, top-5 highlight,
// page window. It never mutates the input feed.
func BuildPortfolioView(feed []domain.CustomerActivity, query domain.PortfolioQuery, pageSize int) domain.PortfolioView {
	if !domain.ValidSortKey(query.SortKey) {
		query.SortKey = domain.SortByTotalSpent
		query.Descending = true
	}
	if query.Page < 1 {
		query.Page = 1
	}

	unfiltered := query.Salesperson == "" || query.Salesperson == allSalespeople

	filtered := feed
	if !unfiltered {
		filtered = make([]domain.CustomerActivity, 0)
		for _, row := range feed {
			if row.PrimarySalesperson == query.Salesperson {
				filtered = append(filtered, row)
			}
		}
	}

	sorted := make([]domain.CustomerActivity, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := compareByKey(sorted[i], sorted[j], query.SortKey)
		if query.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	// Grouped view: with no salesperson selected, a second stable pass by
	// salesperson makes each group contiguous (alphabetical group order)
	// while keeping the requested sort inside each group. A UX grouping
	// rule, not a data invariant.
	grouped := unfiltered && query.SortKey != domain.SortBySalesperson
	if grouped {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PrimarySalesperson < sorted[j].PrimarySalesperson
		})
	}

	var totalRevenue float64
	for _, row := range filtered {
		totalRevenue += row.TotalSpent
	}

	pageCount := (len(sorted) + pageSize - 1) / pageSize

	start := (query.Page - 1) * pageSize
	rows := []domain.CustomerActivity{}
	if start < len(sorted) {
		end := start + pageSize
		if end > len(sorted) {
			end = len(sorted)
		}
		rows = sorted[start:end]
	}

	return domain.PortfolioView{
		Rows:           rows,
		Top:            topBySpend(filtered, 5),
		Salespeople:    distinctSalespeople(feed),
		TotalCustomers: len(filtered),
		TotalRevenue:   totalRevenue,
		Page:           query.Page,
		PageCount:      pageCount,
		Grouped:        grouped,
	}
}

// compareByKey orders two rows by the chosen column; 0 preserves input order
// under the stable sort.
func compareByKey(a, b domain.CustomerActivity, key domain.SortKey) int {
	switch key {
	case domain.SortByCustomer:
		return strings.Compare(a.Customer, b.Customer)
	case domain.SortBySalesperson:
		return strings.Compare(a.PrimarySalesperson, b.PrimarySalesperson)
	case domain.SortBySaleCount:
		return a.SaleCount - b.SaleCount
	case domain.SortByItemCount:
		return a.ItemCount - b.ItemCount
	case domain.SortByLastPurchase:
		// ISO dates compare correctly as strings.
		return strings.Compare(a.LastPurchase, b.LastPurchase)
	default: // SortByTotalSpent
		switch {
		case a.TotalSpent < b.TotalSpent:
			return -1
		case a.TotalSpent > b.TotalSpent:
			return 1
		}
		return 0
	}
}

// topBySpend returns the n highest-spending rows of scope, spend descending,
// independent of the table's active sort.
func topBySpend(scope []domain.CustomerActivity, n int) []domain.CustomerActivity {
	top := make([]domain.CustomerActivity, len(scope))
	copy(top, scope)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalSpent > top[j].TotalSpent
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// distinctSalespeople lists the non-empty salesperson names of the feed,
// sorted, so the caller can render the filter options.
func distinctSalespeople(feed []domain.CustomerActivity) []string {
	names := DistinctKeys(feed, func(row domain.CustomerActivity) string {
		return row.PrimarySalesperson
	})
	sort.Strings(names)
	return names
}
