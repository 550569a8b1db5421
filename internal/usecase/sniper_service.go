package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/modainteligente/backend/internal/domain"
)

// SniperConfig holds configuration for the affinity matcher.
type SniperConfig struct {
	WindowDays     int // trailing purchase-history window
	MaxLineItems   int // cap on qualifying sale lines per run
	MinPhoneDigits int // shorter phones are unreachable and dropped
	Debug          bool
}

// SniperService finds customers whose purchase history intersects a restocked
// product profile. Each run works on its own freshly fetched snapshot.
type SniperService struct {
	store          domain.RecordStore
	guard          RunGuard
	windowDays     int
	maxLineItems   int
	minPhoneDigits int
	debug          bool
	now            func() time.Time
}

// NewSniperService creates the matcher with the given configuration.
func NewSniperService(store domain.RecordStore, config SniperConfig) *SniperService {
	windowDays := config.WindowDays
	if windowDays <= 0 {
		windowDays = 180
	}
	maxLineItems := config.MaxLineItems
	if maxLineItems <= 0 {
		maxLineItems = 200
	}
	minPhoneDigits := config.MinPhoneDigits
	if minPhoneDigits <= 0 {
		minPhoneDigits = 8
	}

	return &SniperService{
		store:          store,
		windowDays:     windowDays,
		maxLineItems:   maxLineItems,
		minPhoneDigits: minPhoneDigits,
		debug:          config.Debug,
		now:            time.Now,
	}
}

// Search runs one affinity match: candidate SKUs → qualifying sale lines in
// the trailing window → parent headers → one deduplicated match per customer
// phone, ranked by recency then spend. An empty result is a normal "no
// inventory history" outcome; store failures wrap to ErrMatchingUnavailable,
// and a run superseded by a newer Search returns ErrStaleRun.
func (s *SniperService) Search(ctx context.Context, request *domain.MatchRequest) ([]domain.AffinityMatch, error) {
	if request == nil || strings.TrimSpace(request.Brand) == "" {
		return nil, domain.ErrInvalidRequest
	}

	token := s.guard.Begin()

	windowDays := request.WindowDays
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	if s.debug {
		log.Printf("[SNIPER] run %d: brand=%q size=%q gender=%q category=%q window=%dd",
			token, request.Brand, request.Size, request.Gender, request.Category, windowDays)
	}

	skus, err := s.candidateSKUs(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving candidate products: %v", domain.ErrMatchingUnavailable, err)
	}
	if len(skus) == 0 {
		// No inventory matching the profile: normal empty outcome.
		return s.finish(token, nil)
	}

	items, err := s.qualifyingItems(ctx, request, skus, windowDays)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving sale lines: %v", domain.ErrMatchingUnavailable, err)
	}
	if len(items) == 0 {
		return s.finish(token, nil)
	}

	transactions := DistinctKeys(items, func(it domain.SaleLineItem) string { return it.TransactionID })
	headers, err := s.store.SaleHeaders(ctx, domain.Query{}.In("movimentacao", transactions))
	if err != nil {
		return nil, fmt.Errorf("%w: resolving sale headers: %v", domain.ErrMatchingUnavailable, err)
	}

	matches := s.buildMatches(headers, matchReason(request, windowDays))

	if s.debug {
		log.Printf("[SNIPER] run %d: %d skus, %d lines, %d headers, %d matches",
			token, len(skus), len(items), len(headers), len(matches))
	}

	return s.finish(token, matches)
}

// candidateSKUs resolves the SKU set for the target profile. Brand narrows by
// case-insensitive substring; a specific gender narrows by equality; size and
// category widen recall through a single OR group (exact 4-way intersection
// over-constrains sparse catalogs).
func (s *SniperService) candidateSKUs(ctx context.Context, request *domain.MatchRequest) ([]string, error) {
	q := domain.Query{}.ILike("marca", request.Brand)

	if gender := strings.TrimSpace(request.Gender); gender != "" && !strings.EqualFold(gender, "Unissex") {
		q = q.Eq("genero", gender)
	}

	var widen []domain.Cond
	if size := strings.TrimSpace(request.Size); size != "" {
		widen = append(widen, domain.Cond{Field: "tamanho", Op: domain.OpILike, Value: size})
	}
	if category := strings.TrimSpace(request.Category); category != "" {
		widen = append(widen, domain.Cond{Field: "categoria_produto", Op: domain.OpEq, Value: category})
	}
	if len(widen) > 0 {
		q = q.OrGroup(widen...)
	}

	products, err := s.store.Products(ctx, q)
	if err != nil {
		return nil, err
	}

	return DistinctKeys(products, func(p domain.Product) string { return p.SKU }), nil
}

// qualifyingItems fetches the sale lines inside the trailing window. The
// window's lower bound is exclusive: a line dated exactly at now-window does
// not qualify.
func (s *SniperService) qualifyingItems(ctx context.Context, request *domain.MatchRequest, skus []string, windowDays int) ([]domain.SaleLineItem, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -windowDays)

	q := domain.Query{}.
		In("sku", skus).
		Gt("data", cutoff.Format(time.RFC3339)).
		Cap(s.maxLineItems)

	if size := strings.TrimSpace(request.Size); size != "" {
		// Register size strings vary in format ("6", "06", "Tam 6");
		// substring matching keeps them all.
		q = q.ILike("tamanho", size)
	}

	return s.store.SaleItems(ctx, q)
}

// buildMatches folds resolved headers into one AffinityMatch per normalized
// phone. Spend aggregates per distinct transaction so a header with several
// qualifying lines counts once; the last purchase date advances on strict
// comparison. Customers without a reachable phone are dropped.
func (s *SniperService) buildMatches(headers []domain.SaleHeader, reason string) []domain.AffinityMatch {
	byPhone := make(map[string]*domain.AffinityMatch)
	seenTransaction := make(map[string]bool)
	var order []string

	for _, header := range headers {
		if !Reachable(header.Phone, s.minPhoneDigits) {
			continue
		}
		if header.TransactionID != "" {
			if seenTransaction[header.TransactionID] {
				continue
			}
			seenTransaction[header.TransactionID] = true
		}

		phone := NormalizePhone(header.Phone)
		match, exists := byPhone[phone]
		if !exists {
			byPhone[phone] = &domain.AffinityMatch{
				CustomerName: header.CustomerName,
				Phone:        header.Phone,
				Reason:       reason,
				LastPurchase: header.OccurredAt,
				TotalSpent:   header.Total,
			}
			order = append(order, phone)
			continue
		}

		match.TotalSpent += header.Total
		if header.OccurredAt.After(match.LastPurchase) {
			match.LastPurchase = header.OccurredAt
		}
	}

	matches := make([]domain.AffinityMatch, 0, len(order))
	for _, phone := range order {
		matches = append(matches, *byPhone[phone])
	}

	// Most recent buyers first; spend breaks recency ties, normalized phone
	// keeps the order deterministic.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].LastPurchase.Equal(matches[j].LastPurchase) {
			return matches[i].LastPurchase.After(matches[j].LastPurchase)
		}
		if matches[i].TotalSpent != matches[j].TotalSpent {
			return matches[i].TotalSpent > matches[j].TotalSpent
		}
		return NormalizePhone(matches[i].Phone) < NormalizePhone(matches[j].Phone)
	})

	return matches
}

// finish applies last-request-wins: a superseded run's result is discarded.
func (s *SniperService) finish(token uint64, matches []domain.AffinityMatch) ([]domain.AffinityMatch, error) {
	if s.guard.Stale(token) {
		return nil, domain.ErrStaleRun
	}
	if matches == nil {
		matches = []domain.AffinityMatch{}
	}
	return matches, nil
}

// matchReason renders the human-readable reason shown next to each match.
func matchReason(request *domain.MatchRequest, windowDays int) string {
	var sb strings.Builder
	sb.WriteString("Comprou ")
	sb.WriteString(strings.TrimSpace(request.Brand))
	if size := strings.TrimSpace(request.Size); size != "" {
		sb.WriteString(" tamanho ")
		sb.WriteString(size)
	}
	if category := strings.TrimSpace(request.Category); category != "" {
		sb.WriteString(" (")
		sb.WriteString(category)
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, " nos últimos %d dias", windowDays)
	return sb.String()
}
