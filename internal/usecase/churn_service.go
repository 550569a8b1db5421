package usecase

import (
	"context"
	"fmt"

	"github.com/modainteligente/backend/internal/domain"
)

// ChurnService filters the customer ranking feed into a recovery worklist.
// The selector only selects; drafting and sending messages stay with the
// drafting service and the presentation layer.
type ChurnService struct {
	store            domain.RecordStore
	defaultThreshold int
}

// NewChurnService creates the selector. thresholdDays <= 0 selects the
// default of 90 days.
func NewChurnService(store domain.RecordStore, thresholdDays int) *ChurnService {
	if thresholdDays <= 0 {
		thresholdDays = 90
	}
	return &ChurnService{store: store, defaultThreshold: thresholdDays}
}

// Worklist returns the customers whose inactivity strictly exceeds the
// threshold, preserving the feed's inactivity-descending order.
// thresholdDays <= 0 uses the configured default.
func (s *ChurnService) Worklist(ctx context.Context, thresholdDays int) ([]domain.RankedCustomer, error) {
	if thresholdDays <= 0 {
		thresholdDays = s.defaultThreshold
	}

	feed, err := s.store.CustomerRanking(ctx, domain.Query{}.Order("dias_sem_comprar", true))
	if err != nil {
		return nil, fmt.Errorf("%w: loading customer ranking: %v", domain.ErrSourceUnavailable, err)
	}

	return SelectLapsed(feed, thresholdDays), nil
}

// SelectLapsed keeps the rows with InactiveDays strictly greater than
// thresholdDays, in input order. A customer at exactly the threshold is not
// lapsed yet.
func SelectLapsed(feed []domain.RankedCustomer, thresholdDays int) []domain.RankedCustomer {
	lapsed := make([]domain.RankedCustomer, 0, len(feed))
	for _, row := range feed {
		if row.InactiveDays > thresholdDays {
			lapsed = append(lapsed, row)
		}
	}
	return lapsed
}
