package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/modainteligente/backend/internal/domain"
)

// fakeStore is an in-memory domain.RecordStore that honors the predicates the
// services actually issue, so the join/window/dedup logic is exercised
// against realistic store behavior.
type fakeStore struct {
	products   []domain.Product
	items      []domain.SaleLineItem
	headers    []domain.SaleHeader
	activities []domain.CustomerActivity
	ranking    []domain.RankedCustomer
	categories []domain.CategoryAnalytics
	monthly    []domain.MonthlySales

	err   error // returned by every method when set
	calls map[string]int

	// afterItems runs after a SaleItems call, before returning. Used to
	// simulate a newer request arriving mid-run.
	afterItems func()
}

func (f *fakeStore) count(table string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[table]++
}

func (f *fakeStore) Products(ctx context.Context, q domain.Query) ([]domain.Product, error) {
	f.count("products")
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if !matchConds(q.Where, productField(p)) {
			continue
		}
		if len(q.Or) > 0 && !matchAny(q.Or, productField(p)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) SaleItems(ctx context.Context, q domain.Query) ([]domain.SaleLineItem, error) {
	f.count("sale_items")
	if f.afterItems != nil {
		defer f.afterItems()
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SaleLineItem
	for _, it := range f.items {
		if !matchConds(q.Where, itemField(it)) {
			continue
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeStore) SaleHeaders(ctx context.Context, q domain.Query) ([]domain.SaleHeader, error) {
	f.count("sale_headers")
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SaleHeader
	for _, h := range f.headers {
		if !matchConds(q.Where, headerField(h)) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeStore) CustomerActivities(ctx context.Context, q domain.Query) ([]domain.CustomerActivity, error) {
	f.count("activities")
	if f.err != nil {
		return nil, f.err
	}
	return f.activities, nil
}

func (f *fakeStore) CustomerRanking(ctx context.Context, q domain.Query) ([]domain.RankedCustomer, error) {
	f.count("ranking")
	if f.err != nil {
		return nil, f.err
	}
	return f.ranking, nil
}

func (f *fakeStore) CategoryAnalytics(ctx context.Context, q domain.Query) ([]domain.CategoryAnalytics, error) {
	f.count("categories")
	if f.err != nil {
		return nil, f.err
	}
	out := f.categories
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) MonthlySales(ctx context.Context, q domain.Query) ([]domain.MonthlySales, error) {
	f.count("monthly")
	if f.err != nil {
		return nil, f.err
	}
	return f.monthly, nil
}

// Field accessors map condition fields to record values the way the real
// schema does.

func productField(p domain.Product) func(string) string {
	return func(field string) string {
		switch field {
		case "sku":
			return p.SKU
		case "marca":
			return p.Brand
		case "tamanho":
			return p.Size
		case "genero":
			return p.Gender
		case "categoria_produto":
			return p.Category
		}
		return ""
	}
}

func itemField(it domain.SaleLineItem) func(string) string {
	return func(field string) string {
		switch field {
		case "sku":
			return it.SKU
		case "tamanho":
			return it.Size
		case "movimentacao":
			return it.TransactionID
		case "data":
			return it.OccurredAt.UTC().Format(time.RFC3339)
		}
		return ""
	}
}

func headerField(h domain.SaleHeader) func(string) string {
	return func(field string) string {
		switch field {
		case "movimentacao":
			return h.TransactionID
		}
		return ""
	}
}

func matchConds(conds []domain.Cond, field func(string) string) bool {
	for _, c := range conds {
		if !matchCond(c, field) {
			return false
		}
	}
	return true
}

func matchAny(conds []domain.Cond, field func(string) string) bool {
	for _, c := range conds {
		if matchCond(c, field) {
			return true
		}
	}
	return false
}

func matchCond(c domain.Cond, field func(string) string) bool {
	value := field(c.Field)
	switch c.Op {
	case domain.OpEq:
		return value == c.Value
	case domain.OpILike:
		return strings.Contains(strings.ToLower(value), strings.ToLower(c.Value))
	case domain.OpGt:
		return value > c.Value // RFC3339 strings compare chronologically
	case domain.OpGte:
		return value >= c.Value
	case domain.OpLte:
		return value <= c.Value
	case domain.OpIn:
		for _, v := range c.Values {
			if value == v {
				return true
			}
		}
		return false
	}
	return false
}
