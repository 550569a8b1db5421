package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modainteligente/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client is a read-only record store over the Supabase PostgREST endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Supabase store client.
func NewClient(baseURL, apiKey string) *Client {
	// Hosted PostgREST tolerates bursts fine; 10 req/s sustained keeps one
	// dashboard refresh well inside the project quota.
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: limiter,
	}
}

// SetDebug enables per-request logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Table and view names of the backing schema.
const (
	tableProducts    = "gemini_produtos"
	tableSaleItems   = "gemini_vendas_itens"
	tableSaleHeaders = "gemini_vendas_geral"
	viewPortfolio    = "gemini_vw_relatorio_carteira_clientes"
	viewRanking      = "gemini_vw_ranking_clientes"
	viewCategories   = "gemini_vw_analytics_categorias"
	viewMonthly      = "gemini_vw_analise_mensal"
)

// Products implements domain.RecordStore.
func (c *Client) Products(ctx context.Context, q domain.Query) ([]domain.Product, error) {
	var rows []domain.Product
	if err := c.fetch(ctx, tableProducts, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SaleItems implements domain.RecordStore.
func (c *Client) SaleItems(ctx context.Context, q domain.Query) ([]domain.SaleLineItem, error) {
	var rows []domain.SaleLineItem
	if err := c.fetch(ctx, tableSaleItems, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SaleHeaders implements domain.RecordStore.
func (c *Client) SaleHeaders(ctx context.Context, q domain.Query) ([]domain.SaleHeader, error) {
	var rows []domain.SaleHeader
	if err := c.fetch(ctx, tableSaleHeaders, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerActivities implements domain.RecordStore.
func (c *Client) CustomerActivities(ctx context.Context, q domain.Query) ([]domain.CustomerActivity, error) {
	var rows []domain.CustomerActivity
	if err := c.fetch(ctx, viewPortfolio, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerRanking implements domain.RecordStore.
func (c *Client) CustomerRanking(ctx context.Context, q domain.Query) ([]domain.RankedCustomer, error) {
	var rows []domain.RankedCustomer
	if err := c.fetch(ctx, viewRanking, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CategoryAnalytics implements domain.RecordStore.
func (c *Client) CategoryAnalytics(ctx context.Context, q domain.Query) ([]domain.CategoryAnalytics, error) {
	var rows []domain.CategoryAnalytics
	if err := c.fetch(ctx, viewCategories, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthlySales implements domain.RecordStore.
func (c *Client) MonthlySales(ctx context.Context, q domain.Query) ([]domain.MonthlySales, error) {
	var rows []domain.MonthlySales
	if err := c.fetch(ctx, viewMonthly, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// fetch executes one filtered read and decodes the JSON array into out.
// Transient failures (network, 5xx) are retried up to 3 times with backoff;
// 4xx responses map to ErrQuery and are not retried.
func (c *Client) fetch(ctx context.Context, table string, q domain.Query, out interface{}) error {
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, encodeQuery(q))

	if c.debug {
		log.Printf("[SUPABASE] GET %s", reqURL)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[SUPABASE] request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to decode %s response: %w", table, err)
			}
			return nil
		case status >= 400 && status < 500:
			// PostgREST rejects malformed predicates with 400; not retryable.
			return fmt.Errorf("%w: %s status %d: %s", domain.ErrQuery, table, status, truncate(body, 200))
		default:
			log.Printf("[SUPABASE] server error (attempt %d) - status %d: %s", attempt, status, truncate(body, 200))
			lastErr = fmt.Errorf("%w: %s status %d", domain.ErrTransport, table, status)
			time.Sleep(exponentialBackoff(attempt))
		}
	}

	return lastErr
}

// doRequest executes one HTTP GET with the Supabase auth headers.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading body: %v", domain.ErrTransport, err)
	}

	return body, resp.StatusCode, nil
}

// encodeQuery translates a domain.Query into PostgREST query parameters.
func encodeQuery(q domain.Query) string {
	params := url.Values{}
	params.Set("select", "*")

	for _, cond := range q.Where {
		params.Add(cond.Field, condValue(cond))
	}

	if len(q.Or) > 0 {
		parts := make([]string, 0, len(q.Or))
		for _, cond := range q.Or {
			parts = append(parts, cond.Field+"."+condValue(cond))
		}
		params.Set("or", "("+strings.Join(parts, ",")+")")
	}

	if q.OrderBy != "" {
		dir := "asc"
		if q.Descending {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}

	if q.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.Limit))
	}

	return params.Encode()
}

// condValue renders the operator.value part of a PostgREST predicate.
func condValue(cond domain.Cond) string {
	switch cond.Op {
	case domain.OpILike:
		return "ilike.*" + cond.Value + "*"
	case domain.OpIn:
		return "in.(" + strings.Join(cond.Values, ",") + ")"
	default:
		return string(cond.Op) + "." + cond.Value
	}
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
