package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modainteligente/backend/config"
	"github.com/modainteligente/backend/internal/domain"
	"github.com/modainteligente/backend/internal/infrastructure/cache"
	"github.com/modainteligente/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// stubStore returns canned rows for every table and can fail on demand
type stubStore struct {
	products   []domain.Product
	items      []domain.SaleLineItem
	headers    []domain.SaleHeader
	activities []domain.CustomerActivity
	ranking    []domain.RankedCustomer
	categories []domain.CategoryAnalytics
	monthly    []domain.MonthlySales
	err        error
}

func (s *stubStore) Products(ctx context.Context, q domain.Query) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubStore) SaleItems(ctx context.Context, q domain.Query) ([]domain.SaleLineItem, error) {
	return s.items, s.err
}

func (s *stubStore) SaleHeaders(ctx context.Context, q domain.Query) ([]domain.SaleHeader, error) {
	return s.headers, s.err
}

func (s *stubStore) CustomerActivities(ctx context.Context, q domain.Query) ([]domain.CustomerActivity, error) {
	return s.activities, s.err
}

func (s *stubStore) CustomerRanking(ctx context.Context, q domain.Query) ([]domain.RankedCustomer, error) {
	return s.ranking, s.err
}

func (s *stubStore) CategoryAnalytics(ctx context.Context, q domain.Query) ([]domain.CategoryAnalytics, error) {
	return s.categories, s.err
}

func (s *stubStore) MonthlySales(ctx context.Context, q domain.Query) ([]domain.MonthlySales, error) {
	return s.monthly, s.err
}

// stubDrafter returns a fixed draft or a fixed error
type stubDrafter struct {
	draft string
	err   error
}

func (d *stubDrafter) RecoveryMessage(ctx context.Context, customer domain.RankedCustomer) (string, error) {
	return d.draft, d.err
}

func (d *stubDrafter) SniperPitch(ctx context.Context, match domain.AffinityMatch, newProduct string) (string, error) {
	return d.draft, d.err
}

func (d *stubDrafter) TrendInsights(ctx context.Context, monthly []domain.MonthlySales) (string, error) {
	return d.draft, d.err
}

// setupTestRouter wires real services over the given stubs
func setupTestRouter(store domain.RecordStore, drafter domain.MessageDrafter) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000", "https://moda-inteligente.vercel.app", "http://127.0.0.1:*"},
		},
	}

	sniper := usecase.NewSniperService(store, usecase.SniperConfig{})
	portfolio := usecase.NewPortfolioService(store, 0)
	churn := usecase.NewChurnService(store, 0)
	dashboard := usecase.NewDashboardService(store, cache.NewMemoryCache(), time.Minute)

	handler := NewHandler(sniper, portfolio, churn, dashboard, drafter)
	return SetupRouter(cfg, handler)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, payload string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body *strings.Reader
	if payload == "" {
		body = strings.NewReader("")
	} else {
		body = strings.NewReader(payload)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
	}
	return w, response
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/health", "")

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "modainteligente-backend" {
			t.Errorf("service = %v, want modainteligente-backend", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w, _ := doJSON(t, router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestSniperSearchEndpoint(t *testing.T) {
	saleDate := time.Now().UTC().AddDate(0, 0, -30)

	store := &stubStore{
		products: []domain.Product{
			{SKU: "LB-001", Brand: "Lui Bambini", Size: "06", Gender: "Menina"},
		},
		items: []domain.SaleLineItem{
			{TransactionID: "T1", SKU: "LB-001", Size: "6", OccurredAt: saleDate},
		},
		headers: []domain.SaleHeader{
			{TransactionID: "T1", CustomerName: "Maria Silva", Phone: "(11) 99999-0000", Total: 250, OccurredAt: saleDate},
		},
	}

	t.Run("returns matches for valid request", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		payload := `{"marca":"Lui Bambini","tamanho":"6","genero":"Menina"}`
		w, response := doJSON(t, router, "POST", "/api/v1/sniper/search", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		if response["total"] != float64(1) {
			t.Errorf("total = %v, want 1", response["total"])
		}

		matches, ok := response["matches"].([]interface{})
		if !ok || len(matches) != 1 {
			t.Fatalf("matches = %v, want one entry", response["matches"])
		}
		match := matches[0].(map[string]interface{})
		if match["cliente_nome"] != "Maria Silva" {
			t.Errorf("cliente_nome = %v, want Maria Silva", match["cliente_nome"])
		}
		if match["total_gasto_historico"] != float64(250) {
			t.Errorf("total_gasto_historico = %v, want 250", match["total_gasto_historico"])
		}
	})

	t.Run("returns 400 for missing marca", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "POST", "/api/v1/sniper/search", `{"tamanho":"6"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if response["error"] == nil {
			t.Error("expected error field in response")
		}
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, _ := doJSON(t, router, "POST", "/api/v1/sniper/search", `{invalid json}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 503 when store is unreachable", func(t *testing.T) {
		broken := &stubStore{err: domain.ErrTransport}
		router := setupTestRouter(broken, &stubDrafter{})

		payload := `{"marca":"Lui Bambini"}`
		w, _ := doJSON(t, router, "POST", "/api/v1/sniper/search", payload)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestSniperPitchEndpoint(t *testing.T) {
	t.Run("returns drafted pitch", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{draft: "Olá Maria!"})

		payload := `{"cliente_nome":"Maria Silva","telefone":"11999990000","produto_novo":"Vestido Festa 6"}`
		w, response := doJSON(t, router, "POST", "/api/v1/sniper/pitch", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["mensagem"] != "Olá Maria!" {
			t.Errorf("mensagem = %v, want drafted text", response["mensagem"])
		}
	})

	t.Run("returns 400 for missing produto_novo", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{draft: "x"})

		w, _ := doJSON(t, router, "POST", "/api/v1/sniper/pitch", `{"cliente_nome":"Maria"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 503 when drafting is unavailable", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{err: domain.ErrDraftUnavailable})

		payload := `{"cliente_nome":"Maria","produto_novo":"Vestido"}`
		w, _ := doJSON(t, router, "POST", "/api/v1/sniper/pitch", payload)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestPortfolioEndpoint(t *testing.T) {
	store := &stubStore{
		activities: []domain.CustomerActivity{
			{Customer: "Laura Costa", PrimarySalesperson: "Ana", TotalSpent: 500, LastPurchase: "2024-03-10"},
			{Customer: "Marina Ramos", PrimarySalesperson: "Beatriz", TotalSpent: 900, LastPurchase: "2024-02-01"},
		},
	}

	t.Run("returns view with totals", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/api/v1/portfolio", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["total_clientes"] != float64(2) {
			t.Errorf("total_clientes = %v, want 2", response["total_clientes"])
		}
		if response["faturamento_total"] != float64(1400) {
			t.Errorf("faturamento_total = %v, want 1400", response["faturamento_total"])
		}
	})

	t.Run("filters by salesperson", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/api/v1/portfolio?vendedor=Ana", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["total_clientes"] != float64(1) {
			t.Errorf("total_clientes = %v, want 1", response["total_clientes"])
		}
	})

	t.Run("returns 400 for non-numeric page", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, _ := doJSON(t, router, "GET", "/api/v1/portfolio?page=abc", "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 503 when store is unreachable", func(t *testing.T) {
		router := setupTestRouter(&stubStore{err: domain.ErrTransport}, &stubDrafter{})

		w, _ := doJSON(t, router, "GET", "/api/v1/portfolio", "")

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestChurnEndpoint(t *testing.T) {
	store := &stubStore{
		ranking: []domain.RankedCustomer{
			{Name: "Helena", InactiveDays: 200},
			{Name: "Julia", InactiveDays: 95},
			{Name: "Clara", InactiveDays: 90},
		},
	}

	t.Run("applies default threshold strictly", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/api/v1/churn", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		// 90 days is not over the 90-day threshold
		if response["total"] != float64(2) {
			t.Errorf("total = %v, want 2", response["total"])
		}
	})

	t.Run("accepts custom threshold", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/api/v1/churn?limite_dias=150", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["total"] != float64(1) {
			t.Errorf("total = %v, want 1", response["total"])
		}
	})

	t.Run("returns 400 for non-numeric threshold", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, _ := doJSON(t, router, "GET", "/api/v1/churn?limite_dias=many", "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestChurnMessageEndpoint(t *testing.T) {
	t.Run("returns drafted recovery message", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{draft: "Sentimos sua falta!"})

		payload := `{"cliente_nome":"Helena","dias_sem_comprar":200}`
		w, response := doJSON(t, router, "POST", "/api/v1/churn/message", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["mensagem"] != "Sentimos sua falta!" {
			t.Errorf("mensagem = %v, want drafted text", response["mensagem"])
		}
	})

	t.Run("returns 400 for missing customer name", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{draft: "x"})

		w, _ := doJSON(t, router, "POST", "/api/v1/churn/message", `{"dias_sem_comprar":200}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestDashboardEndpoint(t *testing.T) {
	store := &stubStore{
		categories: []domain.CategoryAnalytics{
			{Category: "Vestidos", OrderCount: 10, GrossRevenue: 5000, EstimatedProfit: 2000},
			{Category: "Calçados", OrderCount: 5, GrossRevenue: 3000, EstimatedProfit: 1000},
		},
		monthly: []domain.MonthlySales{
			{Month: "2024-01", SaleCount: 8, NetRevenue: 4000},
			{Month: "2024-02", SaleCount: 7, NetRevenue: 4000},
		},
	}

	t.Run("returns KPI snapshot", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{})

		w, response := doJSON(t, router, "GET", "/api/v1/dashboard", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["faturamento"] != float64(8000) {
			t.Errorf("faturamento = %v, want 8000", response["faturamento"])
		}
		if response["lucro_estimado"] != float64(3000) {
			t.Errorf("lucro_estimado = %v, want 3000", response["lucro_estimado"])
		}
		if response["total_pedidos"] != float64(15) {
			t.Errorf("total_pedidos = %v, want 15", response["total_pedidos"])
		}
	})

	t.Run("insights endpoint drafts over evolution", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{draft: "Crescimento estável."})

		w, response := doJSON(t, router, "GET", "/api/v1/dashboard/insights", "")

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["insights"] != "Crescimento estável." {
			t.Errorf("insights = %v, want drafted text", response["insights"])
		}
	})

	t.Run("insights returns 503 when drafting is unavailable", func(t *testing.T) {
		router := setupTestRouter(store, &stubDrafter{err: domain.ErrDraftUnavailable})

		w, _ := doJSON(t, router, "GET", "/api/v1/dashboard/insights", "")

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestOutreachLinkEndpoint(t *testing.T) {
	t.Run("builds WhatsApp link", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		payload := `{"telefone":"(11) 99999-0000","texto":"Olá Maria!"}`
		w, response := doJSON(t, router, "POST", "/api/v1/outreach/link", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		url, ok := response["url"].(string)
		if !ok || !strings.HasPrefix(url, "https://wa.me/11999990000?text=") {
			t.Errorf("url = %v, want wa.me link with digits-only phone", response["url"])
		}
	})

	t.Run("returns 400 for phone with no digits", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		w, _ := doJSON(t, router, "POST", "/api/v1/outreach/link", `{"telefone":"n/a","texto":"Oi"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 400 for missing phone", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		w, _ := doJSON(t, router, "POST", "/api/v1/outreach/link", `{"texto":"Oi"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestCORSIntegration(t *testing.T) {
	t.Run("allows configured origin", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
	})

	t.Run("allows wildcard origin", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://127.0.0.1:5173")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:5173" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://127.0.0.1:5173")
		}
	})

	t.Run("blocks unknown origin", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty for unknown origin", got)
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router := setupTestRouter(&stubStore{}, &stubDrafter{})

		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		// Gin's default recovery returns 500
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}
