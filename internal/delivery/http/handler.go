package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/modainteligente/backend/internal/domain"
	"github.com/modainteligente/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sniper    *usecase.SniperService
	portfolio *usecase.PortfolioService
	churn     *usecase.ChurnService
	dashboard *usecase.DashboardService
	drafter   domain.MessageDrafter
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sniper *usecase.SniperService,
	portfolio *usecase.PortfolioService,
	churn *usecase.ChurnService,
	dashboard *usecase.DashboardService,
	drafter domain.MessageDrafter,
) *Handler {
	return &Handler{
		sniper:    sniper,
		portfolio: portfolio,
		churn:     churn,
		dashboard: dashboard,
		drafter:   drafter,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "modainteligente-backend",
		"version": "1.0.0",
	})
}

// SniperSearch runs an affinity search for the requested product profile
func (h *Handler) SniperSearch(c *gin.Context) {
	var request domain.MatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	matches, err := h.sniper.Search(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

type pitchRequest struct {
	domain.AffinityMatch
	NewProduct string `json:"produto_novo" binding:"required"`
}

// SniperPitch drafts a pitch message for one affinity match
func (h *Handler) SniperPitch(c *gin.Context) {
	var request pitchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	draft, err := h.drafter.SniperPitch(c.Request.Context(), request.AffinityMatch, request.NewProduct)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensagem": draft})
}

// Portfolio serves one page of the customer portfolio view
func (h *Handler) Portfolio(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
			return
		}
		page = parsed
	}

	query := domain.PortfolioQuery{
		Salesperson: c.Query("vendedor"),
		SortKey:     domain.SortKey(c.Query("sort")),
		Descending:  c.DefaultQuery("dir", "desc") != "asc",
		Page:        page,
	}

	view, err := h.portfolio.View(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Churn serves the inactive-customer worklist
func (h *Handler) Churn(c *gin.Context) {
	threshold := 0
	if raw := c.Query("limite_dias"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limite_dias must be a number"})
			return
		}
		threshold = parsed
	}

	lapsed, err := h.churn.Worklist(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientes": lapsed,
		"total":    len(lapsed),
	})
}

// ChurnMessage drafts a recovery message for one lapsed customer
func (h *Handler) ChurnMessage(c *gin.Context) {
	var customer domain.RankedCustomer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if customer.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cliente_nome is required"})
		return
	}

	draft, err := h.drafter.RecoveryMessage(c.Request.Context(), customer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensagem": draft})
}

// Dashboard serves the cached KPI snapshot
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DashboardInsights drafts a trend commentary over the monthly evolution
func (h *Handler) DashboardInsights(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	draft, err := h.drafter.TrendInsights(c.Request.Context(), stats.Evolution)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": draft})
}

type outreachRequest struct {
	Phone string `json:"telefone" binding:"required"`
	Text  string `json:"texto"`
}

// OutreachLink builds a WhatsApp deep link for a drafted message
func (h *Handler) OutreachLink(c *gin.Context) {
	var request outreachRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if usecase.NormalizePhone(request.Phone) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telefone has no digits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": usecase.WhatsAppLink(request.Phone, request.Text)})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStaleRun):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMatchingUnavailable),
		errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrDraftUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
