package http

import (
	"github.com/gin-gonic/gin"
	"github.com/modainteligente/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sniper := v1.Group("/sniper")
		{
			sniper.POST("/search", handler.SniperSearch)
			sniper.POST("/pitch", handler.SniperPitch)
		}

		v1.GET("/portfolio", handler.Portfolio)

		churn := v1.Group("/churn")
		{
			churn.GET("", handler.Churn)
			churn.POST("/message", handler.ChurnMessage)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", handler.Dashboard)
			dashboard.GET("/insights", handler.DashboardInsights)
		}

		v1.POST("/outreach/link", handler.OutreachLink)
	}

	return router
}
