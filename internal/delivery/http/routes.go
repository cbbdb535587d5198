package http

import (
	"net/http"

	"github.com/gamstore/storefront/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router.
// gatherer backs /metrics; nil disables the endpoint.
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Catalog endpoints
		v1.GET("/home", handler.GetHomePageData)
		v1.POST("/home/refresh", handler.RefreshHomePageData)
		v1.GET("/categories", handler.GetCategories)
		v1.GET("/sections/:subcategoryId/items", handler.GetSectionItems)
		v1.GET("/search", handler.SearchProducts)

		// Session endpoints
		v1.POST("/session", handler.StartSession)
		v1.DELETE("/session", handler.EndSession)
		v1.PUT("/location", handler.SetLocation)

		// Profile endpoints
		profile := v1.Group("/profile")
		{
			profile.GET("", handler.GetProfile)
			profile.POST("/refresh", handler.RefreshProfile)
			profile.DELETE("/cache", handler.ClearProfileCache)
		}

		// Cart endpoints
		cart := v1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddCartItem)
			cart.PUT("/items/:id", handler.UpdateCartItem)
			cart.DELETE("/items/:id", handler.RemoveCartItem)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
