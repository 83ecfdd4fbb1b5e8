// Package app wires the devserver HTTP surface.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"karsdrive/internal/handler"
	"karsdrive/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler  *handler.UserHandler
	OrderHandler *handler.OrderHandler
	NewRelicApp  *newrelic.Application
}

// NewRouter creates a Gin router exposing the backend REST surface the
// client expects: /users and /orders.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	users := router.Group("/users")
	{
		users.GET("", deps.UserHandler.Find)
		users.POST("", deps.UserHandler.Register)
		users.GET("/:id", deps.UserHandler.Get)
		users.PATCH("/:id", deps.UserHandler.Patch)
		users.DELETE("/:id", deps.UserHandler.Delete)
	}

	orders := router.Group("/orders")
	{
		orders.GET("", deps.OrderHandler.List)
		orders.POST("", deps.OrderHandler.Create)
		orders.GET("/:id", deps.OrderHandler.Get)
		orders.PATCH("/:id", deps.OrderHandler.Patch)
	}

	return router
}
