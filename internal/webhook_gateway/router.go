package webhook_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expense-ledger-bot/internal/webhook_gateway/handler"
	"github.com/expense-ledger-bot/internal/webhook_gateway/middleware"
)

// setupRouter configures the webhook routes and middleware
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	webhookHandler *handler.WebhookHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	r.POST("/callback", webhookHandler.Callback)

	// Keep-alive ping target for free-tier hosting
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello! I am awake!")
	})

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
