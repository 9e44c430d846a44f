package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. The WhatsApp routes are
// only mounted when webhook is non-nil.
func New(webhook *handlers.WebhookHandler, analytics *handlers.AnalyticsHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
		r.POST("/send-digest", webhook.SendDigest)
	}

	api := r.Group("/api")
	{
		api.GET("/statistics", analytics.AllStatistics)
		api.GET("/anomalies", analytics.Anomalies)
		api.GET("/todo", analytics.Todo)
		api.GET("/clients/:id/statistics", analytics.ClientStatistics)
		api.GET("/clients/:id/trend", analytics.Trend)
		api.GET("/clients/:id/snapshots/latest", analytics.LatestSnapshot)
		api.GET("/visits/:id/materials", analytics.VisitMaterials)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp_routes", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
