package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/server/handlers"
	"github.com/mamadbah2/cafepos/internal/service/errtrack"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Webhook   *handlers.WebhookHandler
	Staff     *handlers.StaffHandler
	TimeLogs  *handlers.TimeLogHandler
	Inventory *handlers.InventoryHandler
	Reports   *handlers.ReportHandler
	Errors    *handlers.ErrorsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, tracker errtrack.Tracker, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	if tracker != nil {
		r.Use(errorTrackingMiddleware(tracker))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/webhook", h.Webhook.Verify)
	r.POST("/webhook", h.Webhook.Receive)
	r.POST("/send-message", h.Webhook.SendMessage)

	r.POST("/staff", h.Staff.Create)
	r.GET("/staff", h.Staff.List)

	timelogs := r.Group("/timelogs")
	timelogs.POST("/clock-in", h.TimeLogs.ClockIn)
	timelogs.POST("/clock-out", h.TimeLogs.ClockOut)
	timelogs.GET("/:staffId/summary", h.TimeLogs.Summary)

	admin := r.Group("/admin")
	admin.DELETE("/timelogs", h.TimeLogs.Purge)
	admin.GET("/errors", h.Errors.List)

	r.GET("/payroll/export", h.Reports.Payroll)
	r.GET("/reports/revenue", h.Reports.Revenue)
	r.GET("/reports/daily", h.Reports.Daily)

	stock := r.Group("/inventory")
	stock.POST("", h.Inventory.Create)
	stock.GET("", h.Inventory.List)
	stock.GET("/alerts", h.Inventory.Alerts)
	stock.GET("/:id", h.Inventory.Get)
	stock.PUT("/:id", h.Inventory.Update)
	stock.DELETE("/:id", h.Inventory.Delete)
	stock.POST("/:id/restock", h.Inventory.Restock)
	stock.POST("/:id/sell", h.Inventory.Sell)

	logger.Info("router initialized")

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)))
	}
}

// errorTrackingMiddleware records server-side failures attached by handlers.
func errorTrackingMiddleware(tracker errtrack.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusInternalServerError {
			return
		}

		message := http.StatusText(status)
		if len(c.Errors) > 0 {
			message = strings.Join(c.Errors.Errors(), "; ")
		}
		tracker.RecordError(c.Request.Context(), errtrack.Entry{
			Source:    "http",
			Message:   message,
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    status,
			RequestID: c.GetString(requestIDHeader),
		})
	}
}
