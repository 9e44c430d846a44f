package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/analytics"
	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

// AnalyticsService is the read side the JSON API exposes.
type AnalyticsService interface {
	ClientStatistics(ctx context.Context, clientID int64) (*models.ClientStatistics, error)
	AllClientStatistics(ctx context.Context, activeOnly bool) ([]models.ClientStatistics, error)
	AnomalousVisits(ctx context.Context, thresholdPercent float64, clientID int64) ([]models.AnomalousVisit, error)
	TodoList(ctx context.Context) (*models.TodoList, error)
	MonthlyTrend(ctx context.Context, clientID int64, year int, mode analytics.TrendMode) ([]models.MonthlyAverage, error)
	VisitMaterials(ctx context.Context, visitID int64) ([]models.VisitMaterial, error)
}

// SnapshotReader returns the latest stored projection for a client.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, clientID int64) (*models.ProfitabilitySnapshot, error)
}

// AnalyticsHandler serves client statistics, anomalies and the to-do list as JSON.
type AnalyticsHandler struct {
	svc       AnalyticsService
	snapshots SnapshotReader
	logger    *zap.Logger
}

// NewAnalyticsHandler constructs the handler. snapshots may be nil.
func NewAnalyticsHandler(svc AnalyticsService, snapshots SnapshotReader, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{svc: svc, snapshots: snapshots, logger: logger}
}

// ClientStatistics returns the projection for one client.
func (h *AnalyticsHandler) ClientStatistics(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.svc.ClientStatistics(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "client statistics", err)
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// AllStatistics returns projections for every client, active ones by default.
func (h *AnalyticsHandler) AllStatistics(c *gin.Context) {
	activeOnly := true
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active_only must be a boolean"})
			return
		}
		activeOnly = v
	}

	stats, err := h.svc.AllClientStatistics(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, "all client statistics", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": stats, "count": len(stats)})
}

// Anomalies lists visits at or above the threshold percent of their client's average.
func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	var threshold float64
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number"})
			return
		}
		threshold = v
	}

	var clientID int64
	if raw := c.Query("client_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client_id must be a positive integer"})
			return
		}
		clientID = v
	}

	flagged, err := h.svc.AnomalousVisits(c.Request.Context(), threshold, clientID)
	if err != nil {
		h.fail(c, "anomalous visits", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": flagged, "count": len(flagged)})
}

// Todo returns the attention list.
func (h *AnalyticsHandler) Todo(c *gin.Context) {
	todo, err := h.svc.TodoList(c.Request.Context())
	if err != nil {
		h.fail(c, "todo list", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Trend returns a client's monthly average visit time or cost.
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	year := 0
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a positive integer"})
			return
		}
		year = v
	}

	mode, err := analytics.ParseTrendMode(c.DefaultQuery("mode", string(analytics.TrendTime)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.svc.MonthlyTrend(c.Request.Context(), id, year, mode)
	if err != nil {
		h.fail(c, "monthly trend", err)
		return
	}
	if points == nil {
		points = []models.MonthlyAverage{}
	}

	c.JSON(http.StatusOK, gin.H{"client_id": id, "mode": mode, "months": points})
}

// VisitMaterials lists the materials logged on one visit.
func (h *AnalyticsHandler) VisitMaterials(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.VisitMaterials(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "visit materials", err)
		return
	}
	if items == nil {
		items = []models.VisitMaterial{}
	}

	c.JSON(http.StatusOK, gin.H{"visit_id": id, "materials": items})
}

// LatestSnapshot returns the newest stored projection for a client.
func (h *AnalyticsHandler) LatestSnapshot(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshot history is not configured"})
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	snap, err := h.snapshots.LatestSnapshot(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "latest snapshot", err)
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for client"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *AnalyticsHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *AnalyticsHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, reporting.ErrInvalidClientID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("analytics request failed", zap.String("operation", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
