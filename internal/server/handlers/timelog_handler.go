package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// TimeLogService records clock events and totals hours.
type TimeLogService interface {
	RecordClockIn(ctx context.Context, staffID string, at time.Time, photoRef string) (models.ShiftEvent, error)
	RecordClockOut(ctx context.Context, staffID string, at time.Time, photoRef string) (models.ShiftEvent, error)
	AggregatePeriod(ctx context.Context, staffID string, start, end time.Time) (models.PeriodTotals, error)
	PurgeAll(ctx context.Context) (int64, error)
}

// TimeLogHandler exposes the time clock.
type TimeLogHandler struct {
	staff    StaffService
	timelogs TimeLogService
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewTimeLogHandler constructs the time clock handler. Summary date ranges are
// interpreted in location.
func NewTimeLogHandler(staff StaffService, timelogs TimeLogService, location *time.Location, logger *zap.Logger) *TimeLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &TimeLogHandler{
		staff:    staff,
		timelogs: timelogs,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// ClockIn verifies the PIN and opens a shift.
func (h *TimeLogHandler) ClockIn(c *gin.Context) {
	h.clock(c, h.timelogs.RecordClockIn)
}

// ClockOut verifies the PIN and closes the open shift.
func (h *TimeLogHandler) ClockOut(c *gin.Context) {
	h.clock(c, h.timelogs.RecordClockOut)
}

func (h *TimeLogHandler) clock(c *gin.Context, record func(context.Context, string, time.Time, string) (models.ShiftEvent, error)) {
	var req models.ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.staff.VerifyPIN(ctx, req.StaffID, req.PIN); err != nil {
		respondError(c, err)
		return
	}

	event, err := record(ctx, req.StaffID, h.now().UTC(), req.PhotoRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Summary returns the period totals of one staff member.
func (h *TimeLogHandler) Summary(c *gin.Context) {
	start, end, err := parseRange(c, h.location, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	totals, err := h.timelogs.AggregatePeriod(c.Request.Context(), c.Param("staffId"), start, end.Add(-time.Nanosecond))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staffId": c.Param("staffId"),
		"start":   start,
		"end":     end,
		"totals":  totals,
	})
}

// Purge deletes every time log.
func (h *TimeLogHandler) Purge(c *gin.Context) {
	deleted, err := h.timelogs.PurgeAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Warn("time logs purged over http", zap.Int64("deleted", deleted), zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
