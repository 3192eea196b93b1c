package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService derives revenue and payroll figures.
type ReportService interface {
	Revenue(ctx context.Context, start, end time.Time) (models.RevenueSummary, error)
	PayrollWorkbook(ctx context.Context, start, end time.Time) (*excelize.File, error)
	DailyReports(ctx context.Context, start, end time.Time) ([]models.DailyReport, error)
}

// ReportHandler exposes revenue and payroll exports.
type ReportHandler struct {
	svc      ReportService
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportHandler constructs the reports handler.
func NewReportHandler(svc ReportService, location *time.Location, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &ReportHandler{svc: svc, location: location, logger: logger, now: time.Now}
}

// Revenue sums the sales log over ?start and ?end.
func (h *ReportHandler) Revenue(c *gin.Context) {
	start, end, err := parseRange(c, h.location, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.svc.Revenue(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Daily lists stored nightly reports over ?start and ?end.
func (h *ReportHandler) Daily(c *gin.Context) {
	start, end, err := parseRange(c, h.location, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	// Reports are keyed by their calendar date at UTC midnight.
	last := end.Add(-time.Nanosecond)
	reports, err := h.svc.DailyReports(c.Request.Context(),
		time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Payroll streams an .xlsx workbook of per-staff hours over ?start and ?end.
func (h *ReportHandler) Payroll(c *gin.Context) {
	start, end, err := parseRange(c, h.location, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := h.svc.PayrollWorkbook(c.Request.Context(), start, end.Add(-time.Nanosecond))
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.Warn("failed to close payroll workbook", zap.Error(err))
		}
	}()

	filename := fmt.Sprintf("payroll_%s_%s.xlsx", start.Format(dateLayout), end.Add(-time.Nanosecond).Format(dateLayout))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		h.logger.Error("failed to stream payroll workbook", zap.Error(err))
	}
}
