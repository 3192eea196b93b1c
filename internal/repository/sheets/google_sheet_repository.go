package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/cafepos/internal/config"
	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const (
	dailyReportRange = "DailyReports!A:J"
	dateLayout       = "2006-01-02"
)

// Exporter mirrors back-office figures into a shared spreadsheet for the owners.
type Exporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDailyReport writes one row per report.
func (e *GoogleSheetExporter) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	return e.writeRow(ctx, dailyReportRange, DailyReportRow(report))
}

// DailyReportRow is the spreadsheet column layout of a daily report.
func DailyReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date.Format(dateLayout),
		report.Revenue,
		report.Cost,
		report.GrossProfit,
		report.UnitsSold,
		report.HoursWorked,
		report.OvertimeHours,
		report.LowStockItems,
		report.OutOfStockItems,
		report.ExpiringBatches,
	}
}

func (e *GoogleSheetExporter) writeRow(ctx context.Context, sheetRange string, values []interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	e.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}
