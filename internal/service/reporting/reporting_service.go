package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const dateLayout = "2006-01-02"

// SalesSource reads the sales log.
type SalesSource interface {
	SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error)
}

// HoursSource aggregates worked hours for every staff member.
type HoursSource interface {
	AggregateAll(ctx context.Context, start, end time.Time) ([]models.StaffTotals, error)
}

// StockSource exposes the current inventory state.
type StockSource interface {
	List(ctx context.Context) ([]models.StockItem, error)
	AllAlerts(ctx context.Context) ([]models.ExpirationAlert, error)
}

// ReportStore persists generated daily reports.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	DailyReportsBetween(ctx context.Context, start, end time.Time) ([]models.DailyReport, error)
}

// Exporter mirrors a daily report to an external destination.
type Exporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service derives revenue, hours and stock figures for the back office.
type Service struct {
	sales    SalesSource
	hours    HoursSource
	stock    StockSource
	store    ReportStore
	exporter Exporter
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(sales SalesSource, hours HoursSource, stock StockSource, store ReportStore, exporter Exporter, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		sales:    sales,
		hours:    hours,
		stock:    stock,
		store:    store,
		exporter: exporter,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Revenue sums the sales log over [start, end).
func (s *Service) Revenue(ctx context.Context, start, end time.Time) (models.RevenueSummary, error) {
	if !end.After(start) {
		return models.RevenueSummary{}, errors.New("end must be after start")
	}

	sales, err := s.sales.SalesBetween(ctx, start, end)
	if err != nil {
		return models.RevenueSummary{}, fmt.Errorf("load sales: %w", err)
	}

	var revenue, cost, units decimal.Decimal
	for _, sale := range sales {
		qty := decimal.NewFromFloat(sale.Quantity)
		revenue = revenue.Add(qty.Mul(decimal.NewFromFloat(sale.UnitPrice)))
		cost = cost.Add(qty.Mul(decimal.NewFromFloat(sale.UnitCost)))
		units = units.Add(qty)
	}

	return models.RevenueSummary{
		Start:       start,
		End:         end,
		Revenue:     revenue.Round(2).InexactFloat64(),
		Cost:        cost.Round(2).InexactFloat64(),
		GrossProfit: revenue.Sub(cost).Round(2).InexactFloat64(),
		UnitsSold:   units.InexactFloat64(),
		Sales:       len(sales),
	}, nil
}

// DayBounds returns the local midnight of day and of the following day.
func (s *Service) DayBounds(day time.Time) (time.Time, time.Time) {
	local := day.In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}

// BuildDailyReport computes the figures of the local calendar day containing day.
// Shifts crossing midnight are only counted when both events fall inside the day.
func (s *Service) BuildDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	start, end := s.DayBounds(day)

	revenue, err := s.Revenue(ctx, start, end)
	if err != nil {
		return models.DailyReport{}, err
	}

	staffTotals, err := s.hours.AggregateAll(ctx, start, end.Add(-time.Nanosecond))
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("aggregate hours: %w", err)
	}
	var hours, overtime decimal.Decimal
	for _, st := range staffTotals {
		hours = hours.Add(st.Totals.TotalHours)
		overtime = overtime.Add(st.Totals.OvertimeHours)
	}

	items, err := s.stock.List(ctx)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("list stock: %w", err)
	}
	alerts, err := s.stock.AllAlerts(ctx)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load expiration alerts: %w", err)
	}

	report := models.DailyReport{
		Date:            time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		Revenue:         revenue.Revenue,
		Cost:            revenue.Cost,
		GrossProfit:     revenue.GrossProfit,
		UnitsSold:       revenue.UnitsSold,
		HoursWorked:     hours.InexactFloat64(),
		OvertimeHours:   overtime.InexactFloat64(),
		ExpiringBatches: len(alerts),
		CreatedAt:       s.now().UTC(),
	}
	for _, item := range items {
		switch item.Status {
		case models.StatusLowStock:
			report.LowStockItems++
		case models.StatusOutOfStock:
			report.OutOfStockItems++
		}
	}
	return report, nil
}

// GenerateAndStore builds, persists and exports the daily report. Export failures
// are logged and do not fail the run.
func (s *Service) GenerateAndStore(ctx context.Context, day time.Time) (models.DailyReport, error) {
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}

	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, fmt.Errorf("store daily report: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.AppendDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to export daily report", zap.Time("date", report.Date), zap.Error(err))
		}
	}

	s.logger.Info("daily report stored", zap.String("date", report.Date.Format(dateLayout)), zap.Float64("revenue", report.Revenue))
	return report, nil
}

// DailyReports returns stored reports between two dates inclusive.
func (s *Service) DailyReports(ctx context.Context, start, end time.Time) ([]models.DailyReport, error) {
	return s.store.DailyReportsBetween(ctx, start, end)
}

// FormatDailySummary renders a report as a chat message.
func FormatDailySummary(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report %s\n", report.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Revenue %.2f, cost %.2f, gross profit %.2f (%g units sold)\n", report.Revenue, report.Cost, report.GrossProfit, report.UnitsSold)
	fmt.Fprintf(&b, "Hours worked %.2f, overtime %.2f\n", report.HoursWorked, report.OvertimeHours)
	fmt.Fprintf(&b, "Stock: %d low, %d out, %d batches expiring", report.LowStockItems, report.OutOfStockItems, report.ExpiringBatches)
	return b.String()
}

// StockSummary lists the items that are not comfortably in stock.
func (s *Service) StockSummary(ctx context.Context) (string, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list stock: %w", err)
	}

	var lines []string
	for _, item := range items {
		if item.Status == models.StatusInStock {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %g %s (%s)", item.Name, item.TotalQuantity, item.Unit, item.Status))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("All %d items are in stock.", len(items)), nil
	}
	return "Stock needing attention:\n" + strings.Join(lines, "\n"), nil
}

// AlertsSummary lists batches expiring soon or already past due.
func (s *Service) AlertsSummary(ctx context.Context) (string, error) {
	alerts, err := s.stock.AllAlerts(ctx)
	if err != nil {
		return "", fmt.Errorf("load expiration alerts: %w", err)
	}
	if len(alerts) == 0 {
		return "No batches expiring soon.", nil
	}

	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		when := fmt.Sprintf("in %d days", a.DaysLeft)
		switch {
		case a.DaysLeft == 0:
			when = "today"
		case a.DaysLeft < 0:
			when = fmt.Sprintf("%d days ago", -a.DaysLeft)
		}
		lines = append(lines, fmt.Sprintf("- %s: %g expires %s (%s)", a.ItemName, a.Quantity, when, a.ExpirationDate.In(s.location).Format(dateLayout)))
	}
	return "Expiring batches:\n" + strings.Join(lines, "\n"), nil
}

// RevenueSummaryText renders today's revenue so far.
func (s *Service) RevenueSummaryText(ctx context.Context) (string, error) {
	start, end := s.DayBounds(s.now())
	summary, err := s.Revenue(ctx, start, end)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Revenue today: %.2f from %d sales, gross profit %.2f.", summary.Revenue, summary.Sales, summary.GrossProfit), nil
}

// HoursSummaryText renders hours worked today per staff member.
func (s *Service) HoursSummaryText(ctx context.Context) (string, error) {
	start, end := s.DayBounds(s.now())
	totals, err := s.hours.AggregateAll(ctx, start, end.Add(-time.Nanosecond))
	if err != nil {
		return "", err
	}

	var lines []string
	for _, st := range totals {
		if st.Totals.Shifts == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %sh (%sh overtime)", st.Staff.Name, st.Totals.TotalHours.StringFixed(2), st.Totals.OvertimeHours.StringFixed(2)))
	}
	if len(lines) == 0 {
		return "No completed shifts today.", nil
	}
	return "Hours today:\n" + strings.Join(lines, "\n"), nil
}
