package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/locking"
	"github.com/mamadbah2/cafepos/internal/service/inventory"
	"github.com/mamadbah2/cafepos/internal/service/staff"
	"github.com/mamadbah2/cafepos/internal/service/timeaccounting"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStaff struct{}

func (fakeStaff) Create(_ context.Context, req models.NewStaffRequest) (models.Staff, error) {
	return models.Staff{ID: "s1", Name: req.Name, Role: req.Role, Active: true}, nil
}
func (fakeStaff) List(context.Context) ([]models.Staff, error) { return nil, nil }
func (fakeStaff) VerifyPIN(_ context.Context, id, pin string) (models.Staff, error) {
	if id != "s1" {
		return models.Staff{}, models.ErrNotFound
	}
	if pin != "1234" {
		return models.Staff{}, staff.ErrInvalidPIN
	}
	return models.Staff{ID: id}, nil
}

type fakeTimeLogs struct {
	open bool
}

func (f *fakeTimeLogs) RecordClockIn(_ context.Context, id string, at time.Time, _ string) (models.ShiftEvent, error) {
	if f.open {
		return models.ShiftEvent{}, timeaccounting.ErrAlreadyClockedIn
	}
	f.open = true
	return models.ShiftEvent{ID: "e1", StaffID: id, Kind: models.EventClockIn, Timestamp: at}, nil
}

func (f *fakeTimeLogs) RecordClockOut(_ context.Context, id string, at time.Time, _ string) (models.ShiftEvent, error) {
	if !f.open {
		return models.ShiftEvent{}, timeaccounting.ErrNoOpenShift
	}
	f.open = false
	return models.ShiftEvent{ID: "e2", StaffID: id, Kind: models.EventClockOut, Timestamp: at}, nil
}

func (f *fakeTimeLogs) AggregatePeriod(context.Context, string, time.Time, time.Time) (models.PeriodTotals, error) {
	return models.PeriodTotals{TotalHours: decimal.NewFromFloat(9.5), RegularHours: decimal.NewFromFloat(8), OvertimeHours: decimal.NewFromFloat(1.5), Shifts: 1}, nil
}

func (f *fakeTimeLogs) PurgeAll(context.Context) (int64, error) { return 4, nil }

type fakeInventory struct {
	restockedAt time.Time
}

func (f *fakeInventory) Create(_ context.Context, req models.StockItemRequest) (models.StockItem, error) {
	return models.StockItem{ID: "i1", Name: req.Name, Status: models.StatusOutOfStock}, nil
}
func (f *fakeInventory) Get(_ context.Context, id string) (models.StockItem, error) {
	if id != "i1" {
		return models.StockItem{}, models.ErrNotFound
	}
	return models.StockItem{ID: id}, nil
}
func (f *fakeInventory) List(context.Context) ([]models.StockItem, error) { return nil, nil }
func (f *fakeInventory) Update(context.Context, string, models.StockItemRequest) (models.StockItem, error) {
	return models.StockItem{}, models.ErrConflict
}
func (f *fakeInventory) Delete(context.Context, string) error { return nil }
func (f *fakeInventory) Restock(_ context.Context, id string, qty float64, exp time.Time) (models.StockItem, error) {
	if qty <= 0 {
		return models.StockItem{}, inventory.ErrInvalidRestock
	}
	f.restockedAt = exp
	return models.StockItem{ID: id, TotalQuantity: qty}, nil
}
func (f *fakeInventory) Sell(_ context.Context, _ string, qty float64) (models.StockItem, error) {
	if qty > 5 {
		return models.StockItem{}, &inventory.InsufficientStockError{Requested: qty, Available: 5}
	}
	return models.StockItem{ID: "i1", TotalQuantity: 5 - qty}, nil
}
func (f *fakeInventory) Alerts(context.Context, string) ([]models.ExpirationAlert, error) {
	return []models.ExpirationAlert{{ItemID: "i1", DaysLeft: 1}}, nil
}
func (f *fakeInventory) AllAlerts(context.Context) ([]models.ExpirationAlert, error) { return nil, nil }
func (f *fakeInventory) Location() *time.Location                                    { return time.UTC }

type fakeReports struct {
	start, end time.Time
}

func (f *fakeReports) Revenue(_ context.Context, start, end time.Time) (models.RevenueSummary, error) {
	f.start, f.end = start, end
	return models.RevenueSummary{Start: start, End: end, Revenue: 19}, nil
}

func (f *fakeReports) PayrollWorkbook(context.Context, time.Time, time.Time) (*excelize.File, error) {
	return excelize.NewFile(), nil
}

func (f *fakeReports) DailyReports(_ context.Context, start, end time.Time) ([]models.DailyReport, error) {
	f.start, f.end = start, end
	return []models.DailyReport{{Date: start}}, nil
}

func newTestEngine(inv *fakeInventory, reports *fakeReports) *gin.Engine {
	now := func() time.Time { return time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC) }

	timelogs := NewTimeLogHandler(fakeStaff{}, &fakeTimeLogs{}, time.UTC, nil)
	timelogs.now = now
	stock := NewInventoryHandler(inv, nil)
	report := NewReportHandler(reports, time.UTC, nil)
	report.now = now
	staffHandler := NewStaffHandler(fakeStaff{}, nil)

	r := gin.New()
	r.POST("/staff", staffHandler.Create)
	r.POST("/timelogs/clock-in", timelogs.ClockIn)
	r.POST("/timelogs/clock-out", timelogs.ClockOut)
	r.GET("/timelogs/:staffId/summary", timelogs.Summary)
	r.POST("/inventory", stock.Create)
	r.GET("/inventory/:id", stock.Get)
	r.PUT("/inventory/:id", stock.Update)
	r.POST("/inventory/:id/restock", stock.Restock)
	r.POST("/inventory/:id/sell", stock.Sell)
	r.GET("/reports/revenue", report.Revenue)
	r.GET("/reports/daily", report.Daily)
	r.GET("/payroll/export", report.Payroll)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{timeaccounting.ErrAlreadyClockedIn, http.StatusConflict},
		{timeaccounting.ErrNoOpenShift, http.StatusConflict},
		{fmt.Errorf("save: %w", models.ErrConflict), http.StatusConflict},
		{&inventory.InsufficientStockError{Requested: 3, Available: 1}, http.StatusConflict},
		{inventory.ErrInvalidQuantity, http.StatusBadRequest},
		{inventory.ErrInvalidRestock, http.StatusBadRequest},
		{models.ErrNotFound, http.StatusNotFound},
		{staff.ErrInvalidPIN, http.StatusUnauthorized},
		{locking.ErrLocked, http.StatusLocked},
		{errors.New("mongo timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestClockFlow(t *testing.T) {
	r := newTestEngine(&fakeInventory{}, &fakeReports{})

	steps := []struct {
		path string
		body models.ClockRequest
		want int
	}{
		{"/timelogs/clock-in", models.ClockRequest{StaffID: "s1", PIN: "9999"}, http.StatusUnauthorized},
		{"/timelogs/clock-in", models.ClockRequest{StaffID: "ghost", PIN: "1234"}, http.StatusNotFound},
		{"/timelogs/clock-out", models.ClockRequest{StaffID: "s1", PIN: "1234"}, http.StatusConflict},
		{"/timelogs/clock-in", models.ClockRequest{StaffID: "s1", PIN: "1234"}, http.StatusCreated},
		{"/timelogs/clock-in", models.ClockRequest{StaffID: "s1", PIN: "1234"}, http.StatusConflict},
		{"/timelogs/clock-out", models.ClockRequest{StaffID: "s1", PIN: "1234"}, http.StatusCreated},
	}

	for i, step := range steps {
		rec := do(r, http.MethodPost, step.path, step.body)
		if rec.Code != step.want {
			t.Fatalf("step %d %s: expected %d, got %d (%s)", i, step.path, step.want, rec.Code, rec.Body.String())
		}
	}
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	r := newTestEngine(&fakeInventory{}, &fakeReports{})

	rec := do(r, http.MethodGet, "/timelogs/s1/summary?start=2025-01-08&end=2025-01-01", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/timelogs/s1/summary?start=2025-01-01&end=2025-01-07", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateStaffValidation(t *testing.T) {
	r := newTestEngine(&fakeInventory{}, &fakeReports{})

	rec := do(r, http.MethodPost, "/staff", map[string]any{"name": "Ana", "role": "pilot", "pin": "12"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["Role"] != "oneof" || body.Fields["PIN"] != "min" {
		t.Fatalf("unexpected validation fields %v", body.Fields)
	}

	rec = do(r, http.MethodPost, "/staff", map[string]any{"name": "Ana", "role": "barista", "pin": "1234", "hourlyRate": 12.5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestInventoryEndpoints(t *testing.T) {
	inv := &fakeInventory{}
	r := newTestEngine(inv, &fakeReports{})

	rec := do(r, http.MethodPost, "/inventory", map[string]any{"name": "Milk", "category": "dairy", "unit": "gallon"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown unit, got %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/inventory/i1/restock", map[string]any{"quantity": 4, "expirationDate": "next week"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/inventory/i1/restock", map[string]any{"quantity": 4, "expirationDate": "2025-02-01"})
	if rec.Code != http.StatusOK || !inv.restockedAt.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected restock %d at %v", rec.Code, inv.restockedAt)
	}

	rec = do(r, http.MethodPost, "/inventory/i1/sell", map[string]any{"quantity": 8})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var insufficient struct {
		Requested float64 `json:"requested"`
		Available float64 `json:"available"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &insufficient)
	if insufficient.Requested != 8 || insufficient.Available != 5 {
		t.Fatalf("unexpected insufficient body %s", rec.Body.String())
	}

	rec = do(r, http.MethodPut, "/inventory/i1", map[string]any{"name": "Milk", "category": "dairy", "unit": "l"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on version conflict, got %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/inventory/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRevenueDefaultsToLastWeek(t *testing.T) {
	reports := &fakeReports{}
	r := newTestEngine(&fakeInventory{}, reports)

	rec := do(r, http.MethodGet, "/reports/revenue", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	wantEnd := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	if !reports.end.Equal(wantEnd) || !reports.start.Equal(wantEnd.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected range %v - %v", reports.start, reports.end)
	}
}

func TestPayrollExport(t *testing.T) {
	r := newTestEngine(&fakeInventory{}, &fakeReports{})

	rec := do(r, http.MethodGet, "/payroll/export?start=2025-01-01&end=2025-01-07", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Content-Disposition") != `attachment; filename="payroll_2025-01-01_2025-01-07.xlsx"` {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}

func TestDailyReportsUseCalendarDates(t *testing.T) {
	reports := &fakeReports{}
	r := newTestEngine(&fakeInventory{}, reports)

	rec := do(r, http.MethodGet, "/reports/daily?start=2025-01-01&end=2025-01-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !reports.start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !reports.end.Equal(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range %v - %v", reports.start, reports.end)
	}
}
