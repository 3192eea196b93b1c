package reporting

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

func TestGrossPay(t *testing.T) {
	totals := models.PeriodTotals{TotalHours: decimal.NewFromFloat(9.5), RegularHours: decimal.NewFromFloat(8), OvertimeHours: decimal.NewFromFloat(1.5)}
	if got := GrossPay(totals, 10); got != 102.5 {
		t.Fatalf("expected 102.50, got %v", got)
	}
}

func TestPayrollWorkbook(t *testing.T) {
	svc, _, _, _ := newTestService()

	f, err := svc.PayrollWorkbook(context.Background(), reportDay, reportDay.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("PayrollWorkbook: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue(payrollSheet, "A1")
	if err != nil || header != "Staff" {
		t.Fatalf("unexpected header %q, %v", header, err)
	}
	name, _ := f.GetCellValue(payrollSheet, "A2")
	pay, _ := f.GetCellValue(payrollSheet, "H2")
	if name != "Ana" || pay != "102.5" {
		t.Fatalf("unexpected first row name=%q pay=%q", name, pay)
	}
	second, _ := f.GetCellValue(payrollSheet, "A3")
	if second != "Ben" {
		t.Fatalf("unexpected second row %q", second)
	}
}
