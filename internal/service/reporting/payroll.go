package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const payrollSheet = "Payroll"

var payrollHeader = []interface{}{"Staff", "Role", "Shifts", "Regular hours", "Overtime hours", "Total hours", "Hourly rate", "Gross pay"}

// overtimePremium multiplies the hourly rate for overtime hours.
var overtimePremium = decimal.NewFromFloat(1.5)

// PayrollWorkbook builds an .xlsx sheet of per-staff hours over [start, end].
func (s *Service) PayrollWorkbook(ctx context.Context, start, end time.Time) (*excelize.File, error) {
	totals, err := s.hours.AggregateAll(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate hours: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(payrollSheet, "A1", &payrollHeader); err != nil {
		return nil, fmt.Errorf("write payroll header: %w", err)
	}

	for i, st := range totals {
		row := []interface{}{
			st.Staff.Name,
			st.Staff.Role,
			st.Totals.Shifts,
			st.Totals.RegularHours.InexactFloat64(),
			st.Totals.OvertimeHours.InexactFloat64(),
			st.Totals.TotalHours.InexactFloat64(),
			st.Staff.HourlyRate,
			GrossPay(st.Totals, st.Staff.HourlyRate),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(payrollSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write payroll row %d: %w", i+2, err)
		}
	}

	period := fmt.Sprintf("%s to %s", start.In(s.location).Format(dateLayout), end.In(s.location).Format(dateLayout))
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Payroll " + period, Creator: "cafepos"}); err != nil {
		return nil, err
	}
	return f, nil
}

// GrossPay is regular hours at the hourly rate plus overtime at time and a half.
func GrossPay(totals models.PeriodTotals, hourlyRate float64) float64 {
	rate := decimal.NewFromFloat(hourlyRate)
	regular := totals.RegularHours.Mul(rate)
	overtime := totals.OvertimeHours.Mul(rate).Mul(overtimePremium)
	return regular.Add(overtime).Round(2).InexactFloat64()
}
