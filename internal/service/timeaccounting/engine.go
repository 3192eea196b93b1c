package timeaccounting

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const (
	// DefaultMaxShiftHours caps a single shift to guard against forgotten clock-outs.
	DefaultMaxShiftHours = 24
	// OvertimeThresholdHours is the fixed daily boundary above which shift time is overtime.
	// A per-staff scheduled-hours value is not supported yet.
	OvertimeThresholdHours = 8
)

var (
	overtimeThreshold = decimal.NewFromInt(OvertimeThresholdHours)
	nanosPerHour      = decimal.NewFromInt(int64(time.Hour))
)

// ComputeShiftHours returns end-start in hours rounded half-up to two decimals and
// capped at maxShiftHours. A negative interval yields 0 rather than negative hours.
func ComputeShiftHours(start, end time.Time, maxShiftHours float64) float64 {
	return shiftHours(start, end, maxShiftHours).InexactFloat64()
}

func shiftHours(start, end time.Time, maxShiftHours float64) decimal.Decimal {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return decimal.Zero
	}

	hours := decimal.NewFromInt(int64(elapsed)).Div(nanosPerHour).Round(2)
	if limit := decimal.NewFromFloat(maxShiftHours); hours.GreaterThan(limit) {
		return limit
	}
	return hours
}

// IsOvertime reports whether a shift of the given length crosses the overtime threshold.
func IsOvertime(hours float64) bool {
	return decimal.NewFromFloat(hours).GreaterThan(overtimeThreshold)
}

type pairingState int

const (
	awaitingClockIn pairingState = iota
	awaitingClockOut
)

// PairShifts walks the events in timestamp order and pairs each clock-out with the
// pending clock-in. Clock-outs without a pending clock-in are skipped, a second
// clock-in replaces the pending one and a trailing clock-in is dropped.
func PairShifts(events []models.ShiftEvent, maxShiftHours float64) []models.Shift {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b models.ShiftEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var (
		shifts  []models.Shift
		state   = awaitingClockIn
		pending time.Time
	)

	for _, ev := range ordered {
		switch ev.Kind {
		case models.EventClockIn:
			pending = ev.Timestamp
			state = awaitingClockOut
		case models.EventClockOut:
			if state != awaitingClockOut {
				continue
			}
			hours := ComputeShiftHours(pending, ev.Timestamp, maxShiftHours)
			shifts = append(shifts, models.Shift{
				Start:      pending,
				End:        ev.Timestamp,
				Hours:      hours,
				IsOvertime: IsOvertime(hours),
			})
			state = awaitingClockIn
		}
	}

	return shifts
}

// Aggregate totals the paired shifts, splitting each one into regular hours (up to
// the threshold) and overtime hours (the remainder).
func Aggregate(events []models.ShiftEvent, maxShiftHours float64) models.PeriodTotals {
	var total, regular, overtime decimal.Decimal

	shifts := PairShifts(events, maxShiftHours)
	for _, shift := range shifts {
		hours := decimal.NewFromFloat(shift.Hours)
		total = total.Add(hours)

		reg := decimal.Min(hours, overtimeThreshold)
		regular = regular.Add(reg)
		overtime = overtime.Add(hours.Sub(reg))
	}

	return models.PeriodTotals{
		TotalHours:    total,
		RegularHours:  regular,
		OvertimeHours: overtime,
		Shifts:        len(shifts),
	}
}
