package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind enumerates the two time log event types.
type EventKind string

const (
	EventClockIn  EventKind = "clockIn"
	EventClockOut EventKind = "clockOut"
)

// ShiftEvent is a single clock-in or clock-out entry for a staff member.
// HoursWorked and IsOvertime are only populated on clock-out events.
type ShiftEvent struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	StaffID     string    `bson:"staff_id" json:"staffId"`
	Kind        EventKind `bson:"kind" json:"kind"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	HoursWorked *float64  `bson:"hours_worked,omitempty" json:"hoursWorked,omitempty"`
	IsOvertime  *bool     `bson:"is_overtime,omitempty" json:"isOvertime,omitempty"`
	PhotoRef    string    `bson:"photo_ref,omitempty" json:"photoRef,omitempty"`
}

// Shift is a derived clock-in/clock-out pair. It is never persisted.
type Shift struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Hours      float64   `json:"hours"`
	IsOvertime bool      `json:"isOvertime"`
}

// PeriodTotals aggregates worked hours over a date range. Hours are exact decimals
// so RegularHours + OvertimeHours always equals TotalHours.
type PeriodTotals struct {
	TotalHours    decimal.Decimal `json:"totalHours"`
	RegularHours  decimal.Decimal `json:"regularHours"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	Shifts        int             `json:"shifts"`
}

// StaffTotals pairs a staff member with their period totals.
type StaffTotals struct {
	Staff  Staff        `json:"staff"`
	Totals PeriodTotals `json:"totals"`
}

// ClockRequest is the payload of a clock-in or clock-out.
type ClockRequest struct {
	StaffID  string `json:"staffId" binding:"required"`
	PIN      string `json:"pin" binding:"required,numeric"`
	PhotoRef string `json:"photoRef" binding:"omitempty,max=512"`
}
