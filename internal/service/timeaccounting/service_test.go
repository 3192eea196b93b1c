package timeaccounting

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

type memoryRepo struct {
	mu     sync.Mutex
	events []models.ShiftEvent
}

func (r *memoryRepo) LatestEvent(_ context.Context, staffID string) (*models.ShiftEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *models.ShiftEvent
	for i := range r.events {
		ev := r.events[i]
		if ev.StaffID != staffID {
			continue
		}
		if latest == nil || !ev.Timestamp.Before(latest.Timestamp) {
			latest = &ev
		}
	}
	return latest, nil
}

func (r *memoryRepo) InsertEvent(_ context.Context, event models.ShiftEvent) (models.ShiftEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = fmt.Sprintf("ev-%d", len(r.events)+1)
	r.events = append(r.events, event)
	return event, nil
}

func (r *memoryRepo) EventsBetween(_ context.Context, staffID string, start, end time.Time) ([]models.ShiftEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ShiftEvent
	for _, ev := range r.events {
		if ev.StaffID == staffID && !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
			out = append(out, ev)
		}
	}
	slices.SortFunc(out, func(a, b models.ShiftEvent) int { return a.Timestamp.Compare(b.Timestamp) })
	return out, nil
}

func (r *memoryRepo) DeleteAllEvents(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.events))
	r.events = nil
	return n, nil
}

type staticStaff []models.Staff

func (s staticStaff) List(context.Context) ([]models.Staff, error) { return s, nil }

func newTestService() (*Service, *memoryRepo) {
	repo := &memoryRepo{}
	staff := staticStaff{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}
	return NewService(repo, staff, nil, nil), repo
}

func TestRecordClockInRejectsDoubleClockIn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordClockIn(ctx, "alice", at(8, 0, 0), ""); err != nil {
		t.Fatalf("RecordClockIn: %v", err)
	}
	if _, err := svc.RecordClockIn(ctx, "alice", at(9, 0, 0), ""); !errors.Is(err, ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}
	if _, err := svc.RecordClockIn(ctx, "bob", at(9, 0, 0), ""); err != nil {
		t.Fatalf("other staff should clock in independently: %v", err)
	}
}

func TestRecordClockOutRequiresOpenShift(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordClockOut(ctx, "alice", at(17, 0, 0), ""); !errors.Is(err, ErrNoOpenShift) {
		t.Fatalf("expected ErrNoOpenShift without events, got %v", err)
	}

	if _, err := svc.RecordClockIn(ctx, "alice", at(8, 0, 0), ""); err != nil {
		t.Fatalf("RecordClockIn: %v", err)
	}
	if _, err := svc.RecordClockOut(ctx, "alice", at(12, 0, 0), ""); err != nil {
		t.Fatalf("RecordClockOut: %v", err)
	}
	if _, err := svc.RecordClockOut(ctx, "alice", at(13, 0, 0), ""); !errors.Is(err, ErrNoOpenShift) {
		t.Fatalf("expected ErrNoOpenShift after closing shift, got %v", err)
	}
}

func TestRecordClockOutComputesHoursAndOvertime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordClockIn(ctx, "alice", at(8, 0, 0), "photos/in.jpg"); err != nil {
		t.Fatalf("RecordClockIn: %v", err)
	}
	event, err := svc.RecordClockOut(ctx, "alice", at(17, 30, 0), "photos/out.jpg")
	if err != nil {
		t.Fatalf("RecordClockOut: %v", err)
	}

	if event.Kind != models.EventClockOut || event.HoursWorked == nil || event.IsOvertime == nil {
		t.Fatalf("clock-out event missing computed fields: %+v", event)
	}
	if *event.HoursWorked != 9.5 || !*event.IsOvertime {
		t.Fatalf("expected 9.50 overtime hours, got %v overtime=%v", *event.HoursWorked, *event.IsOvertime)
	}
	if event.PhotoRef != "photos/out.jpg" {
		t.Fatalf("photo reference not stored: %+v", event)
	}
}

func TestRecordClockOutAtThresholdIsNotOvertime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.RecordClockIn(ctx, "bob", at(9, 0, 0), "")
	event, err := svc.RecordClockOut(ctx, "bob", at(17, 0, 0), "")
	if err != nil {
		t.Fatalf("RecordClockOut: %v", err)
	}
	if *event.HoursWorked != 8 || *event.IsOvertime {
		t.Fatalf("8h shift must not be overtime: %+v", event)
	}
}

func TestAggregatePeriodAndAll(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.RecordClockIn(ctx, "alice", at(8, 0, 0), "")
	_, _ = svc.RecordClockOut(ctx, "alice", at(17, 30, 0), "")
	_, _ = svc.RecordClockIn(ctx, "bob", at(10, 0, 0), "")
	_, _ = svc.RecordClockOut(ctx, "bob", at(14, 15, 0), "")

	totals, err := svc.AggregatePeriod(ctx, "alice", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("AggregatePeriod: %v", err)
	}
	assertHours(t, totals.TotalHours, 9.5, "alice total")
	assertHours(t, totals.RegularHours, 8, "alice regular")
	assertHours(t, totals.OvertimeHours, 1.5, "alice overtime")

	all, err := svc.AggregateAll(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("AggregateAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unexpected staff totals %+v", all)
	}
	assertHours(t, all[1].Totals.TotalHours, 4.25, "bob total")
}

func TestPurgeAll(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, _ = svc.RecordClockIn(ctx, "alice", at(8, 0, 0), "")
	deleted, err := svc.PurgeAll(ctx)
	if err != nil {
		t.Fatalf("PurgeAll: %v", err)
	}
	if deleted != 1 || len(repo.events) != 0 {
		t.Fatalf("expected one deleted event, got %d (remaining %d)", deleted, len(repo.events))
	}
}

func TestRecordClockOutWarnsOnAbnormalShift(t *testing.T) {
	cases := []struct {
		name     string
		clockIn  time.Time
		clockOut time.Time
		hours    float64
		overtime bool
		message  string
	}{
		{
			name:     "forgotten clock-out is capped",
			clockIn:  at(8, 0, 0),
			clockOut: at(38, 0, 0),
			hours:    DefaultMaxShiftHours,
			overtime: true,
			message:  "shift exceeds maximum length, hours will be capped",
		},
		{
			name:     "clock-out before clock-in records zero",
			clockIn:  at(10, 0, 0),
			clockOut: at(9, 0, 0),
			hours:    0,
			overtime: false,
			message:  "clock-out precedes clock-in, recording zero hours",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			repo := &memoryRepo{}
			svc := NewService(repo, staticStaff{{ID: "alice", Name: "Alice"}}, nil, zap.New(core))
			ctx := context.Background()

			if _, err := svc.RecordClockIn(ctx, "alice", tc.clockIn, ""); err != nil {
				t.Fatalf("RecordClockIn: %v", err)
			}
			event, err := svc.RecordClockOut(ctx, "alice", tc.clockOut, "")
			if err != nil {
				t.Fatalf("RecordClockOut: %v", err)
			}

			if *event.HoursWorked != tc.hours || *event.IsOvertime != tc.overtime {
				t.Fatalf("expected %v hours (overtime %v), got %v (%v)", tc.hours, tc.overtime, *event.HoursWorked, *event.IsOvertime)
			}
			if len(repo.events) != 2 || repo.events[1].Kind != models.EventClockOut {
				t.Fatalf("expected clock-out to be recorded, got %+v", repo.events)
			}

			warnings := logs.FilterMessage(tc.message).All()
			if len(warnings) != 1 || logs.Len() != 1 {
				t.Fatalf("expected exactly one %q warning, got %d of %d entries", tc.message, len(warnings), logs.Len())
			}
			if warnings[0].Level != zap.WarnLevel || warnings[0].ContextMap()["staff_id"] != "alice" {
				t.Fatalf("unexpected warning entry %+v", warnings[0])
			}
		})
	}
}
