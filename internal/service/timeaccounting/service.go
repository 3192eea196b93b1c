package timeaccounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/locking"
)

var (
	// ErrAlreadyClockedIn is returned when the latest event for the staff member is a clock-in.
	ErrAlreadyClockedIn = errors.New("staff member is already clocked in")
	// ErrNoOpenShift is returned on clock-out without a pending clock-in.
	ErrNoOpenShift = errors.New("no open shift to clock out of")
)

// Repository is the time log store the engine reads and appends to.
type Repository interface {
	LatestEvent(ctx context.Context, staffID string) (*models.ShiftEvent, error)
	InsertEvent(ctx context.Context, event models.ShiftEvent) (models.ShiftEvent, error)
	EventsBetween(ctx context.Context, staffID string, start, end time.Time) ([]models.ShiftEvent, error)
	DeleteAllEvents(ctx context.Context) (int64, error)
}

// StaffDirectory lists the staff whose hours are reported.
type StaffDirectory interface {
	List(ctx context.Context) ([]models.Staff, error)
}

// Service records clock events and computes worked hours.
type Service struct {
	repo          Repository
	staff         StaffDirectory
	locker        locking.Locker
	maxShiftHours float64
	logger        *zap.Logger
}

// NewService wires the time accounting service.
func NewService(repo Repository, staff StaffDirectory, locker locking.Locker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	return &Service{
		repo:          repo,
		staff:         staff,
		locker:        locker,
		maxShiftHours: DefaultMaxShiftHours,
		logger:        logger,
	}
}

// RecordClockIn appends a clock-in event unless the staff member is already clocked in.
// PIN verification happens before this call.
func (s *Service) RecordClockIn(ctx context.Context, staffID string, at time.Time, photoRef string) (models.ShiftEvent, error) {
	release, err := s.locker.Acquire(ctx, lockKey(staffID))
	if err != nil {
		return models.ShiftEvent{}, err
	}
	defer release()

	latest, err := s.repo.LatestEvent(ctx, staffID)
	if err != nil {
		return models.ShiftEvent{}, fmt.Errorf("load latest event: %w", err)
	}
	if latest != nil && latest.Kind == models.EventClockIn {
		return models.ShiftEvent{}, ErrAlreadyClockedIn
	}

	event, err := s.repo.InsertEvent(ctx, models.ShiftEvent{
		StaffID:   staffID,
		Kind:      models.EventClockIn,
		Timestamp: at,
		PhotoRef:  photoRef,
	})
	if err != nil {
		return models.ShiftEvent{}, fmt.Errorf("insert clock-in: %w", err)
	}

	s.logger.Info("staff clocked in", zap.String("staff_id", staffID), zap.Time("at", at))
	return event, nil
}

// RecordClockOut closes the open shift and stores the computed hours on the clock-out event.
func (s *Service) RecordClockOut(ctx context.Context, staffID string, at time.Time, photoRef string) (models.ShiftEvent, error) {
	release, err := s.locker.Acquire(ctx, lockKey(staffID))
	if err != nil {
		return models.ShiftEvent{}, err
	}
	defer release()

	latest, err := s.repo.LatestEvent(ctx, staffID)
	if err != nil {
		return models.ShiftEvent{}, fmt.Errorf("load latest event: %w", err)
	}
	if latest == nil || latest.Kind != models.EventClockIn {
		return models.ShiftEvent{}, ErrNoOpenShift
	}

	elapsed := at.Sub(latest.Timestamp)
	if elapsed > time.Duration(s.maxShiftHours*float64(time.Hour)) {
		s.logger.Warn("shift exceeds maximum length, hours will be capped",
			zap.String("staff_id", staffID),
			zap.Time("clock_in", latest.Timestamp),
			zap.Duration("elapsed", elapsed))
	}
	if elapsed < 0 {
		s.logger.Warn("clock-out precedes clock-in, recording zero hours",
			zap.String("staff_id", staffID),
			zap.Time("clock_in", latest.Timestamp),
			zap.Time("clock_out", at))
	}

	hours := ComputeShiftHours(latest.Timestamp, at, s.maxShiftHours)
	overtime := IsOvertime(hours)

	event, err := s.repo.InsertEvent(ctx, models.ShiftEvent{
		StaffID:     staffID,
		Kind:        models.EventClockOut,
		Timestamp:   at,
		HoursWorked: &hours,
		IsOvertime:  &overtime,
		PhotoRef:    photoRef,
	})
	if err != nil {
		return models.ShiftEvent{}, fmt.Errorf("insert clock-out: %w", err)
	}

	s.logger.Info("staff clocked out",
		zap.String("staff_id", staffID),
		zap.Float64("hours", hours),
		zap.Bool("overtime", overtime))
	return event, nil
}

// AggregatePeriod totals the hours a staff member worked within [start, end].
func (s *Service) AggregatePeriod(ctx context.Context, staffID string, start, end time.Time) (models.PeriodTotals, error) {
	events, err := s.repo.EventsBetween(ctx, staffID, start, end)
	if err != nil {
		return models.PeriodTotals{}, fmt.Errorf("load events for %s: %w", staffID, err)
	}
	return Aggregate(events, s.maxShiftHours), nil
}

// AggregateAll totals the period for every registered staff member.
func (s *Service) AggregateAll(ctx context.Context, start, end time.Time) ([]models.StaffTotals, error) {
	if s.staff == nil {
		return nil, errors.New("staff directory is not configured")
	}

	members, err := s.staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	out := make([]models.StaffTotals, 0, len(members))
	for _, member := range members {
		totals, err := s.AggregatePeriod(ctx, member.ID, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, models.StaffTotals{Staff: member, Totals: totals})
	}
	return out, nil
}

// PurgeAll deletes every time log. Used to reset test data.
func (s *Service) PurgeAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete time logs: %w", err)
	}
	s.logger.Warn("time logs purged", zap.Int64("deleted", deleted))
	return deleted, nil
}

func lockKey(staffID string) string {
	return "timelog:" + staffID
}
