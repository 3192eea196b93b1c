package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/config"
	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/service/errtrack"
	"github.com/mamadbah2/cafepos/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// ReportGenerator produces the nightly report and the alert digest.
type ReportGenerator interface {
	GenerateAndStore(ctx context.Context, day time.Time) (models.DailyReport, error)
	AlertsSummary(ctx context.Context) (string, error)
}

// Notifier pushes a message to the manager.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	location *time.Location
	reports  ReportGenerator
	notifier Notifier
	tracker  errtrack.Tracker
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
// tracker may be nil.
func NewScheduler(cfg config.ReportingConfig, location *time.Location, reports ReportGenerator, notifier Notifier, tracker errtrack.Tracker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		schedule: cfg.CronSchedule,
		location: location,
		reports:  reports,
		notifier: notifier,
		tracker:  tracker,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the nightly job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.nightlyJob); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) nightlyJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("nightly job failed", zap.Error(err))
		if s.tracker != nil {
			s.tracker.RecordError(ctx, errtrack.Entry{Source: "scheduler", Message: err.Error()})
		}
	}
}

// RunDailyReport stores yesterday's report, sends it to the manager and pushes
// the expiration digest.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	yesterday := s.now().In(s.location).AddDate(0, 0, -1)
	s.logger.Info("generating daily report", zap.String("date", yesterday.Format("2006-01-02")))

	report, err := s.reports.GenerateAndStore(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("generate daily report: %w", err)
	}

	if err := s.notifier.Notify(ctx, reporting.FormatDailySummary(report)); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}

	if report.ExpiringBatches == 0 {
		s.logger.Info("daily report sent, no expiring batches")
		return nil
	}
	alerts, err := s.reports.AlertsSummary(ctx)
	if err != nil {
		return fmt.Errorf("build alerts digest: %w", err)
	}
	if err := s.notifier.Notify(ctx, alerts); err != nil {
		return fmt.Errorf("send alerts digest: %w", err)
	}

	s.logger.Info("daily report sent successfully", zap.Int("expiring_batches", report.ExpiringBatches))
	return nil
}
