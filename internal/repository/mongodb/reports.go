package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// SaveDailyReport upserts the report for its date so reruns of the nightly job replace it.
func (s *Store) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := s.db.Collection(reportCollection).ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	return nil
}

// DailyReportsBetween returns stored reports with date in [start, end], oldest first.
func (s *Store) DailyReportsBetween(ctx context.Context, start, end time.Time) ([]models.DailyReport, error) {
	filter := bson.M{"date": bson.M{"$gte": start, "$lte": end}}
	cursor, err := s.db.Collection(reportCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily reports: %w", err)
	}

	var reports []models.DailyReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode daily reports: %w", err)
	}
	return reports, nil
}
