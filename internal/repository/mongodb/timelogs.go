package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// LatestEvent returns the most recent time log of a staff member, or nil when none exist.
func (s *Store) LatestEvent(ctx context.Context, staffID string) (*models.ShiftEvent, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	var event models.ShiftEvent
	err := s.db.Collection(timeLogCollection).FindOne(ctx, bson.M{"staff_id": staffID}, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest time log: %w", err)
	}
	return &event, nil
}

// InsertEvent appends a time log.
func (s *Store) InsertEvent(ctx context.Context, event models.ShiftEvent) (models.ShiftEvent, error) {
	event.ID = newID()
	if _, err := s.db.Collection(timeLogCollection).InsertOne(ctx, event); err != nil {
		return models.ShiftEvent{}, fmt.Errorf("failed to insert time log: %w", err)
	}
	return event, nil
}

// EventsBetween returns the staff member's time logs within [start, end], oldest first.
func (s *Store) EventsBetween(ctx context.Context, staffID string, start, end time.Time) ([]models.ShiftEvent, error) {
	filter := bson.M{
		"staff_id":  staffID,
		"timestamp": bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.db.Collection(timeLogCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query time logs: %w", err)
	}

	var events []models.ShiftEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode time logs: %w", err)
	}
	return events, nil
}

// DeleteAllEvents removes every time log.
func (s *Store) DeleteAllEvents(ctx context.Context) (int64, error) {
	res, err := s.db.Collection(timeLogCollection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete time logs: %w", err)
	}
	return res.DeletedCount, nil
}
