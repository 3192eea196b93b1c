package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// CreateStaff inserts a staff member and returns it with its generated id.
func (s *Store) CreateStaff(ctx context.Context, member models.Staff) (models.Staff, error) {
	member.ID = newID()
	if _, err := s.db.Collection(staffCollection).InsertOne(ctx, member); err != nil {
		return models.Staff{}, fmt.Errorf("failed to insert staff: %w", err)
	}
	return member, nil
}

// GetStaff loads a staff member by id.
func (s *Store) GetStaff(ctx context.Context, id string) (models.Staff, error) {
	var member models.Staff
	if err := s.db.Collection(staffCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&member); err != nil {
		return models.Staff{}, notFound(err)
	}
	return member, nil
}

// ListStaff returns every staff member ordered by name.
func (s *Store) ListStaff(ctx context.Context) ([]models.Staff, error) {
	cursor, err := s.db.Collection(staffCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	var members []models.Staff
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode staff: %w", err)
	}
	return members, nil
}
