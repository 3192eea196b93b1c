package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// InsertSale appends a sale to the sales log.
func (s *Store) InsertSale(ctx context.Context, sale models.Sale) error {
	sale.ID = newID()
	if _, err := s.db.Collection(saleCollection).InsertOne(ctx, sale); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// SalesBetween returns the sales in [start, end), oldest first.
func (s *Store) SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	filter := bson.M{"sold_at": bson.M{"$gte": start, "$lt": end}}
	cursor, err := s.db.Collection(saleCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sold_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}
	return sales, nil
}
