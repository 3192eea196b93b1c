package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// CreateItem inserts a stock item at version 1.
func (s *Store) CreateItem(ctx context.Context, item models.StockItem) (models.StockItem, error) {
	item.ID = newID()
	item.Version = 1
	if item.Batches == nil {
		item.Batches = []models.Batch{}
	}
	if _, err := s.db.Collection(itemCollection).InsertOne(ctx, item); err != nil {
		return models.StockItem{}, fmt.Errorf("failed to insert stock item: %w", err)
	}
	return item, nil
}

// GetItem loads a stock item by id.
func (s *Store) GetItem(ctx context.Context, id string) (models.StockItem, error) {
	var item models.StockItem
	if err := s.db.Collection(itemCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return models.StockItem{}, notFound(err)
	}
	return item, nil
}

// ListItems returns every stock item ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]models.StockItem, error) {
	cursor, err := s.db.Collection(itemCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}

	var items []models.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode stock items: %w", err)
	}
	return items, nil
}

// UpdateItemDetails rewrites the descriptive fields and bumps the version.
func (s *Store) UpdateItemDetails(ctx context.Context, item models.StockItem) (models.StockItem, error) {
	update := bson.M{
		"$set": bson.M{
			"name":       item.Name,
			"category":   item.Category,
			"unit":       item.Unit,
			"cost":       item.Cost,
			"price":      item.Price,
			"vendor":     item.Vendor,
			"updated_at": item.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.StockItem
	if err := s.db.Collection(itemCollection).FindOneAndUpdate(ctx, bson.M{"_id": item.ID}, update, opts).Decode(&updated); err != nil {
		return models.StockItem{}, notFound(err)
	}
	return updated, nil
}

// SaveBatches writes the batch list and derived fields only if the stored version
// still equals expectedVersion.
func (s *Store) SaveBatches(ctx context.Context, item models.StockItem, expectedVersion int64) (models.StockItem, error) {
	coll := s.db.Collection(itemCollection)

	filter := bson.M{"_id": item.ID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"batches":        item.Batches,
			"total_quantity": item.TotalQuantity,
			"status":         item.Status,
			"updated_at":     item.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.StockItem{}, fmt.Errorf("failed to update batches: %w", err)
	}

	if res.MatchedCount == 0 {
		count, err := coll.CountDocuments(ctx, bson.M{"_id": item.ID})
		if err != nil {
			return models.StockItem{}, fmt.Errorf("failed to check stock item: %w", err)
		}
		if count == 0 {
			return models.StockItem{}, models.ErrNotFound
		}
		s.logger.Warn("stale stock item write rejected", zap.String("item_id", item.ID), zap.Int64("expected_version", expectedVersion))
		return models.StockItem{}, models.ErrConflict
	}

	item.Version = expectedVersion + 1
	return item, nil
}

// DeleteItem removes a stock item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.Collection(itemCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
