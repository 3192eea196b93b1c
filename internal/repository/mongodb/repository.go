package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const (
	staffCollection   = "staff"
	timeLogCollection = "time_logs"
	itemCollection    = "stock_items"
	saleCollection    = "sales"
	reportCollection  = "daily_reports"
)

// Store is the MongoDB-backed persistence layer shared by every service.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewStore connects to MongoDB, verifies the connection and ensures indexes.
func NewStore(ctx context.Context, uri, dbName string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := &Store{client: client, db: client.Database(dbName), logger: logger}
	if err := store.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}

	logger.Info("mongodb connected", zap.String("database", dbName))
	return store, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		timeLogCollection: {
			{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		saleCollection: {
			{Keys: bson.D{{Key: "sold_at", Value: 1}}},
		},
		reportCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		itemCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	}

	for coll, specs := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}
