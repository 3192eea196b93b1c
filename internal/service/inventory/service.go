package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/locking"
)

// Repository persists stock items. SaveBatches must only succeed when the stored
// version still equals expectedVersion and must return models.ErrConflict otherwise.
type Repository interface {
	CreateItem(ctx context.Context, item models.StockItem) (models.StockItem, error)
	GetItem(ctx context.Context, id string) (models.StockItem, error)
	ListItems(ctx context.Context) ([]models.StockItem, error)
	UpdateItemDetails(ctx context.Context, item models.StockItem) (models.StockItem, error)
	SaveBatches(ctx context.Context, item models.StockItem, expectedVersion int64) (models.StockItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// SalesLog records completed sales for revenue reporting.
type SalesLog interface {
	InsertSale(ctx context.Context, sale models.Sale) error
}

// Options tunes alert behaviour.
type Options struct {
	AlertWindowDays int
	Location        *time.Location
}

// Service applies ledger operations against the item store.
type Service struct {
	repo     Repository
	sales    SalesLog
	locker   locking.Locker
	window   int
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the inventory service.
func NewService(repo Repository, sales SalesLog, locker locking.Locker, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	if opts.AlertWindowDays <= 0 {
		opts.AlertWindowDays = DefaultAlertWindowDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		repo:     repo,
		sales:    sales,
		locker:   locker,
		window:   opts.AlertWindowDays,
		location: opts.Location,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new item with no batches.
func (s *Service) Create(ctx context.Context, req models.StockItemRequest) (models.StockItem, error) {
	now := s.now().UTC()
	item := models.StockItem{
		Name:      req.Name,
		Category:  req.Category,
		Unit:      req.Unit,
		Cost:      req.Cost,
		Price:     req.Price,
		Vendor:    req.Vendor,
		Batches:   []models.Batch{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	Refresh(&item)

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return models.StockItem{}, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

// Get loads a single item.
func (s *Service) Get(ctx context.Context, id string) (models.StockItem, error) {
	return s.repo.GetItem(ctx, id)
}

// List loads every item.
func (s *Service) List(ctx context.Context) ([]models.StockItem, error) {
	return s.repo.ListItems(ctx)
}

// Update replaces the descriptive fields of an item. Batches are untouched.
func (s *Service) Update(ctx context.Context, id string, req models.StockItemRequest) (models.StockItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return models.StockItem{}, err
	}

	item.Name = req.Name
	item.Category = req.Category
	item.Unit = req.Unit
	item.Cost = req.Cost
	item.Price = req.Price
	item.Vendor = req.Vendor
	item.UpdatedAt = s.now().UTC()

	return s.repo.UpdateItemDetails(ctx, item)
}

// Delete removes an item and its batches.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteItem(ctx, id)
}

// Restock adds a batch to the item.
func (s *Service) Restock(ctx context.Context, id string, quantity float64, expiration time.Time) (models.StockItem, error) {
	now := s.now().UTC()
	return s.mutate(ctx, id, now, func(item models.StockItem) (models.StockItem, error) {
		return Restock(item, quantity, expiration, now)
	})
}

// Sell depletes stock first-expiring first and logs the sale. Nothing is written
// when the item cannot cover the quantity.
func (s *Service) Sell(ctx context.Context, id string, quantity float64) (models.StockItem, error) {
	soldAt := s.now().UTC()
	updated, err := s.mutate(ctx, id, soldAt, func(item models.StockItem) (models.StockItem, error) {
		return Sell(item, quantity)
	})
	if err != nil {
		return models.StockItem{}, err
	}

	if s.sales != nil {
		sale := models.Sale{
			ItemID:    updated.ID,
			ItemName:  updated.Name,
			Quantity:  quantity,
			UnitPrice: updated.Price,
			UnitCost:  updated.Cost,
			SoldAt:    soldAt,
		}
		if err := s.sales.InsertSale(ctx, sale); err != nil {
			// Stock is already committed; the sale is missing from revenue only.
			s.logger.Error("failed to record sale", zap.String("item_id", id), zap.Float64("quantity", quantity), zap.Error(err))
		}
	}

	if updated.Status != models.StatusInStock {
		s.logger.Info("item stock is running low",
			zap.String("item_id", id),
			zap.String("status", string(updated.Status)),
			zap.Float64("total_quantity", updated.TotalQuantity))
	}
	return updated, nil
}

// mutate applies a batch change under the item lock and stamps it with at.
func (s *Service) mutate(ctx context.Context, id string, at time.Time, apply func(models.StockItem) (models.StockItem, error)) (models.StockItem, error) {
	release, err := s.locker.Acquire(ctx, "stock:"+id)
	if err != nil {
		return models.StockItem{}, err
	}
	defer release()

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return models.StockItem{}, err
	}

	updated, err := apply(item)
	if err != nil {
		return models.StockItem{}, err
	}
	updated.UpdatedAt = at

	saved, err := s.repo.SaveBatches(ctx, updated, item.Version)
	if err != nil {
		return models.StockItem{}, fmt.Errorf("save batches for %s: %w", id, err)
	}
	return saved, nil
}

// Alerts returns the expiring batches of one item.
func (s *Service) Alerts(ctx context.Context, id string) ([]models.ExpirationAlert, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.alertsFor(item, s.now()), nil
}

// AllAlerts returns the expiring batches across every item.
func (s *Service) AllAlerts(ctx context.Context) ([]models.ExpirationAlert, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	ref := s.now()
	var alerts []models.ExpirationAlert
	for _, item := range items {
		alerts = append(alerts, s.alertsFor(item, ref)...)
	}
	return alerts, nil
}

func (s *Service) alertsFor(item models.StockItem, ref time.Time) []models.ExpirationAlert {
	alerts := ExpirationAlerts(item.Batches, s.window, ref, s.location)
	for i := range alerts {
		alerts[i].ItemID = item.ID
		alerts[i].ItemName = item.Name
	}
	return alerts
}

// Location is the timezone used to interpret expiration dates.
func (s *Service) Location() *time.Location {
	return s.location
}
