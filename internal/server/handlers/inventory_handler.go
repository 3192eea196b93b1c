package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/service/inventory"
)

// InventoryService is the stock ledger used by the HTTP layer.
type InventoryService interface {
	Create(ctx context.Context, req models.StockItemRequest) (models.StockItem, error)
	Get(ctx context.Context, id string) (models.StockItem, error)
	List(ctx context.Context) ([]models.StockItem, error)
	Update(ctx context.Context, id string, req models.StockItemRequest) (models.StockItem, error)
	Delete(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, quantity float64, expiration time.Time) (models.StockItem, error)
	Sell(ctx context.Context, id string, quantity float64) (models.StockItem, error)
	Alerts(ctx context.Context, id string) ([]models.ExpirationAlert, error)
	AllAlerts(ctx context.Context) ([]models.ExpirationAlert, error)
	Location() *time.Location
}

// InventoryHandler exposes stock administration and the ledger operations.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the inventory handler.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// Create adds a stock item without batches.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req models.StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// List returns every stock item.
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one item with its expiration alerts.
func (h *InventoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	alerts, err := h.svc.Alerts(ctx, item.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "alerts": alerts})
}

// Update replaces the item metadata. Batches are untouched.
func (h *InventoryHandler) Update(c *gin.Context) {
	var req models.StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete removes an item.
func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restock appends a batch.
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req models.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	expiration, _, err := parseTime(req.ExpirationDate, h.svc.Location())
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", inventory.ErrInvalidRestock, err))
		return
	}

	item, err := h.svc.Restock(c.Request.Context(), c.Param("id"), req.Quantity, expiration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Sell depletes stock and logs the sale.
func (h *InventoryHandler) Sell(c *gin.Context) {
	var req models.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.svc.Sell(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Alerts returns expiring batches across all items.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.AllAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
