package models

import "time"

// Category is the closed set of stock item categories.
type Category string

const (
	CategoryCoffee   Category = "coffee"
	CategoryTea      Category = "tea"
	CategoryDairy    Category = "dairy"
	CategoryBakery   Category = "bakery"
	CategorySyrup    Category = "syrup"
	CategoryFood     Category = "food"
	CategorySupplies Category = "supplies"
	CategoryOther    Category = "other"
)

// Unit is the closed set of measurement units.
type Unit string

const (
	UnitPieces     Unit = "pcs"
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitPack       Unit = "pack"
	UnitBox        Unit = "box"
)

// StockStatus is derived from an item's total batch quantity.
type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// Batch is a quantity of an item sharing one expiration date.
type Batch struct {
	Quantity       float64   `bson:"quantity" json:"quantity"`
	ExpirationDate time.Time `bson:"expiration_date" json:"expirationDate"`
	AddedAt        time.Time `bson:"added_at" json:"addedAt"`
}

// StockItem is a purchasable or consumable good tracked by batches.
// Batches keep insertion order; TotalQuantity and Status are derived.
type StockItem struct {
	ID            string      `bson:"_id,omitempty" json:"id"`
	Name          string      `bson:"name" json:"name"`
	Category      Category    `bson:"category" json:"category"`
	Unit          Unit        `bson:"unit" json:"unit"`
	Cost          float64     `bson:"cost" json:"cost"`
	Price         float64     `bson:"price" json:"price"`
	Vendor        string      `bson:"vendor" json:"vendor"`
	Batches       []Batch     `bson:"batches" json:"batches"`
	TotalQuantity float64     `bson:"total_quantity" json:"totalQuantity"`
	Status        StockStatus `bson:"status" json:"status"`
	Version       int64       `bson:"version" json:"version"`
	CreatedAt     time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updatedAt"`
}

// ExpirationAlert flags a batch expiring inside the lookahead window.
// DaysLeft is negative for past-due batches.
type ExpirationAlert struct {
	ItemID   string `json:"itemId,omitempty"`
	ItemName string `json:"itemName,omitempty"`
	Batch
	DaysLeft int `json:"daysLeft"`
}

// StockItemRequest is the admin payload for creating or updating an item.
type StockItemRequest struct {
	Name     string   `json:"name" binding:"required,max=120"`
	Category Category `json:"category" binding:"required,oneof=coffee tea dairy bakery syrup food supplies other"`
	Unit     Unit     `json:"unit" binding:"required,oneof=pcs kg g l ml pack box"`
	Cost     float64  `json:"cost" binding:"gte=0"`
	Price    float64  `json:"price" binding:"gte=0"`
	Vendor   string   `json:"vendor" binding:"max=120"`
}

// RestockRequest adds a batch. ExpirationDate is a calendar date or an RFC3339 instant.
type RestockRequest struct {
	Quantity       float64 `json:"quantity"`
	ExpirationDate string  `json:"expirationDate" binding:"required"`
}

// SellRequest depletes stock first-expiring first.
type SellRequest struct {
	Quantity float64 `json:"quantity"`
}
