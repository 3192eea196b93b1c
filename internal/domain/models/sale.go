package models

import "time"

// Sale records a successful stock depletion at the item's current price.
type Sale struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ItemID    string    `bson:"item_id" json:"itemId"`
	ItemName  string    `bson:"item_name" json:"itemName"`
	Quantity  float64   `bson:"quantity" json:"quantity"`
	UnitPrice float64   `bson:"unit_price" json:"unitPrice"`
	UnitCost  float64   `bson:"unit_cost" json:"unitCost"`
	SoldAt    time.Time `bson:"sold_at" json:"soldAt"`
}

// RevenueSummary aggregates the sales log over a period.
type RevenueSummary struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Revenue     float64   `json:"revenue"`
	Cost        float64   `json:"cost"`
	GrossProfit float64   `json:"grossProfit"`
	UnitsSold   float64   `json:"unitsSold"`
	Sales       int       `json:"sales"`
}
