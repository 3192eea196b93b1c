package models

import "time"

// DailyReport represents the aggregated back-office figures for one day.
type DailyReport struct {
	Date            time.Time `bson:"date" json:"date"`
	Revenue         float64   `bson:"revenue" json:"revenue"`
	Cost            float64   `bson:"cost" json:"cost"`
	GrossProfit     float64   `bson:"gross_profit" json:"grossProfit"`
	UnitsSold       float64   `bson:"units_sold" json:"unitsSold"`
	HoursWorked     float64   `bson:"hours_worked" json:"hoursWorked"`
	OvertimeHours   float64   `bson:"overtime_hours" json:"overtimeHours"`
	LowStockItems   int       `bson:"low_stock_items" json:"lowStockItems"`
	OutOfStockItems int       `bson:"out_of_stock_items" json:"outOfStockItems"`
	ExpiringBatches int       `bson:"expiring_batches" json:"expiringBatches"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}
