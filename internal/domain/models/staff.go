package models

import "time"

// Staff is a café employee able to clock in and out.
type Staff struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Role       string    `bson:"role" json:"role"`
	PINHash    string    `bson:"pin_hash" json:"-"`
	HourlyRate float64   `bson:"hourly_rate" json:"hourlyRate"`
	Active     bool      `bson:"active" json:"active"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// NewStaffRequest is the payload accepted when registering staff.
type NewStaffRequest struct {
	Name       string  `json:"name" binding:"required,max=120"`
	Role       string  `json:"role" binding:"required,oneof=barista cashier cook manager cleaner"`
	PIN        string  `json:"pin" binding:"required,numeric,min=4,max=8"`
	HourlyRate float64 `json:"hourlyRate" binding:"gte=0"`
}
