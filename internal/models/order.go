package models

import "time"

// Order is a procurement order. Its number (PO-<year>-<seq>) doubles as the
// primary key. The two exchange rates are fixed at creation time and are used
// for every conversion of entities linked to the order; editing a rate
// retroactively changes all derived totals (no historical versioning).
type Order struct {
	ID               string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	USDRate          float64    `gorm:"not null" json:"usd_rate"`
	CNYRate          float64    `gorm:"not null" json:"cny_rate"`
	RatesLive        bool       `json:"rates_live"` // false when the static fallback pair was used
	Status           string     `gorm:"not null;default:'open';index" json:"status"`
	Notes            string     `json:"notes,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// Order status labels
const (
	OrderStatusOpen     = "open"
	OrderStatusShipped  = "shipped"
	OrderStatusArrived  = "arrived"
	OrderStatusClosed   = "closed"
	OrderStatusCanceled = "canceled"
)
