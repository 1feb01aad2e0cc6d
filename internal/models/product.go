package models

import "time"

// Product is a purchased line item. Per-unit and total fields are stored
// independently: the caller recomputes one from the other at edit time, and
// downstream calculations trust the stored totals as-is.
type Product struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID    string    `gorm:"type:varchar(64);not null;index:idx_product_order" json:"order_id"`
	Name       string    `gorm:"not null" json:"name"`
	Supplier   string    `gorm:"index" json:"supplier,omitempty"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	PriceUnit  float64   `json:"price_unit"`
	PriceTotal float64   `gorm:"not null" json:"price_total"`
	Currency   string    `gorm:"not null;default:'USD'" json:"currency"`
	CBMUnit    float64   `json:"cbm_unit"`
	CBMTotal   float64   `json:"cbm_total"`
	KGUnit     float64   `json:"kg_unit"`
	KGTotal    float64   `json:"kg_total"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
