package models

import "time"

// CostProductLink scopes an additional cost to specific products. A cost with
// no link rows at all applies to every product in its order (open-world
// default) — absence of links must never be read as "applies to nothing".
type CostProductLink struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	CostID    string `gorm:"type:varchar(64);not null;index:idx_cpl_cost;index:idx_cpl_pair,unique"`
	ProductID string `gorm:"type:varchar(64);not null;index:idx_cpl_product;index:idx_cpl_pair,unique"`
	IsLinked  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (CostProductLink) TableName() string { return "cost_product_links" }

// PaymentProductLink associates a payment with the products it covers.
// Display grouping only — payment links never feed cost allocation.
type PaymentProductLink struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	PaymentID string `gorm:"type:varchar(64);not null;index:idx_ppl_payment;index:idx_ppl_pair,unique"`
	ProductID string `gorm:"type:varchar(64);not null;index:idx_ppl_product;index:idx_ppl_pair,unique"`
	CreatedAt time.Time
}

func (PaymentProductLink) TableName() string { return "payment_product_links" }

// PaymentCostLink associates a payment with the additional costs it covers.
type PaymentCostLink struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	PaymentID string `gorm:"type:varchar(64);not null;index:idx_pcl_payment;index:idx_pcl_pair,unique"`
	CostID    string `gorm:"type:varchar(64);not null;index:idx_pcl_cost;index:idx_pcl_pair,unique"`
	CreatedAt time.Time
}

func (PaymentCostLink) TableName() string { return "payment_cost_links" }
