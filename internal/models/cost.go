package models

import "time"

// AllocationMethod selects how a shared cost is split across its linked
// products. The values are the Hebrew labels used throughout the product
// (they are stored verbatim). Anything outside the five known values is
// treated as equal allocation.
type AllocationMethod string

const (
	AllocEqual    AllocationMethod = "שווה" // equal share per product
	AllocByVolume AllocationMethod = "נפח"  // proportional to cbm_total
	AllocByWeight AllocationMethod = "משקל" // proportional to kg_total
	AllocByCost   AllocationMethod = "עלות" // proportional to price total in ILS
	AllocByQty    AllocationMethod = "כמות" // proportional to quantity
)

// AdditionalCost is a shared order-level cost (shipping, customs, fees)
// distributed across products. amountILS and the linked-product count are
// derived on read, never stored.
type AdditionalCost struct {
	ID          string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID     string           `gorm:"type:varchar(64);not null;index:idx_cost_order" json:"order_id"`
	Description string           `gorm:"not null" json:"description"`
	Amount      float64          `gorm:"not null" json:"amount"`
	Currency    string           `gorm:"not null;default:'USD'" json:"currency"`
	Method      AllocationMethod `gorm:"type:varchar(16);not null" json:"method"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (AdditionalCost) TableName() string { return "additional_costs" }
