package models

import "time"

// Milestone is a delivery checkpoint on an order (production done, loaded,
// customs cleared, delivered). Plain rows, no computed semantics.
type Milestone struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID   string     `gorm:"type:varchar(64);not null;index:idx_milestone_order" json:"order_id"`
	Title     string     `gorm:"not null" json:"title"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Done      bool       `gorm:"not null;default:false" json:"done"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Milestone) TableName() string { return "milestones" }
