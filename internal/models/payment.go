package models

import "time"

// Payment statuses. Only approved payments count toward the paid total;
// pending payments are visible but financially inert.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
)

// Payment is money sent (or scheduled to be sent) against an order. Creating
// a product or an additional cost auto-creates a pending payment stub for its
// full value, linked back to the source entity; see the lifecycle rules in
// the payment service.
type Payment struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID     string    `gorm:"type:varchar(64);not null;index:idx_payment_order" json:"order_id"`
	Date        time.Time `gorm:"not null" json:"date"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Currency    string    `gorm:"not null;default:'USD'" json:"currency"`
	Payee       string    `json:"payee,omitempty"`
	Description string    `json:"description,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Status      string    `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
