package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/ids"
	"github.com/diewo77/importdesk/internal/models"

	"gorm.io/gorm"
)

// ErrNotPending is returned when dismissing a payment that already moved to
// approved; approved money never disappears through the auto-lifecycle.
var ErrNotPending = errors.New("payment is not pending")

// PaymentService owns manual payments and the approve/dismiss state machine.
// Auto-created stubs (see product/cost services) flow through the same
// transitions.
type PaymentService struct {
	DB     *gorm.DB
	Events events.Publisher
}

func NewPaymentService(db *gorm.DB, pub events.Publisher) *PaymentService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &PaymentService{DB: db, Events: pub}
}

// Create inserts a manual payment, optionally linked to products and costs
// for display grouping.
func (s *PaymentService) Create(ctx context.Context, p *models.Payment, productIDs, costIDs []string) error {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", p.OrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return err
	}
	if p.ID == "" {
		p.ID = ids.NewPayment()
	}
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return replacePaymentLinks(tx, p.ID, productIDs, costIDs)
	})
	if err != nil {
		return err
	}
	s.Events.Publish(ctx, "payment.created", p.ID, p)
	return nil
}

// Approve marks money as actually moved. From then on the payment is immune
// to automatic cascade deletion. Approving an already approved payment is a
// no-op success.
func (s *PaymentService) Approve(ctx context.Context, id string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Update("status", models.PaymentStatusApproved)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return rowExists(ctx, s.DB, &models.Payment{}, id)
	}
	logger.Info().Str("payment", id).Msg("payment approved")
	s.Events.Publish(ctx, "payment.approved", id, nil)
	return true, nil
}

// Dismiss cancels a pending payment: the row and all its links are removed.
// Dismissing an approved payment is refused; use Delete for an explicit
// removal of settled money.
func (s *PaymentService) Dismiss(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if p.Status != models.PaymentStatusPending {
			return ErrNotPending
		}
		found = true
		if err := deletePaymentLinks(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Payment{}, "id = ?", id).Error
	})
	if err != nil || !found {
		return false, err
	}
	s.Events.Publish(ctx, "payment.dismissed", id, nil)
	return true, nil
}

// Delete removes a payment regardless of status, links included. This is the
// manual escape hatch outside the auto-lifecycle.
func (s *PaymentService) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true
		if err := deletePaymentLinks(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Payment{}, "id = ?", id).Error
	})
	if err != nil || !found {
		return false, err
	}
	s.Events.Publish(ctx, "payment.deleted", id, nil)
	return true, nil
}

// Update patches payment fields. Status changes go through Approve/Dismiss,
// not here.
func (s *PaymentService) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	allowed := map[string]bool{"date": true, "amount": true, "currency": true, "payee": true, "description": true, "reference": true}
	fields := map[string]any{}
	for k, v := range patch {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return rowExists(ctx, s.DB, &models.Payment{}, id)
	}
	res := s.DB.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return rowExists(ctx, s.DB, &models.Payment{}, id)
	}
	s.Events.Publish(ctx, "payment.updated", id, fields)
	return true, nil
}

// ReplaceLinks swaps the payment's product and cost associations with the
// given sets (replace-all).
func (s *PaymentService) ReplaceLinks(ctx context.Context, paymentID string, productIDs, costIDs []string) (bool, error) {
	ok, err := rowExists(ctx, s.DB, &models.Payment{}, paymentID)
	if err != nil || !ok {
		return ok, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replacePaymentLinks(tx, paymentID, productIDs, costIDs)
	})
	if err != nil {
		return false, err
	}
	s.Events.Publish(ctx, "payment.links_replaced", paymentID, nil)
	return true, nil
}

// Get returns a payment row.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, bool, error) {
	var p models.Payment
	err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &p, true, nil
}
