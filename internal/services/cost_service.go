package services

import (
	"context"
	"time"

	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/ids"
	"github.com/diewo77/importdesk/internal/models"

	"gorm.io/gorm"
)

// CostService owns additional-cost mutations, their payment stubs, and the
// cost→product scope links.
type CostService struct {
	DB     *gorm.DB
	Events events.Publisher
}

func NewCostService(db *gorm.DB, pub events.Publisher) *CostService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CostService{DB: db, Events: pub}
}

// Create inserts the cost, optionally scopes it to products, and spawns the
// pending payment stub for its full value. Passing no productIDs leaves the
// cost unscoped, meaning it allocates over every product in the order.
func (s *CostService) Create(ctx context.Context, c *models.AdditionalCost, productIDs []string) error {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", c.OrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return err
	}
	if c.ID == "" {
		c.ID = ids.NewCost()
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Method == "" {
		c.Method = models.AllocEqual
	}
	stub := models.Payment{
		ID:          ids.NewPayment(),
		OrderID:     c.OrderID,
		Date:        time.Now(),
		Amount:      c.Amount,
		Currency:    c.Currency,
		Description: "תשלום עבור " + c.Description,
		Status:      models.PaymentStatusPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := replaceCostProductLinks(tx, c.ID, productIDs); err != nil {
				return err
			}
		}
		if err := tx.Create(&stub).Error; err != nil {
			return err
		}
		link := models.PaymentCostLink{ID: ids.NewLink(), PaymentID: stub.ID, CostID: c.ID}
		return tx.Create(&link).Error
	})
	if err != nil {
		return err
	}
	logger.Info().Str("cost", c.ID).Str("payment", stub.ID).Msg("cost created with payment stub")
	s.Events.Publish(ctx, "cost.created", c.ID, c)
	return nil
}

// Update patches cost fields. The stub amount stays untouched, same contract
// as product updates.
func (s *CostService) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	allowed := map[string]bool{"description": true, "amount": true, "currency": true, "method": true, "notes": true}
	fields := map[string]any{}
	for k, v := range patch {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return rowExists(ctx, s.DB, &models.AdditionalCost{}, id)
	}
	res := s.DB.WithContext(ctx).Model(&models.AdditionalCost{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return rowExists(ctx, s.DB, &models.AdditionalCost{}, id)
	}
	s.Events.Publish(ctx, "cost.updated", id, fields)
	return true, nil
}

// ReplaceProductLinks swaps the cost's product scope with the given set
// (replace-all). An empty set returns the cost to the all-products default.
func (s *CostService) ReplaceProductLinks(ctx context.Context, costID string, productIDs []string) (bool, error) {
	ok, err := rowExists(ctx, s.DB, &models.AdditionalCost{}, costID)
	if err != nil || !ok {
		return ok, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceCostProductLinks(tx, costID, productIDs)
	})
	if err != nil {
		return false, err
	}
	s.Events.Publish(ctx, "cost.links_replaced", costID, productIDs)
	return true, nil
}

// Delete removes the cost, its product-scope links, and applies the payment
// asymmetry exactly like product deletion.
func (s *CostService) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.AdditionalCost
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true

		var paymentIDs []string
		if err := tx.Model(&models.PaymentCostLink{}).Where("cost_id = ?", id).Pluck("payment_id", &paymentIDs).Error; err != nil {
			return err
		}
		err := detachOrDeletePayments(tx, paymentIDs, func(paymentID string) error {
			return tx.Where("payment_id = ? AND cost_id = ?", paymentID, id).Delete(&models.PaymentCostLink{}).Error
		})
		if err != nil {
			return err
		}
		if err := tx.Where("cost_id = ?", id).Delete(&models.CostProductLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AdditionalCost{}, "id = ?", id).Error
	})
	if err != nil || !found {
		return false, err
	}
	logger.Info().Str("cost", id).Msg("cost deleted")
	s.Events.Publish(ctx, "cost.deleted", id, nil)
	return true, nil
}

// Get returns a cost row.
func (s *CostService) Get(ctx context.Context, id string) (*models.AdditionalCost, bool, error) {
	var c models.AdditionalCost
	err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &c, true, nil
}
