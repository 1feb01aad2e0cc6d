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

// ErrOrderNotFound is returned by creates that reference a missing order.
var ErrOrderNotFound = errors.New("order not found")

// ProductService owns product mutations and the payment-stub side of the
// lifecycle: every created product spawns one pending payment for its full
// value, linked back to the product.
type ProductService struct {
	DB     *gorm.DB
	Events events.Publisher
}

func NewProductService(db *gorm.DB, pub events.Publisher) *ProductService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ProductService{DB: db, Events: pub}
}

// Create inserts the product together with its pending payment stub and the
// payment-product link, as one transaction.
func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", p.OrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return err
	}
	if p.ID == "" {
		p.ID = ids.NewProduct()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	stub := models.Payment{
		ID:          ids.NewPayment(),
		OrderID:     p.OrderID,
		Date:        time.Now(),
		Amount:      p.PriceTotal,
		Currency:    p.Currency,
		Payee:       p.Supplier,
		Description: "תשלום עבור " + p.Name,
		Status:      models.PaymentStatusPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := tx.Create(&stub).Error; err != nil {
			return err
		}
		link := models.PaymentProductLink{ID: ids.NewLink(), PaymentID: stub.ID, ProductID: p.ID}
		return tx.Create(&link).Error
	})
	if err != nil {
		return err
	}
	logger.Info().Str("product", p.ID).Str("payment", stub.ID).Msg("product created with payment stub")
	s.Events.Publish(ctx, "product.created", p.ID, p)
	return nil
}

// Update applies a partial patch. It deliberately does not touch the
// product's pending payment stub: the stub keeps its original amount even
// when the price changes.
func (s *ProductService) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	allowed := map[string]bool{
		"name": true, "supplier": true, "quantity": true, "price_unit": true,
		"price_total": true, "currency": true, "cbm_unit": true, "cbm_total": true,
		"kg_unit": true, "kg_total": true, "notes": true,
	}
	fields := map[string]any{}
	for k, v := range patch {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return rowExists(ctx, s.DB, &models.Product{}, id)
	}
	res := s.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return rowExists(ctx, s.DB, &models.Product{}, id)
	}
	s.Events.Publish(ctx, "product.updated", id, fields)
	return true, nil
}

// Delete removes the product, its cost-scope links, and applies the payment
// asymmetry: pending stubs disappear entirely, approved payments only lose
// the link.
func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true

		var paymentIDs []string
		if err := tx.Model(&models.PaymentProductLink{}).Where("product_id = ?", id).Pluck("payment_id", &paymentIDs).Error; err != nil {
			return err
		}
		err := detachOrDeletePayments(tx, paymentIDs, func(paymentID string) error {
			return tx.Where("payment_id = ? AND product_id = ?", paymentID, id).Delete(&models.PaymentProductLink{}).Error
		})
		if err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CostProductLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil || !found {
		return false, err
	}
	logger.Info().Str("product", id).Msg("product deleted")
	s.Events.Publish(ctx, "product.deleted", id, nil)
	return true, nil
}

// Get returns a product row.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, bool, error) {
	var p models.Product
	err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// rowExists reports whether a row with the id exists for the model.
func rowExists(ctx context.Context, db *gorm.DB, model any, id string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
