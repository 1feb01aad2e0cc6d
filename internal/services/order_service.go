package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/ids"
	"github.com/diewo77/importdesk/internal/models"
	"github.com/diewo77/importdesk/internal/rates"
	"github.com/diewo77/importdesk/internal/settlement"

	"gorm.io/gorm"
)

// OrderService owns order CRUD, PO numbering, the full-order read path and
// the order-level delete cascade.
type OrderService struct {
	DB     *gorm.DB
	Rates  rates.Provider
	Events events.Publisher
}

func NewOrderService(db *gorm.DB, provider rates.Provider, pub events.Publisher) *OrderService {
	if provider == nil {
		provider = rates.Static{USD: rates.FallbackUSD, CNY: rates.FallbackCNY}
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{DB: db, Rates: provider, Events: pub}
}

type CreateOrderInput struct {
	Name             string     `json:"name"`
	Notes            string     `json:"notes"`
	EstimatedArrival *time.Time `json:"estimated_arrival"`
}

// Create allocates the next PO number for the current year, snapshots the
// exchange-rate pair from the provider and inserts the order. Rates are read
// exactly once here and never refreshed for the order afterwards.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	pair := s.Rates.GetRates(ctx)
	order := &models.Order{
		Name:             in.Name,
		USDRate:          pair.USD,
		CNYRate:          pair.CNY,
		RatesLive:        pair.IsLive,
		Status:           models.OrderStatusOpen,
		Notes:            in.Notes,
		EstimatedArrival: in.EstimatedArrival,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextOrderSeq(tx, time.Now().Year())
		if err != nil {
			return err
		}
		order.ID = ids.OrderNumber(time.Now().Year(), seq)
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("order", order.ID).Bool("rates_live", order.RatesLive).Msg("order created")
	s.Events.Publish(ctx, "order.created", order.ID, order)
	return order, nil
}

// nextOrderSeq finds the highest sequence already issued for the year and
// returns the next one. Runs inside the creation transaction.
func nextOrderSeq(tx *gorm.DB, year int) (int, error) {
	prefix := fmt.Sprintf("PO-%d-", year)
	var last models.Order
	err := tx.Where("id LIKE ?", prefix+"%").Order("id desc").First(&last).Error
	if err == gorm.ErrRecordNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	raw := strings.TrimPrefix(last.ID, prefix)
	seq, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, fmt.Errorf("malformed order number %q: %w", last.ID, convErr)
	}
	return seq + 1, nil
}

// Update applies a partial patch. Editing usd_rate/cny_rate retroactively
// changes every derived total of the order; that is the documented contract.
// Returns false when the order does not exist.
func (s *OrderService) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	allowed := map[string]bool{"name": true, "status": true, "notes": true, "usd_rate": true, "cny_rate": true, "estimated_arrival": true}
	fields := map[string]any{}
	for k, v := range patch {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return s.exists(ctx, id)
	}
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return s.exists(ctx, id)
	}
	s.Events.Publish(ctx, "order.updated", id, fields)
	return true, nil
}

func (s *OrderService) exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get returns the bare order row.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, bool, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).First(&order, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &order, true, nil
}

// List returns orders newest-first with a total count.
func (s *OrderService) List(ctx context.Context, limit, offset int) ([]models.Order, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

// Delete removes the order and everything hanging off it: products, costs,
// payments, all three link tables and milestones, in one transaction.
func (s *OrderService) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true

		var productIDs, costIDs, paymentIDs []string
		if err := tx.Model(&models.Product{}).Where("order_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AdditionalCost{}).Where("order_id = ?", id).Pluck("id", &costIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("order_id = ?", id).Pluck("id", &paymentIDs).Error; err != nil {
			return err
		}
		if len(costIDs) > 0 {
			if err := tx.Where("cost_id IN ?", costIDs).Delete(&models.CostProductLink{}).Error; err != nil {
				return err
			}
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.CostProductLink{}).Error; err != nil {
				return err
			}
		}
		for _, payID := range paymentIDs {
			if err := deletePaymentLinks(tx, payID); err != nil {
				return err
			}
		}
		for _, m := range []any{&models.Payment{}, &models.AdditionalCost{}, &models.Product{}, &models.Milestone{}} {
			if err := tx.Where("order_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
	if err != nil || !found {
		return false, err
	}
	logger.Info().Str("order", id).Msg("order deleted with cascade")
	s.Events.Publish(ctx, "order.deleted", id, nil)
	return true, nil
}

// OrderFull is the single computed read path: raw rows plus every derived
// ILS figure, recomputed on each call.
type OrderFull struct {
	Order               models.Order                  `json:"order"`
	Products            []settlement.ProductBreakdown `json:"products"`
	Costs               []settlement.CostBreakdown    `json:"costs"`
	Payments            []settlement.PaymentBreakdown `json:"payments"`
	CostLinks           []models.CostProductLink      `json:"cost_links"`
	PaymentProductLinks []models.PaymentProductLink   `json:"payment_product_links"`
	PaymentCostLinks    []models.PaymentCostLink      `json:"payment_cost_links"`
	Milestones          []models.Milestone            `json:"milestones"`
	Summary             settlement.Summary            `json:"summary"`
}

// GetFull loads the order with all its rows and computes the settlement
// view. Read-only and idempotent.
func (s *OrderService) GetFull(ctx context.Context, id string) (*OrderFull, bool, error) {
	order, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	full := &OrderFull{Order: *order}

	var products []models.Product
	if err := s.DB.WithContext(ctx).Where("order_id = ?", id).Order("created_at asc").Find(&products).Error; err != nil {
		return nil, false, err
	}
	var costs []models.AdditionalCost
	if err := s.DB.WithContext(ctx).Where("order_id = ?", id).Order("created_at asc").Find(&costs).Error; err != nil {
		return nil, false, err
	}
	var payments []models.Payment
	if err := s.DB.WithContext(ctx).Where("order_id = ?", id).Order("date asc").Find(&payments).Error; err != nil {
		return nil, false, err
	}
	costIDs := make([]string, 0, len(costs))
	for _, c := range costs {
		costIDs = append(costIDs, c.ID)
	}
	if len(costIDs) > 0 {
		if err := s.DB.WithContext(ctx).Where("cost_id IN ?", costIDs).Find(&full.CostLinks).Error; err != nil {
			return nil, false, err
		}
	}
	paymentIDs := make([]string, 0, len(payments))
	for _, p := range payments {
		paymentIDs = append(paymentIDs, p.ID)
	}
	if len(paymentIDs) > 0 {
		if err := s.DB.WithContext(ctx).Where("payment_id IN ?", paymentIDs).Find(&full.PaymentProductLinks).Error; err != nil {
			return nil, false, err
		}
		if err := s.DB.WithContext(ctx).Where("payment_id IN ?", paymentIDs).Find(&full.PaymentCostLinks).Error; err != nil {
			return nil, false, err
		}
	}
	if err := s.DB.WithContext(ctx).Where("order_id = ?", id).Order("created_at asc").Find(&full.Milestones).Error; err != nil {
		return nil, false, err
	}

	full.Products, full.Costs, full.Payments, full.Summary = settlement.Breakdown(order, products, costs, payments, full.CostLinks)
	return full, true, nil
}
