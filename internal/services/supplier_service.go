package services

import (
	"context"
	"sort"

	"github.com/diewo77/importdesk/internal/models"
	"github.com/diewo77/importdesk/internal/settlement"

	"gorm.io/gorm"
)

// SupplierAgg is one row of the global supplier view.
type SupplierAgg struct {
	Name         string  `json:"name"`
	ProductCount int     `json:"product_count"`
	OrderCount   int     `json:"order_count"`
	TotalILS     float64 `json:"total_ils"`
}

// SupplierService exposes the cross-order supplier aggregation. Implemented
// as a derived read (full scan + distinct in memory) — supplier cardinality
// is small, so no denormalized table is maintained.
type SupplierService struct {
	DB *gorm.DB
}

func NewSupplierService(db *gorm.DB) *SupplierService { return &SupplierService{DB: db} }

// ListAll scans every product, groups by supplier name and converts each
// product with its own order's rates.
func (s *SupplierService) ListAll(ctx context.Context) ([]SupplierAgg, error) {
	var products []models.Product
	if err := s.DB.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, err
	}
	rateByOrder := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		rateByOrder[o.ID] = o
	}

	byName := map[string]*SupplierAgg{}
	ordersSeen := map[string]map[string]bool{}
	for _, p := range products {
		if p.Supplier == "" {
			continue
		}
		agg, ok := byName[p.Supplier]
		if !ok {
			agg = &SupplierAgg{Name: p.Supplier}
			byName[p.Supplier] = agg
			ordersSeen[p.Supplier] = map[string]bool{}
		}
		agg.ProductCount++
		if o, ok := rateByOrder[p.OrderID]; ok {
			agg.TotalILS += settlement.ToILS(p.PriceTotal, p.Currency, o.USDRate, o.CNYRate)
		}
		if !ordersSeen[p.Supplier][p.OrderID] {
			ordersSeen[p.Supplier][p.OrderID] = true
			agg.OrderCount++
		}
	}

	out := make([]SupplierAgg, 0, len(byName))
	for _, agg := range byName {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
