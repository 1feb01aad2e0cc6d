package settlement

import "github.com/diewo77/importdesk/internal/models"

// ProductBreakdown is a product enriched with its derived ILS figures.
type ProductBreakdown struct {
	models.Product
	PriceILS            float64 `json:"price_ils"`
	AdditionalCostsILS  float64 `json:"additional_costs_ils"`
	FinalCostILS        float64 `json:"final_cost_ils"`
	FinalCostPerUnitILS float64 `json:"final_cost_per_unit_ils"`
}

// CostBreakdown is an additional cost enriched with its ILS value and the
// size of its effective linked set.
type CostBreakdown struct {
	models.AdditionalCost
	AmountILS      float64 `json:"amount_ils"`
	LinkedProducts int     `json:"linked_products"`
}

// PaymentBreakdown is a payment with its ILS value.
type PaymentBreakdown struct {
	models.Payment
	AmountILS float64 `json:"amount_ils"`
}

// Summary is the order-level roll-up. Everything here is recomputed on every
// read; no figure is ever persisted, so totals always reflect the current
// rates and links.
type Summary struct {
	TotalProductsILS float64 `json:"total_products_ils"`
	TotalCostsILS    float64 `json:"total_costs_ils"`
	TotalOrderILS    float64 `json:"total_order_ils"`
	TotalPaidILS     float64 `json:"total_paid_ils"`
	BalanceILS       float64 `json:"balance_ils"`
	TotalCBM         float64 `json:"total_cbm"`
	TotalKG          float64 `json:"total_kg"`
}

// Breakdown computes the full derived view of one order.
func Breakdown(order *models.Order, products []models.Product, costs []models.AdditionalCost, payments []models.Payment, links []models.CostProductLink) ([]ProductBreakdown, []CostBreakdown, []PaymentBreakdown, Summary) {
	usd, cny := order.USDRate, order.CNYRate
	allocated := AllocateAll(costs, products, links, usd, cny)

	var sum Summary
	prods := make([]ProductBreakdown, 0, len(products))
	for _, p := range products {
		priceILS := ToILS(p.PriceTotal, p.Currency, usd, cny)
		extra := allocated[p.ID]
		final := priceILS + extra
		perUnit := 0.0
		if p.Quantity != 0 {
			perUnit = final / p.Quantity
		}
		prods = append(prods, ProductBreakdown{
			Product:             p,
			PriceILS:            priceILS,
			AdditionalCostsILS:  extra,
			FinalCostILS:        final,
			FinalCostPerUnitILS: perUnit,
		})
		sum.TotalProductsILS += priceILS
		sum.TotalCBM += p.CBMTotal
		sum.TotalKG += p.KGTotal
	}

	cbs := make([]CostBreakdown, 0, len(costs))
	for i := range costs {
		amountILS := ToILS(costs[i].Amount, costs[i].Currency, usd, cny)
		cbs = append(cbs, CostBreakdown{
			AdditionalCost: costs[i],
			AmountILS:      amountILS,
			LinkedProducts: len(LinkedProducts(&costs[i], products, links)),
		})
		sum.TotalCostsILS += amountILS
	}

	pays := make([]PaymentBreakdown, 0, len(payments))
	for _, pay := range payments {
		amountILS := ToILS(pay.Amount, pay.Currency, usd, cny)
		pays = append(pays, PaymentBreakdown{Payment: pay, AmountILS: amountILS})
		if pay.Status == models.PaymentStatusApproved {
			sum.TotalPaidILS += amountILS
		}
	}

	sum.TotalOrderILS = sum.TotalProductsILS + sum.TotalCostsILS
	sum.BalanceILS = sum.TotalOrderILS - sum.TotalPaidILS
	return prods, cbs, pays, sum
}
