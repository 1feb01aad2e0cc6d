package settlement

import "github.com/diewo77/importdesk/internal/models"

// LinkedProducts resolves which products a cost applies to. Products flagged
// isLinked=true win; when the cost has no effective links at all it applies
// to every product in the order. Do not "simplify" the empty case to an empty
// set — the open-world default is load-bearing.
func LinkedProducts(cost *models.AdditionalCost, products []models.Product, links []models.CostProductLink) []models.Product {
	linked := map[string]bool{}
	for _, l := range links {
		if l.CostID == cost.ID && l.IsLinked {
			linked[l.ProductID] = true
		}
	}
	if len(linked) == 0 {
		return products
	}
	out := make([]models.Product, 0, len(linked))
	for _, p := range products {
		if linked[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// AllocateCost splits one cost's ILS value across its linked products and
// returns productID -> share. Products outside the linked set get no entry.
// Every ratio denominator is guarded: a zero sum yields zero shares, never
// NaN or Inf.
func AllocateCost(cost *models.AdditionalCost, products []models.Product, links []models.CostProductLink, usdRate, cnyRate float64) map[string]float64 {
	shares := map[string]float64{}
	linked := LinkedProducts(cost, products, links)
	if len(linked) == 0 {
		return shares
	}
	costILS := ToILS(cost.Amount, cost.Currency, usdRate, cnyRate)

	switch cost.Method {
	case models.AllocByVolume:
		byRatio(shares, linked, costILS, func(p *models.Product) float64 { return p.CBMTotal })
	case models.AllocByWeight:
		byRatio(shares, linked, costILS, func(p *models.Product) float64 { return p.KGTotal })
	case models.AllocByCost:
		// Each product's own price converted with its own currency, not the
		// cost's currency.
		byRatio(shares, linked, costILS, func(p *models.Product) float64 {
			return ToILS(p.PriceTotal, p.Currency, usdRate, cnyRate)
		})
	case models.AllocByQty:
		byRatio(shares, linked, costILS, func(p *models.Product) float64 { return p.Quantity })
	case models.AllocEqual:
		equal(shares, linked, costILS)
	default:
		// Unknown method labels degrade to equal allocation.
		equal(shares, linked, costILS)
	}
	return shares
}

func equal(shares map[string]float64, linked []models.Product, costILS float64) {
	per := costILS / float64(len(linked))
	for _, p := range linked {
		shares[p.ID] = per
	}
}

func byRatio(shares map[string]float64, linked []models.Product, costILS float64, weight func(*models.Product) float64) {
	var sum float64
	for i := range linked {
		sum += weight(&linked[i])
	}
	if sum == 0 {
		for _, p := range linked {
			shares[p.ID] = 0
		}
		return
	}
	for i := range linked {
		shares[linked[i].ID] = costILS * (weight(&linked[i]) / sum)
	}
}

// AllocateAll runs AllocateCost for every cost of an order and sums the
// shares per product. Costs allocate independently and additively; there is
// no cross-cost normalization.
func AllocateAll(costs []models.AdditionalCost, products []models.Product, links []models.CostProductLink, usdRate, cnyRate float64) map[string]float64 {
	totals := map[string]float64{}
	for _, p := range products {
		totals[p.ID] = 0
	}
	for i := range costs {
		for pid, share := range AllocateCost(&costs[i], products, links, usdRate, cnyRate) {
			totals[pid] += share
		}
	}
	return totals
}
