package settlement

import (
	"testing"
	"time"

	"github.com/diewo77/importdesk/internal/models"
)

func testOrder() *models.Order {
	return &models.Order{ID: "PO-2026-0001", Name: "Spring shipment", USDRate: 3.76, CNYRate: 0.52, Status: models.OrderStatusOpen}
}

// $100/$200 products plus a $37.6 freight cost split by volume over both.
func TestBreakdownEndToEnd(t *testing.T) {
	order := testOrder()
	products := []models.Product{
		prod("PROD-a", 10, 100, 2, 0, CurrencyUSD),
		prod("PROD-b", 5, 200, 8, 0, CurrencyUSD),
	}
	costs := []models.AdditionalCost{cost("COST-c", 37.6, CurrencyUSD, models.AllocByVolume)}

	prods, cbs, _, sum := Breakdown(order, products, costs, nil, nil)

	if len(prods) != 2 || len(cbs) != 1 {
		t.Fatalf("breakdown sizes: %d products, %d costs", len(prods), len(cbs))
	}
	if !almostEqual(cbs[0].AmountILS, 141.376) {
		t.Errorf("costILS: got %v want 141.376", cbs[0].AmountILS)
	}
	if cbs[0].LinkedProducts != 2 {
		t.Errorf("unlinked cost must cover both products, got %d", cbs[0].LinkedProducts)
	}
	a, b := prods[0], prods[1]
	if !almostEqual(a.AdditionalCostsILS, 28.2752) {
		t.Errorf("A allocation: got %v want 28.2752", a.AdditionalCostsILS)
	}
	if !almostEqual(a.FinalCostILS, 404.2752) {
		t.Errorf("A final: got %v want 404.2752", a.FinalCostILS)
	}
	if !almostEqual(a.FinalCostPerUnitILS, 404.2752/10) {
		t.Errorf("A per-unit: got %v", a.FinalCostPerUnitILS)
	}
	if !almostEqual(b.FinalCostILS, 865.1008) {
		t.Errorf("B final: got %v want 865.1008", b.FinalCostILS)
	}
	if !almostEqual(sum.TotalOrderILS, 1269.376) {
		t.Errorf("order total: got %v want 1269.376", sum.TotalOrderILS)
	}
	if !almostEqual(sum.TotalCBM, 10) {
		t.Errorf("total cbm: got %v want 10", sum.TotalCBM)
	}
}

func TestBreakdownBalanceCountsOnlyApprovedPayments(t *testing.T) {
	order := testOrder()
	products := []models.Product{prod("PROD-a", 10, 100, 0, 0, CurrencyUSD)}
	pay := models.Payment{ID: "PAY-1", OrderID: order.ID, Date: time.Now(), Amount: 100, Currency: CurrencyUSD, Status: models.PaymentStatusPending}

	_, _, pays, sum := Breakdown(order, products, nil, []models.Payment{pay}, nil)
	if sum.TotalPaidILS != 0 {
		t.Fatalf("pending payment must be financially inert, paid=%v", sum.TotalPaidILS)
	}
	if !almostEqual(pays[0].AmountILS, 376) {
		t.Fatalf("pending payment still shows its ILS value: %v", pays[0].AmountILS)
	}
	if !almostEqual(sum.BalanceILS, sum.TotalOrderILS) {
		t.Fatalf("balance: got %v want %v", sum.BalanceILS, sum.TotalOrderILS)
	}

	// Approving the payment moves the paid total by exactly its ILS amount.
	pay.Status = models.PaymentStatusApproved
	_, _, _, sum2 := Breakdown(order, products, nil, []models.Payment{pay}, nil)
	if !almostEqual(sum2.TotalPaidILS, 376) {
		t.Fatalf("approved paid total: got %v want 376", sum2.TotalPaidILS)
	}
	if !almostEqual(sum2.BalanceILS, sum2.TotalOrderILS-376) {
		t.Fatalf("balance invariant broken: %v", sum2)
	}
	if !almostEqual(sum2.TotalPaidILS-sum.TotalPaidILS, 376) {
		t.Fatalf("status toggle must shift paid by the payment amount")
	}
}

func TestBreakdownZeroQuantityPerUnitIsZero(t *testing.T) {
	order := testOrder()
	products := []models.Product{prod("PROD-a", 0, 100, 0, 0, CurrencyUSD)}
	prods, _, _, _ := Breakdown(order, products, nil, nil, nil)
	if prods[0].FinalCostPerUnitILS != 0 {
		t.Fatalf("per-unit with zero quantity: got %v want 0", prods[0].FinalCostPerUnitILS)
	}
}

func TestBreakdownRecomputesUnderRateEdit(t *testing.T) {
	// No totals are cached: editing the order's rate changes every derived
	// figure on the next read.
	order := testOrder()
	products := []models.Product{prod("PROD-a", 1, 100, 0, 0, CurrencyUSD)}
	_, _, _, before := Breakdown(order, products, nil, nil, nil)
	order.USDRate = 4.0
	_, _, _, after := Breakdown(order, products, nil, nil, nil)
	if !almostEqual(before.TotalOrderILS, 376) || !almostEqual(after.TotalOrderILS, 400) {
		t.Fatalf("rate edit not reflected: before=%v after=%v", before.TotalOrderILS, after.TotalOrderILS)
	}
}
