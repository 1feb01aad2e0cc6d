package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/diewo77/importdesk/internal/models"
)

func TestOrderCreateAllocatesSequentialNumbers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, testRates(), nil)

	first, err := svc.Create(context.Background(), CreateOrderInput{Name: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), CreateOrderInput{Name: "two"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	year := time.Now().Year()
	if first.ID != fmt.Sprintf("PO-%d-0001", year) || second.ID != fmt.Sprintf("PO-%d-0002", year) {
		t.Fatalf("numbering: got %s then %s", first.ID, second.ID)
	}
	if first.USDRate != 3.76 || first.CNYRate != 0.52 {
		t.Fatalf("rates snapshot: %+v", first)
	}
	if first.RatesLive {
		t.Fatalf("static provider must be marked non-live")
	}
}

func TestOrderUpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, testRates(), nil)
	ok, err := svc.Update(context.Background(), "PO-1999-0001", map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Fatalf("expected not-found signal")
	}
}

func TestOrderRateEditChangesDerivedTotals(t *testing.T) {
	db := setupTestDB(t)
	orderSvc := NewOrderService(db, testRates(), nil)
	productSvc := NewProductService(db, nil)
	order := seedOrder(t, db)

	p := &models.Product{OrderID: order.ID, Name: "Chairs", Quantity: 1, PriceTotal: 100, Currency: "USD"}
	if err := productSvc.Create(context.Background(), p); err != nil {
		t.Fatalf("product: %v", err)
	}
	full, ok, err := orderSvc.GetFull(context.Background(), order.ID)
	if err != nil || !ok {
		t.Fatalf("getfull: ok=%v err=%v", ok, err)
	}
	if math.Abs(full.Summary.TotalProductsILS-376) > 1e-9 {
		t.Fatalf("before edit: %v", full.Summary.TotalProductsILS)
	}

	if ok, err := orderSvc.Update(context.Background(), order.ID, map[string]any{"usd_rate": 4.0}); err != nil || !ok {
		t.Fatalf("rate edit: ok=%v err=%v", ok, err)
	}
	full, _, err = orderSvc.GetFull(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("getfull: %v", err)
	}
	if math.Abs(full.Summary.TotalProductsILS-400) > 1e-9 {
		t.Fatalf("after edit: %v", full.Summary.TotalProductsILS)
	}
}

func TestOrderGetFullComputesEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	orderSvc := NewOrderService(db, testRates(), nil)
	productSvc := NewProductService(db, nil)
	costSvc := NewCostService(db, nil)
	order := seedOrder(t, db)

	a := &models.Product{OrderID: order.ID, Name: "A", Quantity: 10, PriceTotal: 100, Currency: "USD", CBMTotal: 2}
	b := &models.Product{OrderID: order.ID, Name: "B", Quantity: 5, PriceTotal: 200, Currency: "USD", CBMTotal: 8}
	if err := productSvc.Create(context.Background(), a); err != nil {
		t.Fatalf("product a: %v", err)
	}
	if err := productSvc.Create(context.Background(), b); err != nil {
		t.Fatalf("product b: %v", err)
	}
	c := &models.AdditionalCost{OrderID: order.ID, Description: "Freight", Amount: 37.6, Currency: "USD", Method: models.AllocByVolume}
	if err := costSvc.Create(context.Background(), c, nil); err != nil {
		t.Fatalf("cost: %v", err)
	}

	full, ok, err := orderSvc.GetFull(context.Background(), order.ID)
	if err != nil || !ok {
		t.Fatalf("getfull: ok=%v err=%v", ok, err)
	}
	if len(full.Products) != 2 || len(full.Costs) != 1 {
		t.Fatalf("row counts: %d products %d costs", len(full.Products), len(full.Costs))
	}
	if math.Abs(full.Costs[0].AmountILS-141.376) > 1e-9 {
		t.Errorf("costILS: %v", full.Costs[0].AmountILS)
	}
	var gotA, gotB float64
	for _, p := range full.Products {
		switch p.Name {
		case "A":
			gotA = p.FinalCostILS
		case "B":
			gotB = p.FinalCostILS
		}
	}
	if math.Abs(gotA-404.2752) > 1e-9 || math.Abs(gotB-865.1008) > 1e-9 {
		t.Errorf("final costs: A=%v B=%v", gotA, gotB)
	}
	if math.Abs(full.Summary.TotalOrderILS-1269.376) > 1e-9 {
		t.Errorf("order total: %v", full.Summary.TotalOrderILS)
	}
	// Two auto stubs + one cost stub are pending, so nothing counts as paid.
	if full.Summary.TotalPaidILS != 0 {
		t.Errorf("pending stubs leaked into paid total: %v", full.Summary.TotalPaidILS)
	}
	if len(full.Payments) != 3 {
		t.Errorf("expected 3 auto payment stubs, got %d", len(full.Payments))
	}
}

func TestOrderDeleteCascadesEverything(t *testing.T) {
	db := setupTestDB(t)
	orderSvc := NewOrderService(db, testRates(), nil)
	productSvc := NewProductService(db, nil)
	costSvc := NewCostService(db, nil)
	msSvc := NewMilestoneService(db, nil)
	order := seedOrder(t, db)

	p := &models.Product{OrderID: order.ID, Name: "A", Quantity: 1, PriceTotal: 10, Currency: "USD"}
	if err := productSvc.Create(context.Background(), p); err != nil {
		t.Fatalf("product: %v", err)
	}
	c := &models.AdditionalCost{OrderID: order.ID, Description: "Customs", Amount: 5, Currency: "USD", Method: models.AllocEqual}
	if err := costSvc.Create(context.Background(), c, []string{p.ID}); err != nil {
		t.Fatalf("cost: %v", err)
	}
	if err := msSvc.Create(context.Background(), &models.Milestone{OrderID: order.ID, Title: "Loaded"}); err != nil {
		t.Fatalf("milestone: %v", err)
	}

	ok, err := orderSvc.Delete(context.Background(), order.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	for _, m := range []any{&models.Order{}, &models.Product{}, &models.AdditionalCost{}, &models.Payment{}, &models.CostProductLink{}, &models.PaymentProductLink{}, &models.PaymentCostLink{}, &models.Milestone{}} {
		if n := countRows(t, db, m, "1 = 1"); n != 0 {
			t.Errorf("%T: %d rows survived the cascade", m, n)
		}
	}

	ok, err = orderSvc.Delete(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Fatalf("second delete must report not found")
	}
}
