package services

import (
	"context"
	"testing"

	"github.com/diewo77/importdesk/internal/models"
)

func TestReplaceCostProductLinksSwapsWholeSet(t *testing.T) {
	db := setupTestDB(t)
	productSvc := NewProductService(db, nil)
	costSvc := NewCostService(db, nil)
	order := seedOrder(t, db)

	var prods []*models.Product
	for _, name := range []string{"A", "B", "C"} {
		p := &models.Product{OrderID: order.ID, Name: name, Quantity: 1, PriceTotal: 10, Currency: "USD"}
		if err := productSvc.Create(context.Background(), p); err != nil {
			t.Fatalf("product %s: %v", name, err)
		}
		prods = append(prods, p)
	}
	c := &models.AdditionalCost{OrderID: order.ID, Description: "Freight", Amount: 30, Currency: "USD", Method: models.AllocEqual}
	if err := costSvc.Create(context.Background(), c, []string{prods[0].ID, prods[1].ID}); err != nil {
		t.Fatalf("cost: %v", err)
	}
	if n := countRows(t, db, &models.CostProductLink{}, "cost_id = ?", c.ID); n != 2 {
		t.Fatalf("initial links: %d", n)
	}

	ok, err := costSvc.ReplaceProductLinks(context.Background(), c.ID, []string{prods[2].ID})
	if err != nil || !ok {
		t.Fatalf("replace: ok=%v err=%v", ok, err)
	}
	var links []models.CostProductLink
	if err := db.Where("cost_id = ?", c.ID).Find(&links).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 1 || links[0].ProductID != prods[2].ID || !links[0].IsLinked {
		t.Fatalf("replaced set wrong: %+v", links)
	}

	// Emptying the set returns the cost to the all-products default.
	ok, err = costSvc.ReplaceProductLinks(context.Background(), c.ID, nil)
	if err != nil || !ok {
		t.Fatalf("clear: ok=%v err=%v", ok, err)
	}
	if n := countRows(t, db, &models.CostProductLink{}, "cost_id = ?", c.ID); n != 0 {
		t.Fatalf("cleared links: %d", n)
	}
}

func TestReplaceLinksOnMissingCostSignalsNotFound(t *testing.T) {
	db := setupTestDB(t)
	costSvc := NewCostService(db, nil)
	ok, err := costSvc.ReplaceProductLinks(context.Background(), "COST-missing", []string{"PROD-x"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok {
		t.Fatalf("expected not-found signal")
	}
}

func TestReplacePaymentLinksSwapsBothTables(t *testing.T) {
	db := setupTestDB(t)
	productSvc := NewProductService(db, nil)
	costSvc := NewCostService(db, nil)
	paymentSvc := NewPaymentService(db, nil)
	order := seedOrder(t, db)

	p := &models.Product{OrderID: order.ID, Name: "A", Quantity: 1, PriceTotal: 10, Currency: "USD"}
	if err := productSvc.Create(context.Background(), p); err != nil {
		t.Fatalf("product: %v", err)
	}
	c := &models.AdditionalCost{OrderID: order.ID, Description: "Fees", Amount: 5, Currency: "USD", Method: models.AllocEqual}
	if err := costSvc.Create(context.Background(), c, nil); err != nil {
		t.Fatalf("cost: %v", err)
	}
	pay := &models.Payment{OrderID: order.ID, Amount: 15, Currency: "USD"}
	if err := paymentSvc.Create(context.Background(), pay, []string{p.ID}, nil); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if n := countRows(t, db, &models.PaymentProductLink{}, "payment_id = ?", pay.ID); n != 1 {
		t.Fatalf("initial product links: %d", n)
	}

	ok, err := paymentSvc.ReplaceLinks(context.Background(), pay.ID, nil, []string{c.ID})
	if err != nil || !ok {
		t.Fatalf("replace: ok=%v err=%v", ok, err)
	}
	if n := countRows(t, db, &models.PaymentProductLink{}, "payment_id = ?", pay.ID); n != 0 {
		t.Fatalf("old product links must be gone")
	}
	if n := countRows(t, db, &models.PaymentCostLink{}, "payment_id = ?", pay.ID); n != 1 {
		t.Fatalf("new cost link missing")
	}
}
