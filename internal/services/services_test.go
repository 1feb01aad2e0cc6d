package services

import (
	"context"
	"testing"

	"github.com/diewo77/importdesk/internal/models"
	"github.com/diewo77/importdesk/internal/rates"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Order{}, &models.Product{}, &models.AdditionalCost{}, &models.Payment{},
		&models.CostProductLink{}, &models.PaymentProductLink{}, &models.PaymentCostLink{},
		&models.Milestone{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testRates() rates.Provider { return rates.Static{USD: 3.76, CNY: 0.52} }

func seedOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	svc := NewOrderService(db, testRates(), nil)
	order, err := svc.Create(context.Background(), CreateOrderInput{Name: "Test shipment"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
