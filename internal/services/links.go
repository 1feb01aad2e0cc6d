package services

import (
	"github.com/diewo77/importdesk/internal/ids"
	"github.com/diewo77/importdesk/internal/models"

	"gorm.io/gorm"
)

// Link helpers shared by the entity services. All of them expect to run
// inside the caller's transaction.

// deletePaymentLinks removes every link row referencing a payment (both the
// product and the cost table).
func deletePaymentLinks(tx *gorm.DB, paymentID string) error {
	if err := tx.Where("payment_id = ?", paymentID).Delete(&models.PaymentProductLink{}).Error; err != nil {
		return err
	}
	return tx.Where("payment_id = ?", paymentID).Delete(&models.PaymentCostLink{}).Error
}

// replaceCostProductLinks implements replace-all semantics for a cost's
// product scope: existing rows go, the new set comes in, atomically from the
// caller's point of view.
func replaceCostProductLinks(tx *gorm.DB, costID string, productIDs []string) error {
	if err := tx.Where("cost_id = ?", costID).Delete(&models.CostProductLink{}).Error; err != nil {
		return err
	}
	for _, pid := range productIDs {
		row := models.CostProductLink{ID: ids.NewLink(), CostID: costID, ProductID: pid, IsLinked: true}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// replacePaymentLinks swaps a payment's product and cost associations in one
// go. Display grouping only; never consulted by allocation.
func replacePaymentLinks(tx *gorm.DB, paymentID string, productIDs, costIDs []string) error {
	if err := deletePaymentLinks(tx, paymentID); err != nil {
		return err
	}
	for _, pid := range productIDs {
		row := models.PaymentProductLink{ID: ids.NewLink(), PaymentID: paymentID, ProductID: pid}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	for _, cid := range costIDs {
		row := models.PaymentCostLink{ID: ids.NewLink(), PaymentID: paymentID, CostID: cid}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// detachOrDeletePayments applies the lifecycle asymmetry when a source entity
// (product or cost) goes away: pending payments vanish with all their links,
// approved payments survive and only lose the one link that pointed at the
// deleted source (deleteSourceLinks removes that row).
func detachOrDeletePayments(tx *gorm.DB, paymentIDs []string, deleteSourceLinks func(paymentID string) error) error {
	for _, payID := range paymentIDs {
		var pay models.Payment
		if err := tx.First(&pay, "id = ?", payID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return err
		}
		if pay.Status == models.PaymentStatusPending {
			if err := deletePaymentLinks(tx, pay.ID); err != nil {
				return err
			}
			if err := tx.Delete(&models.Payment{}, "id = ?", pay.ID).Error; err != nil {
				return err
			}
			continue
		}
		// Approved money moved for real; keep the row, drop only the link.
		if err := deleteSourceLinks(pay.ID); err != nil {
			return err
		}
	}
	return nil
}
