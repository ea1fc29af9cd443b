package commission

import (
	"errors"
	"fmt"
	"log"
	"time"

	"ems/src/config"
	"ems/src/models"
	"ems/src/pricing"

	"gorm.io/gorm"
)

var (
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 10000 basis points exclusive")
	ErrCommissionAlreadySet  = errors.New("order item commission was already recorded")
)

// Compute returns the vendor's earning on an order item subtotal. Rates at or
// past the 0 and 10000 basis point bounds are configuration errors.
func Compute(subtotal int64, rateBP int64) (int64, error) {
	if rateBP <= 0 || rateBP >= config.BASIS_POINTS {
		return 0, ErrInvalidCommissionRate
	}
	if subtotal < 0 {
		return 0, fmt.Errorf("order item subtotal cannot be negative: %d", subtotal)
	}
	return pricing.ApplyRate(subtotal, rateBP), nil
}

// RecordOrderItem writes the commission onto a freshly created order item.
// The amount is written exactly once; commission_recorded_at is the guard, so
// an accrual that legitimately rounds to 0 still counts as recorded.
func RecordOrderItem(tx *gorm.DB, item *models.OrderItem, vendor *models.VendorAccount) error {
	amount, err := Compute(item.Subtotal, vendor.CommissionRateBP)
	if err != nil {
		return err
	}
	now := time.Now()
	res := tx.
		Model(&models.OrderItem{}).
		Where("id = ? AND commission_recorded_at IS NULL", item.ID).
		Updates(map[string]any{
			"vendor_commission":      amount,
			"commission_recorded_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("[commission] Item %d already has a commission recorded\n", item.ID)
		return ErrCommissionAlreadySet
	}
	item.VendorCommission = amount
	item.CommissionRecordedAt = &now
	return nil
}
