package booking

import (
	"context"
	"fmt"

	"ems/src/commission"
	"ems/src/models"

	"gorm.io/gorm"
)

// GormOrderStore persists orders in postgres. Order rows, item rows and the
// commission accruals all land in one transaction.
type GormOrderStore struct {
	db *gorm.DB
}

func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) Vendors(ctx context.Context, ids []uint) (map[uint]*models.VendorAccount, error) {
	var vendors []models.VendorAccount
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&vendors).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*models.VendorAccount, len(vendors))
	for i := range vendors {
		out[vendors[i].ID] = &vendors[i]
	}
	return out, nil
}

func (s *GormOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.VendorID)
	}
	vendors, err := s.Vendors(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range order.Items {
		if _, ok := vendors[item.VendorID]; !ok {
			return fmt.Errorf("unknown vendor on order item: %d", item.VendorID)
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range order.Items {
			item := &order.Items[i]
			if err := commission.RecordOrderItem(tx, item, vendors[item.VendorID]); err != nil {
				return err
			}
		}
		return nil
	})
}
