package payout

import (
	"context"
	"errors"
	"time"

	"ems/src/models"
	"ems/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPayoutNotFound = errors.New("payout not found")

// Repo is the persistence surface the engine settles against.
type Repo interface {
	Vendor(ctx context.Context, vendorID uint) (*models.VendorAccount, error)
	PendingEarnings(ctx context.Context, vendorID uint) (int64, error)
	EligibleItems(ctx context.Context, vendorID uint) ([]models.OrderItem, error)
	CreateAndLink(ctx context.Context, p *models.Payout, items []models.OrderItem) error
	SetTransferID(ctx context.Context, payoutID uuid.UUID, transferID string) error
	Payout(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error)
	Payouts(ctx context.Context, vendorID uint) ([]models.Payout, error)
	Complete(ctx context.Context, payoutID uuid.UUID, processedAt time.Time) error
	FailAndUnlink(ctx context.Context, payoutID uuid.UUID, reason string) error
	StaleProcessing(ctx context.Context, olderThan time.Time) ([]models.Payout, error)
}

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func (r *GormRepo) Vendor(ctx context.Context, vendorID uint) (*models.VendorAccount, error) {
	var vendor models.VendorAccount
	if err := r.db.WithContext(ctx).First(&vendor, vendorID).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *GormRepo) PendingEarnings(ctx context.Context, vendorID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(vendor_commission), 0)").
		Where("vendor_id = ? AND fulfillment_status = ? AND payout_id IS NULL", vendorID, types.FULFILLMENT_FULFILLED).
		Scan(&total).Error
	return total, err
}

func (r *GormRepo) EligibleItems(ctx context.Context, vendorID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND fulfillment_status = ? AND payout_id IS NULL", vendorID, types.FULFILLMENT_FULFILLED).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// CreateAndLink inserts the payout row in processing, then claims each item
// with a conditional update. Any item claimed elsewhere in the meantime rolls
// the whole transaction back with ErrConcurrentLinkConflict, so a payout is
// never observable with links but without a settlement path.
func (r *GormRepo) CreateAndLink(ctx context.Context, p *models.Payout, items []models.OrderItem) error {
	p.Status = types.PAYOUT_PROCESSING
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for _, item := range items {
			res := tx.
				Model(&models.OrderItem{}).
				Where("id = ? AND vendor_id = ? AND payout_id IS NULL", item.ID, p.VendorID).
				Update("payout_id", p.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConcurrentLinkConflict
			}
		}
		return nil
	})
}

func (r *GormRepo) SetTransferID(ctx context.Context, payoutID uuid.UUID, transferID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ?", payoutID).
		Update("transfer_id", transferID).Error
}

func (r *GormRepo) Payout(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	err := r.db.WithContext(ctx).First(&p, "id = ?", payoutID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPayoutNotFound
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) Payouts(ctx context.Context, vendorID uint) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at desc").
		Find(&payouts).Error
	return payouts, err
}

func (r *GormRepo) Complete(ctx context.Context, payoutID uuid.UUID, processedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", payoutID, types.PAYOUT_PROCESSING).
		Updates(map[string]any{
			"status":       types.PAYOUT_COMPLETED,
			"processed_at": processedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPayoutNotFound
	}
	return nil
}

// FailAndUnlink releases every linked item back into the eligible pool so a
// later payout run can pick them up again.
func (r *GormRepo) FailAndUnlink(ctx context.Context, payoutID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Payout{}).
			Where("id = ? AND status = ?", payoutID, types.PAYOUT_PROCESSING).
			Updates(map[string]any{
				"status":         types.PAYOUT_FAILED,
				"failure_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPayoutNotFound
		}
		return tx.
			Model(&models.OrderItem{}).
			Where("payout_id = ?", payoutID).
			Update("payout_id", nil).Error
	})
}

func (r *GormRepo) StaleProcessing(ctx context.Context, olderThan time.Time) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", types.PAYOUT_PROCESSING, olderThan).
		Find(&payouts).Error
	return payouts, err
}
