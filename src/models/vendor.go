package models

import (
	"ems/src/config"
	"ems/src/types"
)

// VendorAccount is a performer or venue owner who receives payouts.
// CommissionRateBP is the vendor's negotiated cut of each order item,
// in basis points, and must sit strictly between 0 and 10000.
type VendorAccount struct {
	ID                  uint               `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	UserID              uint               `json:"user_id,omitempty"`
	User                *User              `json:"user,omitempty"`
	Name                string             `json:"name,omitempty"`
	Status              types.VendorStatus `gorm:"default:pending" json:"status,omitempty"`
	CommissionRateBP    int64              `json:"commission_rate_bp,omitempty"`
	MinimumPayoutAmount int64              `json:"minimum_payout_amount,omitempty"`
	StripeAccountID     *string            `json:"stripe_account_id,omitempty"`
	types.Timestamps
}

// MinimumPayout falls back to the platform default when the vendor has no
// override configured.
func (v *VendorAccount) MinimumPayout() int64 {
	if v.MinimumPayoutAmount > 0 {
		return v.MinimumPayoutAmount
	}
	return config.DEFAULT_MINIMUM_PAYOUT
}

func (v *VendorAccount) PayoutMethodConfigured() bool {
	return v.StripeAccountID != nil && *v.StripeAccountID != ""
}
