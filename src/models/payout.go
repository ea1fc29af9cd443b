package models

import (
	"time"

	"ems/src/types"

	"github.com/google/uuid"
)

// Payout is one settlement run for a vendor. Amount equals the sum of the
// VendorCommission of every order item linked to it, always.
type Payout struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id,omitempty"`
	PayoutNumber   string             `gorm:"unique" json:"payout_number,omitempty"`
	VendorID       uint               `json:"vendor_id,omitempty"`
	Vendor         *VendorAccount     `json:"vendor,omitempty"`
	Amount         int64              `json:"amount"`
	Currency       string             `gorm:"default:usd" json:"currency,omitempty"`
	Status         types.PayoutStatus `gorm:"default:pending" json:"status,omitempty"`
	PeriodStart    time.Time          `json:"period_start,omitempty"`
	PeriodEnd      time.Time          `json:"period_end,omitempty"`
	OrderItemCount int64              `json:"order_item_count,omitempty"`
	TransferID     *string            `json:"transfer_id,omitempty"`
	FailureReason  *string            `json:"failure_reason,omitempty"`
	ProcessedAt    *time.Time         `json:"processed_at,omitempty"`
	types.Timestamps
}
