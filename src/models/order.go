package models

import (
	"time"

	"ems/src/types"

	"github.com/google/uuid"
)

// Order is a finalized booking. The price breakdown is denormalized onto the
// order so settlement never recomputes it.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id,omitempty"`
	// SessionID is the booking session this order was finalized from. The
	// unique index keeps a session from ever producing two orders.
	SessionID  string            `gorm:"uniqueIndex" json:"session_id,omitempty"`
	UserID     uint              `json:"user_id,omitempty"`
	User       *User             `json:"user,omitempty"`
	Status     types.OrderStatus `gorm:"default:pending" json:"status,omitempty"`
	EventName  string            `json:"event_name,omitempty"`
	EventType  string            `json:"event_type,omitempty"`
	VenueID    uint              `json:"venue_id,omitempty"`
	GuestCount int64             `json:"guest_count,omitempty"`
	StartsAt   time.Time         `json:"starts_at,omitempty"`
	EndsAt     time.Time         `json:"ends_at,omitempty"`

	BasePrice     int64               `json:"base_price"`
	SetupFees     int64               `json:"setup_fees"`
	ServicesTotal int64               `json:"services_total"`
	Subtotal      int64               `json:"subtotal"`
	ServiceFee    int64               `json:"service_fee"`
	Total         int64               `json:"total"`
	DepositAmount int64               `json:"deposit_amount"`
	Currency      string              `gorm:"default:usd" json:"currency,omitempty"`
	PaymentStatus types.PaymentStatus `gorm:"default:unpaid" json:"payment_status,omitempty"`

	// Details is the booking data snapshot taken at finalization, kept for
	// audit alongside the denormalized totals.
	Details types.JSONB `gorm:"type:jsonb" json:"details,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
	types.Timestamps
}

// OrderItem is a single vendor deliverable on an order. VendorCommission is
// the vendor's earning in cents, written exactly once at order creation.
// PayoutID stays nil until the item is linked into a payout.
type OrderItem struct {
	ID                uint                    `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	OrderID           uuid.UUID               `gorm:"type:uuid" json:"order_id,omitempty"`
	Order             *Order                  `json:"order,omitempty"`
	VendorID          uint                    `json:"vendor_id,omitempty"`
	Vendor            *VendorAccount          `json:"vendor,omitempty"`
	Description       string                  `json:"description,omitempty"`
	Kind              types.LineItemKind      `json:"kind,omitempty"`
	Quantity          int64                   `json:"quantity,omitempty"`
	UnitPrice         int64                   `json:"unit_price"`
	Subtotal          int64                   `json:"subtotal"`
	VendorCommission  int64                   `json:"vendor_commission"`
	FulfillmentStatus types.FulfillmentStatus `gorm:"default:pending" json:"fulfillment_status,omitempty"`
	FulfilledAt       *time.Time              `json:"fulfilled_at,omitempty"`
	// CommissionRecordedAt marks the accrual as written; nil means not yet
	// recorded, even when the rounded commission itself is 0.
	CommissionRecordedAt *time.Time `json:"commission_recorded_at,omitempty"`
	PayoutID          *uuid.UUID              `gorm:"type:uuid" json:"payout_id,omitempty"`
	types.Timestamps
}
