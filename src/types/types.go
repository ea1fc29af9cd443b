package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// SessionStep is the booking wizard position. Steps only ever advance in the
// order declared here; submitted is reached through finalization only.
type SessionStep string

const (
	STEP_EVENT_DETAILS SessionStep = "event_details"
	STEP_REQUIREMENTS  SessionStep = "requirements"
	STEP_REVIEW        SessionStep = "review"
	STEP_PAYMENT       SessionStep = "payment"
	STEP_CONFIRMATION  SessionStep = "confirmation"
	STEP_SUBMITTED     SessionStep = "submitted"
)

type PaymentStatus string

const (
	PAYMENT_UNPAID       PaymentStatus = "unpaid"
	PAYMENT_DEPOSIT_PAID PaymentStatus = "deposit_paid"
	PAYMENT_PAID_IN_FULL PaymentStatus = "paid_in_full"
)

type OrderStatus string

const (
	ORDER_PENDING   OrderStatus = "pending"
	ORDER_COMPLETED OrderStatus = "completed"
	ORDER_CANCELED  OrderStatus = "canceled"
)

type FulfillmentStatus string

const (
	FULFILLMENT_PENDING   FulfillmentStatus = "pending"
	FULFILLMENT_FULFILLED FulfillmentStatus = "fulfilled"
	FULFILLMENT_CANCELED  FulfillmentStatus = "cancelled"
)

type PayoutStatus string

const (
	PAYOUT_PENDING    PayoutStatus = "pending"
	PAYOUT_PROCESSING PayoutStatus = "processing"
	PAYOUT_COMPLETED  PayoutStatus = "completed"
	PAYOUT_FAILED     PayoutStatus = "failed"
)

type VendorStatus string

const (
	VENDOR_PENDING   VendorStatus = "pending"
	VENDOR_ACTIVE    VendorStatus = "active"
	VENDOR_SUSPENDED VendorStatus = "suspended"
)

type SubmitStepRequestBody struct {
	SessionID *string         `json:"session_id,omitempty"`
	Step      SessionStep     `json:"step" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

type SessionURIParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type OrderItemURIParams struct {
	ID uint `uri:"id" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
