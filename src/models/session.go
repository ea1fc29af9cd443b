package models

import (
	"time"

	"ems/src/pricing"
	"ems/src/types"
)

// BookingSession is the draft state of a booking wizard. It lives in redis
// only and never touches postgres; the struct marshals to the JSON document
// stored under booking:session:<id>.
type BookingSession struct {
	ID          string                  `json:"id"`
	UserID      uint                    `json:"user_id"`
	CurrentStep types.SessionStep       `json:"current_step"`
	Data        types.SessionData       `json:"data"`
	Pricing     *pricing.PriceBreakdown `json:"pricing,omitempty"`
	ExpiresAt   time.Time               `json:"expires_at"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}
