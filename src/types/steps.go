package types

// LineItemKind classifies how a requirement line contributes to pricing.
type LineItemKind string

const (
	ITEM_VENUE   LineItemKind = "venue"
	ITEM_SETUP   LineItemKind = "setup"
	ITEM_SERVICE LineItemKind = "service"
)

type LineItemInput struct {
	VendorID    uint         `json:"vendor_id" binding:"required"`
	Description string       `json:"description" binding:"required"`
	Quantity    int64        `json:"quantity" binding:"required,gt=0"`
	UnitPrice   int64        `json:"unit_price" binding:"gte=0"`
	Kind        LineItemKind `json:"kind" binding:"required,oneof=venue setup service"`
}

type EventDetailsPayload struct {
	Name       string `json:"name" binding:"required"`
	EventType  string `json:"event_type" binding:"required"`
	StartsAt   string `json:"starts_at" binding:"required"`
	EndsAt     string `json:"ends_at" binding:"required"`
	GuestCount int64  `json:"guest_count" binding:"required,gt=0"`
	Notes      string `json:"notes,omitempty"`
}

type RequirementsPayload struct {
	VenueID uint            `json:"venue_id" binding:"required"`
	Items   []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

type ReviewPayload struct {
	Accepted bool `json:"accepted" binding:"required"`
}

type PaymentPayload struct {
	PayDeposit      bool   `json:"pay_deposit"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

type ConfirmationPayload struct {
	Confirmed bool `json:"confirmed" binding:"required"`
}

// SessionData holds the accumulated step submissions of one booking session.
// A nil pointer means the step has not been submitted yet.
type SessionData struct {
	EventDetails *EventDetailsPayload `json:"event_details,omitempty"`
	Requirements *RequirementsPayload `json:"requirements,omitempty"`
	Review       *ReviewPayload       `json:"review,omitempty"`
	Payment      *PaymentPayload      `json:"payment,omitempty"`
	Confirmation *ConfirmationPayload `json:"confirmation,omitempty"`
}

// NextStep returns the step immediately after s, or s itself when the wizard
// cannot advance further.
func NextStep(s SessionStep) SessionStep {
	switch s {
	case STEP_EVENT_DETAILS:
		return STEP_REQUIREMENTS
	case STEP_REQUIREMENTS:
		return STEP_REVIEW
	case STEP_REVIEW:
		return STEP_PAYMENT
	case STEP_PAYMENT:
		return STEP_CONFIRMATION
	case STEP_CONFIRMATION:
		return STEP_SUBMITTED
	}
	return s
}
