package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"ems/src/config"
	"ems/src/models"
	"ems/src/pricing"
	"ems/src/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("step submission is out of order")
	ErrSessionExpired     = errors.New("booking session has expired")
	ErrIncompleteSession  = errors.New("booking session is missing required steps")
	ErrInvalidStepPayload = errors.New("step payload failed validation")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// OrderStore persists finalized bookings.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	Vendors(ctx context.Context, ids []uint) (map[uint]*models.VendorAccount, error)
}

// Manager runs the booking wizard. Sessions move forward one step at a time,
// resubmitting the current step is an idempotent merge, and finalization is
// the only way to reach the submitted state.
type Manager struct {
	store  SessionStore
	orders OrderStore
	now    func() time.Time
}

func NewManager(store SessionStore, orders OrderStore) *Manager {
	return &Manager{
		store:  store,
		orders: orders,
		now:    time.Now,
	}
}

// StartOrResume applies one step submission. A missing session id starts a
// new session when the submitted step is the first one; submissions against
// an expired or unknown session fail with ErrSessionExpired.
func (m *Manager) StartOrResume(ctx context.Context, userID uint, body *types.SubmitStepRequestBody) (*models.BookingSession, error) {
	if body.Step == types.STEP_SUBMITTED {
		return nil, ErrInvalidTransition
	}
	data, err := decodeStepPayload(body.Step, body.Payload)
	if err != nil {
		return nil, err
	}

	if body.SessionID == nil {
		if body.Step != types.STEP_EVENT_DETAILS {
			return nil, ErrInvalidTransition
		}
		return m.startSession(ctx, userID, data)
	}

	sess, err := m.store.Get(ctx, *body.SessionID)
	if err == ErrSessionNotFound {
		if body.Step == types.STEP_EVENT_DETAILS {
			return m.startSession(ctx, userID, data)
		}
		return nil, ErrSessionExpired
	} else if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if m.now().After(sess.ExpiresAt) {
		if body.Step == types.STEP_EVENT_DETAILS {
			return m.startSession(ctx, userID, data)
		}
		return nil, ErrSessionExpired
	}

	prev := sess.CurrentStep
	switch body.Step {
	case prev:
		// resubmission of the in-flight step, merge and renew
	case types.NextStep(prev):
		sess.CurrentStep = body.Step
	default:
		return nil, ErrInvalidTransition
	}

	mergeStepData(&sess.Data, data)
	if err := m.refreshPricing(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = m.now()
	sess.ExpiresAt = m.now().Add(config.SESSION_TTL)
	if err := m.store.Update(ctx, sess, prev); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) startSession(ctx context.Context, userID uint, data *types.SessionData) (*models.BookingSession, error) {
	now := m.now()
	sess := &models.BookingSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		CurrentStep: types.STEP_EVENT_DETAILS,
		Data:        *data,
		ExpiresAt:   now.Add(config.SESSION_TTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	log.Printf("[booking] Started session %s for user %d\n", sess.ID, userID)
	return sess, nil
}

// Get returns the caller's session, refusing expired ones.
func (m *Manager) Get(ctx context.Context, userID uint, id string) (*models.BookingSession, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if m.now().After(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Abandon discards a draft session.
func (m *Manager) Abandon(ctx context.Context, userID uint, id string) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return ErrSessionNotFound
	}
	return m.store.Delete(ctx, id)
}

// Finalize turns a fully completed session into a persisted order, marks the
// session submitted and removes it. The session must have every step
// submitted and be sitting at the confirmation step.
func (m *Manager) Finalize(ctx context.Context, userID uint, id string) (*models.Order, error) {
	sess, err := m.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.CurrentStep != types.STEP_CONFIRMATION {
		return nil, ErrInvalidTransition
	}
	if err := validateComplete(&sess.Data); err != nil {
		return nil, err
	}
	startsAt, endsAt, err := parseEventWindow(sess.Data.EventDetails)
	if err != nil {
		return nil, err
	}
	if err := m.refreshPricing(sess); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New(),
		SessionID:     sess.ID,
		UserID:        sess.UserID,
		Status:        types.ORDER_PENDING,
		EventName:     sess.Data.EventDetails.Name,
		EventType:     sess.Data.EventDetails.EventType,
		VenueID:       sess.Data.Requirements.VenueID,
		GuestCount:    sess.Data.EventDetails.GuestCount,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		BasePrice:     sess.Pricing.BasePrice,
		SetupFees:     sess.Pricing.SetupFees,
		ServicesTotal: sess.Pricing.ServicesTotal,
		Subtotal:      sess.Pricing.Subtotal,
		ServiceFee:    sess.Pricing.ServiceFee,
		Total:         sess.Pricing.Total,
		DepositAmount: sess.Pricing.DepositAmount,
		Currency:      sess.Pricing.Currency,
		PaymentStatus: sess.Pricing.PaymentStatus,
	}
	if b, err := json.Marshal(sess.Data); err == nil {
		var details types.JSONB
		if err := json.Unmarshal(b, &details); err == nil {
			order.Details = details
		}
	}
	for _, in := range sess.Data.Requirements.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:           order.ID,
			VendorID:          in.VendorID,
			Description:       in.Description,
			Kind:              in.Kind,
			Quantity:          in.Quantity,
			UnitPrice:         in.UnitPrice,
			Subtotal:          in.Quantity * in.UnitPrice,
			FulfillmentStatus: types.FULFILLMENT_PENDING,
		})
	}
	// Claim the session before touching the database. Only the caller that
	// wins the confirmation to submitted swap gets to create the order, so
	// a concurrent finalize can never persist a second one.
	sess.CurrentStep = types.STEP_SUBMITTED
	sess.UpdatedAt = m.now()
	if err := m.store.Update(ctx, sess, types.STEP_CONFIRMATION); err != nil {
		return nil, err
	}
	if err := m.orders.CreateOrder(ctx, order); err != nil {
		sess.CurrentStep = types.STEP_CONFIRMATION
		sess.UpdatedAt = m.now()
		if rerr := m.store.Update(ctx, sess, types.STEP_SUBMITTED); rerr != nil {
			log.Printf("[booking] Failed to release session %s after order error: %s\n", sess.ID, rerr.Error())
		}
		return nil, err
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		log.Printf("[booking] Failed to drop submitted session %s: %s\n", sess.ID, err.Error())
	}
	log.Printf("[booking] Session %s submitted as order %s\n", sess.ID, order.ID)
	return order, nil
}

// refreshPricing recomputes the breakdown from the requirements items. Before
// the requirements step there is nothing to price.
func (m *Manager) refreshPricing(sess *models.BookingSession) error {
	req := sess.Data.Requirements
	if req == nil {
		return nil
	}
	var base, setup, services int64
	for _, in := range req.Items {
		amount := in.Quantity * in.UnitPrice
		switch in.Kind {
		case types.ITEM_VENUE:
			base += amount
		case types.ITEM_SETUP:
			setup += amount
		case types.ITEM_SERVICE:
			services += amount
		}
	}
	breakdown, err := pricing.Calculate(base, setup, services)
	if err != nil {
		return err
	}
	if sess.Data.Payment != nil {
		if sess.Data.Payment.PayDeposit {
			breakdown.PaymentStatus = types.PAYMENT_DEPOSIT_PAID
		} else {
			breakdown.PaymentStatus = types.PAYMENT_PAID_IN_FULL
		}
	}
	sess.Pricing = breakdown
	return nil
}

func decodeStepPayload(step types.SessionStep, raw json.RawMessage) (*types.SessionData, error) {
	data := &types.SessionData{}
	var target any
	switch step {
	case types.STEP_EVENT_DETAILS:
		data.EventDetails = &types.EventDetailsPayload{}
		target = data.EventDetails
	case types.STEP_REQUIREMENTS:
		data.Requirements = &types.RequirementsPayload{}
		target = data.Requirements
	case types.STEP_REVIEW:
		data.Review = &types.ReviewPayload{}
		target = data.Review
	case types.STEP_PAYMENT:
		data.Payment = &types.PaymentPayload{}
		target = data.Payment
	case types.STEP_CONFIRMATION:
		data.Confirmation = &types.ConfirmationPayload{}
		target = data.Confirmation
	default:
		return nil, ErrInvalidTransition
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, ErrInvalidStepPayload
	}
	if err := validate.Struct(target); err != nil {
		return nil, ErrInvalidStepPayload
	}
	if data.EventDetails != nil {
		if _, _, err := parseEventWindow(data.EventDetails); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func mergeStepData(dst *types.SessionData, src *types.SessionData) {
	if src.EventDetails != nil {
		dst.EventDetails = src.EventDetails
	}
	if src.Requirements != nil {
		dst.Requirements = src.Requirements
	}
	if src.Review != nil {
		dst.Review = src.Review
	}
	if src.Payment != nil {
		dst.Payment = src.Payment
	}
	if src.Confirmation != nil {
		dst.Confirmation = src.Confirmation
	}
}

func validateComplete(data *types.SessionData) error {
	if data.EventDetails == nil || data.Requirements == nil || data.Review == nil ||
		data.Payment == nil || data.Confirmation == nil {
		return ErrIncompleteSession
	}
	if data.Requirements.VenueID == 0 || len(data.Requirements.Items) == 0 {
		return ErrIncompleteSession
	}
	if !data.Confirmation.Confirmed {
		return ErrIncompleteSession
	}
	return nil
}

func parseEventWindow(details *types.EventDetailsPayload) (time.Time, time.Time, error) {
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, details.StartsAt)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidStepPayload
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, details.EndsAt)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidStepPayload
	}
	if !endsAt.After(startsAt) {
		return time.Time{}, time.Time{}, ErrInvalidStepPayload
	}
	return startsAt, endsAt, nil
}
