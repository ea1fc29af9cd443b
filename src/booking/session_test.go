package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ems/src/config"
	"ems/src/models"
	"ems/src/types"

	"github.com/stretchr/testify/assert"
)

var errDatabaseDown = errors.New("database down")

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.BookingSession

	failNextUpdate bool
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]*models.BookingSession{}}
}

func copySession(s *models.BookingSession) *models.BookingSession {
	b, _ := json.Marshal(s)
	var out models.BookingSession
	_ = json.Unmarshal(b, &out)
	return &out
}

func (m *memorySessionStore) Create(ctx context.Context, sess *models.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = copySession(sess)
	return nil
}

func (m *memorySessionStore) Get(ctx context.Context, id string) (*models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (m *memorySessionStore) Update(ctx context.Context, sess *models.BookingSession, expectStep types.SessionStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextUpdate {
		m.failNextUpdate = false
		return ErrStaleSession
	}
	stored, ok := m.sessions[sess.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.CurrentStep != expectStep {
		return ErrStaleSession
	}
	m.sessions[sess.ID] = copySession(sess)
	return nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type memoryOrderStore struct {
	created []*models.Order

	failNextCreate bool
}

func (m *memoryOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if m.failNextCreate {
		m.failNextCreate = false
		return errDatabaseDown
	}
	m.created = append(m.created, order)
	return nil
}

func (m *memoryOrderStore) Vendors(ctx context.Context, ids []uint) (map[uint]*models.VendorAccount, error) {
	out := map[uint]*models.VendorAccount{}
	for _, id := range ids {
		out[id] = &models.VendorAccount{ID: id, CommissionRateBP: 1500}
	}
	return out, nil
}

func newTestManager() (*Manager, *memorySessionStore, *memoryOrderStore) {
	store := newMemorySessionStore()
	orders := &memoryOrderStore{}
	m := NewManager(store, orders)
	return m, store, orders
}

func rawPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return b
}

func eventDetailsPayload(t *testing.T) json.RawMessage {
	starts := time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
	ends := time.Now().Add(54 * time.Hour).Format(config.TIME_PARSE_FORMAT)
	return rawPayload(t, types.EventDetailsPayload{
		Name:       "Autumn Gala",
		EventType:  "corporate",
		StartsAt:   starts,
		EndsAt:     ends,
		GuestCount: 120,
	})
}

func requirementsPayload(t *testing.T) json.RawMessage {
	return rawPayload(t, types.RequirementsPayload{
		VenueID: 7,
		Items: []types.LineItemInput{
			{VendorID: 7, Description: "Grand hall", Quantity: 1, UnitPrice: 10000, Kind: types.ITEM_VENUE},
			{VendorID: 9, Description: "Stage setup", Quantity: 1, UnitPrice: 500, Kind: types.ITEM_SETUP},
		},
	})
}

func submit(t *testing.T, m *Manager, userID uint, id *string, step types.SessionStep, payload json.RawMessage) (*models.BookingSession, error) {
	t.Helper()
	return m.StartOrResume(context.Background(), userID, &types.SubmitStepRequestBody{
		SessionID: id,
		Step:      step,
		Payload:   payload,
	})
}

func walkToConfirmation(t *testing.T, m *Manager, userID uint) *models.BookingSession {
	t.Helper()
	sess, err := submit(t, m, userID, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)
	sess, err = submit(t, m, userID, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.NoError(t, err)
	sess, err = submit(t, m, userID, &sess.ID, types.STEP_REVIEW, rawPayload(t, types.ReviewPayload{Accepted: true}))
	assert.NoError(t, err)
	sess, err = submit(t, m, userID, &sess.ID, types.STEP_PAYMENT, rawPayload(t, types.PaymentPayload{PayDeposit: true}))
	assert.NoError(t, err)
	sess, err = submit(t, m, userID, &sess.ID, types.STEP_CONFIRMATION, rawPayload(t, types.ConfirmationPayload{Confirmed: true}))
	assert.NoError(t, err)
	return sess
}

func TestStartSession(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, types.STEP_EVENT_DETAILS, sess.CurrentStep)
	assert.NotNil(t, sess.Data.EventDetails)
	assert.Nil(t, sess.Pricing)
}

func TestStartRequiresFirstStep(t *testing.T) {
	m, _, _ := newTestManager()
	_, err := submit(t, m, 1, nil, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResubmitCurrentStepMerges(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	again, err := submit(t, m, 1, &sess.ID, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, types.STEP_EVENT_DETAILS, again.CurrentStep)
}

func TestAdvanceComputesPricing(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	sess, err = submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.NoError(t, err)
	assert.Equal(t, types.STEP_REQUIREMENTS, sess.CurrentStep)
	assert.NotNil(t, sess.Pricing)
	assert.Equal(t, int64(10000), sess.Pricing.BasePrice)
	assert.Equal(t, int64(500), sess.Pricing.SetupFees)
	assert.Equal(t, int64(10500), sess.Pricing.Subtotal)
	assert.Equal(t, int64(1050), sess.Pricing.ServiceFee)
	assert.Equal(t, int64(11550), sess.Pricing.Total)
	assert.Equal(t, int64(3465), sess.Pricing.DepositAmount)
}

func TestSkippingStepFails(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	_, err = submit(t, m, 1, &sess.ID, types.STEP_REVIEW, rawPayload(t, types.ReviewPayload{Accepted: true}))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOutOfOrderSubmissionAtReview(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)
	sess, err = submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.NoError(t, err)
	sess, err = submit(t, m, 1, &sess.ID, types.STEP_REVIEW, rawPayload(t, types.ReviewPayload{Accepted: true}))
	assert.NoError(t, err)

	_, err = submit(t, m, 1, &sess.ID, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sess, err = submit(t, m, 1, &sess.ID, types.STEP_PAYMENT, rawPayload(t, types.PaymentPayload{PayDeposit: true}))
	assert.NoError(t, err)
	assert.Equal(t, types.STEP_PAYMENT, sess.CurrentStep)
}

func TestStepsNeverMoveBackwards(t *testing.T) {
	m, _, _ := newTestManager()
	sess := walkToConfirmation(t, m, 1)

	_, err := submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExpiredSession(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(config.SESSION_TTL + time.Hour) }

	_, err = submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = m.Get(context.Background(), 1, sess.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestExpiredSessionRestartsOnFirstStep(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(config.SESSION_TTL + time.Hour) }

	fresh, err := submit(t, m, 1, &sess.ID, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Equal(t, types.STEP_EVENT_DETAILS, fresh.CurrentStep)
}

func TestConcurrentStepSubmission(t *testing.T) {
	m, store, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	store.failNextUpdate = true
	_, err = submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.ErrorIs(t, err, ErrStaleSession)

	sess, err = submit(t, m, 1, &sess.ID, types.STEP_REQUIREMENTS, requirementsPayload(t))
	assert.NoError(t, err)
	assert.Equal(t, types.STEP_REQUIREMENTS, sess.CurrentStep)
}

func TestSessionOwnership(t *testing.T) {
	m, _, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	_, err = m.Get(context.Background(), 2, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinalize(t *testing.T) {
	m, store, orders := newTestManager()
	sess := walkToConfirmation(t, m, 1)

	order, err := m.Finalize(context.Background(), 1, sess.ID)
	assert.NoError(t, err)
	assert.Len(t, orders.created, 1)
	assert.Equal(t, int64(11550), order.Total)
	assert.Equal(t, int64(3465), order.DepositAmount)
	assert.Equal(t, types.PAYMENT_DEPOSIT_PAID, order.PaymentStatus)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, types.FULFILLMENT_PENDING, order.Items[0].FulfillmentStatus)
	assert.Equal(t, sess.ID, order.SessionID)

	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinalizeLosingClaimCreatesNoOrder(t *testing.T) {
	m, store, orders := newTestManager()
	sess := walkToConfirmation(t, m, 1)

	store.failNextUpdate = true
	_, err := m.Finalize(context.Background(), 1, sess.ID)
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Empty(t, orders.created)

	order, err := m.Finalize(context.Background(), 1, sess.ID)
	assert.NoError(t, err)
	assert.Len(t, orders.created, 1)
	assert.Equal(t, sess.ID, order.SessionID)
}

func TestFinalizeReleasesSessionOnOrderError(t *testing.T) {
	m, store, orders := newTestManager()
	sess := walkToConfirmation(t, m, 1)

	orders.failNextCreate = true
	_, err := m.Finalize(context.Background(), 1, sess.ID)
	assert.ErrorIs(t, err, errDatabaseDown)
	assert.Empty(t, orders.created)

	stored, err := store.Get(context.Background(), sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, stored.CurrentStep)

	_, err = m.Finalize(context.Background(), 1, sess.ID)
	assert.NoError(t, err)
	assert.Len(t, orders.created, 1)
}

func TestFinalizeBeforeConfirmationFails(t *testing.T) {
	m, _, orders := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	_, err = m.Finalize(context.Background(), 1, sess.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, orders.created)
}

func TestFinalizeIncompleteSession(t *testing.T) {
	m, store, orders := newTestManager()
	sess := walkToConfirmation(t, m, 1)

	stored, err := store.Get(context.Background(), sess.ID)
	assert.NoError(t, err)
	stored.Data.Requirements = nil
	assert.NoError(t, store.Update(context.Background(), stored, types.STEP_CONFIRMATION))

	_, err = m.Finalize(context.Background(), 1, sess.ID)
	assert.ErrorIs(t, err, ErrIncompleteSession)
	assert.Empty(t, orders.created)
}

func TestAbandon(t *testing.T) {
	m, store, _ := newTestManager()
	sess, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, eventDetailsPayload(t))
	assert.NoError(t, err)

	assert.NoError(t, m.Abandon(context.Background(), 1, sess.ID))
	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInvalidEventWindowRejected(t *testing.T) {
	m, _, _ := newTestManager()
	starts := time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
	payload := rawPayload(t, types.EventDetailsPayload{
		Name:       "Backwards",
		EventType:  "private",
		StartsAt:   starts,
		EndsAt:     starts,
		GuestCount: 10,
	})
	_, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, payload)
	assert.ErrorIs(t, err, ErrInvalidStepPayload)
}

func TestMalformedPayloadRejected(t *testing.T) {
	m, _, _ := newTestManager()
	_, err := submit(t, m, 1, nil, types.STEP_EVENT_DETAILS, json.RawMessage(`{"name":`))
	assert.ErrorIs(t, err, ErrInvalidStepPayload)
}
