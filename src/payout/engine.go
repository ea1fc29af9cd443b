package payout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ems/src/config"
	"ems/src/models"
	"ems/src/types"

	"github.com/google/uuid"
)

var (
	ErrBelowMinimumPayout       = errors.New("pending earnings are below the minimum payout amount")
	ErrPayoutDestinationMissing = errors.New("vendor has no payout destination configured")
	ErrConcurrentLinkConflict   = errors.New("order items were claimed by a concurrent payout")
	ErrExternalTransferFailed   = errors.New("external transfer failed")
	ErrPayoutNotReconcilable    = errors.New("payout is not in a reconcilable state")
)

const maxLinkAttempts = 3

// TransferFunc initiates the money movement for a payout and returns the
// external transfer id.
type TransferFunc func(ctx context.Context, p *models.Payout, v *models.VendorAccount) (string, error)

// Engine batches fulfilled earnings into payouts and settles them against the
// external transfer provider.
type Engine struct {
	repo     Repo
	transfer TransferFunc
	now      func() time.Time
}

func NewEngine(repo Repo, transfer TransferFunc) *Engine {
	return &Engine{
		repo:     repo,
		transfer: transfer,
		now:      time.Now,
	}
}

// ComputePendingEarnings sums the commissions of fulfilled order items that
// no payout has claimed yet.
func (e *Engine) ComputePendingEarnings(ctx context.Context, vendorID uint) (int64, error) {
	return e.repo.PendingEarnings(ctx, vendorID)
}

// RequestPayout batches every eligible item into one payout. The link step is
// a per-item conditional claim retried whole up to three times; losing every
// attempt surfaces ErrConcurrentLinkConflict to the caller.
func (e *Engine) RequestPayout(ctx context.Context, vendorID uint) (*models.Payout, error) {
	vendor, err := e.repo.Vendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	pending, err := e.repo.PendingEarnings(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if pending < vendor.MinimumPayout() {
		return nil, ErrBelowMinimumPayout
	}
	if !vendor.PayoutMethodConfigured() {
		return nil, ErrPayoutDestinationMissing
	}

	var payout *models.Payout
	for attempt := 1; attempt <= maxLinkAttempts; attempt++ {
		items, err := e.repo.EligibleItems(ctx, vendorID)
		if err != nil {
			return nil, err
		}
		var amount int64
		for _, item := range items {
			amount += item.VendorCommission
		}
		if amount < vendor.MinimumPayout() {
			return nil, ErrBelowMinimumPayout
		}

		now := e.now()
		candidate := &models.Payout{
			ID:             uuid.New(),
			PayoutNumber:   payoutNumber(now, vendorID),
			VendorID:       vendorID,
			Amount:         amount,
			Currency:       config.CURRENCY,
			Status:         types.PAYOUT_PENDING,
			PeriodStart:    now.AddDate(0, 0, -config.PAYOUT_PERIOD_DAYS),
			PeriodEnd:      now,
			OrderItemCount: int64(len(items)),
		}
		err = e.repo.CreateAndLink(ctx, candidate, items)
		if err == ErrConcurrentLinkConflict {
			log.Printf("[payout] Link conflict for vendor %d, attempt %d/%d\n", vendorID, attempt, maxLinkAttempts)
			continue
		} else if err != nil {
			return nil, err
		}
		payout = candidate
		break
	}
	if payout == nil {
		return nil, ErrConcurrentLinkConflict
	}

	transferID, err := e.transfer(ctx, payout, vendor)
	if err != nil {
		// the payout stays in processing; reconciliation is the retry path
		log.Printf("[payout] %s: %s\n", ErrExternalTransferFailed, err.Error())
		return payout, nil
	}
	if err := e.repo.SetTransferID(ctx, payout.ID, transferID); err != nil {
		return nil, err
	}
	payout.TransferID = &transferID
	log.Printf("[payout] Created payout %s (%d items, %d %s)\n", payout.PayoutNumber, payout.OrderItemCount, payout.Amount, payout.Currency)
	return payout, nil
}

// Reconcile applies the terminal outcome of the external transfer. Success
// completes the payout; failure fails it and releases every linked item back
// into the eligible pool. Completed payouts never change again.
func (e *Engine) Reconcile(ctx context.Context, payoutID uuid.UUID, success bool, reason string) error {
	p, err := e.repo.Payout(ctx, payoutID)
	if err != nil {
		return err
	}
	switch p.Status {
	case types.PAYOUT_PROCESSING:
	case types.PAYOUT_COMPLETED, types.PAYOUT_FAILED:
		return ErrPayoutNotReconcilable
	default:
		return ErrPayoutNotReconcilable
	}
	if success {
		return e.repo.Complete(ctx, payoutID, e.now())
	}
	if reason == "" {
		reason = ErrExternalTransferFailed.Error()
	}
	if err := e.repo.FailAndUnlink(ctx, payoutID, reason); err != nil {
		return err
	}
	log.Printf("[payout] Payout %s failed and was unlinked: %s\n", p.PayoutNumber, reason)
	return nil
}

// ListPayouts returns the vendor's payout history, newest first.
func (e *Engine) ListPayouts(ctx context.Context, vendorID uint) ([]models.Payout, error) {
	return e.repo.Payouts(ctx, vendorID)
}

// ReportStaleProcessing logs payouts that have sat in processing past the
// alert window. Scheduled by boot, correctness never depends on it.
func (e *Engine) ReportStaleProcessing(ctx context.Context) {
	cutoff := e.now().Add(-config.PAYOUT_STALE_AFTER)
	payouts, err := e.repo.StaleProcessing(ctx, cutoff)
	if err != nil {
		log.Printf("[payout] Failed to scan for stale payouts: %s\n", err.Error())
		return
	}
	for _, p := range payouts {
		log.Printf("[payout] Payout %s still processing since %s\n", p.PayoutNumber, p.UpdatedAt.Format(config.TIME_PARSE_FORMAT))
	}
}

func payoutNumber(now time.Time, vendorID uint) string {
	return fmt.Sprintf("PAY-%d-%04d", now.UnixMilli(), vendorID%10000)
}
