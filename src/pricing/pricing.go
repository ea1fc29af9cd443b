package pricing

import (
	"errors"

	"ems/src/config"
	"ems/src/types"
)

var ErrInvalidPricingInput = errors.New("pricing inputs must be non-negative amounts in cents")

// PriceBreakdown is the full money decomposition of a booking. All amounts
// are integer cents, rates are basis points out of 10000.
type PriceBreakdown struct {
	BasePrice     int64 `json:"base_price"`
	SetupFees     int64 `json:"setup_fees"`
	ServicesTotal int64 `json:"services_total"`
	Subtotal      int64 `json:"subtotal"`
	ServiceFee    int64 `json:"service_fee"`
	Total         int64 `json:"total"`
	DepositAmount int64 `json:"deposit_amount"`

	ServiceFeeRateBP int64 `json:"service_fee_rate_bp"`
	DepositRateBP    int64 `json:"deposit_rate_bp"`

	Currency      string              `json:"currency"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
}

// RemainingBalance is the amount still owed after a deposit. It is only
// defined once a deposit has been paid; otherwise the balance is not yet due.
func (b *PriceBreakdown) RemainingBalance() int64 {
	if b.PaymentStatus == types.PAYMENT_DEPOSIT_PAID {
		return b.Total - b.DepositAmount
	}
	return 0
}

// ApplyRate multiplies an amount in cents by a basis point rate, rounding
// half up. 10500 at 1000bp gives 1050.
func ApplyRate(amount, rateBP int64) int64 {
	return (amount*rateBP + config.BASIS_POINTS/2) / config.BASIS_POINTS
}

// Calculate produces the price breakdown for the given component amounts.
// Inputs are cents and must each be non-negative.
func Calculate(basePrice, setupFees, servicesTotal int64) (*PriceBreakdown, error) {
	if basePrice < 0 || setupFees < 0 || servicesTotal < 0 {
		return nil, ErrInvalidPricingInput
	}
	subtotal := basePrice + setupFees + servicesTotal
	serviceFee := ApplyRate(subtotal, config.SERVICE_FEE_RATE_BP)
	total := subtotal + serviceFee
	deposit := ApplyRate(total, config.DEPOSIT_RATE_BP)
	breakdown := &PriceBreakdown{
		BasePrice:        basePrice,
		SetupFees:        setupFees,
		ServicesTotal:    servicesTotal,
		Subtotal:         subtotal,
		ServiceFee:       serviceFee,
		Total:            total,
		DepositAmount:    deposit,
		ServiceFeeRateBP: config.SERVICE_FEE_RATE_BP,
		DepositRateBP:    config.DEPOSIT_RATE_BP,
		Currency:         config.CURRENCY,
		PaymentStatus:    types.PAYMENT_UNPAID,
	}
	return breakdown, nil
}
