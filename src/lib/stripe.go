package lib

import (
	"context"
	"errors"
	"os"

	"ems/src/models"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreateTransfer moves a payout's amount to the vendor's connected account
// and returns the transfer id.
func CreateTransfer(ctx context.Context, p *models.Payout, v *models.VendorAccount) (string, error) {
	if !v.PayoutMethodConfigured() {
		return "", errors.New("vendor has no connected account")
	}
	sc := GetStripeClient()
	params := stripe.TransferCreateParams{
		Amount:        stripe.Int64(p.Amount),
		Currency:      stripe.String(p.Currency),
		Destination:   stripe.String(*v.StripeAccountID),
		TransferGroup: stripe.String(p.PayoutNumber),
		Metadata: map[string]string{
			"payoutId": p.ID.String(),
		},
	}
	transfer, err := sc.V1Transfers.Create(ctx, &params)
	if err != nil {
		return "", err
	}
	return transfer.ID, nil
}
