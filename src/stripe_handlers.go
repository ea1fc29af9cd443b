package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "transfer.created":
			var tr stripe.Transfer
			if err := json.Unmarshal(event.Data.Raw, &tr); err != nil {
				log.Printf("[Stripe] Error parsing Transfer: %s\n", err.Error())
				break
			}
			payoutId, err := uuid.Parse(tr.Metadata["payoutId"])
			if err != nil {
				log.Printf("Could not read payout id from transfer %s: %s\n", tr.ID, err.Error())
				break
			}
			if err := payoutEngine.Reconcile(ctx, payoutId, true, ""); err != nil {
				log.Printf("Error reconciling payout %s: %s\n", payoutId, err.Error())
			}
		case "transfer.reversed":
			var tr stripe.Transfer
			if err := json.Unmarshal(event.Data.Raw, &tr); err != nil {
				log.Printf("[Stripe] Error parsing Transfer: %s\n", err.Error())
				break
			}
			payoutId, err := uuid.Parse(tr.Metadata["payoutId"])
			if err != nil {
				log.Printf("Could not read payout id from transfer %s: %s\n", tr.ID, err.Error())
				break
			}
			if err := payoutEngine.Reconcile(ctx, payoutId, false, "transfer reversed"); err != nil {
				log.Printf("Error reconciling payout %s: %s\n", payoutId, err.Error())
			}
		default:
			log.Printf("Unhandled event type: %s\n", event.Type)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
