package main

import (
	"ems/src/payout"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func statusForPayoutError(err error) int {
	switch {
	case errors.Is(err, payout.ErrBelowMinimumPayout), errors.Is(err, payout.ErrPayoutDestinationMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, payout.ErrConcurrentLinkConflict), errors.Is(err, payout.ErrPayoutNotReconcilable):
		return http.StatusConflict
	case errors.Is(err, payout.ErrPayoutNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func vendorPayoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/vendor/earnings", func(ctx *gin.Context) {
			vendorId := ctx.GetUint("vendor")
			pending, err := payoutEngine.ComputePendingEarnings(ctx, vendorId)
			if err != nil {
				ctx.JSON(statusForPayoutError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"pending_earnings": pending})
		}).
		POST("/vendor/payouts", func(ctx *gin.Context) {
			vendorId := ctx.GetUint("vendor")
			p, err := payoutEngine.RequestPayout(ctx, vendorId)
			if err != nil {
				ctx.JSON(statusForPayoutError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": p})
		}).
		GET("/vendor/payouts", func(ctx *gin.Context) {
			vendorId := ctx.GetUint("vendor")
			payouts, err := payoutEngine.ListPayouts(ctx, vendorId)
			if err != nil {
				ctx.JSON(statusForPayoutError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payouts, "count": len(payouts)})
		})
	return g
}
