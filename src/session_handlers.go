package main

import (
	"ems/src/booking"
	"ems/src/pricing"
	"ems/src/types"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func statusForBookingError(err error) int {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, booking.ErrInvalidTransition), errors.Is(err, booking.ErrStaleSession):
		return http.StatusConflict
	case errors.Is(err, booking.ErrIncompleteSession):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrInvalidStepPayload), errors.Is(err, pricing.ErrInvalidPricingInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func bookingSessionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/session", func(ctx *gin.Context) {
			var body types.SubmitStepRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			sess, err := sessionManager.StartOrResume(ctx, userId, &body)
			if err != nil {
				ctx.JSON(statusForBookingError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sess})
		}).
		GET("/bookings/session/:id", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			sess, err := sessionManager.Get(ctx, userId, params.ID)
			if err != nil {
				ctx.JSON(statusForBookingError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sess})
		}).
		POST("/bookings/session/:id/finalize", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			order, err := sessionManager.Finalize(ctx, userId, params.ID)
			if err != nil {
				ctx.JSON(statusForBookingError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		DELETE("/bookings/session/:id", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			if err := sessionManager.Abandon(ctx, userId, params.ID); err != nil {
				ctx.JSON(statusForBookingError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
