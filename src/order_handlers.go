package main

import (
	"ems/src/db"
	"ems/src/models"
	"ems/src/types"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/orders", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var orders []models.Order
			err := db.
				Model(&models.Order{}).
				Where(&models.Order{UserID: userId}).
				Preload("Items").
				Find(&orders).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.SessionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var order models.Order
			if err := db.
				Model(&models.Order{}).
				Where("id = ? AND user_id = ?", params.ID, userId).
				Preload("Items").
				First(&order).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return g
}

func vendorOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/vendor/items/:id/fulfill", func(ctx *gin.Context) {
			var params types.OrderItemURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			vendorId := ctx.GetUint("vendor")
			db := db.GetDb()
			now := time.Now()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.OrderItem{}).
					Where("id = ? AND vendor_id = ? AND fulfillment_status = ?",
						params.ID, vendorId, types.FULFILLMENT_PENDING).
					Updates(map[string]any{
						"fulfillment_status": types.FULFILLMENT_FULFILLED,
						"fulfilled_at":       now,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err == gorm.ErrRecordNotFound {
				ctx.JSON(http.StatusConflict, gin.H{"error": "item is not pending fulfillment"})
				return
			} else if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
