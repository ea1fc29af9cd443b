package middlewares

import (
	"ems/src/db"
	"ems/src/models"
	"ems/src/types"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	db := db.GetDb()
	var user models.User
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
	}
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)

	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("role", claims.Role)
}

// VendorMiddleware resolves the caller's vendor account and aborts when the
// user does not own one.
func VendorMiddleware(ctx *gin.Context) {
	id := ctx.GetUint("id")
	db := db.GetDb()
	var vendor models.VendorAccount
	err := db.Where(&models.VendorAccount{UserID: id}).First(&vendor).Error
	if err != nil || vendor.ID < 1 {
		ctx.AbortWithStatus(403)
		return
	}
	if vendor.Status == types.VENDOR_SUSPENDED {
		ctx.AbortWithStatus(403)
		return
	}
	ctx.Set("vendor", vendor.ID)
}
