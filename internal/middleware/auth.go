package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/auth"
	"github.com/softdeck/softdeck/internal/models"
	"github.com/softdeck/softdeck/internal/types"
)

// AuthenticatedUser is the resolved principal, stored in the gin context and
// passed explicitly to every authorization check.
type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			apierr.Write(ctx, apierr.Unauthenticated("authorization token is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			apierr.Write(ctx, apierr.Unauthenticated("authorization header format must be Bearer {token}"))
			return
		}

		claims, err := auth.VerifyToken(parts[1], auth.TokenTypeAccess)

		if err != nil {
			apierr.Write(ctx, apierr.Unauthenticated("invalid or expired token"))
			return
		}

		var user models.User

		if err := db.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			apierr.Write(ctx, apierr.Unauthenticated("user not found"))
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		ctx.Next()
	}
}
