package middleware

import (
	"errors"
	"net/http"
	"strings"

	"todo-service/internal/denylist"
	"todo-service/internal/models"
	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Context keys populated by Authenticate for downstream handlers.
const (
	ContextUserKey     = "current_user"
	ContextTokenJTIKey = "token_jti"
	ContextTokenExpKey = "token_expires_at"
)

// Authenticate verifies the bearer token, rejects revoked tokens, and
// resolves the caller before the handler runs. Any failure short-circuits
// to a 401 error envelope.
func Authenticate(db *gorm.DB, authService services.AuthService, dl denylist.Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "User is unauthorized")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "User is unauthorized")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := authService.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "token expired")
				return
			}
			abortUnauthorized(c, "User is unauthorized")
			return
		}

		revoked, err := dl.IsRevoked(c.Request.Context(), claims.JTI)
		if err != nil {
			// Fail closed: if the revocation set cannot be checked the
			// token is not accepted.
			abortUnauthorized(c, "User is unauthorized")
			return
		}
		if revoked {
			abortUnauthorized(c, "token revoked")
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			abortUnauthorized(c, "User is unauthorized")
			return
		}

		c.Set(ContextUserKey, &user)
		c.Set(ContextTokenJTIKey, claims.JTI)
		c.Set(ContextTokenExpKey, claims.ExpiresAt)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status_code": http.StatusUnauthorized,
		"error":       gin.H{"message": message},
	})
}
