package handlers

import (
	"time"

	"todo-service/internal/middleware"
	"todo-service/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser returns the caller resolved by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// tokenInfo returns the jti and expiry of the presented token.
func tokenInfo(c *gin.Context) (string, time.Time, bool) {
	jtiValue, exists := c.Get(middleware.ContextTokenJTIKey)
	if !exists {
		return "", time.Time{}, false
	}
	expValue, exists := c.Get(middleware.ContextTokenExpKey)
	if !exists {
		return "", time.Time{}, false
	}

	jti, jtiOK := jtiValue.(string)
	exp, expOK := expValue.(time.Time)
	if !jtiOK || !expOK {
		return "", time.Time{}, false
	}
	return jti, exp, true
}
