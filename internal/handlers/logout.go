package handlers

import (
	"log"
	"net/http"
	"time"

	"todo-service/internal/denylist"

	"github.com/gin-gonic/gin"
)

type LogoutHandler struct {
	denylist denylist.Denylist
}

func NewLogoutHandler(dl denylist.Denylist) *LogoutHandler {
	return &LogoutHandler{denylist: dl}
}

// Logout records the presented token's jti in the revocation set so the
// exact same token is rejected until it would have expired anyway.
func (h *LogoutHandler) Logout(c *gin.Context) {
	jti, expiresAt, ok := tokenInfo(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	if err := h.denylist.Revoke(c.Request.Context(), jti, time.Until(expiresAt)); err != nil {
		log.Printf("Logout error: %v", err)
		respondError(c, http.StatusInternalServerError, "Logout failed")
		return
	}

	respondMessage(c, http.StatusOK, "Successfully Logout")
}
