package handlers

import (
	"errors"
	"log"
	"net/http"

	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LoginHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewLoginHandler(db *gorm.DB, authService services.AuthService) *LoginHandler {
	return &LoginHandler{db: db, authService: authService}
}

func (h *LoginHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	token, _, err := h.authService.Login(h.db, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User Not Found")
		case errors.Is(err, services.ErrWrongPassword):
			respondError(c, http.StatusBadRequest, "Wrong Password")
		default:
			log.Printf("Login error: %v", err)
			respondError(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "Successfully Login",
		"token":   token,
	})
}
