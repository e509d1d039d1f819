package handlers

import (
	"errors"
	"log"
	"net/http"

	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewRegisterHandler(db *gorm.DB, authService services.AuthService) *RegisterHandler {
	return &RegisterHandler{db: db, authService: authService}
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	if _, err := h.authService.Register(h.db, req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "Email Already Exist")
			return
		}
		log.Printf("Registration error: %v", err)
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondMessage(c, http.StatusOK, "Successfully Register")
}
