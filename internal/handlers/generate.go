package handlers

import (
	"log"
	"net/http"

	"todo-service/internal/intelligence"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	provider intelligence.Provider
}

type GenerateRequest struct {
	Query string `json:"query" binding:"required"`
}

func NewGenerateHandler(provider intelligence.Provider) *GenerateHandler {
	return &GenerateHandler{provider: provider}
}

// GenerateTasks forwards the caller's free-text goal to the generative
// provider and returns the suggested plan. Nothing is persisted; the
// caller decides what to keep.
func (h *GenerateHandler) GenerateTasks(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Query is required")
		return
	}

	plan, err := h.provider.GeneratePlan(c.Request.Context(), req.Query)
	if err != nil {
		log.Printf("Task generation error: %v", err)
		respondError(c, http.StatusNotFound, "We unable to generate task from your query, please try another query")
		return
	}

	// The provider reports off-topic queries through an error field in
	// its JSON reply rather than a transport error.
	if plan.Error != "" {
		respondError(c, http.StatusNotFound, plan.Error)
		return
	}

	respond(c, http.StatusOK, gin.H{"tasks": plan.Tasks})
}
