package handlers

import (
	"github.com/gin-gonic/gin"
)

// Every endpoint replies with the same JSON envelope:
// {"status_code": N, "response": {...}} on success and
// {"status_code": N, "error": {"message": ...}} on failure.

func respond(c *gin.Context, status int, payload gin.H) {
	c.JSON(status, gin.H{
		"status_code": status,
		"response":    payload,
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	respond(c, status, gin.H{"message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status_code": status,
		"error":       gin.H{"message": message},
	})
}
