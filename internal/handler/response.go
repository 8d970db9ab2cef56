package handler

import (
	"errors"
	"net/http"

	"roomchat/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError maps the chat error taxonomy onto HTTP status codes. Policy
// violations carry a user-displayable reason.
func respondError(c *gin.Context, err error) {
	var policyErr *chat.PolicyError
	switch {
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, chat.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": policyErr.Reason})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
