package server

import (
	"errors"
	"net/http"

	"recipeagent"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message, RequestID: c.GetString(ctxKeyRequestID)})
}

// statusFor maps service errors to HTTP statuses. Only rejected input is the caller's fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recipeagent.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
