package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithError writes the uniform error body for a status code.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, NewErrorResponse(c, status, message))
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			RespondWithError(c, cs.Status, cs.Message)
			return
		}
	}

	RespondWithError(c, fallbackStatus, fallbackMessage)
}
