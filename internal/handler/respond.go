package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/dto"
)

// respondOK writes the uniform success envelope.
func respondOK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.OK(data, message))
}

// respondError maps the service error taxonomy to an HTTP status and writes
// the uniform failure envelope. Internal failures get a generic message so
// store/driver details never reach the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, dto.Fail(message))
}

// abortError is respondError plus handler-chain abort, for middleware.
func abortError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
