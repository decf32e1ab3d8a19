package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/validation"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var verr *service.ValidationError
	var ferr *validation.FieldError
	switch {
	case errors.As(err, &verr), errors.As(err, &ferr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// bindJSON decodes the body into req and validates it.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := validation.ValidateStruct(req); err != nil {
		respondError(c, err)
		return false
	}
	return true
}
