package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Bike not found"`
}

type successResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, errorResponse{
		Success: false,
		Message: message,
	})
}

func newSuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, successResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// errorStatus maps core errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrRegistryUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMalformedImport):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBackupUnavailable), errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// newCoreErrorResponse writes err with the status errorStatus picks. Server
// errors keep the fallback message so internals do not leak to clients.
func newCoreErrorResponse(c *gin.Context, err error, fallback string) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		newErrorResponse(c, code, fallback)
		return
	}
	newErrorResponse(c, code, err.Error())
}
