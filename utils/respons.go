package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakawidhi/canteen-app/models"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// StatusFromError maps service errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func RespondServiceError(c *gin.Context, err error) {
	RespondError(c, StatusFromError(err), err)
}
