// Package httputil provides request parsing and error responses for the status server.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
// Internal errors are logged in full and never exposed.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, response := classify(err)

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", response.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, response)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_input", Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "A backing store is unavailable",
		}
	case apperrors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "timeout", Message: "The operation timed out"}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}
