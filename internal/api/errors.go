package api

import (
	"errors"
	"net/http"

	"cabana/internal/db"
	"cabana/internal/lock"
	"cabana/internal/reservation"

	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP responses. Unknown errors are logged
// and answered with a generic 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, reservation.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, reservation.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, reservation.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, reservation.ErrCabinNotFound):
		status, code = http.StatusNotFound, "cabin_not_found"
	case errors.Is(err, reservation.ErrCabinInactive):
		status, code = http.StatusUnprocessableEntity, "cabin_inactive"
	case errors.Is(err, reservation.ErrInvalidInterval):
		status, code = http.StatusBadRequest, "invalid_interval"
	case errors.Is(err, reservation.ErrPastDate):
		status, code = http.StatusBadRequest, "past_date"
	case errors.Is(err, reservation.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, db.ErrDuplicateName):
		status, code = http.StatusConflict, "duplicate_name"
	case errors.Is(err, lock.ErrNotAcquired):
		c.Header("Retry-After", "1")
		status, code = http.StatusServiceUnavailable, "busy"
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_input"})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg, "code": "not_found"})
}
