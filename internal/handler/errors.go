package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/service"
	"github.com/Takita08/Marko-Docu-Ai/internal/session"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// requestError is a malformed request: missing form field, bad JSON body,
// unknown mode. It always maps to 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusFor maps domain errors onto HTTP status codes. errors.Is walks the
// wrap chain, so handlers can pass errors through unchanged.
func statusFor(err error) int {
	var (
		maxErr *http.MaxBytesError
		reqErr *requestError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &reqErr),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, viewstate.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewstate.ErrBusy),
		errors.Is(err, viewstate.ErrNotAllowed),
		errors.Is(err, viewstate.ErrWrongMode):
		return http.StatusConflict
	case errors.Is(err, service.ErrTransport),
		errors.Is(err, service.ErrSchemaMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the {"error": message} body. Internal errors get a
// generic message so storage details never leak to clients; the cause of
// every 5xx goes to the log instead.
func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusRequestEntityTooLarge:
		msg = "the uploaded file is too large"
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
