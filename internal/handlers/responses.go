package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/middleware"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorStatus maps an error to its HTTP status.
func ErrorStatus(err error) int {
	var ve validator.ValidationErrors
	var he *echo.HTTPError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, chat.ErrNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownMessage):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserAlreadyExists), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.As(err, &ve),
		errors.Is(err, chat.ErrEmptyDraft), errors.Is(err, chat.ErrUnknownFilter),
		errors.Is(err, chat.ErrEventMismatch), errors.Is(err, chat.ErrUnknownParent),
		errors.Is(err, chat.ErrMissingRecipient):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// JSONError writes {"error": msg} with status.
func JSONError(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}

// RespondError maps err to a status and writes it. Server errors are logged
// and answered with a generic message.
func RespondError(c echo.Context, err error) error {
	status := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.FromContext(c.Request().Context()).Error("Request failed", "path", c.Path(), "error", err)
		return JSONError(c, status, "Something went wrong. Please try again.")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return JSONError(c, status, msg)
		}
	}
	return JSONError(c, status, publicMessage(err))
}

func publicMessage(err error) string {
	for _, known := range []error{
		domain.ErrAuthRequired, domain.ErrInvalidCredentials, domain.ErrForbidden,
		domain.ErrNotFound, domain.ErrUserAlreadyExists, domain.ErrConflict,
		domain.ErrUnknownMessage, chat.ErrNotInRoom,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
