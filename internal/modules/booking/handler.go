package booking

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
)

// Handler serves the booking routes.
type Handler struct {
	service *Service
}

// NewHandler creates a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Confirm handles POST /api/bookings/confirm.
func (h *Handler) Confirm(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return handlers.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	res, err := h.service.Confirm(ctx, req)
	if errors.Is(err, ErrMissingParams) {
		return handlers.JSONError(c, http.StatusBadRequest, "Missing required parameters")
	}
	if err != nil {
		middleware.FromContext(ctx).Error("Error confirming booking", "eventID", req.EventID, "error", err)
		return handlers.JSONError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// Verify handles GET /verify/:code.
func (h *Handler) Verify(c echo.Context) error {
	b, err := h.service.Verify(c.Request().Context(), c.Param("code"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// QRCode handles GET /api/bookings/:code/qr.
func (h *Handler) QRCode(c echo.Context) error {
	f, err := h.service.QRCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return handlers.JSONError(c, http.StatusNotFound, "QR code not found")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType, "image/png")
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), f)
	return err
}
