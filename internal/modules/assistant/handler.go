package assistant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
)

const apologyMessage = "I'm sorry, I'm having trouble responding right now. Please try again later."

// ChatRequest is the body of POST /api/assistant/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
	History []Turn `json:"history"`
}

// FailureResponse is returned when every provider failed.
type FailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Source  string `json:"source"`
}

// Handler serves the assistant endpoint.
type Handler struct {
	service *Service
}

// NewHandler creates a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Chat handles POST /chat.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return handlers.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return handlers.JSONError(c, http.StatusBadRequest, "Message is required")
	}

	ctx := c.Request().Context()
	reply, err := h.service.Chat(ctx, req.Message, req.Context, req.History)
	if err != nil {
		middleware.FromContext(ctx).Error("Assistant chat failed", "error", err)
		return c.JSON(http.StatusInternalServerError, FailureResponse{
			Message: apologyMessage,
			Error:   lastError(err).Error(),
			Source:  "error",
		})
	}
	return c.JSON(http.StatusOK, reply)
}

// lastError strips the chain prefix so clients see the provider's message.
func lastError(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
