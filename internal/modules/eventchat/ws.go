package eventchat

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
)

const wsWriteTimeout = 5 * time.Second

// ServeWS handles GET /ws. A watcher bound to the connection pushes every
// notification as JSON until the client goes away.
func (h *Handler) ServeWS(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Session(c)
	eventID := param(c, "eventID")
	logger := middleware.FromContext(ctx).With("eventID", eventID, "userID", viewer.UserID)

	if _, err := h.service.participantRoom(ctx, viewer, eventID); err != nil {
		return handlers.RespondError(c, err)
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		logger.Error("Failed to upgrade notifications WebSocket", "error", err)
		return nil
	}
	defer conn.CloseNow()

	// CloseRead discards client frames and cancels the context on disconnect.
	ctx = conn.CloseRead(ctx)

	w := chat.NewWatcher(h.service.SourceFor(viewer), eventID,
		func(n chat.Notification) {
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			defer cancel()
			if err := wsjson.Write(writeCtx, conn, n); err != nil {
				logger.Debug("Failed to push notification", "error", err)
			}
		},
		chat.WithInterval(h.interval),
		chat.WithClock(h.now),
		chat.WithActionURL(chatPath(eventID)),
		chat.WithLogger(logger),
	)

	logger.Info("Notification watcher connected")
	w.Run(ctx)
	logger.Info("Notification watcher disconnected")

	conn.Close(websocket.StatusNormalClosure, "")
	return nil
}
