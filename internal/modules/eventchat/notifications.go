package eventchat

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/view"
)

const (
	markSessionName = "eventchat-marks"
	markKeyPrefix   = "mark:"

	// maxMarks keeps the marks cookie well below the 4 KB browser limit.
	maxMarks = 16
)

// NotificationResponse is the JSON body of GET /notifications.
type NotificationResponse struct {
	Notification *chat.Notification `json:"notification"`
}

// Notifications handles GET /notifications. It runs one watcher cycle with
// the last-checked mark kept in the caller's cookie session. The first call
// only records the mark.
func (h *Handler) Notifications(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Session(c)
	eventID := param(c, "eventID")

	// Only participants may watch a room.
	if _, err := h.service.participantRoom(ctx, viewer, eventID); err != nil {
		return handlers.RespondError(c, err)
	}

	sess, err := session.Get(markSessionName, c)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	key := markKeyPrefix + eventID
	var mark time.Time
	if v, ok := sess.Values[key].(int64); ok {
		mark = time.Unix(0, v)
	}

	w := chat.NewWatcher(h.service.SourceFor(viewer), eventID, nil,
		chat.WithClock(h.now),
		chat.WithMark(mark),
		chat.WithActionURL(chatPath(eventID)),
		chat.WithLogger(middleware.FromContext(ctx)),
	)

	var n *chat.Notification
	if !mark.IsZero() {
		n, err = w.Check(ctx)
		if err != nil {
			return handlers.RespondError(c, err)
		}
	}

	sess.Values[key] = w.Mark().UnixNano()
	pruneMarks(sess.Values, maxMarks)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		middleware.FromContext(ctx).Warn("Failed to save notification mark", "eventID", eventID, "error", err)
	}

	if isHTMX(c) {
		if n == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return view.Render(c, http.StatusOK, toast(*n))
	}
	return c.JSON(http.StatusOK, NotificationResponse{Notification: n})
}

// pruneMarks drops the oldest marks until at most limit remain.
func pruneMarks(values map[any]any, limit int) {
	type entry struct {
		key  string
		mark int64
	}
	var marks []entry
	for k, v := range values {
		key, ok := k.(string)
		if !ok || !strings.HasPrefix(key, markKeyPrefix) {
			continue
		}
		mark, _ := v.(int64)
		marks = append(marks, entry{key, mark})
	}
	if len(marks) <= limit {
		return
	}
	slices.SortFunc(marks, func(a, b entry) int {
		// Newest first.
		if c := cmp.Compare(b.mark, a.mark); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	for _, e := range marks[limit:] {
		delete(values, e.key)
	}
}
