package eventchat

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/handlers"
	"github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/view"
)

// Handler serves the event chat routes. Every route answers JSON, and htmx
// requests get HTML fragments instead.
type Handler struct {
	service  *Service
	interval time.Duration
	origins  []string
	now      func() time.Time
}

// NewHandler creates a Handler. interval is the cadence used by the page's
// polling and by per-connection watchers. origins are extra host patterns
// allowed to open the WebSocket; the request's own host is always allowed.
func NewHandler(service *Service, interval time.Duration, origins ...string) *Handler {
	if interval <= 0 {
		interval = chat.DefaultPollInterval
	}
	return &Handler{service: service, interval: interval, origins: origins, now: time.Now}
}

// originPatterns turns the public base URL into a WebSocket origin pattern.
func originPatterns(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

// Page renders GET "" for participants, or the join form for everyone else.
func (h *Handler) Page(c echo.Context) error {
	eventID := param(c, "eventID")
	f, err := chat.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return handlers.RespondError(c, err)
	}

	v, err := h.service.View(c.Request().Context(), middleware.Session(c), eventID, f)
	if errors.Is(err, chat.ErrNotInRoom) {
		return view.Page(c, "Event chat", joinPage(eventID))
	}
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return view.Page(c, "Event chat", roomPage(v, h.interval))
}

// CreateRoom handles POST "". The caller becomes the room's organizer.
func (h *Handler) CreateRoom(c echo.Context) error {
	info, err := h.service.Create(c.Request().Context(), middleware.Session(c), param(c, "eventID"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, chatPath(info.EventID))
	}
	return c.JSON(http.StatusCreated, info)
}

// Join handles POST /join.
func (h *Handler) Join(c echo.Context) error {
	eventID := param(c, "eventID")
	if err := h.service.Join(c.Request().Context(), middleware.Session(c), eventID); err != nil {
		return handlers.RespondError(c, err)
	}
	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, chatPath(eventID))
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages handles GET /messages?filter=.
func (h *Handler) Messages(c echo.Context) error {
	f, err := chat.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	v, err := h.service.View(c.Request().Context(), middleware.Session(c), param(c, "eventID"), f)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	if isHTMX(c) {
		return view.Render(c, http.StatusOK, messageList(chatPath(v.EventID), v.Filter, v.Messages, v.IsOrganizer))
	}
	return c.JSON(http.StatusOK, v)
}

// PostMessage handles POST /messages.
func (h *Handler) PostMessage(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return handlers.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	session := middleware.Session(c)
	eventID := param(c, "eventID")
	msg, err := h.service.Post(ctx, session, eventID, in)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	if isHTMX(c) {
		// The composer includes the list's active filter.
		f, err := chat.ParseFilter(c.FormValue("filter"))
		if err != nil {
			f = chat.FilterAll
		}
		v, err := h.service.View(ctx, session, eventID, f)
		if err != nil {
			return handlers.RespondError(c, err)
		}
		return view.Render(c, http.StatusCreated, messageList(chatPath(eventID), v.Filter, v.Messages, v.IsOrganizer))
	}
	return c.JSON(http.StatusCreated, msg)
}

// Upvote handles POST /messages/:messageID/upvote and answers the stored
// result of the toggle.
func (h *Handler) Upvote(c echo.Context) error {
	eventID := param(c, "eventID")
	res, err := h.service.Upvote(c.Request().Context(), middleware.Session(c), eventID, param(c, "messageID"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	if isHTMX(c) {
		return view.Render(c, http.StatusOK, upvoteButton(chatPath(eventID), res))
	}
	return c.JSON(http.StatusOK, res)
}

// Pin handles POST /pins/:messageID.
func (h *Handler) Pin(c echo.Context) error {
	return h.setPinned(c, true)
}

// Unpin handles DELETE /pins/:messageID.
func (h *Handler) Unpin(c echo.Context) error {
	return h.setPinned(c, false)
}

func (h *Handler) setPinned(c echo.Context, pinned bool) error {
	err := h.service.SetPinned(c.Request().Context(), middleware.Session(c), param(c, "eventID"), param(c, "messageID"), pinned)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func isForm(c echo.Context) bool {
	return !isHTMX(c) && c.Request().Header.Get(echo.HeaderContentType) == echo.MIMEApplicationForm
}

// param returns a path parameter with any percent-encoding removed.
func param(c echo.Context, name string) string {
	v := c.Param(name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
