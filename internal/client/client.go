// Package client talks to the eventhub HTTP API on behalf of a logged-in
// user. It is what the terminal chat uses in place of the server stores.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/modules/eventchat"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is an authenticated API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	dialer  *websocket.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL using the bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func chatPath(eventID string) string {
	return "/app/events/" + url.PathEscape(eventID) + "/chat"
}

// View returns the room as the server renders it for the token's user.
func (c *Client) View(ctx context.Context, eventID string, filter chat.Filter) (*eventchat.RoomView, error) {
	path := chatPath(eventID) + "/messages?filter=" + url.QueryEscape(string(filter))
	var v eventchat.RoomView
	if err := c.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByEvent returns every message the user may see, oldest first. It
// makes Client a chat.MessageSource.
func (c *Client) ListByEvent(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	v, err := c.View(ctx, eventID, chat.FilterAll)
	if err != nil {
		return nil, err
	}
	return v.Messages, nil
}

// Send posts a draft to the room.
func (c *Client) Send(ctx context.Context, eventID string, d chat.Draft) (*domain.ChatMessage, error) {
	in := eventchat.PostInput{Content: d.Content, Type: d.Type}
	if d.Reply != nil {
		in.ParentID = d.Reply.MessageID
	}
	var created domain.ChatMessage
	if err := c.do(ctx, http.MethodPost, chatPath(eventID)+"/messages", in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Sender adapts Send to a chat.SendFunc bound to one room.
func (c *Client) Sender(eventID string) chat.SendFunc {
	return func(ctx context.Context, d chat.Draft) error {
		_, err := c.Send(ctx, eventID, d)
		return err
	}
}

// Upvote toggles the user's upvote on a message.
func (c *Client) Upvote(ctx context.Context, eventID, messageID string) (domain.UpvoteResult, error) {
	var res domain.UpvoteResult
	path := chatPath(eventID) + "/messages/" + url.PathEscape(messageID) + "/upvote"
	err := c.do(ctx, http.MethodPost, path, nil, &res)
	return res, err
}

// Join adds the user to the room's participants.
func (c *Client) Join(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, chatPath(eventID)+"/join", nil, nil)
}

// Notifications streams the room's announcement notifications over the
// server WebSocket until ctx is cancelled or the connection drops.
func (c *Client) Notifications(ctx context.Context, eventID string, fn func(chat.Notification)) error {
	u, err := url.Parse(c.baseURL + chatPath(eventID) + "/ws")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)
	conn, res, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if res != nil {
			return &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return fmt.Errorf("dial notifications: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		var n chat.Notification
		if err := conn.ReadJSON(&n); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read notification: %w", err)
		}
		fn(n)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&e) != nil || e.Error == "" {
			e.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: e.Error}
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
