package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/eventhub/internal/domain"
)

const (
	DefaultPollInterval = 30 * time.Second
	descriptionLen      = 100
)

// MessageSource fetches the messages of a room.
type MessageSource interface {
	ListByEvent(ctx context.Context, eventID string) ([]domain.ChatMessage, error)
}

// Notification summarises the announcements found in one watcher cycle.
type Notification struct {
	EventID     string `json:"eventId"`
	Count       int    `json:"count"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionURL   string `json:"actionUrl"`
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithInterval sets the polling cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) { w.now = now }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithActionURL sets the link attached to notifications.
func WithActionURL(url string) WatcherOption {
	return func(w *Watcher) { w.actionURL = url }
}

// WithMark starts the watcher from a previously stored mark instead of its
// activation time. A zero time is ignored.
func WithMark(t time.Time) WatcherOption {
	return func(w *Watcher) {
		if !t.IsZero() {
			w.mark = t
		}
	}
}

// Watcher polls a room and raises a notification when announcements newer
// than its last-checked mark appear.
//
// The mark advances to the current time after every successful cycle, so an
// announcement stored between the fetch and the advance is not reported.
type Watcher struct {
	source    MessageSource
	eventID   string
	notify    func(Notification)
	interval  time.Duration
	actionURL string
	now       func() time.Time
	logger    *slog.Logger

	mu   sync.Mutex
	mark time.Time
}

// NewWatcher creates a watcher for eventID. notify receives every
// notification raised by Run; it may be nil when only Check is used.
func NewWatcher(source MessageSource, eventID string, notify func(Notification), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:   source,
		eventID:  eventID,
		notify:   notify,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.mark.IsZero() {
		w.mark = w.now()
	}
	if w.actionURL == "" {
		w.actionURL = fmt.Sprintf("/app/events/%s/chat", eventID)
	}
	return w
}

// Mark returns the last-checked time.
func (w *Watcher) Mark() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mark
}

// Interval returns the polling cadence.
func (w *Watcher) Interval() time.Duration { return w.interval }

// Run polls until ctx is cancelled. The first cycle runs one interval after
// Run is called.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.Check(ctx)
			if err != nil || n == nil || w.notify == nil {
				continue
			}
			w.notify(*n)
		}
	}
}

// Check runs one cycle. It returns nil when no new announcement was found.
// On a fetch error the mark is kept and the error returned. Results that
// arrive after ctx is cancelled are discarded.
func (w *Watcher) Check(ctx context.Context) (*Notification, error) {
	messages, err := w.source.ListByEvent(ctx, w.eventID)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		w.logger.Warn("chat watcher fetch failed", "eventID", w.eventID, "error", err)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []domain.ChatMessage
	for _, m := range messages {
		if m.Type == domain.MessageAnnouncement && m.CreatedAt.After(w.mark) {
			fresh = append(fresh, m)
		}
	}
	w.mark = w.now()

	if len(fresh) == 0 {
		return nil, nil
	}
	return &Notification{
		EventID:     w.eventID,
		Count:       len(fresh),
		Title:       notificationTitle(len(fresh)),
		Description: truncate(fresh[0].Content, descriptionLen),
		ActionURL:   w.actionURL,
	}, nil
}

func notificationTitle(n int) string {
	if n == 1 {
		return "New announcement"
	}
	return fmt.Sprintf("%d new announcements", n)
}
