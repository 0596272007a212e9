package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	err      error
	calls    int
}

func (f *fakeSource) ListByEvent(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.ChatMessage(nil), f.messages...), nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func at(minute int) time.Time {
	return time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC)
}

func TestWatcher_Check_LongAnnouncement(t *testing.T) {
	clock := &fakeClock{t: at(0)}
	source := &fakeSource{messages: []domain.ChatMessage{
		{ID: "a1", EventID: "event:1", Type: domain.MessageAnnouncement, Content: strings.Repeat("A", 150), CreatedAt: at(5)},
	}}
	w := NewWatcher(source, "event:1", nil, WithClock(clock.Now), WithLogger(quiet))
	assert.Equal(t, at(0), w.Mark())

	clock.Set(at(10))
	n, err := w.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 1, n.Count)
	assert.Equal(t, strings.Repeat("A", 100)+"...", n.Description)
	assert.Equal(t, "/app/events/event:1/chat", n.ActionURL)
	assert.Equal(t, at(10), w.Mark())

	n, err = w.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, n, "immediate re-check finds nothing new")
}

func TestWatcher_Check_OnlyNewAnnouncements(t *testing.T) {
	clock := &fakeClock{t: at(10)}
	source := &fakeSource{messages: []domain.ChatMessage{
		{ID: "old", Type: domain.MessageAnnouncement, Content: "old", CreatedAt: at(5)},
		{ID: "same", Type: domain.MessageAnnouncement, Content: "same", CreatedAt: at(10)},
		{ID: "q", Type: domain.MessageQuestion, Content: "q", CreatedAt: at(11)},
		{ID: "n1", Type: domain.MessageAnnouncement, Content: "first", CreatedAt: at(12)},
		{ID: "n2", Type: domain.MessageAnnouncement, Content: "second", CreatedAt: at(13)},
	}}
	w := NewWatcher(source, "event:1", nil, WithClock(clock.Now), WithLogger(quiet))

	clock.Set(at(20))
	n, err := w.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 2, n.Count)
	assert.Equal(t, "first", n.Description)
	assert.Equal(t, "2 new announcements", n.Title)
}

func TestWatcher_Check_NoAnnouncementStillAdvances(t *testing.T) {
	clock := &fakeClock{t: at(0)}
	source := &fakeSource{messages: []domain.ChatMessage{
		{ID: "t", Type: domain.MessageText, Content: "hi", CreatedAt: at(1)},
	}}
	w := NewWatcher(source, "event:1", nil, WithClock(clock.Now), WithLogger(quiet))

	clock.Set(at(2))
	n, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Equal(t, at(2), w.Mark())
}

func TestWatcher_Check_FetchErrorKeepsMark(t *testing.T) {
	clock := &fakeClock{t: at(0)}
	source := &fakeSource{err: errors.New("network down")}
	w := NewWatcher(source, "event:1", nil, WithClock(clock.Now), WithLogger(quiet))

	clock.Set(at(3))
	_, err := w.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, at(0), w.Mark())
}

func TestWatcher_Check_CancelledContextDiscardsResult(t *testing.T) {
	clock := &fakeClock{t: at(0)}
	source := &fakeSource{messages: []domain.ChatMessage{
		{ID: "a", Type: domain.MessageAnnouncement, Content: "x", CreatedAt: at(1)},
	}}
	w := NewWatcher(source, "event:1", nil, WithClock(clock.Now), WithLogger(quiet))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clock.Set(at(2))
	n, err := w.Check(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, n)
	assert.Equal(t, at(0), w.Mark())
}

func TestWatcher_WithMark(t *testing.T) {
	w := NewWatcher(&fakeSource{}, "event:1", nil, WithMark(at(7)), WithClock(func() time.Time { return at(9) }))
	assert.Equal(t, at(7), w.Mark())

	w = NewWatcher(&fakeSource{}, "event:1", nil, WithMark(time.Time{}), WithClock(func() time.Time { return at(9) }))
	assert.Equal(t, at(9), w.Mark())
}

func TestWatcher_Run(t *testing.T) {
	source := &fakeSource{messages: []domain.ChatMessage{
		{ID: "a", Type: domain.MessageAnnouncement, Content: "doors open", CreatedAt: time.Now().Add(time.Hour)},
	}}
	got := make(chan Notification, 1)
	w := NewWatcher(source, "event:1", func(n Notification) {
		select {
		case got <- n:
		default:
		}
	}, WithInterval(10*time.Millisecond), WithLogger(quiet))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case n := <-got:
		assert.Equal(t, "doors open", n.Description)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
