package eventchat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Post(t *testing.T) {
	ctx := context.Background()

	t.Run("stores, publishes and returns the message", func(t *testing.T) {
		svc, messages, _, pub := seededService()
		msg, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "  Where is hall B?  ", Type: domain.MessageQuestion})
		require.NoError(t, err)

		assert.Equal(t, "Where is hall B?", msg.Content)
		assert.Equal(t, domain.MessageQuestion, msg.Type)
		assert.Equal(t, "Ann", msg.UserName)
		assert.False(t, msg.IsOrganizer)
		assert.Equal(t, 1, messages.creates)

		published := pub.published()
		require.Len(t, published, 1)
		assert.Equal(t, MessageCreated.Name(), published[0].Topic)
		assert.Equal(t, attendee, published[0].UserID)
		decoded, err := MessageCreated.Decode(published[0])
		require.NoError(t, err)
		assert.Equal(t, msg.ID, decoded.ID)
	})

	t.Run("blank content never reaches the store", func(t *testing.T) {
		svc, messages, _, pub := seededService()
		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: " \n\t "})
		assert.ErrorIs(t, err, chat.ErrEmptyDraft)
		assert.Zero(t, messages.creates)
		assert.Empty(t, pub.published())
	})

	t.Run("only organizers announce", func(t *testing.T) {
		svc, _, _, _ := seededService()
		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "Doors open", Type: domain.MessageAnnouncement})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		msg, err := svc.Post(ctx, sessionFor(organizer, "Org"), testEvent, PostInput{Content: "Doors open", Type: domain.MessageAnnouncement})
		require.NoError(t, err)
		assert.True(t, msg.IsOrganizer)
	})

	t.Run("system messages are not accepted from clients", func(t *testing.T) {
		svc, _, _, _ := seededService()
		_, err := svc.Post(ctx, sessionFor(organizer, "Org"), testEvent, PostInput{Content: "x", Type: domain.MessageSystem})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("outsiders cannot post", func(t *testing.T) {
		svc, messages, _, _ := seededService()
		_, err := svc.Post(ctx, sessionFor(outsider, "Out"), testEvent, PostInput{Content: "hi"})
		assert.ErrorIs(t, err, chat.ErrNotInRoom)
		assert.Zero(t, messages.creates)
	})

	t.Run("replies must target a message in the room", func(t *testing.T) {
		svc, _, _, _ := seededService()
		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "re", ParentID: "chat_message:missing"})
		assert.ErrorIs(t, err, chat.ErrUnknownParent)
	})

	t.Run("replies cannot thread onto hidden private messages", func(t *testing.T) {
		svc, messages, _, _ := seededService()
		messages.add(domain.ChatMessage{ID: "p1", EventID: testEvent, UserID: organizer, Content: "vip only", Type: domain.MessageText, IsPrivate: true, RecipientID: "user:vip"})
		messages.add(domain.ChatMessage{ID: "p2", EventID: testEvent, UserID: organizer, Content: "for ann", Type: domain.MessageText, IsPrivate: true, RecipientID: attendee})

		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "re", ParentID: "p1"})
		assert.ErrorIs(t, err, domain.ErrUnknownParent)
		assert.Equal(t, 0, messages.creates)

		msg, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "thanks", ParentID: "p2"})
		require.NoError(t, err)
		assert.Equal(t, "p2", msg.ParentID)
	})

	t.Run("private messages go to participants only", func(t *testing.T) {
		svc, _, _, _ := seededService()
		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "psst", RecipientID: outsider})
		assert.ErrorIs(t, err, domain.ErrValidation)

		msg, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "psst", RecipientID: organizer, RecipientName: "Org"})
		require.NoError(t, err)
		assert.True(t, msg.IsPrivate)
	})

	t.Run("publish failures do not fail the post", func(t *testing.T) {
		svc, messages, _, pub := seededService()
		pub.err = errors.New("bus closed")
		_, err := svc.Post(ctx, sessionFor(attendee, "Ann"), testEvent, PostInput{Content: "hi"})
		require.NoError(t, err)
		assert.Equal(t, 1, messages.creates)
	})
}

func TestService_View(t *testing.T) {
	ctx := context.Background()
	svc, messages, _, _ := seededService()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	messages.add(domain.ChatMessage{ID: "m1", EventID: testEvent, UserID: organizer, Content: "Welcome", Type: domain.MessageAnnouncement, CreatedAt: base})
	messages.add(domain.ChatMessage{ID: "m2", EventID: testEvent, UserID: attendee, Content: "When?", Type: domain.MessageQuestion, CreatedAt: base.Add(time.Minute), UpvotedBy: []string{organizer}, Upvotes: 1})
	messages.add(domain.ChatMessage{ID: "m3", EventID: testEvent, UserID: organizer, Content: "secret", Type: domain.MessageText, CreatedAt: base.Add(2 * time.Minute), IsPrivate: true, RecipientID: "user:someone"})

	v, err := svc.View(ctx, sessionFor(attendee, "Ann"), testEvent, chat.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, messageIDs(v.Messages), "private messages of others are hidden")
	assert.False(t, v.IsOrganizer)
	assert.Equal(t, 2, v.ParticipantCount)

	v, err = svc.View(ctx, sessionFor(organizer, "Org"), testEvent, chat.FilterQuestions)
	require.NoError(t, err)
	require.Len(t, v.Messages, 1)
	assert.True(t, v.Messages[0].HasUpvoted)
	assert.True(t, v.IsOrganizer)

	_, err = svc.View(ctx, sessionFor(outsider, "Out"), testEvent, chat.FilterAll)
	assert.ErrorIs(t, err, chat.ErrNotInRoom)

	_, err = svc.View(ctx, domain.Anonymous, testEvent, chat.FilterAll)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = svc.View(ctx, sessionFor(attendee, "Ann"), "event:missing", chat.FilterAll)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Upvote(t *testing.T) {
	ctx := context.Background()
	svc, messages, _, _ := seededService()
	messages.add(domain.ChatMessage{ID: "m1", EventID: testEvent, UserID: organizer, Content: "Q", Type: domain.MessageQuestion})
	messages.add(domain.ChatMessage{ID: "m2", EventID: testEvent, UserID: organizer, Content: "hidden", Type: domain.MessageText, IsPrivate: true, RecipientID: "user:someone"})

	res, err := svc.Upvote(ctx, sessionFor(attendee, "Ann"), testEvent, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.UpvoteResult{MessageID: "m1", Upvotes: 1, HasUpvoted: true}, res)

	res, err = svc.Upvote(ctx, sessionFor(attendee, "Ann"), testEvent, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.UpvoteResult{MessageID: "m1", Upvotes: 0, HasUpvoted: false}, res)

	_, err = svc.Upvote(ctx, sessionFor(attendee, "Ann"), testEvent, "m2")
	assert.ErrorIs(t, err, domain.ErrUnknownMessage)

	_, err = svc.Upvote(ctx, sessionFor(attendee, "Ann"), testEvent, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownMessage)
}

func TestService_Pins(t *testing.T) {
	ctx := context.Background()
	svc, messages, rooms, _ := seededService()
	messages.add(domain.ChatMessage{ID: "m1", EventID: testEvent, UserID: organizer, Content: "Agenda", Type: domain.MessageAnnouncement})

	err := svc.SetPinned(ctx, sessionFor(attendee, "Ann"), testEvent, "m1", true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.SetPinned(ctx, sessionFor(organizer, "Org"), testEvent, "m1", true))
	assert.Equal(t, []string{"m1"}, rooms.rooms[testEvent].Pinned)

	v, err := svc.View(ctx, sessionFor(attendee, "Ann"), testEvent, chat.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, messageIDs(v.Pinned))

	assert.ErrorIs(t, svc.SetPinned(ctx, sessionFor(organizer, "Org"), testEvent, "missing", true), domain.ErrUnknownMessage)

	require.NoError(t, svc.SetPinned(ctx, sessionFor(organizer, "Org"), testEvent, "m1", false))
	assert.Empty(t, rooms.rooms[testEvent].Pinned)
}

func TestService_CreateAndJoin(t *testing.T) {
	ctx := context.Background()
	svc, _, rooms, _ := seededService()

	info, err := svc.Create(ctx, sessionFor(organizer, "Org"), "event:new")
	require.NoError(t, err)
	assert.Equal(t, []string{organizer}, info.Organizers)

	_, err = svc.Create(ctx, sessionFor(organizer, "Org"), "event:new")
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.Join(ctx, sessionFor(outsider, "Out"), "event:new"))
	assert.Contains(t, rooms.rooms["event:new"].Participants, outsider)

	assert.ErrorIs(t, svc.Join(ctx, sessionFor(outsider, "Out"), "event:missing"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Join(ctx, domain.Anonymous, "event:new"), domain.ErrAuthRequired)
}

func TestService_SourceForHidesPrivateAnnouncements(t *testing.T) {
	ctx := context.Background()
	svc, messages, _, _ := seededService()
	messages.add(domain.ChatMessage{ID: "m1", EventID: testEvent, UserID: organizer, Content: "all", Type: domain.MessageAnnouncement})
	messages.add(domain.ChatMessage{ID: "m2", EventID: testEvent, UserID: organizer, Content: "vip", Type: domain.MessageAnnouncement, IsPrivate: true, RecipientID: "user:vip"})

	got, err := svc.SourceFor(sessionFor(attendee, "Ann")).ListByEvent(ctx, testEvent)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, messageIDs(got))

	got, err = svc.SourceFor(sessionFor("user:vip", "Vip")).ListByEvent(ctx, testEvent)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, messageIDs(got))
}

func messageIDs(messages []domain.ChatMessage) []string {
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	return ids
}
