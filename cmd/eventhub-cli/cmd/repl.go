package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/modules/eventchat"
)

const replHelp = `Type a message and press Enter to send it.
  /text            compose plain messages (default)
  /question        compose questions
  /reply <n|id>    reply to a listed message
  /cancel          drop the reply target, keep the draft
  /filter <name>   all, questions, announcements or private
  /list            show the room with the current filter
  /upvote <n|id>   toggle your upvote on a listed message
  /help            show this help
  /quit            leave the chat`

// chatAPI is the part of the HTTP client the REPL uses.
type chatAPI interface {
	View(ctx context.Context, eventID string, filter chat.Filter) (*eventchat.RoomView, error)
	Upvote(ctx context.Context, eventID, messageID string) (domain.UpvoteResult, error)
	Sender(eventID string) chat.SendFunc
}

var errQuit = errors.New("quit")

// syncWriter serialises writes from the REPL and the watcher goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// repl is one interactive chat session. Lines are drafts submitted through
// a chat.Composer; lines starting with a slash are commands.
type repl struct {
	api      chatAPI
	eventID  string
	filter   chat.Filter
	composer *chat.Composer
	out      io.Writer
	listed   []domain.ChatMessage
}

func newREPL(api chatAPI, eventID string, filter chat.Filter, out io.Writer) *repl {
	return &repl{
		api:      api,
		eventID:  eventID,
		filter:   filter,
		composer: chat.NewComposer(api.Sender(eventID)),
		out:      out,
	}
}

// handle processes one input line. It returns errQuit on /quit; other
// errors are meant to be printed and the session continued.
func (r *repl) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return r.send(ctx, line)
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(r.out, replHelp)
	case "/text":
		return r.setType(domain.MessageText)
	case "/question":
		return r.setType(domain.MessageQuestion)
	case "/cancel":
		r.composer.CancelReply()
		fmt.Fprintln(r.out, "Reply cancelled.")
	case "/reply":
		m, err := r.lookup(arg)
		if err != nil {
			return err
		}
		r.composer.ReplyTo(m)
		ref := r.composer.Reply()
		fmt.Fprintf(r.out, "Replying to %s: %q (/cancel to stop)\n", ref.Author, ref.Excerpt)
	case "/filter":
		f, err := chat.ParseFilter(arg)
		if err != nil {
			return fmt.Errorf("%w: choose one of %v", err, chat.Filters)
		}
		r.filter = f
		return r.list(ctx)
	case "/list":
		return r.list(ctx)
	case "/upvote":
		m, err := r.lookup(arg)
		if err != nil {
			return err
		}
		res, err := r.api.Upvote(ctx, r.eventID, m.ID)
		if err != nil {
			return err
		}
		verb := "Removed upvote from"
		if res.HasUpvoted {
			verb = "Upvoted"
		}
		fmt.Fprintf(r.out, "%s message %s (%d upvotes)\n", verb, m.ID, res.Upvotes)
	default:
		return fmt.Errorf("unknown command %s, try /help", command)
	}
	return nil
}

func (r *repl) setType(t domain.MessageType) error {
	if err := r.composer.SetType(t); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Composing %s messages.\n", t)
	return nil
}

func (r *repl) send(ctx context.Context, line string) error {
	r.composer.SetContent(line)
	err := r.composer.Submit(ctx)
	if errors.Is(err, chat.ErrEmptyDraft) {
		return nil
	}
	return err
}

// lookup resolves a 1-based index into the last listing, or a message ID.
func (r *repl) lookup(arg string) (domain.ChatMessage, error) {
	if arg == "" {
		return domain.ChatMessage{}, errors.New("name a message by its number or ID, run /list first")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.listed) {
			return domain.ChatMessage{}, fmt.Errorf("no message #%d in the last listing", n)
		}
		return r.listed[n-1], nil
	}
	for _, m := range r.listed {
		if m.ID == arg {
			return m, nil
		}
	}
	return domain.ChatMessage{}, fmt.Errorf("message %s is not in the last listing", arg)
}

func (r *repl) list(ctx context.Context) error {
	v, err := r.api.View(ctx, r.eventID, r.filter)
	if err != nil {
		return err
	}
	r.listed = v.Messages

	fmt.Fprintf(r.out, "-- %s · %s · %d participants --\n", r.eventID, r.filter, v.ParticipantCount)
	for _, m := range v.Pinned {
		fmt.Fprintf(r.out, "📌 %s: %s\n", m.UserName, m.Content)
	}
	if len(v.Messages) == 0 {
		fmt.Fprintln(r.out, "No messages yet.")
	}
	for i, m := range v.Messages {
		fmt.Fprintf(r.out, "%3d %s\n", i+1, formatMessage(m))
	}
	return nil
}

func formatMessage(m domain.ChatMessage) string {
	var b strings.Builder
	b.WriteString(m.CreatedAt.Local().Format("15:04"))
	b.WriteString(" ")
	b.WriteString(m.UserName)
	if m.IsOrganizer {
		b.WriteString(" (organizer)")
	}
	switch {
	case m.Type == domain.MessageAnnouncement:
		b.WriteString(" [announcement]")
	case m.Type == domain.MessageQuestion:
		fmt.Fprintf(&b, " [question ▲%d]", m.Upvotes)
	}
	if m.IsPrivate {
		fmt.Fprintf(&b, " [private to %s]", m.RecipientName)
	}
	if m.ParentID != "" {
		b.WriteString(" ↪")
	}
	b.WriteString(": ")
	b.WriteString(m.Content)
	return b.String()
}

func printNotification(w io.Writer, n chat.Notification) {
	fmt.Fprintf(w, "🔔 %s: %s\n", n.Title, n.Description)
}
