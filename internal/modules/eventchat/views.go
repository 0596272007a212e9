package eventchat

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

var titleCase = cases.Title(language.English)

const filterInputID = "chat-filter"

func chatPath(eventID string) string {
	return "/app/events/" + url.PathEscape(eventID) + "/chat"
}

// roomPage renders the full chat page. The message list polls itself and the
// notification endpoint every interval.
func roomPage(v *RoomView, interval time.Duration) cmp.Node {
	base := chatPath(v.EventID)
	poll := fmt.Sprintf("every %dms", interval.Milliseconds())
	return g.Section(g.ID("event-chat"),
		g.H1(cmp.Text("Event chat")),
		g.P(g.Class("participants"), cmp.Textf("%d participants", v.ParticipantCount)),
		filterBar(base, v.Filter),
		pinnedList(v.Pinned),
		g.Div(g.ID("chat-messages"),
			hx.Get(base+"/messages"),
			cmp.Attr("hx-include", "#"+filterInputID),
			hx.Trigger(poll),
			hx.Swap("innerHTML"),
			messageList(base, v.Filter, v.Messages, v.IsOrganizer),
		),
		composerForm(base, v.IsOrganizer),
		g.Div(
			hx.Get(base+"/notifications"),
			hx.Trigger("load, "+poll),
			hx.Target("#toasts"),
			hx.Swap("beforeend"),
		),
	)
}

// joinPage is shown to signed-in users who are not yet participants.
func joinPage(eventID string) cmp.Node {
	return g.Section(
		g.H1(cmp.Text("Event chat")),
		g.P(cmp.Text("You are not a participant of this chat yet.")),
		g.Form(g.Method("post"), g.Action(chatPath(eventID)+"/join"),
			g.Button(g.Type("submit"), cmp.Text("Join the chat")),
		),
	)
}

func filterBar(base string, active chat.Filter) cmp.Node {
	return g.Nav(g.Class("chat-filters"),
		cmp.Map(chat.Filters, func(f chat.Filter) cmp.Node {
			return g.Button(
				g.Type("button"),
				cmp.If(f == active, g.Class("active")),
				hx.Get(base+"/messages?filter="+string(f)),
				hx.Target("#chat-messages"),
				cmp.Text(titleCase.String(string(f))),
			)
		}),
	)
}

func pinnedList(pinned []domain.ChatMessage) cmp.Node {
	if len(pinned) == 0 {
		return nil
	}
	return g.Aside(g.Class("pinned"),
		g.H2(cmp.Text("Pinned")),
		g.Ul(cmp.Map(pinned, func(m domain.ChatMessage) cmp.Node {
			return g.Li(g.Strong(cmp.Text(m.UserName)), cmp.Text(": "+m.Content))
		})),
	)
}

// messageList renders the messages fragment swapped in by htmx. It carries
// the active filter so polls and posts keep the selected tab.
func messageList(base string, f chat.Filter, messages []domain.ChatMessage, organizer bool) cmp.Node {
	active := g.Input(g.Type("hidden"), g.ID(filterInputID), g.Name("filter"), g.Value(string(f)))
	if len(messages) == 0 {
		return cmp.Group{active, g.P(g.Class("empty"), cmp.Text("No messages yet."))}
	}
	return cmp.Group{active, g.Ul(g.Class("messages"),
		cmp.Map(messages, func(m domain.ChatMessage) cmp.Node {
			return messageItem(base, m, organizer)
		}),
	)}
}

func messageItem(base string, m domain.ChatMessage, organizer bool) cmp.Node {
	return g.Li(g.ID("message-"+m.ID), g.Class("message message-"+string(m.Type)),
		g.Div(g.Class("meta"),
			g.Strong(cmp.Text(m.UserName)),
			cmp.If(m.IsOrganizer, g.Span(g.Class("badge"), cmp.Text("Organizer"))),
			cmp.If(m.Type != domain.MessageText, g.Span(g.Class("badge"), cmp.Text(titleCase.String(string(m.Type))))),
			cmp.If(m.IsPrivate, g.Span(g.Class("badge"), cmp.Text("Private to "+m.RecipientName))),
			g.Span(g.Class("time"), g.Title(m.CreatedAt.Format(time.RFC3339)), cmp.Text(m.CreatedAt.Format("15:04"))),
		),
		g.P(cmp.Text(m.Content)),
		upvoteButton(base, domain.UpvoteResult{MessageID: m.ID, Upvotes: m.Upvotes, HasUpvoted: m.HasUpvoted}),
		cmp.If(organizer, g.Button(g.Type("button"),
			hx.Post(base+"/pins/"+url.PathEscape(m.ID)), hx.Swap("none"),
			cmp.Text("Pin"),
		)),
	)
}

// upvoteButton renders the stored upvote state of one message.
func upvoteButton(base string, r domain.UpvoteResult) cmp.Node {
	return g.Button(g.Type("button"), g.ID("upvote-"+r.MessageID),
		cmp.If(r.HasUpvoted, g.Class("upvoted")),
		hx.Post(base+"/messages/"+url.PathEscape(r.MessageID)+"/upvote"),
		hx.Swap("outerHTML"),
		cmp.Text("▲ "+strconv.Itoa(r.Upvotes)),
	)
}

func composerForm(base string, organizer bool) cmp.Node {
	types := []domain.MessageType{domain.MessageText, domain.MessageQuestion}
	if organizer {
		types = append(types, domain.MessageAnnouncement)
	}
	return g.Form(g.Class("composer"),
		hx.Post(base+"/messages"),
		cmp.Attr("hx-include", "#"+filterInputID),
		hx.Target("#chat-messages"),
		hx.Swap("innerHTML"),
		g.Textarea(g.Name("content"), g.Required(), g.Placeholder("Write a message")),
		g.Select(g.Name("type"),
			cmp.Map(types, func(t domain.MessageType) cmp.Node {
				return g.Option(g.Value(string(t)), cmp.Text(titleCase.String(string(t))))
			}),
		),
		g.Button(g.Type("submit"), cmp.Text("Send")),
	)
}

// toast renders a notification into the page's toast area.
func toast(n chat.Notification) cmp.Node {
	return g.Div(g.Class("toast"), g.Role("status"),
		g.Strong(cmp.Text(n.Title)),
		g.P(cmp.Text(n.Description)),
		g.A(g.Href(n.ActionURL), cmp.Text("Open chat")),
	)
}
