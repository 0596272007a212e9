package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/eventhub/internal/domain"
)

const replyExcerptLen = 50

// ReplyRef identifies the message a draft answers.
type ReplyRef struct {
	MessageID string `json:"messageId"`
	Author    string `json:"author"`
	Excerpt   string `json:"excerpt"`
}

// Draft is what the composer hands to its send function.
type Draft struct {
	Content string
	Type    domain.MessageType
	Reply   *ReplyRef
}

// SendFunc delivers a draft to the message store.
type SendFunc func(ctx context.Context, d Draft) error

// Composer holds the text being written, its message type and an optional
// reply target. A Composer is owned by a single caller and is not safe for
// concurrent use.
type Composer struct {
	send    SendFunc
	content string
	typ     domain.MessageType
	reply   *ReplyRef
}

// NewComposer returns a composer that submits drafts through send.
func NewComposer(send SendFunc) *Composer {
	return &Composer{send: send, typ: domain.MessageText}
}

// SetContent replaces the draft text.
func (c *Composer) SetContent(s string) { c.content = s }

// Content returns the draft text.
func (c *Composer) Content() string { return c.content }

// SetType selects the message type. Only text and question can be composed.
func (c *Composer) SetType(t domain.MessageType) error {
	if t != domain.MessageText && t != domain.MessageQuestion {
		return fmt.Errorf("cannot compose %q messages", t)
	}
	c.typ = t
	return nil
}

// Type returns the selected message type.
func (c *Composer) Type() domain.MessageType { return c.typ }

// ReplyTo sets m as the reply target.
func (c *Composer) ReplyTo(m domain.ChatMessage) {
	c.reply = &ReplyRef{
		MessageID: m.ID,
		Author:    m.UserName,
		Excerpt:   truncate(m.Content, replyExcerptLen),
	}
}

// Reply returns the current reply target, or nil.
func (c *Composer) Reply() *ReplyRef { return c.reply }

// CancelReply drops the reply target. The draft text is kept.
func (c *Composer) CancelReply() { c.reply = nil }

// Submit sends the draft. A blank draft is left untouched and ErrEmptyDraft
// is returned without calling send. Otherwise send is called once and the
// draft text is cleared whatever it returns; the reply target is cleared
// only on success.
func (c *Composer) Submit(ctx context.Context) error {
	if strings.TrimSpace(c.content) == "" {
		return ErrEmptyDraft
	}
	d := Draft{Content: c.content, Type: c.typ, Reply: c.reply}
	c.content = ""
	if err := c.send(ctx, d); err != nil {
		return err
	}
	c.reply = nil
	return nil
}
