package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event binds a topic name to its payload type.
type Event[T any] struct {
	name string
}

// NewEvent declares a typed topic.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{name: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.name
}

// Decode unmarshals the payload of msg into T.
func (e Event[T]) Decode(msg Message) (T, error) {
	var v T
	if msg.Topic != e.name {
		return v, fmt.Errorf("message topic %q is not %q", msg.Topic, e.name)
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", e.name, err)
	}
	return v, nil
}

// Publish sends payload on event's topic on behalf of userID.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.name, err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.name,
		UserID:  userID,
		Payload: data,
	})
}

// Subscribe registers a handler that receives decoded payloads of event.
// Messages that fail to decode are logged by the bridge and dropped.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, userID string, payload T) error) error {
	return s.Subscribe(ctx, event.name, func(ctx context.Context, msg Message) error {
		v, err := event.Decode(msg)
		if err != nil {
			return err
		}
		return handler(ctx, msg.UserID, v)
	})
}
