// Package notifications publishes post lifecycle events into Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

// PostEventsChannel is the pub/sub channel carrying post events.
const PostEventsChannel = "postboard:posts:events"

// Post event types.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// PostEvent is the JSON envelope published for each mutation.
type PostEvent struct {
	Type       string       `json:"type"`
	PostID     uint         `json:"post_id"`
	Post       *models.Post `json:"payload,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Notifier provides helpers to publish post events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostEvent sends one event. Deleted posts carry only the id.
func (n *Notifier) PublishPostEvent(ctx context.Context, eventType string, post *models.Post) error {
	if n == nil || n.rdb == nil || post == nil {
		return nil
	}

	event := PostEvent{Type: eventType, PostID: post.ID, OccurredAt: time.Now().UTC()}
	if eventType != EventPostDeleted {
		event.Post = post
	}
	payload, err := json.Marshal(event)
	if err != nil {
		observability.PostEventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("marshal post event: %w", err)
	}

	if err := n.rdb.Publish(ctx, PostEventsChannel, payload).Err(); err != nil {
		observability.PostEventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	observability.PostEventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// Subscribe delivers decoded post events to onEvent until ctx is cancelled.
// Malformed payloads are logged and skipped.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(PostEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, PostEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", PostEventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event PostEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					middleware.Logger.Warn("dropping malformed post event", "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in post event subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onEvent(event)
				}()
			}
		}
	}()

	return nil
}
