package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EntriesChanged is the event type published after every successful write.
const EntriesChanged = "entries.changed"

const entryChannelPrefix = "entries:user:"

// EntryEvent tells a user's open clients to refetch their entry list.
type EntryEvent struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"` // created, updated or deleted
	EntryID   string    `json:"entry_id"`
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher delivers entry events.
type EventPublisher interface {
	Publish(ctx context.Context, ev EntryEvent) error
}

// RedisEntryEvents fans entry events out over Redis pub/sub, one channel
// per user, so every server instance can notify its own websockets.
type RedisEntryEvents struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisEntryEvents(client *redis.Client, log *zap.Logger) *RedisEntryEvents {
	return &RedisEntryEvents{client: client, log: log}
}

func entryChannel(userID string) string {
	return entryChannelPrefix + userID
}

func (e *RedisEntryEvents) Publish(ctx context.Context, ev EntryEvent) error {
	if ev.Type == "" {
		ev.Type = EntriesChanged
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := e.client.Publish(ctx, entryChannel(ev.UserID), data).Err(); err != nil {
		return fmt.Errorf("publish entry event: %w", err)
	}
	return nil
}

// Subscribe streams userID's events until ctx is done. The channel is
// closed when the subscription ends.
func (e *RedisEntryEvents) Subscribe(ctx context.Context, userID string) (<-chan EntryEvent, error) {
	pubsub := e.client.Subscribe(ctx, entryChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe entry events: %w", err)
	}

	out := make(chan EntryEvent, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					e.log.Warn("entry event subscription ended", zap.String("user_id", userID), zap.Error(err))
				}
				return
			}
			var ev EntryEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				e.log.Warn("dropping malformed entry event", zap.Error(err))
				continue
			}
			ev.UserID = userID
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
