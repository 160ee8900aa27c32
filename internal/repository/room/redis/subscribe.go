package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tuneroom/client/internal/repository/room"
)

type subscription struct {
	pubsub *redis.PubSub
	events chan room.ChangeEvent
	done   chan struct{}
}

func (s *subscription) Events() <-chan room.ChangeEvent {
	return s.events
}

// Close tears the subscription down and blocks until the pump goroutine has
// exited, so no event is delivered after Close returns.
func (s *subscription) Close() error {
	err := s.pubsub.Close()
	<-s.done

	return err
}

// Subscribe opens the change feed for the given room. Messages published on
// the room channel by one writer arrive in the order they were published;
// no ordering is guaranteed between writers.
func (r repo) Subscribe(ctx context.Context, roomId string) (room.Subscription, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)

	pubsub := r.rc.Subscribe(ctx, r.getChangesChannel(roomId))

	// confirm the subscription before returning so no write committed after
	// Subscribe returns can be missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan room.ChangeEvent, 16),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.events)

		for msg := range pubsub.Channel() {
			var event room.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn("failed to unmarshal change event", "error", err)
				continue
			}

			sub.events <- event
		}
	}()

	return sub, nil
}
