package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channel = "janpath:events"

// RedisBridge routes Publish through a Redis pub/sub channel so that every
// API instance's hub sees every event, not just the one that handled the
// write. Events published here come back through Listen and are dispatched
// into the local hub.
type RedisBridge struct {
	hub *Hub
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisBridge(hub *Hub, addr string, log zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		hub: hub,
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log,
	}
}

func (b *RedisBridge) Publish(topics ...string) {
	ctx := context.Background()
	for _, t := range topics {
		payload, err := json.Marshal(Event{ID: uuid.NewString(), Topic: t})
		if err != nil {
			continue
		}
		if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			// Degrade to local dispatch rather than losing the event.
			b.log.Error().Err(err).Str("topic", t).Msg("redis publish failed, dispatching locally")
			b.hub.Publish(t)
		}
	}
}

// Listen blocks pumping Redis messages into the local hub until ctx is
// cancelled. Run it in its own goroutine.
func (b *RedisBridge) Listen(ctx context.Context) {
	pubsub := b.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Error().Err(err).Msg("bad event payload")
				continue
			}
			b.hub.Dispatch(e)
		}
	}
}

func (b *RedisBridge) Close() error { return b.rdb.Close() }
