package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRelayChannel = "food-distribution:events"

// RedisRelay mirrors bus events through a Redis pub/sub channel so every
// instance's websocket clients see every change.
type RedisRelay struct {
	client  *redis.Client
	bus     *Bus
	channel string
	log     *zap.Logger
}

func NewRedisRelay(client *redis.Client, bus *Bus, log *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, bus: bus, channel: DefaultRelayChannel, log: log}
}

// Start subscribes to the relay channel and installs the bus forwarder. It
// returns once the subscription is confirmed; relaying stops with ctx.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}

	r.bus.SetForwarder(r.forward)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				r.bus.SetForwarder(nil)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.receive(msg.Payload)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) forward(e Event) {
	if e.Origin != r.bus.Origin() {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		r.log.Warn("failed to encode event for relay", zap.String("type", e.Type), zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			r.log.Warn("failed to relay event", zap.String("type", e.Type), zap.Error(err))
		}
	}()
}

func (r *RedisRelay) receive(payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.log.Warn("dropping malformed relay event", zap.Error(err))
		return
	}
	if e.Origin == r.bus.Origin() {
		return
	}
	r.bus.deliver(e)
}
