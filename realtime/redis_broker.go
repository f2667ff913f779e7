package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/techagentng/photohire/models"
	"go.uber.org/zap"
)

const (
	minResubscribe = 100 * time.Millisecond
	maxResubscribe = 10 * time.Second
)

type envelope struct {
	UserIDs []uint          `json:"userIds"`
	Event   json.RawMessage `json:"event"`
}

// RedisBroker fans events out through a Redis channel so that every instance
// delivers to the connections it holds.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.SugaredLogger
	ready   chan struct{}

	readyOnce sync.Once
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, log *zap.SugaredLogger) *RedisBroker {
	return &RedisBroker{
		client:  client,
		channel: channel,
		hub:     hub,
		log:     log,
		ready:   make(chan struct{}),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, userIDs []uint, event models.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	payload, err := json.Marshal(envelope{UserIDs: userIDs, Event: raw})
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Wrap(err, "redis publish")
	}
	return nil
}

// Ready is closed once Run first subscribes.
func (b *RedisBroker) Ready() <-chan struct{} {
	return b.ready
}

// Run delivers events from the channel to the local hub until ctx is done. A
// failed or dropped subscription is retried with backoff.
func (b *RedisBroker) Run(ctx context.Context) {
	backoff := minResubscribe
	for {
		subscribed, err := b.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			backoff = minResubscribe
		}
		b.log.Warnw("redis subscription lost", "channel", b.channel, "retry_in", backoff, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxResubscribe {
			backoff = maxResubscribe
		}
	}
}

// consume reports whether the subscription was established before it ended.
func (b *RedisBroker) consume(ctx context.Context) (bool, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, errors.Wrap(err, "redis subscribe")
	}
	b.readyOnce.Do(func() { close(b.ready) })
	b.log.Infow("subscribed to message events", "channel", b.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-messages:
			if !ok {
				return true, errors.New("subscription closed")
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warnw("discarding malformed event envelope", "channel", b.channel, "error", err)
				continue
			}
			b.hub.Deliver(env.UserIDs, env.Event)
		}
	}
}
