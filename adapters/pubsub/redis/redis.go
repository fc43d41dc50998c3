// Package redis implements a fire-and-forget core.Adapter over Redis
// pub/sub, grounded directly on original_source/missive/adapters/redis.py:
// subscribe to a fixed set of channels, hand every published message to the
// processor, and stop on the shutdown coordinator's flag. Ack and Nack are
// no-ops, since Redis pub/sub has no delivery-acknowledgement concept.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/forgemsg/dispatch/core"
)

// Adapter subscribes to one or more Redis channels.
type Adapter struct {
	client   *redis.Client
	channels []string
}

// New builds an Adapter over client, subscribing to channels when Run is
// called.
func New(client *redis.Client, channels ...string) *Adapter {
	return &Adapter{client: client, channels: channels}
}

func (a *Adapter) Ack(context.Context, core.Message) error  { return nil }
func (a *Adapter) Nack(context.Context, core.Message) error { return nil }

// Run subscribes to the configured channels and dispatches every published
// message until the shutdown coordinator's flag is set or ctx is cancelled.
func (a *Adapter) Run(ctx context.Context, shutdown *core.ShutdownCoordinator, handle func(context.Context, core.Message) error) error {
	sub := a.client.Subscribe(ctx, a.channels...)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("adapters/pubsub/redis: subscribe %v: %w", a.channels, err)
	}

	ch := sub.Channel()

	var done <-chan struct{}
	if shutdown != nil {
		done = shutdown.Done()
	}

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := handle(ctx, core.NewRawMessage([]byte(msg.Payload))); err != nil {
				return err
			}
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ core.Adapter = (*Adapter)(nil)
