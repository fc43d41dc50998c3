// Package nats implements a fire-and-forget core.Adapter over plain NATS
// pub/sub, grounded on plugins/nats/nats.go but stripped of its JetStream
// persistence layer: spec's pub/sub adapter is explicitly at-most-once
// delivery, which is what plain nats.Subscribe already gives, with none of
// JetStream's stream/consumer bookkeeping needed.
package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/forgemsg/dispatch/core"
)

// Adapter subscribes to one NATS subject.
type Adapter struct {
	conn    *nats.Conn
	subject string
}

// New builds an Adapter over conn, subscribing to subject when Run is
// called.
func New(conn *nats.Conn, subject string) *Adapter {
	return &Adapter{conn: conn, subject: subject}
}

func (a *Adapter) Ack(context.Context, core.Message) error  { return nil }
func (a *Adapter) Nack(context.Context, core.Message) error { return nil }

// Run subscribes to the configured subject and dispatches every received
// message until the shutdown coordinator's flag is set or ctx is cancelled.
func (a *Adapter) Run(ctx context.Context, shutdown *core.ShutdownCoordinator, handle func(context.Context, core.Message) error) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := a.conn.ChanSubscribe(a.subject, msgs)
	if err != nil {
		return fmt.Errorf("adapters/pubsub/nats: subscribe %q: %w", a.subject, err)
	}
	defer sub.Unsubscribe()

	var done <-chan struct{}
	if shutdown != nil {
		done = shutdown.Done()
	}

	for {
		select {
		case m := <-msgs:
			if err := handle(ctx, core.NewRawMessage(m.Data)); err != nil {
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
