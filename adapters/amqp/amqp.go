// Package amqp implements a core.Adapter over RabbitMQ using amqp091-go,
// grounded on plugins/rabbitmq/rabbitmq.go (connection/channel/Qos setup,
// durable queue, manual ack mode) and
// original_source/missive/adapters/rabbitmq.py (the message-id to
// delivery-tag map that turns Message-scoped Ack/Nack into the broker's
// tag-scoped acknowledgement calls).
package amqp

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/forgemsg/dispatch/core"
)

// Option configures an Adapter.
type Option func(*options)

type options struct {
	durable       bool
	prefetchCount int
	requeueOnNack bool
}

func defaults() options {
	return options{durable: true, prefetchCount: 5, requeueOnNack: true}
}

// WithPrefetchCount sets the channel Qos prefetch count (default 5).
func WithPrefetchCount(n int) Option {
	return func(o *options) { o.prefetchCount = n }
}

// WithRequeueOnNack controls whether Nack requeues (default true).
func WithRequeueOnNack(requeue bool) Option {
	return func(o *options) { o.requeueOnNack = requeue }
}

// Adapter consumes a single durable queue with manual acknowledgement.
type Adapter struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	opts options

	mu           sync.Mutex
	deliveryTags map[string]uint64
}

// Dial connects to uri and declares/consumes the given queue.
func Dial(uri, queue string, opts ...Option) (*Adapter, error) {
	o := defaults()
	for _, fn := range opts {
		fn(&o)
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("adapters/amqp: dial %q: %w", uri, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("adapters/amqp: open channel: %w", err)
	}
	if err := ch.Qos(o.prefetchCount, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("adapters/amqp: set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, o.durable, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("adapters/amqp: declare queue %q: %w", queue, err)
	}

	return &Adapter{conn: conn, ch: ch, opts: o, deliveryTags: make(map[string]uint64)}, nil
}

func (a *Adapter) Ack(_ context.Context, msg core.Message) error {
	tag, ok := a.takeTag(msg)
	if !ok {
		return &core.TransportFault{Op: "ack", Reason: "no delivery tag recorded for message"}
	}
	if err := a.ch.Ack(tag, false); err != nil {
		return fmt.Errorf("adapters/amqp: ack tag %d: %w", tag, err)
	}
	return nil
}

func (a *Adapter) Nack(_ context.Context, msg core.Message) error {
	tag, ok := a.takeTag(msg)
	if !ok {
		return &core.TransportFault{Op: "nack", Reason: "no delivery tag recorded for message"}
	}
	if err := a.ch.Nack(tag, false, a.opts.requeueOnNack); err != nil {
		return fmt.Errorf("adapters/amqp: nack tag %d: %w", tag, err)
	}
	return nil
}

func (a *Adapter) takeTag(msg core.Message) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tag, ok := a.deliveryTags[msg.MessageID().String()]
	if ok {
		delete(a.deliveryTags, msg.MessageID().String())
	}
	return tag, ok
}

// Run consumes queue, calling handle for each delivery until the shutdown
// coordinator's flag is set or the context is cancelled. The consumer is
// cancelled on exit.
func (a *Adapter) Run(ctx context.Context, queue string, shutdown *core.ShutdownCoordinator, handle func(context.Context, core.Message) error) error {
	consumerTag := "dispatch-" + uuid.NewString()
	deliveries, err := a.ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("adapters/amqp: consume %q: %w", queue, err)
	}
	defer a.ch.Cancel(consumerTag, false)

	var done <-chan struct{}
	if shutdown != nil {
		done = shutdown.Done()
	}

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			msg := core.NewRawMessage(d.Body)
			a.mu.Lock()
			a.deliveryTags[msg.MessageID().String()] = d.DeliveryTag
			a.mu.Unlock()
			if err := handle(ctx, msg); err != nil {
				return err
			}
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close tears down the channel and connection.
func (a *Adapter) Close() error {
	var firstErr error
	if err := a.ch.Close(); err != nil {
		firstErr = err
	}
	if err := a.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ core.Adapter = (*Adapter)(nil)
