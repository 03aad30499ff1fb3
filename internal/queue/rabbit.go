// Package queue publishes and consumes ticket generation jobs over RabbitMQ.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("rabbitmq client closed")

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// Client owns one AMQP connection and channel bound to a single
// exchange/queue pair. A lost connection is re-established on the next
// publish and by a running Consume.
type Client struct {
	url      string
	exchange string
	queue    string
	log      *zerolog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// Dial connects to url and declares a durable direct exchange and queue
// bound together.
func Dial(url, exchange, queue string, log *zerolog.Logger) (*Client, error) {
	c := &Client{url: url, exchange: exchange, queue: queue, log: log}
	conn, ch, err := c.connect()
	if err != nil {
		return nil, err
	}
	c.conn, c.channel = conn, ch

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbitmq initialized")
	return c, nil
}

// connect opens a connection and channel and declares the topology.
func (c *Client) connect() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	fail := func(step string, err error) (*amqp.Connection, *amqp.Channel, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(
		c.exchange,
		amqp.ExchangeDirect,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fail("declare exchange", err)
	}

	if _, err := ch.QueueDeclare(
		c.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fail("declare queue", err)
	}

	if err := ch.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	return conn, ch, nil
}

// current returns the live channel.
func (c *Client) current() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.channel, nil
}

// reconnect replaces stale with a fresh channel. When another goroutine has
// already replaced it, the newer channel is returned unchanged.
func (c *Client) reconnect(stale *amqp.Channel) (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.channel != stale && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	conn, ch, err := c.connect()
	if err != nil {
		return nil, err
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.channel = conn, ch
	c.log.Info().Str("queue", c.queue).Msg("rabbitmq reconnected")
	return ch, nil
}

// Close releases the channel and connection and stops reconnection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.log.Info().Msg("rabbitmq connection closed")
}

// Publish sends a persistent JSON message to the job queue. A publish on a
// closed channel reconnects once and retries.
func (c *Client) Publish(ctx context.Context, body []byte) error {
	ch, err := c.current()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	err = ch.PublishWithContext(ctx, c.exchange, c.queue, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		c.log.Warn().Msg("rabbitmq channel closed, reconnecting before publish")
		if ch, err = c.reconnect(ch); err == nil {
			err = ch.PublishWithContext(ctx, c.exchange, c.queue, false, false, msg)
		}
	}
	if err != nil {
		return fmt.Errorf("publish to %s: %w", c.exchange, err)
	}
	c.log.Debug().Str("exchange", c.exchange).Msg("message published")
	return nil
}

// Consume delivers queued messages to handler until ctx is cancelled or the
// client is closed. A handler error nacks the message; it is requeued once
// and dropped if it fails again. When the channel drops, Consume reconnects
// with exponential backoff and resumes.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	for {
		ch, err := c.current()
		if err != nil {
			return nil
		}
		if err := c.consumeChannel(ctx, ch, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if _, err := c.current(); err != nil {
			return nil
		}

		c.log.Error().Str("queue", c.queue).Msg("rabbitmq delivery channel closed, reconnecting")
		err = retry(ctx, minReconnectDelay, maxReconnectDelay, func() error {
			_, err := c.reconnect(ch)
			if err != nil && !errors.Is(err, ErrClosed) {
				c.log.Error().Err(err).Msg("rabbitmq reconnect failed")
			}
			return err
		})
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// consumeChannel runs one delivery loop on ch. It returns nil when the
// deliveries stop, and an error only when consuming cannot start.
func (c *Client) consumeChannel(ctx context.Context, ch *amqp.Channel, handler func(context.Context, []byte) error) error {
	msgs, err := ch.ConsumeWithContext(ctx,
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			return nil
		}
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.Info().Str("queue", c.queue).Msg("started consuming")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := handler(ctx, d.Body); err != nil {
				c.log.Warn().Err(err).Bool("redelivered", d.Redelivered).Msg("failed to process message")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// retry calls fn until it succeeds, returns ErrClosed, or ctx ends, doubling
// the wait between attempts from minDelay up to maxDelay.
func retry(ctx context.Context, minDelay, maxDelay time.Duration, fn func() error) error {
	delay := minDelay
	for {
		err := fn()
		if err == nil || errors.Is(err, ErrClosed) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
