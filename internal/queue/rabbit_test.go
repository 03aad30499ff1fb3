package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRetryUntilSuccess(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		if attempts < 4 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 4, attempts)
}

func TestRetryStopsOnClosed(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), time.Hour, time.Hour, func() error {
		attempts++
		return ErrClosed
	})
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 1, attempts)
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := retry(ctx, time.Hour, time.Hour, func() error {
		attempts++
		cancel()
		return errors.New("connection refused")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestClosedClientStopsConsumingAndPublishing(t *testing.T) {
	log := zerolog.Nop()
	c := &Client{exchange: "tickets", queue: "ticket_jobs", log: &log}
	c.Close()

	require.ErrorIs(t, c.Publish(context.Background(), []byte(`{}`)), ErrClosed)
	_, err := c.reconnect(nil)
	require.ErrorIs(t, err, ErrClosed)

	done := make(chan error, 1)
	go func() {
		done <- c.Consume(context.Background(), func(context.Context, []byte) error { return nil })
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after Close")
	}
}
