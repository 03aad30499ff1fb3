package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (g *fakeGenerator) GenerateTicket(_ context.Context, id string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = append(g.ids, id)
	if g.err != nil {
		return "", g.err
	}
	return "tickets/" + id + "/ticket.txt", nil
}

// channelConsumer feeds messages from a channel and records handler results.
type channelConsumer struct {
	msgs    chan []byte
	results chan error
}

func (c *channelConsumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case body := <-c.msgs:
			c.results <- handler(ctx, body)
		}
	}
}

func newWorker(gen Generator, consumer Consumer) *TicketWorker {
	log := zerolog.Nop()
	return NewTicketWorker(consumer, gen, &log)
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		body    string
		genErr  error
		wantErr bool
		wantIDs []string
	}{
		{name: "generates ticket", body: `{"registration_id":"r-1"}`, wantIDs: []string{"r-1"}},
		{name: "malformed body is dropped", body: `{`, wantIDs: nil},
		{name: "missing id is dropped", body: `{}`, wantIDs: nil},
		{name: "unknown registration is dropped", body: `{"registration_id":"r-2"}`,
			genErr: fmt.Errorf("generate ticket: %w", repository.ErrNotFound), wantIDs: []string{"r-2"}},
		{name: "transient failure is retried", body: `{"registration_id":"r-3"}`,
			genErr: errors.New("disk full"), wantErr: true, wantIDs: []string{"r-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.genErr}
			w := newWorker(gen, nil)

			err := w.Handle(ctx, []byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantIDs, gen.ids)
		})
	}
}

func TestStartStop(t *testing.T) {
	gen := &fakeGenerator{}
	consumer := &channelConsumer{msgs: make(chan []byte), results: make(chan error, 1)}
	w := newWorker(gen, consumer)

	w.Start(context.Background())
	consumer.msgs <- []byte(`{"registration_id":"r-9"}`)
	require.NoError(t, <-consumer.results)

	w.Stop()
	require.Equal(t, []string{"r-9"}, gen.ids)
}
