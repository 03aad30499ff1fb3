// Package worker consumes ticket generation jobs from the queue.
package worker

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/concert-registration/internal/queue"
	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/rs/zerolog"
)

// Consumer delivers raw messages to a handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
}

// Generator renders and stores the ticket of a registration.
type Generator interface {
	GenerateTicket(ctx context.Context, registrationID string) (string, error)
}

// TicketWorker generates tickets for queued registrations.
type TicketWorker struct {
	consumer  Consumer
	generator Generator
	log       *zerolog.Logger
	done      chan struct{}
	cancel    context.CancelFunc
}

// NewTicketWorker constructs a TicketWorker.
func NewTicketWorker(consumer Consumer, generator Generator, log *zerolog.Logger) *TicketWorker {
	return &TicketWorker{
		consumer:  consumer,
		generator: generator,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start consumes jobs in the background until Stop is called or ctx ends.
func (w *TicketWorker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info().Msg("ticket worker started")
	go func() {
		defer close(w.done)
		if err := w.consumer.Consume(cctx, w.Handle); err != nil {
			w.log.Error().Err(err).Msg("ticket worker stopped")
			return
		}
		w.log.Info().Msg("ticket worker stopped by context")
	}()
}

// Stop cancels consumption and waits for the worker goroutine to exit.
func (w *TicketWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

// Handle processes one message. Undecodable messages and unknown
// registrations are dropped; other failures are returned so the message is
// retried.
func (w *TicketWorker) Handle(ctx context.Context, body []byte) error {
	job, err := queue.DecodeTicketJob(body)
	if err != nil {
		w.log.Error().Err(err).Str("body", string(body)).Msg("dropping malformed ticket job")
		return nil
	}

	path, err := w.generator.GenerateTicket(ctx, job.RegistrationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.log.Warn().Str("registration_id", job.RegistrationID).Msg("registration not found, dropping ticket job")
			return nil
		}
		return err
	}

	w.log.Info().Str("registration_id", job.RegistrationID).Str("path", path).Msg("ticket job done")
	return nil
}
