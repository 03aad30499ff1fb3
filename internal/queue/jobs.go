package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
)

// Publisher sends a raw message body.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// TicketJobs encodes ticket generation jobs onto a Publisher.
type TicketJobs struct {
	pub Publisher
}

// NewTicketJobs returns a TicketJobs publishing through pub.
func NewTicketJobs(pub Publisher) *TicketJobs {
	return &TicketJobs{pub: pub}
}

// EnqueueTicket asks the worker to generate the ticket of registrationID.
func (j *TicketJobs) EnqueueTicket(ctx context.Context, registrationID string) error {
	body, err := json.Marshal(model.TicketJob{RegistrationID: registrationID})
	if err != nil {
		return fmt.Errorf("marshal ticket job: %w", err)
	}
	return j.pub.Publish(ctx, body)
}

// DecodeTicketJob parses a message produced by EnqueueTicket.
func DecodeTicketJob(body []byte) (model.TicketJob, error) {
	var job model.TicketJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("unmarshal ticket job: %w", err)
	}
	if job.RegistrationID == "" {
		return job, fmt.Errorf("ticket job without registration_id")
	}
	return job, nil
}

// NoopJobs drops every job. It is used when no broker is configured.
type NoopJobs struct{}

// EnqueueTicket does nothing.
func (NoopJobs) EnqueueTicket(context.Context, string) error { return nil }
