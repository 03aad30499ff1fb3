// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/llm"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	"github.com/Shivanand-hulikatti/concert-registration/internal/queue"
	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/Shivanand-hulikatti/concert-registration/internal/ticketing"
	"github.com/Shivanand-hulikatti/concert-registration/internal/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrTicketNotGenerated is returned when a registration has no ticket file yet.
	ErrTicketNotGenerated = errors.New("ticket not generated yet")
	// ErrMissingCredential is returned when the completion API has no key.
	ErrMissingCredential = errors.New("completion API key not configured")
	// ErrChatUnavailable wraps any completion failure.
	ErrChatUnavailable = errors.New("chat completion failed")
	// ErrRoleUpdate is returned when a profile role could not be changed.
	ErrRoleUpdate = errors.New("profile role update failed")
)

// ValidationError is a client input error. MessageID names the catalogue
// entry the handler shows to the user.
type ValidationError struct {
	MessageID string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.MessageID
}

func invalid(messageID string) error {
	return &ValidationError{MessageID: messageID}
}

// ─── Dependencies ─────────────────────────────────────────────────────────────

// Registrations persists concert registrations.
type Registrations interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetByIDAndEmail(ctx context.Context, id, email string) (*model.Registration, error)
	SetTicketFilePath(ctx context.Context, id, path string) error
	List(ctx context.Context) ([]model.Registration, error)
}

// Profiles reads and updates site accounts.
type Profiles interface {
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	SetRole(ctx context.Context, userID, role string) error
}

// TicketProvider issues ticket identifiers with the external ticketing service.
type TicketProvider interface {
	CreateAttendee(ctx context.Context, a ticketing.Attendee) (*ticketing.Result, error)
}

// TicketStore holds rendered ticket files.
type TicketStore interface {
	Put(key string, data []byte) error
	Open(key string) (io.ReadCloser, error)
}

// Completer answers chat prompts.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, request llm.Request) (*llm.Response, error)
}

// JobQueue schedules background ticket generation.
type JobQueue interface {
	EnqueueTicket(ctx context.Context, registrationID string) error
}

// Deps groups the collaborators of ConcertService.
type Deps struct {
	Registrations Registrations
	Profiles      Profiles
	Tickets       TicketProvider
	Store         TicketStore
	LLM           Completer
	Jobs          JobQueue
	Concert       model.Concert
	ChatModel     string
	Logger        *zerolog.Logger
}

// ConcertService orchestrates registration, tickets, chat and admin operations.
type ConcertService struct {
	registrations Registrations
	profiles      Profiles
	tickets       TicketProvider
	store         TicketStore
	llm           Completer
	jobs          JobQueue
	concert       model.Concert
	chatModel     string
	systemPrompt  string
	log           *zerolog.Logger
	now           func() time.Time
}

// NewConcertService constructs a ConcertService with its dependencies.
func NewConcertService(d Deps) (*ConcertService, error) {
	prompt, err := SystemPrompt(d.Concert)
	if err != nil {
		return nil, err
	}
	log := d.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	jobs := d.Jobs
	if jobs == nil {
		jobs = queue.NoopJobs{}
	}
	return &ConcertService{
		registrations: d.Registrations,
		profiles:      d.Profiles,
		tickets:       d.Tickets,
		store:         d.Store,
		llm:           d.LLM,
		jobs:          jobs,
		concert:       d.Concert,
		chatModel:     d.ChatModel,
		systemPrompt:  prompt,
		log:           log,
		now:           time.Now,
	}, nil
}

// ─── Registration ─────────────────────────────────────────────────────────────

// Register validates the request, obtains ticket identifiers and stores the
// registration. When a job queue is configured, ticket generation is
// scheduled; a failure to schedule is only logged.
func (s *ConcertService) Register(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := validator.Validate(ctx, req); err != nil {
		var fe *validator.FieldError
		if errors.As(err, &fe) && fe.Tag == validator.TagSimpleEmail {
			return nil, invalid(i18n.MsgRegisterInvalidEmail)
		}
		return nil, invalid(i18n.MsgRegisterMissingFields)
	}

	exists, err := s.registrations.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, repository.ErrAlreadyRegistered
	}

	ticketID, orderID := s.issueTicket(ctx, req)
	reg := &model.Registration{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		TicketID:  &ticketID,
		OrderID:   &orderID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("ticket_id", ticketID).
		Msg("registration created")

	if err := s.jobs.EnqueueTicket(ctx, reg.ID); err != nil {
		s.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to schedule ticket generation")
	}
	return reg, nil
}

// issueTicket asks the provider for ticket identifiers and falls back to
// locally generated ones on any failure.
func (s *ConcertService) issueTicket(ctx context.Context, req model.RegisterRequest) (ticketID, orderID string) {
	ms := s.now().UnixMilli()

	res, err := s.tickets.CreateAttendee(ctx, ticketing.Attendee{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if !errors.Is(err, ticketing.ErrNotConfigured) {
			s.log.Warn().Err(err).Msg("ticketing provider failed, using local ticket id")
		}
		return fallbackTicketID(ms), fmt.Sprintf("ORDER_%d", ms)
	}

	ticketID, orderID = res.TicketID, res.OrderID
	if ticketID == "" {
		ticketID = fmt.Sprintf("TICKET_%d", ms)
	}
	if orderID == "" {
		orderID = fmt.Sprintf("ORDER_%d", ms)
	}
	return ticketID, orderID
}

// fallbackTicketID returns TICKET_<ms>_<9 lowercase alphanumerics>.
func fallbackTicketID(ms int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("TICKET_%d_%s", ms, suffix)
}

// ListRegistrations returns every registration, newest first, with counts.
func (s *ConcertService) ListRegistrations(ctx context.Context) (*model.RegistrationList, error) {
	regs, err := s.registrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []model.Registration{}
	}

	list := &model.RegistrationList{Registrations: regs, Total: len(regs)}
	for i := range regs {
		if regs[i].HasTicket() {
			list.WithTicket++
		}
	}
	return list, nil
}
