// Package servicetest provides in-memory implementations of the service
// dependencies for tests.
package servicetest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/Shivanand-hulikatti/concert-registration/internal/llm"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/Shivanand-hulikatti/concert-registration/internal/storage"
	"github.com/Shivanand-hulikatti/concert-registration/internal/ticketing"
	"github.com/google/uuid"
)

// Registrations is a map-backed registration repository.
type Registrations struct {
	mu   sync.Mutex
	rows map[string]model.Registration

	// Err, when set, is returned by every method.
	Err error
	// StaleExists makes ExistsByEmail report false, as seen by a request
	// racing a concurrent insert of the same email.
	StaleExists bool
}

// NewRegistrations returns an empty Registrations.
func NewRegistrations() *Registrations {
	return &Registrations{rows: map[string]model.Registration{}}
}

func (r *Registrations) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	if r.StaleExists {
		return false, nil
	}
	for _, row := range r.rows {
		if row.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Registrations) Create(_ context.Context, reg *model.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, row := range r.rows {
		if row.Email == reg.Email {
			return repository.ErrAlreadyRegistered
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	r.rows[reg.ID] = *reg
	return nil
}

func (r *Registrations) GetByID(_ context.Context, id string) (*model.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *Registrations) GetByIDAndEmail(ctx context.Context, id, email string) (*model.Registration, error) {
	reg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Email != email {
		return nil, repository.ErrNotFound
	}
	return reg, nil
}

func (r *Registrations) SetTicketFilePath(_ context.Context, id, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.TicketFilePath = &path
	r.rows[id] = row
	return nil
}

func (r *Registrations) List(context.Context) ([]model.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []model.Registration
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Put stores reg as is, bypassing uniqueness checks.
func (r *Registrations) Put(reg model.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[reg.ID] = reg
}

// Profiles is a map-backed profile repository keyed by email.
type Profiles struct {
	mu   sync.Mutex
	rows map[string]model.Profile

	// SetRoleErr, when set, is returned by SetRole.
	SetRoleErr error
}

// NewProfiles returns Profiles seeded with profiles.
func NewProfiles(profiles ...model.Profile) *Profiles {
	p := &Profiles{rows: map[string]model.Profile{}}
	for _, profile := range profiles {
		p.rows[profile.Email] = profile
	}
	return p
}

func (p *Profiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.rows[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (p *Profiles) SetRole(_ context.Context, userID, role string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SetRoleErr != nil {
		return p.SetRoleErr
	}
	for email, row := range p.rows {
		if row.UserID == userID {
			row.Role = role
			p.rows[email] = row
			return nil
		}
	}
	return repository.ErrNotFound
}

// Role returns the current role of email, or "" when unknown.
func (p *Profiles) Role(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows[email].Role
}

// Tickets is a scripted ticketing provider.
type Tickets struct {
	Result *ticketing.Result
	Err    error
	Calls  []ticketing.Attendee
}

func (t *Tickets) CreateAttendee(_ context.Context, a ticketing.Attendee) (*ticketing.Result, error) {
	t.Calls = append(t.Calls, a)
	if t.Err != nil {
		return nil, t.Err
	}
	if t.Result == nil {
		return &ticketing.Result{}, nil
	}
	res := *t.Result
	return &res, nil
}

// FailingStore wraps a store and fails writes or reads on demand.
type FailingStore struct {
	*storage.Store
	PutErr  error
	OpenErr error
}

func (s *FailingStore) Put(key string, data []byte) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	return s.Store.Put(key, data)
}

func (s *FailingStore) Open(key string) (io.ReadCloser, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return s.Store.Open(key)
}

// Completer is a scripted completion client.
type Completer struct {
	Key      bool
	Reply    string
	Err      error
	Requests []llm.Request
}

func (c *Completer) Configured() bool { return c.Key }

func (c *Completer) Complete(_ context.Context, request llm.Request) (*llm.Response, error) {
	c.Requests = append(c.Requests, request)
	if c.Err != nil {
		return nil, c.Err
	}
	return &llm.Response{Model: request.Model, Text: c.Reply, FinishReason: "stop"}, nil
}

// Jobs records scheduled ticket jobs.
type Jobs struct {
	mu  sync.Mutex
	IDs []string
	Err error
}

func (j *Jobs) EnqueueTicket(_ context.Context, registrationID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Err != nil {
		return j.Err
	}
	j.IDs = append(j.IDs, registrationID)
	return nil
}

// ReadAll drains and closes rc.
func ReadAll(rc io.ReadCloser) (string, error) {
	defer rc.Close()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, rc)
	return buf.String(), err
}
