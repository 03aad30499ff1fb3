// Package repository implements all database queries for the concert site.
// It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when the same email registers twice.
var ErrAlreadyRegistered = errors.New("email already registered")

const uniqueViolation = "23505"

const registrationColumns = `id, nom, email, telephone, ticket_id, eventbrite_order_id, ticket_file_path, date_inscription`

// RegistrationRepository handles persistence for concert registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// ExistsByEmail reports whether a registration already uses email.
func (r *RegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inscriptions_concert WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// Create inserts a registration and fills in its generated ID.
//
// The existence check in the service runs outside any transaction, so two
// concurrent submissions can both pass it. The unique index on email turns
// the loser's insert into ErrAlreadyRegistered.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO inscriptions_concert
		    (id, nom, email, telephone, ticket_id, eventbrite_order_id, date_inscription)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reg.ID, reg.Name, reg.Email, reg.Phone, reg.TicketID, reg.OrderID, reg.CreatedAt,
	)
	return insertErr(err)
}

// insertErr maps a unique violation to ErrAlreadyRegistered.
func insertErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyRegistered
	}
	return fmt.Errorf("insert registration: %w", err)
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM inscriptions_concert WHERE id = $1`,
		id,
	)
	return scanOne(row)
}

// GetByIDAndEmail returns the registration matching both fields or ErrNotFound.
func (r *RegistrationRepository) GetByIDAndEmail(ctx context.Context, id, email string) (*model.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM inscriptions_concert WHERE id = $1 AND email = $2`,
		id, email,
	)
	return scanOne(row)
}

// SetTicketFilePath records where the generated ticket was stored.
func (r *RegistrationRepository) SetTicketFilePath(ctx context.Context, id, path string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inscriptions_concert SET ticket_file_path = $2 WHERE id = $1`,
		id, path,
	)
	if err != nil {
		return fmt.Errorf("update ticket path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all registrations, newest first.
func (r *RegistrationRepository) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+`
		 FROM inscriptions_concert
		 ORDER BY date_inscription DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func scanOne(row pgx.Row) (*model.Registration, error) {
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID, &reg.Name, &reg.Email, &reg.Phone,
		&reg.TicketID, &reg.OrderID, &reg.TicketFilePath, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ProfileRepository handles persistence for site profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByEmail returns the profile for email or ErrNotFound.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRow(ctx,
		`SELECT user_id, email, role, created_at FROM profiles WHERE email = $1`,
		email,
	).Scan(&p.UserID, &p.Email, &p.Role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// SetRole changes the role of the profile identified by userID.
func (r *ProfileRepository) SetRole(ctx context.Context, userID, role string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET role = $2 WHERE user_id = $1`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("update profile role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
