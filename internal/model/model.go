// Package model defines the core domain types for the concert registration site.
package model

import "time"

// Registration is one attendee's contact record plus any issued ticket identifiers.
type Registration struct {
	ID             string    `json:"id"`
	Name           string    `json:"nom"`
	Email          string    `json:"email"`
	Phone          string    `json:"telephone"`
	TicketID       *string   `json:"ticket_id"`
	OrderID        *string   `json:"eventbrite_order_id"`
	TicketFilePath *string   `json:"ticket_file_path"`
	CreatedAt      time.Time `json:"date_inscription"`
}

// HasTicket reports whether a ticket identifier was issued.
func (r *Registration) HasTicket() bool {
	return r.TicketID != nil && *r.TicketID != ""
}

// TicketGenerated reports whether the ticket file has been stored.
func (r *Registration) TicketGenerated() bool {
	return r.TicketFilePath != nil && *r.TicketFilePath != ""
}

// Profile is a site account that can be promoted to admin.
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleAdmin is the profile role granting access to the admin listing.
const RoleAdmin = "admin"

// ─── Requests ─────────────────────────────────────────────────────────────────

// RegisterRequest is the payload for registering to the concert.
type RegisterRequest struct {
	Name  string `json:"nom" validate:"required"`
	Email string `json:"email" validate:"required,simple_email"`
	Phone string `json:"telephone" validate:"required"`
}

// GenerateTicketRequest is the payload for rendering a ticket file.
type GenerateTicketRequest struct {
	RegistrationID string `json:"registration_id" validate:"required"`
}

// ChatRequest is the payload for a chatbot question.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// CreateAdminRequest is the payload for promoting a profile to admin.
type CreateAdminRequest struct {
	Email string `json:"email" validate:"required"`
}

// ─── Responses ────────────────────────────────────────────────────────────────

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TicketID       string `json:"ticket_id"`
	RegistrationID string `json:"registration_id"`
}

// GenerateTicketResponse is returned after a ticket file was stored.
type GenerateTicketResponse struct {
	Success    bool   `json:"success"`
	TicketPath string `json:"ticket_path"`
	Message    string `json:"message"`
}

// ChatResponse relays the completion text.
type ChatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

// CreateAdminResponse confirms a promotion.
type CreateAdminResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegistrationList is the admin listing payload.
type RegistrationList struct {
	Registrations []Registration `json:"registrations"`
	Total         int            `json:"total"`
	WithTicket    int            `json:"with_ticket"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TicketJob is the queue message asking for a ticket file to be generated.
type TicketJob struct {
	RegistrationID string `json:"registration_id"`
}

// Concert describes the advertised event, shown on tickets and in the chatbot prompt.
type Concert struct {
	Title   string
	Artist  string
	City    string
	Venue   string
	StartAt time.Time
	Contact string
}
