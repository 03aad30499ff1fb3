package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/ticket"
)

// TicketFile is an open ticket ready to be streamed to the client.
type TicketFile struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
}

// GenerateTicket renders the ticket of registrationID, stores it and records
// its location. It returns the storage key. Regenerating overwrites the file.
func (s *ConcertService) GenerateTicket(ctx context.Context, registrationID string) (string, error) {
	registrationID = strings.TrimSpace(registrationID)
	if registrationID == "" {
		return "", invalid(i18n.MsgTicketMissingID)
	}

	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return "", fmt.Errorf("generate ticket: %w", err)
	}

	doc, err := ticket.Render(reg, s.concert)
	if err != nil {
		return "", err
	}

	key := ticket.Key(reg)
	if err := s.store.Put(key, doc); err != nil {
		return "", fmt.Errorf("store ticket: %w", err)
	}
	if err := s.registrations.SetTicketFilePath(ctx, reg.ID, key); err != nil {
		return "", fmt.Errorf("record ticket path: %w", err)
	}

	s.log.Info().Str("registration_id", reg.ID).Str("path", key).Msg("ticket generated")
	return key, nil
}

// DownloadTicket opens the stored ticket of the registration matching both
// registrationID and email. The caller closes Body.
func (s *ConcertService) DownloadTicket(ctx context.Context, registrationID, email string) (*TicketFile, error) {
	registrationID = strings.TrimSpace(registrationID)
	email = strings.TrimSpace(email)
	if registrationID == "" || email == "" {
		return nil, invalid(i18n.MsgDownloadMissingParams)
	}

	reg, err := s.registrations.GetByIDAndEmail(ctx, registrationID, email)
	if err != nil {
		return nil, fmt.Errorf("download ticket: %w", err)
	}
	if !reg.TicketGenerated() {
		return nil, ErrTicketNotGenerated
	}

	body, err := s.store.Open(*reg.TicketFilePath)
	if err != nil {
		return nil, fmt.Errorf("open ticket: %w", err)
	}

	ticketID := ""
	if reg.TicketID != nil {
		ticketID = *reg.TicketID
	}
	return &TicketFile{
		Body:        body,
		FileName:    ticket.FileName(ticketID),
		ContentType: ticket.ContentType,
	}, nil
}

