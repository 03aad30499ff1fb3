// Package ticket renders the plain-text ticket document for a registration.
package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Shivanand-hulikatti/concert-registration/internal/event"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
)

// ContentType is the MIME type of rendered tickets.
const ContentType = "text/plain; charset=utf-8"

var tmpl = template.Must(template.New("ticket").Parse(`
TICKET DE CONCERT - {{.Heading}}
{{.Rule}}

Artiste: {{.Artist}}
Nom: {{.Name}}
Email: {{.Email}}
Téléphone: {{.Phone}}
Numéro de ticket: {{.TicketID}}
Date du concert: {{.ConcertDate}} à {{.ConcertTime}}
Lieu: {{.Venue}}
Date d'inscription: {{.RegisteredOn}}

Conservez ce ticket pour l'entrée.
`))

type view struct {
	Heading      string
	Rule         string
	Artist       string
	Name         string
	Email        string
	Phone        string
	TicketID     string
	ConcertDate  string
	ConcertTime  string
	Venue        string
	RegisteredOn string
}

// FileName is the download name of the ticket for ticketID.
func FileName(ticketID string) string {
	return fmt.Sprintf("ticket_%s.txt", ticketID)
}

// Key is the blob store key of a registration's ticket. It only depends on
// the registration, so regenerating overwrites the previous file.
func Key(reg *model.Registration) string {
	return fmt.Sprintf("tickets/%s/%s", reg.ID, FileName(ticketID(reg)))
}

// Render produces the ticket document for reg.
func Render(reg *model.Registration, concert model.Concert) ([]byte, error) {
	heading := strings.ToUpper(concert.Title)
	v := view{
		Heading:      heading,
		Rule:         strings.Repeat("=", len([]rune("TICKET DE CONCERT - "+heading))),
		Artist:       concert.Artist,
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		TicketID:     ticketID(reg),
		ConcertDate:  event.LongDate(concert.StartAt),
		ConcertTime:  event.ClockTime(concert.StartAt),
		Venue:        concert.Venue,
		RegisteredOn: event.ShortDate(reg.CreatedAt),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func ticketID(reg *model.Registration) string {
	if reg.TicketID == nil {
		return ""
	}
	return *reg.TicketID
}
