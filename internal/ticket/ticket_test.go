package ticket

import (
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/concert-registration/internal/event"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	"github.com/stretchr/testify/require"
)

func sampleRegistration() *model.Registration {
	tid := "TICKET_1726000000000_abc123xyz"
	return &model.Registration{
		ID:        "3b0f6f7e-6a43-4b1c-9d59-2d9f1c3f0a11",
		Name:      "Awa Koné",
		Email:     "awa@example.ci",
		Phone:     "0700000000",
		TicketID:  &tid,
		CreatedAt: time.Date(2025, time.July, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	reg := sampleRegistration()
	require.Equal(t,
		"tickets/3b0f6f7e-6a43-4b1c-9d59-2d9f1c3f0a11/ticket_TICKET_1726000000000_abc123xyz.txt",
		Key(reg))
	require.Equal(t, Key(reg), Key(reg))
}

func TestRender(t *testing.T) {
	out, err := Render(sampleRegistration(), event.Concert())
	require.NoError(t, err)

	text := string(out)
	for _, want := range []string{
		"TICKET DE CONCERT - LA LÉGENDE URBAINE",
		"Artiste: ENFANT NOIR SD",
		"Nom: Awa Koné",
		"Email: awa@example.ci",
		"Téléphone: 0700000000",
		"Numéro de ticket: TICKET_1726000000000_abc123xyz",
		"Date du concert: 19 Septembre 2025 à 20:00",
		"Lieu: Palais de la Culture, Abidjan",
		"Date d'inscription: 04/07/2025",
		"Conservez ce ticket pour l'entrée.",
	} {
		require.Contains(t, text, want)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Equal(t, len([]rune(lines[0])), len(lines[1]))
}
