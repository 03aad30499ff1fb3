package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/Shivanand-hulikatti/concert-registration/internal/event"
	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/llm"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
)

const (
	chatMaxTokens   = 300
	chatTemperature = 0.8
)

var promptTmpl = template.Must(template.New("prompt").Parse(
	`Tu es l'assistant virtuel officiel du concert {{.Artist}} - {{.Title}}. Ton rôle est de :

INFORMATIONS CLÉS DU CONCERT :
- Artiste : {{.Artist}}
- Date : {{.Date}} à {{.Time}}
- Lieu : {{.Venue}}
- Événement : Concert exceptionnel "{{.Title}}"
- Contact : {{.Contact}}

TARIFS DISPONIBLES :
- PASS : 5,000 FCFA (Accès général)
- VIP : 10,000 FCFA (Places privilégiées + avantages)
- VVIP : 20,000 FCFA (Expérience premium exclusive)

MISSION PRINCIPALE :
1. Fournir des informations complètes sur le concert
2. Créer de l'excitation et de l'anticipation
3. Guider stratégiquement les utilisateurs vers l'inscription gratuite
4. Mettre en avant les avantages de s'inscrire (infos exclusives, alertes, etc.)
5. Être persuasif mais naturel pour les amener à remplir le formulaire

STYLE DE COMMUNICATION :
- Enthousiaste et dynamique
- Utilise des emojis pertinents 🔥🎤🎵
- Parle comme un fan passionné d'{{.Artist}}
- Crée un sentiment d'urgence et d'exclusivité
- Sois concis mais informatif

STRATÉGIES PERSUASIVES :
- Mentionne que les places sont limitées
- Met en avant l'aspect unique de cet événement
- Évoque l'ambiance exceptionnelle attendue
- Suggère l'inscription pour recevoir des infos exclusives
- Utilise la peur de manquer (FOMO)

Réponds toujours en français et reste dans le contexte du concert.`))

// SystemPrompt renders the chatbot instructions for concert.
func SystemPrompt(concert model.Concert) (string, error) {
	data := struct {
		model.Concert
		Date string
		Time string
	}{
		Concert: concert,
		Date:    strings.ToLower(event.LongDate(concert.StartAt)),
		Time:    strings.Replace(event.ClockTime(concert.StartAt), ":", "h", 1),
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return buf.String(), nil
}

// Chat forwards message to the completion API behind the fixed system prompt
// and returns the reply text.
func (s *ConcertService) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", invalid(i18n.MsgChatMissingMessage)
	}
	if s.llm == nil || !s.llm.Configured() {
		return "", ErrMissingCredential
	}

	temperature := chatTemperature
	resp, err := s.llm.Complete(ctx, llm.Request{
		Model:       s.chatModel,
		System:      s.systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		MaxTokens:   chatMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: %w", ErrChatUnavailable, llm.ErrEmptyResponse)
	}

	s.log.Debug().
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("chat reply generated")
	return resp.Text, nil
}
