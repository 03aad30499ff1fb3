// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/Shivanand-hulikatti/concert-registration/internal/service"
	"github.com/rs/zerolog"
)

// ConcertHandler holds all HTTP handlers for the concert site API.
type ConcertHandler struct {
	svc *service.ConcertService
	tr  *i18n.Translator
	log *zerolog.Logger
}

// NewConcertHandler constructs a ConcertHandler.
func NewConcertHandler(svc *service.ConcertService, tr *i18n.Translator, log *zerolog.Logger) *ConcertHandler {
	return &ConcertHandler{svc: svc, tr: tr, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	return json.NewDecoder(r.Body).Decode(dst)
}

// msg renders a catalogue message in the caller's language.
func (h *ConcertHandler) msg(r *http.Request, key string, data map[string]any) string {
	return h.tr.T(r.Header.Get("Accept-Language"), key, data)
}

// fail writes status with the localized key.
func (h *ConcertHandler) fail(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeError(w, status, h.msg(r, key, nil))
}

// failInput writes a 400 for service validation errors and reports whether
// err was one.
func (h *ConcertHandler) failInput(w http.ResponseWriter, r *http.Request, err error) bool {
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	h.fail(w, r, http.StatusBadRequest, ve.MessageID)
	return true
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Register handles POST /api/register
// Records an attendee and issues their ticket identifier.
func (h *ConcertHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgRegisterMissingFields)
		return
	}

	reg, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if h.failInput(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, repository.ErrAlreadyRegistered):
			h.fail(w, r, http.StatusBadRequest, i18n.MsgRegisterDuplicate)
		default:
			h.log.Error().Err(err).Msg("register failed")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgRegisterSaveFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.RegisterResponse{
		Success:        true,
		Message:        h.msg(r, i18n.MsgRegisterSuccess, nil),
		TicketID:       *reg.TicketID,
		RegistrationID: reg.ID,
	})
}

// GenerateTicket handles POST /api/generate-ticket
// Renders and stores the ticket file of a registration.
func (h *ConcertHandler) GenerateTicket(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgTicketMissingID)
		return
	}

	path, err := h.svc.GenerateTicket(r.Context(), req.RegistrationID)
	if err != nil {
		if h.failInput(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.fail(w, r, http.StatusNotFound, i18n.MsgTicketNotFound)
		default:
			h.log.Error().Err(err).Str("registration_id", req.RegistrationID).Msg("ticket generation failed")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgTicketGenerateFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateTicketResponse{
		Success:    true,
		TicketPath: path,
		Message:    h.msg(r, i18n.MsgTicketGenerated, nil),
	})
}

// DownloadTicket handles GET /api/download-ticket?registration_id=…&email=…
// Streams the stored ticket as an attachment.
func (h *ConcertHandler) DownloadTicket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("registration_id")

	file, err := h.svc.DownloadTicket(r.Context(), id, q.Get("email"))
	if err != nil {
		if h.failInput(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.fail(w, r, http.StatusNotFound, i18n.MsgDownloadNotFound)
		case errors.Is(err, service.ErrTicketNotGenerated):
			h.fail(w, r, http.StatusNotFound, i18n.MsgDownloadNotGenerated)
		default:
			h.log.Error().Err(err).Str("registration_id", id).Msg("ticket download failed")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgDownloadFailed)
		}
		return
	}
	defer file.Body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file.Body); err != nil {
		h.log.Warn().Err(err).Str("registration_id", id).Msg("ticket stream interrupted")
	}
}

// Chat handles POST /api/chatbot
// Answers a visitor question about the concert.
func (h *ConcertHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgChatMissingMessage)
		return
	}

	reply, err := h.svc.Chat(r.Context(), req.Message)
	if err != nil {
		if h.failInput(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrMissingCredential):
			h.log.Error().Msg("chat requested without completion API key")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgChatMissingConfig)
		default:
			h.log.Error().Err(err).Msg("chat completion failed")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgChatFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{Response: reply, Success: true})
}

// ListRegistrations handles GET /api/admin/registrations
// Returns every registration, newest first.
func (h *ConcertHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListRegistrations(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list registrations failed")
		h.fail(w, r, http.StatusInternalServerError, i18n.MsgAdminListFailed)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// CreateAdmin handles POST /api/create-admin
// Promotes an existing profile to the admin role.
func (h *ConcertHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgAdminMissingEmail)
		return
	}

	profile, err := h.svc.CreateAdmin(r.Context(), req.Email)
	if err != nil {
		if h.failInput(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.fail(w, r, http.StatusNotFound, i18n.MsgAdminUserNotFound)
		default:
			h.log.Error().Err(err).Msg("create admin failed")
			h.fail(w, r, http.StatusInternalServerError, i18n.MsgAdminUpdateFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.CreateAdminResponse{
		Success: true,
		Message: h.msg(r, i18n.MsgAdminPromoted, map[string]any{"Email": profile.Email}),
	})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
