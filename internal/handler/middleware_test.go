package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := chimiddleware.RequestID(Logger(&log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest("GET", "/brew", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/brew", entry["path"])
	require.EqualValues(t, http.StatusTeapot, entry["status"])
	require.EqualValues(t, len("short and stout"), entry["bytes"])
	require.NotEmpty(t, entry["request_id"])
}

func TestLoggerMiddlewareServerError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := Logger(&log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/chatbot", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "error", entry["level"])
}

func TestCORSPassesThroughNonPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/anything", nil))
	require.True(t, called)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	called = false
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/anything", nil))
	require.False(t, called)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRecovererLocalizedServerError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	tr, err := i18n.NewTranslator("fr")
	require.NoError(t, err)

	h := Recoverer(tr, &log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil registration")
	}))

	tests := []struct {
		lang string
		want string
	}{
		{"", "Erreur serveur interne"},
		{"en-US,en;q=0.9", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/register", nil)
			if tt.lang != "" {
				req.Header.Set("Accept-Language", tt.lang)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusInternalServerError, w.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tt.want, resp.Error)
		})
	}
	require.Contains(t, buf.String(), `"panic":"nil registration"`)
	require.Contains(t, buf.String(), `"level":"error"`)
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	log := zerolog.Nop()
	tr, err := i18n.NewTranslator("fr")
	require.NoError(t, err)

	h := Recoverer(tr, &log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/download-ticket", nil))
	})
}
