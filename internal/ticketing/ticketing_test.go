package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.Client(), server.URL+"/v3/", "tok", "evt42")
}

func TestCreateAttendee(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/events/evt42/attendees/", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			Attendee struct {
				Profile map[string]string `json:"profile"`
			} `json:"attendee"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Jean", body.Attendee.Profile["first_name"])
		require.Equal(t, "Marc Kouassi", body.Attendee.Profile["last_name"])
		require.Equal(t, "jean@example.ci", body.Attendee.Profile["email"])
		require.Equal(t, "0102030405", body.Attendee.Profile["phone"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"A-1","order_id":987}`))
	})

	res, err := c.CreateAttendee(context.Background(), Attendee{
		Name: "Jean Marc Kouassi", Email: "jean@example.ci", Phone: "0102030405",
	})
	require.NoError(t, err)
	require.Equal(t, "A-1", res.TicketID)
	require.Equal(t, "987", res.OrderID)
}

func TestCreateAttendeeProviderError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"NOT_FOUND"}`))
	})

	_, err := c.CreateAttendee(context.Background(), Attendee{Name: "A", Email: "a@b.co", Phone: "1"})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, http.StatusNotFound, pe.StatusCode)
}

func TestCreateAttendeeNotConfigured(t *testing.T) {
	c := New(nil, "https://example.invalid", "", "evt")
	_, err := c.CreateAttendee(context.Background(), Attendee{Name: "A"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateAttendeeMissingIDs(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := c.CreateAttendee(context.Background(), Attendee{Name: "A", Email: "a@b.co", Phone: "1"})
	require.NoError(t, err)
	require.Empty(t, res.TicketID)
	require.Empty(t, res.OrderID)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Awa")
	require.Equal(t, "Awa", first)
	require.Empty(t, last)

	first, last = SplitName("  Awa   Marie Koné ")
	require.Equal(t, "Awa", first)
	require.Equal(t, "Marie Koné", last)
}
