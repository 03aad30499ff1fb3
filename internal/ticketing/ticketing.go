// Package ticketing is a client for the external ticketing provider
// (Eventbrite attendees API).
package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotConfigured is returned when the client has no API token or event ID.
var ErrNotConfigured = errors.New("ticketing: provider not configured")

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ticketing: provider returned %d: %s", e.StatusCode, e.Body)
}

// Attendee is the contact record sent to the provider.
type Attendee struct {
	Name  string
	Email string
	Phone string
}

// Result holds the identifiers assigned by the provider. Either may be empty
// when the provider omits it.
type Result struct {
	TicketID string
	OrderID  string
}

// Client creates attendees on the provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	eventID    string
}

// New returns a Client. baseURL is the API root, e.g.
// https://www.eventbriteapi.com/v3.
func New(httpClient *http.Client, baseURL, token, eventID string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		eventID:    eventID,
	}
}

type wireProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type wireRequest struct {
	Attendee struct {
		Profile wireProfile `json:"profile"`
	} `json:"attendee"`
}

type wireResponse struct {
	ID      flexString `json:"id"`
	OrderID flexString `json:"order_id"`
}

// CreateAttendee registers a on the configured event.
func (c *Client) CreateAttendee(ctx context.Context, a Attendee) (*Result, error) {
	if c.token == "" || c.eventID == "" {
		return nil, ErrNotConfigured
	}

	first, last := SplitName(a.Name)
	var req wireRequest
	req.Attendee.Profile = wireProfile{
		FirstName: first,
		LastName:  last,
		Email:     a.Email,
		Phone:     a.Phone,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ticketing: marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/events/%s/attendees/", c.baseURL, c.eventID)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ticketing: creating request: %w", err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+c.token)
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("ticketing: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))
		return nil, &ProviderError{StatusCode: httpResponse.StatusCode, Body: string(errBody)}
	}

	var wire wireResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("ticketing: decoding response: %w", err)
	}
	return &Result{TicketID: string(wire.ID), OrderID: string(wire.OrderID)}, nil
}

// SplitName splits a full name into the provider's first/last name fields:
// the first word, then everything after it.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name, ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// flexString accepts either a JSON string or a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
