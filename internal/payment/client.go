// Package payment wraps the provider's hosted checkout-session REST API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrSessionNotFound means no session matched the requested id or
	// client reference anywhere in the provider's listing.
	ErrSessionNotFound = errors.New("payment session not found")
)

// SessionProduct is one provider-side line item, priced in the provider's
// minor unit (1/1000 of the display currency).
type SessionProduct struct {
	Name       string `json:"name"`
	ProductID  string `json:"productId,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

// SessionRequest is the session-creation payload.
type SessionRequest struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Mode              string            `json:"mode"`
	Products          []SessionProduct  `json:"products"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Session is the provider's view of one checkout attempt.
type Session struct {
	SessionID         string           `json:"session_id"`
	ClientReferenceID string           `json:"client_reference_id"`
	PaymentStatus     string           `json:"payment_status"`
	TotalAmount       int64            `json:"total_amount"`
	Products          []SessionProduct `json:"products"`
}

// PaymentStatusPaid is the only status reconciliation accepts as success.
const PaymentStatusPaid = "paid"

// API is the provider surface the orchestrator depends on; tests substitute
// an in-memory implementation.
type API interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ListSessions(ctx context.Context, limit, skip int) ([]Session, error)
	FindByClientReference(ctx context.Context, ref string) (*Session, error)
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Success     bool            `json:"success"`
	Code        int             `json:"code"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("thawani-api-key", c.APIKey)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("provider returned unexpected response (%s): %w", res.Status, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 || !env.Success {
		return fmt.Errorf("provider error (%s): %s", res.Status, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("provider returned unexpected data shape: %w", err)
		}
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/checkout/session", req, &sess); err != nil {
		return nil, err
	}
	if sess.SessionID == "" {
		return nil, errors.New("provider returned a session without an id")
	}
	return &sess, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	path := "/checkout/session/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) ListSessions(ctx context.Context, limit, skip int) ([]Session, error) {
	var sessions []Session
	path := fmt.Sprintf("/checkout/session/?limit=%d&skip=%d", limit, skip)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// findPageSize and findMaxPages bound the fallback scan over the provider's
// session listing. Reconciliation prefers the locally persisted session id;
// this scan only runs for orders created outside this backend.
const (
	findPageSize = 50
	findMaxPages = 20
)

// FindByClientReference scans the provider's recent sessions for one whose
// client reference matches ref. It pages until a match, an empty page, or
// the page bound is hit, then reports ErrSessionNotFound.
func (c *Client) FindByClientReference(ctx context.Context, ref string) (*Session, error) {
	for page := 0; page < findMaxPages; page++ {
		sessions, err := c.ListSessions(ctx, findPageSize, page*findPageSize)
		if err != nil {
			return nil, err
		}
		for i := range sessions {
			if sessions[i].ClientReferenceID == ref {
				return &sessions[i], nil
			}
		}
		if len(sessions) < findPageSize {
			break
		}
	}
	return nil, ErrSessionNotFound
}
