// Package client talks to the contact book REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/satheeshds/contactbook/models"
)

// DefaultBaseURL is the address of a locally running server.
const DefaultBaseURL = "http://localhost:5000"

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, msg)
}

// Message returns the server's error message when err carries one.
func Message(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// Config holds configuration for the client. A zero Timeout leaves requests
// bounded only by their context.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
	Password string
}

// Client is an HTTP client for the contacts API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a client. An empty BaseURL falls back to DefaultBaseURL.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateContact posts a new contact.
func (c *Client) CreateContact(ctx context.Context, input models.ContactInput) (*models.Contact, error) {
	var out models.Contact
	if err := c.do(ctx, http.MethodPost, "/api/contacts", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts fetches one page of contacts. Non-positive page or limit is
// left for the server to default.
func (c *Client) ListContacts(ctx context.Context, page, limit int) (*models.ContactPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/contacts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out models.ContactPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContact removes the contact with the given id.
func (c *Client) DeleteContact(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/contacts/"+strconv.FormatInt(id, 10), nil, nil)
}

// Health calls the health endpoint.
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	var out models.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError reads the server's {error} body. Any other body, such as a
// proxy's HTML error page, leaves Message empty.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
