package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/contactbook/models"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Zero(t, c.httpClient.Timeout, "no timeout unless configured")
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New(Config{BaseURL: "http://example.com/", Timeout: time.Second})

	assert.Equal(t, "http://example.com", c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestCreateContact_Success(t *testing.T) {
	var received models.ContactInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/contacts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"name":"Jane","email":"jane@example.com","phone":"1234567890"}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	got, err := c.CreateContact(context.Background(), models.ContactInput{
		Name: "Jane", Email: "jane@example.com", Phone: "1234567890",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane", received.Name)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestCreateContact_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid email format"}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	_, err := c.CreateContact(context.Background(), models.ContactInput{Name: "Jane", Email: "x", Phone: "1234567890"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid email format", apiErr.Message)

	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid email format", msg)
}

func TestListContacts_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"contacts":[{"id":3,"name":"A","email":"a@b.c","phone":"1234567890","created_at":"2024-01-02T03:04:05Z"}],
			"pagination":{"currentPage":2,"totalPages":2,"totalContacts":6,"hasNext":false,"hasPrev":true}
		}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	page, err := c.ListContacts(context.Background(), 2, 5)
	require.NoError(t, err)

	require.Len(t, page.Contacts, 1)
	assert.Equal(t, int64(3), page.Contacts[0].ID)
	assert.Equal(t, 2024, page.Contacts[0].CreatedAt.Year())
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 2, TotalContacts: 6, HasPrev: true}, page.Pagination)
}

func TestListContacts_OmitsNonPositive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"contacts":[],"pagination":{"currentPage":1}}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	page, err := c.ListContacts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Contacts)
}

func TestDeleteContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/api/contacts/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Contact not found"}`))
		}
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	require.NoError(t, c.DeleteContact(context.Background(), 1))

	err := c.DeleteContact(context.Background(), 2)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Contact not found", apiErr.Message)
}

func TestBasicAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", u)
		assert.Equal(t, "secret", p)
		w.Write([]byte(`{"status":"OK","message":"Server is running"}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Username: "admin", Password: "secret"})
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	_, err := c.Health(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "server returned 502: Bad Gateway", err.Error())

	_, ok := Message(err)
	assert.False(t, ok)
}

func TestJSONErrorBodyWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	err := c.DeleteContact(context.Background(), 1)

	_, ok := Message(err)
	assert.False(t, ok)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Health(context.Background())
	require.Error(t, err)

	_, ok := Message(err)
	assert.False(t, ok)
}
