package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/service"
)

// Directory is the service surface the handlers depend on.
type Directory interface {
	Create(ctx context.Context, input models.ContactInput) (*models.Contact, error)
	List(ctx context.Context, page, limit int) (*models.ContactPage, error)
	DeleteByRef(ctx context.Context, ref string) error
	DefaultLimit() int
}

// Handler serves the contacts REST API.
type Handler struct {
	directory Directory
	logger    *slog.Logger
}

// NewHandler returns a Handler backed by directory.
func NewHandler(directory Directory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{directory: directory, logger: logger}
}

// ListContacts lists one page of contacts
// @Summary      List contacts
// @Description  Get a page of contacts ordered by creation time, newest first.
// @Tags         contacts
// @Produce      json
// @Param        page   query     int  false  "Page number (1-indexed)"  default(1)
// @Param        limit  query     int  false  "Page size"                default(10)
// @Success      200    {object}  models.ContactPage
// @Failure      500    {object}  ErrorResponse
// @Router       /contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := service.ParsePositive(q.Get("page"), service.DefaultPage)
	limit := service.ParsePositive(q.Get("limit"), h.directory.DefaultLimit())

	result, err := h.directory.List(r.Context(), page, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateContact creates a new contact
// @Summary      Create contact
// @Description  Validate and store a new contact.
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        contact  body      models.ContactInput  true  "Contact contents"
// @Success      201      {object}  models.Contact
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, err := h.directory.Create(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteContact deletes a contact
// @Summary      Delete contact
// @Description  Remove a contact by id.
// @Tags         contacts
// @Param        id   path      int  true  "Contact ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.DeleteByRef(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports that the server is up
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  models.Health
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Health{Status: "OK", Message: "Server is running"})
}

// writeServiceError maps the directory's error taxonomy onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	var sErr *service.StorageError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, service.MsgNotFound)
	case errors.As(err, &sErr):
		writeError(w, http.StatusInternalServerError, sErr.Message)
	default:
		h.logger.Error("unexpected directory error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
