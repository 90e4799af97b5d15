// Package service implements the contact directory: validated creation,
// paginated listing and deletion on top of an injected store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/satheeshds/contactbook/metrics"
	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/store"
	"github.com/satheeshds/contactbook/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ContactStore

// ContactStore is the persistence capability the directory needs.
type ContactStore interface {
	Insert(ctx context.Context, input models.ContactInput) (int64, error)
	Count(ctx context.Context) (int, error)
	ListPage(ctx context.Context, limit, offset int) ([]models.Contact, error)
	// Delete returns store.ErrNotFound when no row matched.
	Delete(ctx context.Context, id int64) error
}

// Service orchestrates contact management.
type Service struct {
	contacts     ContactStore
	logger       *slog.Logger
	metrics      *metrics.Metrics
	defaultLimit int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDefaultLimit overrides the page size used when a list request has none.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// New constructs a Service.
func New(contacts ContactStore, opts ...Option) (*Service, error) {
	if contacts == nil {
		return nil, errors.New("contact store is required")
	}
	s := &Service{
		contacts:     contacts,
		logger:       slog.Default(),
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultLimit is the page size applied when a request does not specify one.
func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// Create validates input and stores it. The returned contact carries the
// assigned id but no creation timestamp.
func (s *Service) Create(ctx context.Context, input models.ContactInput) (*models.Contact, error) {
	if msg := validation.CheckContact(input.Name, input.Email, input.Phone); msg != "" {
		s.countError("create", "validation")
		return nil, &ValidationError{Message: msg}
	}

	start := time.Now()
	id, err := s.contacts.Insert(ctx, input)
	s.observe("insert", start)
	if err != nil {
		return nil, s.storageFailure(ctx, "create", MsgCreateFailed, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.InfoContext(ctx, "contact created", "id", id)

	return &models.Contact{
		ID:    id,
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}, nil
}

// List returns one page of contacts, newest first. Non-positive page or
// limit values fall back to the defaults.
func (s *Service) List(ctx context.Context, page, limit int) (*models.ContactPage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	start := time.Now()
	total, err := s.contacts.Count(ctx)
	s.observe("count", start)
	if err != nil {
		return nil, s.storageFailure(ctx, "list", MsgListFailed, err)
	}

	var contacts []models.Contact
	// An offset past math.MaxInt is necessarily past the last row.
	if offset, ok := Offset(page, limit); ok {
		start = time.Now()
		contacts, err = s.contacts.ListPage(ctx, limit, offset)
		s.observe("list_page", start)
		if err != nil {
			return nil, s.storageFailure(ctx, "list", MsgListFailed, err)
		}
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	return &models.ContactPage{
		Contacts:   contacts,
		Pagination: Paginate(page, limit, total),
	}, nil
}

// Delete removes the contact with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.contacts.Delete(ctx, id)
	s.observe("delete", start)
	if errors.Is(err, store.ErrNotFound) {
		s.countError("delete", "not_found")
		return ErrNotFound
	}
	if err != nil {
		return s.storageFailure(ctx, "delete", MsgDeleteFailed, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.logger.InfoContext(ctx, "contact deleted", "id", id)
	return nil
}

// DeleteByRef parses a raw path identifier and deletes the matching contact.
// Absent or non-numeric references are a ValidationError.
func (s *Service) DeleteByRef(ctx context.Context, ref string) error {
	id, err := ParseID(ref)
	if err != nil {
		s.countError("delete", "validation")
		return err
	}
	return s.Delete(ctx, id)
}

// ParseID converts a path identifier to a contact id. A numeric but
// non-integral reference cannot name any row and yields ErrNotFound.
func ParseID(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, &ValidationError{Message: MsgInvalidID}
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(ref, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Message: MsgInvalidID}
	}
	// "1.0" and "1e3" still name integer rows.
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return 0, ErrNotFound
}

func (s *Service) storageFailure(ctx context.Context, op, msg string, err error) error {
	s.logger.ErrorContext(ctx, msg, "op", op, "error", err)
	s.countError(op, "storage")
	return &StorageError{Op: op, Message: msg, Err: err}
}

func (s *Service) countError(op, kind string) {
	if s.metrics != nil {
		s.metrics.IncrementError(op, kind)
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStore(op, start)
	}
}
