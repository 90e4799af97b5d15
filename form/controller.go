// Package form holds the state behind the contact entry screen: the values
// being typed, per-field errors, the page of contacts on display and a short
// lived status banner. The terminal UI and the CLI both drive it.
package form

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/satheeshds/contactbook/client"
	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/validation"
)

// StatusTTL is how long a status message stays visible.
const StatusTTL = 3 * time.Second

// DefaultPageSize is the number of contacts requested per page.
const DefaultPageSize = 10

// Status messages shown after an operation.
const (
	MsgAdded       = "Contact added successfully!"
	MsgDeleted     = "Contact deleted successfully!"
	MsgAddFailed   = "Error adding contact"
	MsgDeleteFail  = "Error deleting contact"
	MsgFetchFailed = "Error fetching contacts"
)

var (
	// ErrBusy is returned by Submit while another request is in flight.
	ErrBusy = errors.New("form: request already in flight")
	// ErrInvalid is returned by Submit when local validation fails.
	ErrInvalid = errors.New("form: invalid input")
	// ErrDeclined is returned by Delete when the user does not confirm.
	ErrDeclined = errors.New("form: delete not confirmed")
)

// API is the remote contact directory.
type API interface {
	CreateContact(ctx context.Context, input models.ContactInput) (*models.Contact, error)
	ListContacts(ctx context.Context, page, limit int) (*models.ContactPage, error)
	DeleteContact(ctx context.Context, id int64) error
}

// Confirmer asks the user whether a contact should really be deleted.
type Confirmer interface {
	Confirm(c models.Contact) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(c models.Contact) bool

func (f ConfirmFunc) Confirm(c models.Contact) bool { return f(c) }

// StatusKind tells success banners from error banners.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// Status is the transient banner.
type Status struct {
	Kind    StatusKind
	Message string
	SetAt   time.Time
}

// State is a point-in-time copy of the controller.
type State struct {
	Values     models.ContactInput
	Errors     map[string]string
	Contacts   []models.Contact
	Pagination models.Pagination
	Status     Status
	Busy       bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPageSize sets the number of contacts requested per page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// Controller is safe for concurrent use.
type Controller struct {
	api      API
	now      func() time.Time
	pageSize int

	mu         sync.Mutex
	values     models.ContactInput
	errs       map[string]string
	contacts   []models.Contact
	pagination models.Pagination
	status     Status
	submitting bool
	loading    int
}

// New returns a controller with an empty form and no contacts loaded.
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		now:      time.Now,
		pageSize: DefaultPageSize,
		errs:     map[string]string{},
		contacts: []models.Contact{},
		pagination: models.Pagination{
			CurrentPage: 1,
			TotalPages:  1,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetField updates one form value and clears its error. Unknown fields are ignored.
func (c *Controller) SetField(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case validation.FieldName:
		c.values.Name = value
	case validation.FieldEmail:
		c.values.Email = value
	case validation.FieldPhone:
		c.values.Phone = value
	default:
		return
	}
	delete(c.errs, field)
}

// Submit validates the form and creates the contact.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return ErrBusy
	}
	input := c.values
	res := validation.ValidateContactInput(input.Name, input.Email, input.Phone)
	if !res.Valid {
		c.errs = res.Errors
		c.mu.Unlock()
		return ErrInvalid
	}
	c.errs = map[string]string{}
	c.submitting = true
	c.mu.Unlock()

	created, err := c.api.CreateContact(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		c.setStatusLocked(StatusError, messageOr(err, MsgAddFailed))
		return err
	}
	c.contacts = append([]models.Contact{*created}, c.contacts...)
	c.values = models.ContactInput{}
	c.setStatusLocked(StatusSuccess, MsgAdded)
	return nil
}

// Delete removes the contact with id once confirm agrees. A nil confirm
// declines.
func (c *Controller) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	c.mu.Lock()
	target := models.Contact{ID: id}
	if i := c.indexLocked(id); i >= 0 {
		target = c.contacts[i]
	}
	c.mu.Unlock()

	if confirm == nil || !confirm.Confirm(target) {
		return ErrDeclined
	}

	err := c.api.DeleteContact(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setStatusLocked(StatusError, messageOr(err, MsgDeleteFail))
		return err
	}
	if i := c.indexLocked(id); i >= 0 {
		c.contacts = slices.Delete(c.contacts, i, i+1)
	}
	c.setStatusLocked(StatusSuccess, MsgDeleted)
	return nil
}

// Load replaces the displayed contacts with the given page.
func (c *Controller) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.loading++
	limit := c.pageSize
	c.mu.Unlock()

	result, err := c.api.ListContacts(ctx, page, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	if err != nil {
		c.setStatusLocked(StatusError, MsgFetchFailed)
		return err
	}
	c.contacts = append([]models.Contact{}, result.Contacts...)
	c.pagination = result.Pagination
	return nil
}

// Reload fetches the current page again.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	page := c.pagination.CurrentPage
	c.mu.Unlock()
	return c.Load(ctx, page)
}

// NextPage loads the following page when there is one. It reports whether a
// request was made.
func (c *Controller) NextPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	p := c.pagination
	c.mu.Unlock()
	if !p.HasNext {
		return false, nil
	}
	return true, c.Load(ctx, p.CurrentPage+1)
}

// PrevPage loads the preceding page when there is one.
func (c *Controller) PrevPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	p := c.pagination
	c.mu.Unlock()
	if !p.HasPrev {
		return false, nil
	}
	return true, c.Load(ctx, p.CurrentPage-1)
}

// Snapshot returns a copy of the current state. An expired status comes back
// empty.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Kind != StatusNone && c.now().Sub(c.status.SetAt) >= StatusTTL {
		c.status = Status{}
	}

	return State{
		Values:     c.values,
		Errors:     maps.Clone(c.errs),
		Contacts:   slices.Clone(c.contacts),
		Pagination: c.pagination,
		Status:     c.status,
		Busy:       c.busyLocked(),
	}
}

func (c *Controller) busyLocked() bool {
	return c.submitting || c.loading > 0
}

func (c *Controller) indexLocked(id int64) int {
	return slices.IndexFunc(c.contacts, func(x models.Contact) bool { return x.ID == id })
}

func (c *Controller) setStatusLocked(kind StatusKind, msg string) {
	c.status = Status{Kind: kind, Message: msg, SetAt: c.now()}
}

// messageOr returns the server's message for err, or fallback when the
// failure never reached the server.
func messageOr(err error, fallback string) string {
	if msg, ok := client.Message(err); ok {
		return msg
	}
	return fallback
}
