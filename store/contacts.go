package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/satheeshds/contactbook/models"
)

// Newest first; id breaks ties between rows inserted within the same clock tick.
const listContactsQuery = `SELECT id, name, email, phone, created_at
	FROM contacts
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?`

// Contacts reads and writes the contacts table. Queries are written with
// '?' placeholders and rebound for the connected driver.
type Contacts struct {
	db *sqlx.DB
}

// NewContacts returns a store backed by db. The schema must already exist.
func NewContacts(db *sqlx.DB) *Contacts {
	return &Contacts{db: db}
}

// Insert stores a new contact and returns its assigned id.
func (s *Contacts) Insert(ctx context.Context, input models.ContactInput) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind("INSERT INTO contacts (name, email, phone) VALUES (?, ?, ?) RETURNING id"),
		input.Name, input.Email, input.Phone).Scan(&id)
	if err != nil {
		return 0, wrap("Insert", err)
	}
	return id, nil
}

// Count returns the number of stored contacts.
func (s *Contacts) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contacts"); err != nil {
		return 0, wrap("Count", err)
	}
	return total, nil
}

// ListPage returns at most limit contacts starting at offset.
func (s *Contacts) ListPage(ctx context.Context, limit, offset int) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, s.db.Rebind(listContactsQuery), limit, offset); err != nil {
		return nil, wrap("ListPage", err)
	}
	return contacts, nil
}

// Delete removes the contact with the given id. It returns ErrNotFound when
// no row was affected.
func (s *Contacts) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM contacts WHERE id = ?"), id)
	if err != nil {
		return wrap("Delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("Delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
