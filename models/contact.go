package models

import "time"

// Contact is one stored address book entry.
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at,omitzero" db:"created_at"`
}

// ContactInput is the body accepted when creating a contact.
type ContactInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Pagination describes where a page sits in the full contact list.
type Pagination struct {
	CurrentPage   int  `json:"currentPage" yaml:"currentPage"`
	TotalPages    int  `json:"totalPages" yaml:"totalPages"`
	TotalContacts int  `json:"totalContacts" yaml:"totalContacts"`
	HasNext       bool `json:"hasNext" yaml:"hasNext"`
	HasPrev       bool `json:"hasPrev" yaml:"hasPrev"`
}

// ContactPage is one page of contacts, newest first.
type ContactPage struct {
	Contacts   []Contact  `json:"contacts"`
	Pagination Pagination `json:"pagination"`
}

// Health is the liveness payload served by /api/health.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
