package content

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("content: not found")

// TicketStatus tracks a support ticket through the admin console.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved:
		return true
	}
	return false
}

type Ticket struct {
	ID        string
	UserID    string
	Subject   string
	Message   string
	Status    TicketStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Post struct {
	ID        string
	Title     string
	Author    string
	Body      string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Job struct {
	ID          string
	Title       string
	Location    string
	Description string
	Open        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
