package session

import (
	"context"
	"time"
)

// Session represents an authenticated user session.
// It intentionally stores only identity pointers, not profile state.
type Session struct {
	SessionID string    // unique session identifier
	UserID    string    // references users.id
	CreatedAt time.Time // when the user last authenticated
	ExpiresAt time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteAllForUser revokes every live session of the given user.
	// Used when the account itself is removed.
	DeleteAllForUser(ctx context.Context, userID string) error
}
