package account

import (
	"context"
	"errors"
	"time"

	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/logger"
	"cattlesense/internal/session"
	"cattlesense/internal/user"
)

// ErrReauthRequired is returned when a sensitive operation is attempted on
// a session older than the reauth window; the caller must sign in again.
var ErrReauthRequired = errors.New("account: recent login required")

// reauthWindow bounds how old a session may be for account deletion.
const reauthWindow = 10 * time.Minute

type Service struct {
	users    user.Store
	creds    *credentials.Service
	sessions session.Store
}

func NewService(users user.Store, creds *credentials.Service, sessions session.Store) *Service {
	return &Service{
		users:    users,
		creds:    creds,
		sessions: sessions,
	}
}

func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, upd user.ProfileUpdate) error {
	return s.users.UpdateProfile(ctx, userID, upd)
}

// UpdateSettings merges the given sections onto the stored settings;
// sections the caller leaves out are preserved.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings user.Settings) (user.Settings, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return user.Settings{}, err
	}

	merged := u.Settings.Merge(settings)
	if err := s.users.SetSettings(ctx, userID, merged); err != nil {
		return user.Settings{}, err
	}
	return merged, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, password string) error {
	return s.creds.ChangePassword(ctx, userID, password)
}

// Delete removes the account, its role profile and credentials (cascaded by
// the store) and revokes every session. The session must be recent.
func (s *Service) Delete(ctx context.Context, sess *session.Session) error {
	if time.Since(sess.CreatedAt) > reauthWindow {
		return ErrReauthRequired
	}

	if err := s.users.Delete(ctx, sess.UserID); err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForUser(ctx, sess.UserID); err != nil {
		// The account row is gone; orphaned sessions fail closed when the
		// profile lookup misses, so log and move on.
		logger.Error("failed to revoke sessions after account deletion", map[string]any{
			"error":   err.Error(),
			"user_id": sess.UserID,
		})
	}
	return nil
}
