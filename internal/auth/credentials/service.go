package credentials

import (
	"context"
	"errors"
	"fmt"

	"cattlesense/internal/logger"
	"cattlesense/internal/mailer"
	"cattlesense/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("credentials: invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials: already registered")
	ErrWeakPassword       = errors.New("credentials: password too short")
	ErrNoCredentials      = errors.New("credentials: no password set")
	ErrInvalidResetToken  = errors.New("credentials: invalid or expired reset token")
)

type Service struct {
	users  user.Store
	creds  Store
	tokens TokenStore
	mail   mailer.Mailer
}

func NewService(users user.Store, creds Store, tokens TokenStore, mail mailer.Mailer) *Service {
	return &Service{
		users:  users,
		creds:  creds,
		tokens: tokens,
		mail:   mail,
	}
}

// Register creates the profile record for email and attaches password
// credentials to it. New records start incomplete at the first onboarding
// step. Any email that already has an account is rejected, whether it was
// registered with a password or provisioned through OAuth: attaching a
// password to an OAuth-created record would hand the account to whoever
// submits the email first. Recovering such an account goes through the
// password-reset flow, which proves mailbox ownership.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
	name string,
	role user.Role,
) (*user.User, error) {

	if email == "" {
		return nil, fmt.Errorf("credentials: email is required")
	}
	if role == "" {
		role = user.RoleConsumer
	}
	if !role.Valid() || role == user.RoleAdmin {
		return nil, fmt.Errorf("credentials: invalid role %q", role)
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 1. Reject any email that already has an account.
	_, err = s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	// 2. Create the profile record.
	u := &user.User{
		Email:             email,
		DisplayName:       name,
		Role:              role,
		IsProfileComplete: false,
		OnboardingStep:    1,
	}
	if u.DisplayName == "" {
		u.DisplayName = "User"
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	// 3. Attach credentials.
	if err := s.creds.Upsert(ctx, u.ID, hash, version); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*user.User, error) {

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// hide whether the account exists
		return nil, ErrInvalidCredentials
	}

	hash, err := s.creds.GetHash(ctx, u.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// ChangePassword sets a new password for an already-authenticated user.
func (s *Service) ChangePassword(ctx context.Context, userID, password string) error {
	hash, version, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.creds.Upsert(ctx, userID, hash, version)
}

// RequestPasswordReset issues a reset token and mails it to the account
// owner. Unknown addresses are ignored so the endpoint does not reveal
// which emails are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		logger.Info("password reset requested for unknown email", nil)
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nUse the token below to reset your CattleSense password. "+
			"It expires in 30 minutes.\n\n%s\n\nIf you did not request this, ignore this email.",
		u.DisplayName, token,
	)
	return s.mail.Send(ctx, u.Email, "Reset your CattleSense password", body)
}

// ConfirmPasswordReset consumes a reset token and applies the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	userID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.creds.Upsert(ctx, userID, hash, version)
}
