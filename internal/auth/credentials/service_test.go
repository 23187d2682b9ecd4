package credentials

import (
	"context"
	"strconv"
	"testing"

	"cattlesense/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCredStore struct {
	hashes map[string]string
}

func newMemCredStore() *memCredStore {
	return &memCredStore{hashes: make(map[string]string)}
}

func (s *memCredStore) GetHash(ctx context.Context, userID string) (string, error) {
	h, ok := s.hashes[userID]
	if !ok {
		return "", ErrNoCredentials
	}
	return h, nil
}

func (s *memCredStore) Upsert(ctx context.Context, userID, hash, version string) error {
	s.hashes[userID] = hash
	return nil
}

type memTokenStore struct {
	seq    int
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]string)}
}

func (s *memTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	s.seq++
	token := "token-" + strconv.Itoa(s.seq)
	s.tokens[token] = userID
	return token, nil
}

func (s *memTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", ErrInvalidResetToken
	}
	delete(s.tokens, token)
	return userID, nil
}

type capturingMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *capturingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return nil
}

func newTestService() (*Service, *user.MemStore, *memTokenStore, *capturingMailer) {
	users := user.NewMemStore()
	tokens := newMemTokenStore()
	mail := &capturingMailer{}
	return NewService(users, newMemCredStore(), tokens, mail), users, tokens, mail
}

func TestRegisterCreatesIncompleteRecord(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestService()

	u, err := svc.Register(ctx, "new@example.com", "correct-horse", "Asha", user.RoleResearcher)
	require.NoError(t, err)

	assert.Equal(t, user.RoleResearcher, u.Role)
	assert.False(t, u.IsProfileComplete)
	assert.Equal(t, 1, u.OnboardingStep)

	stored, err := users.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.DisplayName)
}

func TestRegisterDefaultsToConsumer(t *testing.T) {
	svc, _, _, _ := newTestService()

	u, err := svc.Register(context.Background(), "new@example.com", "correct-horse", "", "")
	require.NoError(t, err)
	assert.Equal(t, user.RoleConsumer, u.Role)
	assert.Equal(t, "User", u.DisplayName)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "new@example.com", "correct-horse", "", user.RoleAdmin)
	assert.Error(t, err)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, users, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "new@example.com", "short", "", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = users.GetByEmail(context.Background(), "new@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestRegisterRejectsOAuthProvisionedEmail(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestService()

	// Account created by the identity resolver on first Google sign-in;
	// it has no password credentials.
	victim := &user.User{Email: "victim@example.com", DisplayName: "Victim"}
	require.NoError(t, users.Create(ctx, victim))

	// A password signup for that email must not capture the account.
	_, err := svc.Register(ctx, "victim@example.com", "attacker-pass", "Attacker", "")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = svc.Authenticate(ctx, "victim@example.com", "attacker-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := users.Get(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, "Victim", stored.DisplayName)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	_, err := svc.Register(ctx, "new@example.com", "correct-horse", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "new@example.com", "another-pass", "", "")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	registered, err := svc.Register(ctx, "new@example.com", "correct-horse", "", "")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "new@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Authenticate(ctx, "new@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts fail identically to wrong passwords.
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _, mail := newTestService()

	_, err := svc.Register(ctx, "new@example.com", "correct-horse", "Asha", "")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "new@example.com"))
	require.Equal(t, 1, mail.sent)
	assert.Equal(t, "new@example.com", mail.to)
	assert.Contains(t, mail.body, "token-1")

	require.NoError(t, svc.ConfirmPasswordReset(ctx, "token-1", "brand-new-pass"))

	_, err = svc.Authenticate(ctx, "new@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "new@example.com", "brand-new-pass")
	assert.NoError(t, err)

	// Tokens are single use.
	err = svc.ConfirmPasswordReset(ctx, "token-1", "yet-another-pass")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetHidesUnknownEmails(t *testing.T) {
	svc, _, _, mail := newTestService()

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Zero(t, mail.sent)
}

func TestHashPassword(t *testing.T) {
	hash, version, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.Equal(t, HashVersionBcrypt, version)
	assert.NoError(t, VerifyPassword(hash, "correct-horse"))
	assert.Error(t, VerifyPassword(hash, "wrong"))

	_, _, err = HashPassword("1234567")
	assert.ErrorIs(t, err, ErrWeakPassword)
}
