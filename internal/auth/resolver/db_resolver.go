package resolver

import (
	"context"
	"database/sql"
	"errors"

	"cattlesense/internal/auth"
	"cattlesense/internal/db"
	"cattlesense/internal/user"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the database.
type DBResolver struct {
	db    *db.DB
	users user.Store
}

func NewDBResolver(db *db.DB, users user.Store) *DBResolver {
	return &DBResolver{db: db, users: users}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*user.User, error) {

	if identity == nil {
		return nil, errors.New("identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return r.users.Get(ctx, userID.String())
	}

	if err != sql.ErrNoRows {
		return nil, err
	}

	// 2. Try email-based linking (existing user, new provider)
	existing, err := r.users.GetByEmail(ctx, identity.Email)
	if err == nil {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`,
			existing.ID,
			identity.Provider,
			identity.ProviderUserID,
		)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	// 3. First sign-in: create the default record. New accounts start as
	// consumers at the first onboarding step and must complete their
	// profile before reaching the dashboard.
	u := &user.User{
		Email:             identity.Email,
		DisplayName:       identity.DisplayName,
		Role:              user.RoleConsumer,
		PhotoURL:          identity.PhotoURL,
		IsProfileComplete: false,
		OnboardingStep:    1,
	}
	if u.DisplayName == "" {
		u.DisplayName = "User"
	}

	if err := r.users.Create(ctx, u); err != nil {
		return nil, err
	}

	// 4. Create identity mapping
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		u.ID,
		identity.Provider,
		identity.ProviderUserID,
	)

	if err != nil {
		return nil, err
	}

	return u, nil
}
