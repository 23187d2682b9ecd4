package resolver

import (
	"context"

	"cattlesense/internal/auth"
	"cattlesense/internal/user"
)

// Resolver determines which profile record an external identity belongs to,
// creating a default record on first sign-in. It is the ONLY place where
// identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (*user.User, error)
}
