package user

import "context"

// Store is the persistence boundary for profile records. The Postgres
// implementation is canonical; tests substitute in-memory fakes.
type Store interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	SetSettings(ctx context.Context, id string, s Settings) error

	// SetBasicInfo applies the first onboarding step: role and phone plus
	// the resulting step/completeness, all in one statement so the record
	// either advances fully or not at all.
	SetBasicInfo(ctx context.Context, id string, role Role, phone string, step int, complete bool) error
	SetOnboardingState(ctx context.Context, id string, step int, complete bool) error

	GetResearcherProfile(ctx context.Context, id string) (*ResearcherProfile, error)
	// CompleteResearcherOnboarding upserts the researcher profile and marks
	// the record complete in a single transaction.
	CompleteResearcherOnboarding(ctx context.Context, id string, p ResearcherProfile, step int) error

	Delete(ctx context.Context, id string) error
}
