package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cattlesense/internal/db"
)

const userColumns = `
	id, email, display_name, role, photo_url, phone,
	is_active, is_profile_complete, onboarding_step,
	settings, created_at, updated_at
`

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u        User
		settings []byte
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.PhotoURL, &u.Phone,
		&u.IsActive, &u.IsProfileComplete, &u.OnboardingStep,
		&settings, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &u.Settings); err != nil {
			return nil, fmt.Errorf("user: failed to decode settings: %w", err)
		}
	}

	// Records written before a column existed come back with zero values;
	// normalize them to the documented defaults.
	if !u.Role.Valid() {
		u.Role = RoleConsumer
	}
	if u.OnboardingStep < 1 {
		u.OnboardingStep = 1
	}

	return &u, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("user: failed to encode settings: %w", err)
	}

	if !u.Role.Valid() {
		u.Role = RoleConsumer
	}
	if u.OnboardingStep < 1 {
		u.OnboardingStep = 1
	}

	return s.db.QueryRowContext(ctx, `
		INSERT INTO users (
			email, display_name, role, photo_url, phone,
			is_active, is_profile_complete, onboarding_step, settings
		)
		VALUES ($1, $2, $3, $4, $5, true, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		u.Email, u.DisplayName, u.Role, u.PhotoURL, u.Phone,
		u.IsProfileComplete, u.OnboardingStep, settings,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    photo_url    = COALESCE($3, photo_url),
		    phone        = COALESCE($4, phone),
		    updated_at   = NOW()
		WHERE id = $1
	`, id, upd.DisplayName, upd.PhotoURL, upd.Phone)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) SetSettings(ctx context.Context, id string, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("user: failed to encode settings: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET settings = $2, updated_at = NOW()
		WHERE id = $1
	`, id, data)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) SetBasicInfo(ctx context.Context, id string, role Role, phone string, step int, complete bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET role = $2,
		    phone = $3,
		    onboarding_step = $4,
		    is_profile_complete = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, id, role, phone, step, complete)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) SetOnboardingState(ctx context.Context, id string, step int, complete bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET onboarding_step = $2,
		    is_profile_complete = $3,
		    updated_at = NOW()
		WHERE id = $1
	`, id, step, complete)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) GetResearcherProfile(ctx context.Context, id string) (*ResearcherProfile, error) {
	var p ResearcherProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, institution_name, institution_type, role_designation,
		       project_name, research_area, verification_status,
		       created_at, updated_at
		FROM researcher_profiles
		WHERE user_id = $1
	`, id).Scan(
		&p.UserID, &p.InstitutionName, &p.InstitutionType, &p.RoleDesignation,
		&p.ProjectName, &p.ResearchArea, &p.VerificationStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CompleteResearcherOnboarding(ctx context.Context, id string, p ResearcherProfile, step int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Re-submission overwrites the profile rather than appending.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO researcher_profiles (
			user_id, institution_name, institution_type, role_designation,
			project_name, research_area, verification_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (user_id) DO UPDATE
		SET institution_name = EXCLUDED.institution_name,
		    institution_type = EXCLUDED.institution_type,
		    role_designation = EXCLUDED.role_designation,
		    project_name     = EXCLUDED.project_name,
		    research_area    = EXCLUDED.research_area,
		    updated_at       = NOW()
	`,
		id, p.InstitutionName, p.InstitutionType, p.RoleDesignation,
		p.ProjectName, p.ResearchArea,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET onboarding_step = $2,
		    is_profile_complete = true,
		    updated_at = NOW()
		WHERE id = $1
	`, id, step)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	// Credentials, identities and the researcher profile go with the row
	// via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
