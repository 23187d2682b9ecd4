package onboarding

import (
	"context"
	"errors"
	"fmt"

	"cattlesense/internal/logger"
	"cattlesense/internal/user"
)

// Onboarding step checkpoints stored on the profile record. Completion is
// tracked by the is_profile_complete flag; the step number exists so an
// interrupted flow resumes where it left off.
const (
	StepRoleSelect  = 1
	StepRoleDetails = 2
	StepTerminal    = 4
)

type State int

const (
	StateRoleSelect State = iota
	StateRoleDetails
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateRoleSelect:
		return "role_select"
	case StateRoleDetails:
		return "role_details"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrWrongState  = errors.New("onboarding: operation not valid in current state")
	ErrInvalidRole = errors.New("onboarding: invalid role selection")
)

// ProfileStore is the slice of the user store the machine needs.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
	SetBasicInfo(ctx context.Context, id string, role user.Role, phone string, step int, complete bool) error
	SetOnboardingState(ctx context.Context, id string, step int, complete bool) error
	GetResearcherProfile(ctx context.Context, id string) (*user.ResearcherProfile, error)
	CompleteResearcherOnboarding(ctx context.Context, id string, p user.ResearcherProfile, step int) error
}

// Machine drives the profile-completion flow. All transitions persist
// before they are reported; a failed write leaves the record where it was.
type Machine struct {
	store ProfileStore
}

func NewMachine(store ProfileStore) *Machine {
	return &Machine{store: store}
}

// Status is the machine's view of one record.
type Status struct {
	Role     user.Role
	Step     int
	Complete bool
	State    State
}

// StateOf derives the machine state from a stored record. A step at or past
// the terminal checkpoint counts as complete even if the flag was never
// written; the flag stays authoritative for access decisions.
func StateOf(u *user.User) State {
	if u.IsProfileComplete || u.OnboardingStep >= StepTerminal {
		return StateComplete
	}
	if u.OnboardingStep >= StepRoleDetails && u.Role.RequiresVerification() {
		return StateRoleDetails
	}
	return StateRoleSelect
}

// Status reports where the record stands, repairing records whose role
// profile was written but whose completion update never landed.
func (m *Machine) Status(ctx context.Context, userID string) (Status, error) {
	u, err := m.store.Get(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	if !u.IsProfileComplete && u.Role.RequiresVerification() {
		repaired, err := m.repair(ctx, u)
		if err != nil {
			return Status{}, err
		}
		if repaired {
			u.OnboardingStep = StepTerminal
			u.IsProfileComplete = true
		}
	}

	return statusOf(u), nil
}

// repair closes the gap left by an interrupted completion: the researcher
// profile exists but the record still reads incomplete. Only the step
// update is re-run.
func (m *Machine) repair(ctx context.Context, u *user.User) (bool, error) {
	_, err := m.store.GetResearcherProfile(ctx, u.ID)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := m.store.SetOnboardingState(ctx, u.ID, StepTerminal, true); err != nil {
		return false, err
	}

	logger.Info("repaired interrupted onboarding completion", map[string]any{
		"user_id": u.ID,
	})
	return true, nil
}

// SubmitBasicInfo applies the role selection step. Consumers finish here;
// roles needing verification move on to the details step.
func (m *Machine) SubmitBasicInfo(ctx context.Context, userID string, role user.Role, phone string) (Status, error) {
	u, err := m.store.Get(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	if StateOf(u) != StateRoleSelect {
		return Status{}, ErrWrongState
	}

	if !role.Valid() || role == user.RoleAdmin {
		return Status{}, ErrInvalidRole
	}

	step, complete := StepTerminal, true
	if role.RequiresVerification() {
		step, complete = StepRoleDetails, false
	}

	if err := m.store.SetBasicInfo(ctx, userID, role, phone, step, complete); err != nil {
		return Status{}, err
	}

	u.Role = role
	u.Phone = phone
	u.OnboardingStep = step
	u.IsProfileComplete = complete
	return statusOf(u), nil
}

// ResearcherDetails are the verification fields captured at the details step.
type ResearcherDetails struct {
	InstitutionName string
	InstitutionType string
	RoleDesignation string
	ProjectName     string
	ResearchArea    string
}

// SubmitRoleDetails writes the role profile and marks the record complete in
// one transaction. Re-submission overwrites the profile and leaves the
// step and completeness untouched.
func (m *Machine) SubmitRoleDetails(ctx context.Context, userID string, details ResearcherDetails) (Status, error) {
	u, err := m.store.Get(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	if !u.Role.RequiresVerification() || StateOf(u) == StateRoleSelect {
		return Status{}, ErrWrongState
	}

	profile := user.ResearcherProfile{
		UserID:          userID,
		InstitutionName: details.InstitutionName,
		InstitutionType: details.InstitutionType,
		RoleDesignation: details.RoleDesignation,
		ProjectName:     details.ProjectName,
		ResearchArea:    details.ResearchArea,
	}

	if err := m.store.CompleteResearcherOnboarding(ctx, userID, profile, StepTerminal); err != nil {
		return Status{}, err
	}

	u.OnboardingStep = StepTerminal
	u.IsProfileComplete = true
	return statusOf(u), nil
}

func statusOf(u *user.User) Status {
	st := StateOf(u)
	step := u.OnboardingStep
	if st == StateComplete && step < StepTerminal {
		step = StepTerminal
	}
	return Status{
		Role:     u.Role,
		Step:     step,
		Complete: u.IsProfileComplete,
		State:    st,
	}
}
