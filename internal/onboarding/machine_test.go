package onboarding

import (
	"context"
	"errors"
	"testing"

	"cattlesense/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, store *user.MemStore) *user.User {
	t.Helper()
	u := &user.User{Email: "farmer@example.com", DisplayName: "User"}
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		u    user.User
		want State
	}{
		{"fresh record", user.User{Role: user.RoleConsumer, OnboardingStep: 1}, StateRoleSelect},
		{"completed flag", user.User{Role: user.RoleConsumer, OnboardingStep: 1, IsProfileComplete: true}, StateComplete},
		{"terminal step without flag", user.User{Role: user.RoleConsumer, OnboardingStep: 4}, StateComplete},
		{"researcher mid-flow", user.User{Role: user.RoleResearcher, OnboardingStep: 2}, StateRoleDetails},
		{"consumer stuck at step two", user.User{Role: user.RoleConsumer, OnboardingStep: 2}, StateRoleSelect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(&tt.u))
		})
	}
}

func TestSubmitBasicInfoConsumerFinishesImmediately(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	st, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleConsumer, "+91-9000000001")
	require.NoError(t, err)

	assert.Equal(t, StateComplete, st.State)
	assert.Equal(t, StepTerminal, st.Step)
	assert.True(t, st.Complete)

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsProfileComplete)
	assert.Equal(t, StepTerminal, stored.OnboardingStep)
	assert.Equal(t, "+91-9000000001", stored.Phone)
}

func TestSubmitBasicInfoResearcherNeedsDetails(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	st, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleResearcher, "")
	require.NoError(t, err)

	assert.Equal(t, StateRoleDetails, st.State)
	assert.Equal(t, StepRoleDetails, st.Step)
	assert.False(t, st.Complete)

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsProfileComplete)
}

func TestSubmitBasicInfoRejectsInvalidRoles(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	for _, role := range []user.Role{user.RoleAdmin, "veterinarian", ""} {
		_, err := m.SubmitBasicInfo(ctx, u.ID, role, "")
		assert.ErrorIs(t, err, ErrInvalidRole, "role %q", role)
	}

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.OnboardingStep)
}

func TestSubmitBasicInfoOnlyFromRoleSelect(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleConsumer, "")
	require.NoError(t, err)

	_, err = m.SubmitBasicInfo(ctx, u.ID, user.RoleResearcher, "")
	assert.ErrorIs(t, err, ErrWrongState)

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleConsumer, stored.Role)
	assert.True(t, stored.IsProfileComplete)
}

func TestSubmitBasicInfoDoesNotAdvanceOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	store.FailWrites = errors.New("connection reset")
	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleConsumer, "")
	require.Error(t, err)
	store.FailWrites = nil

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsProfileComplete)
	assert.Equal(t, 1, stored.OnboardingStep)

	// The step is still open, so a retry succeeds.
	st, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleConsumer, "")
	require.NoError(t, err)
	assert.True(t, st.Complete)
}

func TestSubmitRoleDetailsCompletesResearcher(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleResearcher, "")
	require.NoError(t, err)

	st, err := m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{
		InstitutionName: "NDRI Karnal",
		InstitutionType: "government",
		RoleDesignation: "Senior Scientist",
		ProjectName:     "AMU surveillance",
		ResearchArea:    "antimicrobial usage",
	})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, st.State)
	assert.Equal(t, StepTerminal, st.Step)
	assert.True(t, st.Complete)

	profile, err := store.GetResearcherProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "NDRI Karnal", profile.InstitutionName)
	assert.Equal(t, "pending", profile.VerificationStatus)
}

func TestSubmitRoleDetailsResubmissionOverwritesProfile(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleResearcher, "")
	require.NoError(t, err)
	_, err = m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{InstitutionName: "Old Institute"})
	require.NoError(t, err)

	st, err := m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{InstitutionName: "New Institute"})
	require.NoError(t, err)
	assert.True(t, st.Complete)
	assert.Equal(t, StepTerminal, st.Step)

	profile, err := store.GetResearcherProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Institute", profile.InstitutionName)
}

func TestSubmitRoleDetailsRejectsRolesWithoutVerification(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleConsumer, "")
	require.NoError(t, err)

	_, err = m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{InstitutionName: "NDRI"})
	assert.ErrorIs(t, err, ErrWrongState)

	_, err = store.GetResearcherProfile(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestSubmitRoleDetailsRejectsBeforeRoleSelection(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{InstitutionName: "NDRI"})
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestStatusNormalizesStepForCompletedRecords(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	// Legacy record: flag set but step never bumped past the details step.
	require.NoError(t, store.SetBasicInfo(ctx, u.ID, user.RoleConsumer, "", StepRoleDetails, true))

	st, err := m.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, st.State)
	assert.Equal(t, StepTerminal, st.Step)
}

func TestStatusRepairsInterruptedCompletion(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	// Profile row landed but the completion update did not.
	require.NoError(t, store.SetBasicInfo(ctx, u.ID, user.RoleResearcher, "", StepRoleDetails, false))
	require.NoError(t, store.CompleteResearcherOnboarding(ctx, u.ID, user.ResearcherProfile{InstitutionName: "NDRI"}, StepTerminal))
	require.NoError(t, store.SetOnboardingState(ctx, u.ID, StepRoleDetails, false))

	st, err := m.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, st.State)
	assert.True(t, st.Complete)

	stored, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsProfileComplete)
	assert.Equal(t, StepTerminal, stored.OnboardingStep)
}

func TestStatusDoesNotRepairWithoutProfile(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	require.NoError(t, store.SetBasicInfo(ctx, u.ID, user.RoleResearcher, "", StepRoleDetails, false))

	st, err := m.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRoleDetails, st.State)
	assert.False(t, st.Complete)
}

func TestResearcherResumesAtDetailsStep(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	m := NewMachine(store)
	u := newTestUser(t, store)

	_, err := m.SubmitBasicInfo(ctx, u.ID, user.RoleResearcher, "")
	require.NoError(t, err)

	// Signed out and back in: status points at the details step, not the start.
	st, err := m.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRoleDetails, st.State)
	assert.Equal(t, StepRoleDetails, st.Step)

	_, err = m.SubmitRoleDetails(ctx, u.ID, ResearcherDetails{InstitutionName: "NDRI"})
	require.NoError(t, err)

	st, err = m.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, st.State)
}
