package user

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemStore is an in-memory Store. It backs tests and local experiments;
// production wiring uses the Postgres store.
type MemStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*User
	profiles map[string]*ResearcherProfile

	// FailWrites makes every mutation return the given error, for testing
	// how callers behave when persistence is down.
	FailWrites error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]*User),
		profiles: make(map[string]*ResearcherProfile),
	}
}

func (s *MemStore) Get(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	if u.ID == "" {
		s.seq++
		u.ID = "user-" + strconv.Itoa(s.seq)
	}
	if u.Role == "" {
		u.Role = RoleConsumer
	}
	if u.OnboardingStep == 0 {
		u.OnboardingStep = 1
	}
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemStore) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetSettings(ctx context.Context, id string, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Settings = settings
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetBasicInfo(ctx context.Context, id string, role Role, phone string, step int, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.Phone = phone
	u.OnboardingStep = step
	u.IsProfileComplete = complete
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetOnboardingState(ctx context.Context, id string, step int, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.OnboardingStep = step
	u.IsProfileComplete = complete
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) GetResearcherProfile(ctx context.Context, id string) (*ResearcherProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) CompleteResearcherOnboarding(ctx context.Context, id string, p ResearcherProfile, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	p.UserID = id
	if p.VerificationStatus == "" {
		p.VerificationStatus = "pending"
	}
	now := time.Now()
	if existing, ok := s.profiles[id]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[id] = &p

	u.OnboardingStep = step
	u.IsProfileComplete = true
	u.UpdatedAt = now
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.profiles, id)
	return nil
}
