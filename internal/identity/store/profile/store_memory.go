package profile

import (
	"context"
	"sync"

	"worktrack/internal/identity/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map keyed by user ID.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.UserID]*models.Profile)}
}

// Save upserts the profile. Provisioning is an ensure operation: saving an
// existing profile overwrites it rather than failing.
func (s *InMemory) Save(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.UserID] = &cp
	return nil
}

func (s *InMemory) FindByUserID(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (s *InMemory) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.profiles, userID)
	return nil
}
