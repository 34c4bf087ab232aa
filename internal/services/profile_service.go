package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tabletop/backend/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService stores the user document created at registration.
type ProfileService interface {
	// Create writes the profile for a new identity. An existing document keeps
	// its image and login time but takes the new email and display name.
	Create(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error)
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Update(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error)
	// Delete is a no-op for unknown users.
	Delete(ctx context.Context, userID string) error
}

type MemoryProfileService struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
}

func NewMemoryProfileService() *MemoryProfileService {
	return &MemoryProfileService{
		profiles: make(map[string]*models.UserProfile),
	}
}

func (s *MemoryProfileService) Create(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, exists := s.profiles[userID]
	if !exists {
		prof = &models.UserProfile{UserID: userID}
		s.profiles[userID] = prof
	}
	prof.Email = email
	prof.DisplayName = strings.TrimSpace(displayName)
	prof.UpdatedAt = time.Now().UTC()

	profCopy := *prof
	return &profCopy, nil
}

func (s *MemoryProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prof, exists := s.profiles[userID]
	if !exists {
		return nil, ErrProfileNotFound
	}
	profCopy := *prof
	return &profCopy, nil
}

func (s *MemoryProfileService) Update(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, exists := s.profiles[userID]
	if !exists {
		return nil, ErrProfileNotFound
	}
	if update.DisplayName != nil {
		prof.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.ProfileImageURL != nil {
		prof.ProfileImageURL = *update.ProfileImageURL
	}
	if update.LastLoginAt != nil {
		at := update.LastLoginAt.UTC()
		prof.LastLoginAt = &at
	}
	prof.UpdatedAt = time.Now().UTC()

	profCopy := *prof
	return &profCopy, nil
}

func (s *MemoryProfileService) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)
	return nil
}
