package services

import (
	"context"
	"sync"
	"time"

	"github.com/tabletop/backend/internal/models"
)

// FlagService counts moderation strikes per user.
type FlagService interface {
	AddStrike(ctx context.Context, userID string) (*models.UserFlag, error)
	Delete(ctx context.Context, userID string) error
}

type MemoryFlagService struct {
	mu    sync.Mutex
	flags map[string]*models.UserFlag
}

func NewMemoryFlagService() *MemoryFlagService {
	return &MemoryFlagService{flags: make(map[string]*models.UserFlag)}
}

func (s *MemoryFlagService) AddStrike(ctx context.Context, userID string) (*models.UserFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	flag, exists := s.flags[userID]
	if !exists {
		flag = &models.UserFlag{UserID: userID}
		s.flags[userID] = flag
	}
	flag.Strikes++
	flag.LastStrikeAt = now
	flag.UpdatedAt = now

	flagCopy := *flag
	return &flagCopy, nil
}

func (s *MemoryFlagService) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flags, userID)
	return nil
}
