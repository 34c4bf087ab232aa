package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabletop/backend/internal/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUnauthorized = errors.New("unauthorized to modify this resource")
)

// GameService is the data-access layer for catalog entries.
type GameService interface {
	// List returns every game, newest first.
	List(ctx context.Context) ([]models.Game, error)
	GetByID(ctx context.Context, id string) (*models.Game, error)
	Create(ctx context.Context, creator models.Identity, req *models.GameRequest) (*models.Game, error)
	// Update and Delete return ErrUnauthorized unless userID created the game.
	Update(ctx context.Context, userID, gameID string, req *models.GameRequest) (*models.Game, error)
	Delete(ctx context.Context, userID, gameID string) error
}

type MemoryGameService struct {
	mu    sync.RWMutex
	games map[string]*models.Game
}

func NewMemoryGameService() *MemoryGameService {
	return &MemoryGameService{
		games: make(map[string]*models.Game),
	}
}

func (s *MemoryGameService) List(ctx context.Context) ([]models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryGameService) GetByID(ctx context.Context, id string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, exists := s.games[id]
	if !exists {
		return nil, ErrGameNotFound
	}
	gameCopy := *game
	return &gameCopy, nil
}

func (s *MemoryGameService) Create(ctx context.Context, creator models.Identity, req *models.GameRequest) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := &models.Game{
		ID:              uuid.New().String(),
		UserID:          creator.UserID,
		UserDisplayName: creator.DisplayName,
		CreatedAt:       time.Now().UTC(),
	}
	req.Apply(game)

	s.games[game.ID] = game
	gameCopy := *game
	return &gameCopy, nil
}

func (s *MemoryGameService) Update(ctx context.Context, userID, gameID string, req *models.GameRequest) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, exists := s.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	if game.UserID != userID {
		return nil, ErrUnauthorized
	}

	req.Apply(game)
	gameCopy := *game
	return &gameCopy, nil
}

func (s *MemoryGameService) Delete(ctx context.Context, userID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, exists := s.games[gameID]
	if !exists {
		return ErrGameNotFound
	}
	if game.UserID != userID {
		return ErrUnauthorized
	}

	delete(s.games, gameID)
	return nil
}
