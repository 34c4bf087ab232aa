package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tabletop/backend/internal/models"
)

var (
	ErrAlreadyInCollection = errors.New("game already in collection")
	ErrNotInCollection     = errors.New("game not in collection")
)

// CollectionService keeps each user's saved games as snapshots, so entries
// outlive edits and deletion of the catalog entry.
type CollectionService interface {
	// List returns the user's entries, most recently added first.
	List(ctx context.Context, userID string) ([]models.CollectionEntry, error)
	Add(ctx context.Context, userID string, game models.Game) (*models.CollectionEntry, error)
	Remove(ctx context.Context, userID, gameID string) error
	Contains(ctx context.Context, userID, gameID string) (bool, error)
	// GameIDs returns the set of game ids in the user's collection.
	GameIDs(ctx context.Context, userID string) (map[string]bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type collectionKey struct {
	userID string
	gameID string
}

type MemoryCollectionService struct {
	mu      sync.RWMutex
	entries map[collectionKey]*models.CollectionEntry
}

func NewMemoryCollectionService() *MemoryCollectionService {
	return &MemoryCollectionService{
		entries: make(map[collectionKey]*models.CollectionEntry),
	}
}

func (s *MemoryCollectionService) List(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CollectionEntry, 0)
	for key, e := range s.entries {
		if key.userID == userID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (s *MemoryCollectionService) Add(ctx context.Context, userID string, game models.Game) (*models.CollectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := collectionKey{userID: userID, gameID: game.ID}
	if _, exists := s.entries[key]; exists {
		return nil, ErrAlreadyInCollection
	}

	entry := &models.CollectionEntry{
		UserID:  userID,
		GameID:  game.ID,
		Game:    game,
		AddedAt: time.Now().UTC(),
	}
	s.entries[key] = entry

	entryCopy := *entry
	return &entryCopy, nil
}

func (s *MemoryCollectionService) Remove(ctx context.Context, userID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := collectionKey{userID: userID, gameID: gameID}
	if _, exists := s.entries[key]; !exists {
		return ErrNotInCollection
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryCollectionService) Contains(ctx context.Context, userID, gameID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[collectionKey{userID: userID, gameID: gameID}]
	return exists, nil
}

func (s *MemoryCollectionService) GameIDs(ctx context.Context, userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]bool)
	for key := range s.entries {
		if key.userID == userID {
			ids[key.gameID] = true
		}
	}
	return ids, nil
}

func (s *MemoryCollectionService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key := range s.entries {
		if key.userID == userID {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}
