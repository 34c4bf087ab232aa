package services

import (
	"context"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

// CachedGameService serves List from a CatalogCache and drops the cached list
// after every successful write. A list loaded before a write is never cached
// after it. Cache failures fall through to the store.
type CachedGameService struct {
	GameService
	cache CatalogCache
}

func NewCachedGameService(next GameService, cache CatalogCache) *CachedGameService {
	return &CachedGameService{GameService: next, cache: cache}
}

func (s *CachedGameService) List(ctx context.Context) ([]models.Game, error) {
	games, ok, err := s.cache.Get(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("catalog cache read failed")
	}
	if ok {
		return games, nil
	}

	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		logging.FromContext(ctx).Warn().Err(genErr).Msg("catalog cache generation read failed")
	}

	games, err = s.GameService.List(ctx)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		if err := s.cache.Set(ctx, gen, games); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return games, nil
}

func (s *CachedGameService) Create(ctx context.Context, creator models.Identity, req *models.GameRequest) (*models.Game, error) {
	game, err := s.GameService.Create(ctx, creator, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return game, nil
}

func (s *CachedGameService) Update(ctx context.Context, userID, gameID string, req *models.GameRequest) (*models.Game, error) {
	game, err := s.GameService.Update(ctx, userID, gameID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return game, nil
}

func (s *CachedGameService) Delete(ctx context.Context, userID, gameID string) error {
	if err := s.GameService.Delete(ctx, userID, gameID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedGameService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
