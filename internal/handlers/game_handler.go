package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tabletop/backend/internal/catalog"
	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/middleware"
	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type GameHandler struct {
	games      services.GameService
	comments   services.CommentService
	collection services.CollectionService
	profiles   services.ProfileService
	now        func() time.Time
}

func NewGameHandler(games services.GameService, comments services.CommentService, collection services.CollectionService, profiles services.ProfileService) *GameHandler {
	return &GameHandler{
		games:      games,
		comments:   comments,
		collection: collection,
		profiles:   profiles,
		now:        time.Now,
	}
}

// ListGames serves both the catalog and the gallery. Query parameters:
// search, sort (createdAt|rating|year), page, page_size.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	games, err := h.games.List(ctx)
	if err != nil {
		writeServerError(w, r, err, "Failed to list games")
		return
	}

	q := r.URL.Query()
	page := catalog.Apply(games, catalog.Query{
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	})

	owned := h.collectionIDs(ctx, r)
	now := h.now()
	views := make([]models.GameView, 0, len(page.Items))
	for _, g := range page.Items {
		views = append(views, h.view(g, owned, now))
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.Page[models.GameView]{
		Items: views,
		Meta:  page.Meta,
	}))
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	game, err := h.games.GetByID(ctx, chi.URLParam(r, "gameId"))
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not found"))
			return
		}
		writeServerError(w, r, err, "Failed to load game")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(h.view(*game, h.collectionIDs(ctx, r), h.now())))
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.ValidateCreate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	game, err := h.games.Create(ctx, withProfileName(ctx, h.profiles, identity), &req)
	if err != nil {
		writeServerError(w, r, err, "Failed to create game")
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(game))
}

func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.ValidateUpdate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	game, err := h.games.Update(ctx, identity.UserID, chi.URLParam(r, "gameId"), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGameNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not found"))
		case errors.Is(err, services.ErrUnauthorized):
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to update this game"))
		default:
			writeServerError(w, r, err, "Failed to update game")
		}
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(game))
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	gameID := chi.URLParam(r, "gameId")

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	if err := h.games.Delete(ctx, identity.UserID, gameID); err != nil {
		switch {
		case errors.Is(err, services.ErrGameNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not found"))
		case errors.Is(err, services.ErrUnauthorized):
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to delete this game"))
		default:
			writeServerError(w, r, err, "Failed to delete game")
		}
		return
	}

	if n, err := h.comments.DeleteByGame(ctx, gameID); err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("game_id", gameID).Msg("deleting comments of removed game failed")
	} else if n > 0 {
		logging.FromContext(ctx).Debug().Str("game_id", gameID).Int64("comments", n).Msg("comments removed with game")
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Game deleted successfully"}))
}

// collectionIDs is empty for anonymous callers. Lookup failures only cost
// the in_collection flags.
func (h *GameHandler) collectionIDs(ctx context.Context, r *http.Request) map[string]bool {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return nil
	}
	ids, err := h.collection.GameIDs(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("loading collection ids failed")
		return nil
	}
	return ids
}

func (h *GameHandler) view(g models.Game, owned map[string]bool, now time.Time) models.GameView {
	return models.GameView{
		Game:         g,
		CreatedAgo:   catalog.FormatElapsed(g.CreatedAt, now),
		InCollection: owned[g.ID],
	}
}
