package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type CollectionHandler struct {
	collection services.CollectionService
	games      services.GameService
}

func NewCollectionHandler(collection services.CollectionService, games services.GameService) *CollectionHandler {
	return &CollectionHandler{
		collection: collection,
		games:      games,
	}
}

func (h *CollectionHandler) ListCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	entries, err := h.collection.List(ctx, identity.UserID)
	if err != nil {
		writeServerError(w, r, err, "Failed to list collection")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(entries))
}

// AddToCollection saves a snapshot of the current catalog entry.
func (h *CollectionHandler) AddToCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	game, err := h.games.GetByID(ctx, chi.URLParam(r, "gameId"))
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not found"))
			return
		}
		writeServerError(w, r, err, "Failed to add to collection")
		return
	}

	entry, err := h.collection.Add(ctx, identity.UserID, *game)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyInCollection) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Game already in collection"))
			return
		}
		writeServerError(w, r, err, "Failed to add to collection")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(entry))
}

func (h *CollectionHandler) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	if err := h.collection.Remove(ctx, identity.UserID, chi.URLParam(r, "gameId")); err != nil {
		if errors.Is(err, services.ErrNotInCollection) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not in collection"))
			return
		}
		writeServerError(w, r, err, "Failed to remove from collection")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Game removed from collection"}))
}

func (h *CollectionHandler) InCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	found, err := h.collection.Contains(ctx, identity.UserID, chi.URLParam(r, "gameId"))
	if err != nil {
		writeServerError(w, r, err, "Failed to check collection")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]bool{"in_collection": found}))
}
