package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tabletop/backend/internal/catalog"
	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type CommentHandler struct {
	comments services.CommentService
	games    services.GameService
	profiles services.ProfileService
	now      func() time.Time
}

func NewCommentHandler(comments services.CommentService, games services.GameService, profiles services.ProfileService) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		games:    games,
		profiles: profiles,
		now:      time.Now,
	}
}

// ListComments takes page and page_size query parameters.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	gameID := chi.URLParam(r, "gameId")
	if !h.gameExists(ctx, w, r, gameID) {
		return
	}

	page, err := h.page(ctx, gameID, queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		writeServerError(w, r, err, "Failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(page))
}

// AddComment answers with the refreshed first page.
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	gameID := chi.URLParam(r, "gameId")
	if !h.gameExists(ctx, w, r, gameID) {
		return
	}

	author := withProfileName(ctx, h.profiles, identity)
	if _, err := h.comments.Add(ctx, gameID, author, req.Text); err != nil {
		writeServerError(w, r, err, "Failed to add comment")
		return
	}

	page, err := h.page(ctx, gameID, 1, queryInt(r, "page_size"))
	if err != nil {
		writeServerError(w, r, err, "Failed to list comments")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(page))
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	comment, err := h.comments.Update(ctx, identity.UserID, chi.URLParam(r, "gameId"), chi.URLParam(r, "commentId"), req.Text)
	if err != nil {
		h.writeMutationError(w, r, err, "Failed to update comment")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.CommentView{
		Comment:    *comment,
		CreatedAgo: catalog.FormatElapsed(comment.CreatedAt, h.now()),
	}))
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	if err := h.comments.Delete(ctx, identity.UserID, chi.URLParam(r, "gameId"), chi.URLParam(r, "commentId")); err != nil {
		h.writeMutationError(w, r, err, "Failed to delete comment")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Comment deleted successfully"}))
}

func (h *CommentHandler) page(ctx context.Context, gameID string, page, pageSize int) (models.Page[models.CommentView], error) {
	comments, err := h.comments.ListByGame(ctx, gameID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}

	now := h.now()
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{
			Comment:    c,
			CreatedAgo: catalog.FormatElapsed(c.CreatedAt, now),
		})
	}
	return catalog.Paginate(views, page, pageSize, catalog.DefaultCommentPageSize), nil
}

func (h *CommentHandler) gameExists(ctx context.Context, w http.ResponseWriter, r *http.Request, gameID string) bool {
	_, err := h.games.GetByID(ctx, gameID)
	if err == nil {
		return true
	}
	if errors.Is(err, services.ErrGameNotFound) {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Game not found"))
		return false
	}
	writeServerError(w, r, err, "Failed to load game")
	return false
}

func (h *CommentHandler) writeMutationError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrCommentNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Comment not found"))
	case errors.Is(err, services.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to modify this comment"))
	default:
		writeServerError(w, r, err, msg)
	}
}
