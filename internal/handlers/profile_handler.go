package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
	auth     services.AuthProvider
	images   *services.ImageService
}

func NewProfileHandler(profiles services.ProfileService, auth services.AuthProvider, images *services.ImageService) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		auth:     auth,
		images:   images,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	prof, err := h.profiles.Get(ctx, identity.UserID)
	if err != nil {
		h.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// UpdateProfile applies a partial update. A new display name is pushed to the
// auth provider first so both stay in agreement.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), outboundTimeout)
	defer cancel()

	if _, err := h.profiles.Get(ctx, identity.UserID); err != nil {
		h.writeLoadError(w, r, err)
		return
	}

	if req.DisplayName != nil {
		if err := h.auth.UpdateDisplayName(ctx, identity.UserID, *req.DisplayName); err != nil {
			writeServerError(w, r, err, "Failed to update profile")
			return
		}
	}

	prof, err := h.profiles.Update(ctx, identity.UserID, models.ProfileUpdate{DisplayName: req.DisplayName})
	if err != nil {
		h.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// UploadImage replaces the caller's profile picture with the multipart field "image".
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	file, header, ok := readImageField(w, r, services.MaxProfileImageBytes)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), outboundTimeout)
	defer cancel()

	if _, err := h.profiles.Get(ctx, identity.UserID); err != nil {
		h.writeLoadError(w, r, err)
		return
	}

	url, err := h.images.UploadProfileImage(ctx, identity.UserID, services.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		writeUploadError(w, r, err, "JPEG, PNG, GIF", "Image must be 5MB or smaller")
		return
	}

	prof, err := h.profiles.Update(ctx, identity.UserID, models.ProfileUpdate{ProfileImageURL: &url})
	if err != nil {
		h.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// GetPublicProfile omits the email.
func (h *ProfileHandler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	prof, err := h.profiles.Get(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		h.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof.Public()))
}

func (h *ProfileHandler) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrProfileNotFound) {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	writeServerError(w, r, err, "Failed to load profile")
}
