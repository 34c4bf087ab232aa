package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type AuthHandler struct {
	auth     services.AuthProvider
	profiles services.ProfileService
	events   *services.AuthEvents
}

func NewAuthHandler(auth services.AuthProvider, profiles services.ProfileService, events *services.AuthEvents) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		profiles: profiles,
		events:   events,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
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

	session, err := h.auth.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Email already registered"))
			return
		}
		writeServerError(w, r, err, "Failed to create user")
		return
	}

	profile, err := h.profiles.Create(ctx, session.User.UserID, session.User.Email, req.DisplayName)
	if err != nil {
		// Drop the identity so the email can be used again.
		if delErr := h.auth.DeleteUser(ctx, session.User.UserID); delErr != nil {
			logging.FromContext(ctx).Error().Err(delErr).Str("user_id", session.User.UserID).Msg("rollback of new identity failed")
		}
		writeServerError(w, r, err, "Failed to create user profile")
		return
	}

	h.events.Publish(r.Context(), services.AuthEventRegistered, session.User)

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.AuthResponse{
		Session: *session,
		Profile: profile,
	}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
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

	session, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid email or password"))
			return
		}
		writeServerError(w, r, err, "Login failed")
		return
	}

	profile, err := h.profiles.Get(ctx, session.User.UserID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("User does not exist in the database"))
			return
		}
		writeServerError(w, r, err, "Login failed")
		return
	}

	h.events.Publish(r.Context(), services.AuthEventSignedIn, session.User)

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{
		Session: *session,
		Profile: profile,
	}))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), outboundTimeout)
	defer cancel()

	if err := h.auth.SignOut(ctx, identity.UserID); err != nil && !errors.Is(err, services.ErrUserNotFound) {
		writeServerError(w, r, err, "Logout failed")
		return
	}

	h.events.Publish(r.Context(), services.AuthEventSignedOut, identity)

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Logged out"}))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), documentTimeout)
	defer cancel()

	resp := models.MeResponse{User: identity}
	profile, err := h.profiles.Get(ctx, identity.UserID)
	switch {
	case err == nil:
		resp.Profile = profile
	case !errors.Is(err, services.ErrProfileNotFound):
		writeServerError(w, r, err, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(resp))
}
