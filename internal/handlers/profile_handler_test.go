package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletop/backend/internal/models"
)

func TestGetProfile(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodGet, "/api/profile", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var prof models.UserProfile
	decodeData(t, w, &prof)
	assert.Equal(t, alice.User.UserID, prof.UserID)
	assert.Equal(t, "alice@example.com", prof.Email)
	assert.Equal(t, "Alice", prof.DisplayName)
}

func TestUpdateProfile_RenamesEverywhere(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodPut, "/api/profile", alice.Token, map[string]string{"display_name": "Alicia"})
	require.Equal(t, http.StatusOK, w.Code)

	var prof models.UserProfile
	decodeData(t, w, &prof)
	assert.Equal(t, "Alicia", prof.DisplayName)

	identity, err := s.auth.Verify(context.Background(), alice.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", identity.DisplayName)

	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))
	assert.Equal(t, "Alicia", game.UserDisplayName)
}

func TestUpdateProfile_Validation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodPut, "/api/profile", alice.Token, map[string]string{"display_name": "Al"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username must be at least 3 characters long", decode(t, w).Errors["display_name"])
}

func TestUploadProfileImage(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.send(multipartRequest(t, http.MethodPost, "/api/profile/image", "image", "me.png", pngBytes), alice.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var prof models.UserProfile
	decodeData(t, w, &prof)
	assert.Equal(t, "/uploads/profileImages/"+alice.User.UserID, prof.ProfileImageURL)

	w = s.send(multipartRequest(t, http.MethodPost, "/api/profile/image", "image", "me.webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")), alice.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasSuffix(decode(t, w).Error, "JPEG, PNG, GIF"))
}

func TestGetPublicProfile(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodGet, "/api/users/"+alice.User.UserID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "alice@example.com")

	var pub models.PublicProfile
	decodeData(t, w, &pub)
	assert.Equal(t, "Alice", pub.DisplayName)

	w = s.do(http.MethodGet, "/api/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
