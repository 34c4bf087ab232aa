package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletop/backend/internal/models"
)

func TestCollection_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))
	path := "/api/collection/" + game.ID

	inCollection := func() bool {
		w := s.do(http.MethodGet, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]bool
		decodeData(t, w, &resp)
		return resp["in_collection"]
	}

	assert.False(t, inCollection())

	w := s.do(http.MethodPost, path, alice.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var entry models.CollectionEntry
	decodeData(t, w, &entry)
	assert.Equal(t, game.ID, entry.GameID)
	assert.Equal(t, "Agricola", entry.Game.Title)
	assert.True(t, inCollection())

	w = s.do(http.MethodPost, path, alice.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/collection", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.CollectionEntry
	decodeData(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, game.ID, entries[0].GameID)

	w = s.do(http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, inCollection())

	w = s.do(http.MethodDelete, path, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollection_UnknownGame(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodPost, "/api/collection/missing", alice.Token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Game not found", decode(t, w).Error)
}

func TestCollection_IsPerUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	bob := s.register("Bob", "bob@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/collection/"+game.ID, alice.Token, nil).Code)

	w := s.do(http.MethodGet, "/api/collection", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.CollectionEntry
	decodeData(t, w, &entries)
	assert.Empty(t, entries)

	w = s.do(http.MethodGet, "/api/collection", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
