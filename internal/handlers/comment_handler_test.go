package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletop/backend/internal/models"
)

func TestComments_AddAndList(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))
	path := "/api/games/" + game.ID + "/comments"

	for i := 1; i <= 12; i++ {
		w := s.do(http.MethodPost, path, alice.Token, models.CommentRequest{Text: fmt.Sprintf("comment %d", i)})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodPost, path, alice.Token, models.CommentRequest{Text: "latest"})
	require.Equal(t, http.StatusCreated, w.Code)

	var first models.Page[models.CommentView]
	decodeData(t, w, &first)
	require.Len(t, first.Items, 10)
	assert.Equal(t, 13, first.Meta.TotalItems)
	assert.Equal(t, 2, first.Meta.TotalPages)
	assert.Equal(t, "latest", first.Items[0].Text)
	assert.Equal(t, "Alice", first.Items[0].UserName)
	assert.NotEmpty(t, first.Items[0].CreatedAgo)

	w = s.do(http.MethodGet, path+"?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var second models.Page[models.CommentView]
	decodeData(t, w, &second)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, 2, second.Meta.CurrentPage)
}

func TestComments_UnknownGame(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")

	w := s.do(http.MethodGet, "/api/games/missing/comments", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/games/missing/comments", alice.Token, models.CommentRequest{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments_Validation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))
	path := "/api/games/" + game.ID + "/comments"

	w := s.do(http.MethodPost, path, alice.Token, models.CommentRequest{Text: "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Comment is required", decode(t, w).Errors["text"])

	w = s.do(http.MethodPost, path, alice.Token, models.CommentRequest{Text: strings.Repeat("x", 201)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Comment cannot be more than 200 characters", decode(t, w).Errors["text"])

	w = s.do(http.MethodPost, path, "", models.CommentRequest{Text: "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComments_UpdateAndDeleteOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	bob := s.register("Bob", "bob@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))
	path := "/api/games/" + game.ID + "/comments"

	w := s.do(http.MethodPost, path, bob.Token, models.CommentRequest{Text: "first take"})
	require.Equal(t, http.StatusCreated, w.Code)
	var page models.Page[models.CommentView]
	decodeData(t, w, &page)
	commentPath := path + "/" + page.Items[0].ID

	w = s.do(http.MethodPut, commentPath, alice.Token, models.CommentRequest{Text: "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, path+"/missing", bob.Token, models.CommentRequest{Text: "edit"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, commentPath, bob.Token, models.CommentRequest{Text: "second take"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.CommentView
	decodeData(t, w, &updated)
	assert.Equal(t, "second take", updated.Text)

	w = s.do(http.MethodDelete, commentPath, alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, commentPath, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, commentPath, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments_AuthorNameFollowsProfile(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	game := s.createGame(alice.Token, gameRequest("Agricola", 2007, 8))

	// The session token still carries the old name.
	renamed := "Alice B"
	_, err := s.profiles.Update(context.Background(), alice.User.UserID, models.ProfileUpdate{DisplayName: &renamed})
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/games/"+game.ID+"/comments", alice.Token, models.CommentRequest{Text: "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var page models.Page[models.CommentView]
	decodeData(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alice B", page.Items[0].UserName)
}
