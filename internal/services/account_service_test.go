package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletop/backend/internal/models"
)

func TestAccountService_DeleteRemovesUserData(t *testing.T) {
	ctx := context.Background()
	auth, err := NewLocalAuthProvider(t.TempDir(), "secret", time.Hour)
	require.NoError(t, err)
	session, err := auth.SignUp(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)
	user := session.User

	games := NewMemoryGameService()
	comments := NewMemoryCommentService()
	profiles := NewMemoryProfileService()
	collection := NewMemoryCollectionService()
	flags := NewMemoryFlagService()
	store := newMemoryObjectStore()
	images := NewImageService(store, nil, 1<<20)

	_, err = profiles.Create(ctx, user.UserID, user.Email, user.DisplayName)
	require.NoError(t, err)
	url, err := images.UploadProfileImage(ctx, user.UserID, ImageUpload{Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	_, err = profiles.Update(ctx, user.UserID, models.ProfileUpdate{ProfileImageURL: &url})
	require.NoError(t, err)

	game, err := games.Create(ctx, user, validGameRequest("Gloomhaven"))
	require.NoError(t, err)
	_, err = collection.Add(ctx, user.UserID, *game)
	require.NoError(t, err)
	_, err = comments.Add(ctx, game.ID, user, "mine")
	require.NoError(t, err)
	_, err = comments.Add(ctx, game.ID, models.Identity{UserID: "bob"}, "theirs")
	require.NoError(t, err)
	_, err = flags.AddStrike(ctx, user.UserID)
	require.NoError(t, err)

	svc := NewAccountService(profiles, collection, comments, flags, images, auth)
	result, err := svc.Delete(ctx, user.UserID)
	require.NoError(t, err)

	assert.Equal(t, []string{url}, result.ImageURLs)
	assert.Equal(t, int64(1), result.CommentsDeleted)
	assert.Equal(t, int64(1), result.CollectionRemoved)

	_, err = profiles.Get(ctx, user.UserID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Empty(t, store.objects)

	left, err := comments.ListByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bob", left[0].UserID)

	_, err = games.GetByID(ctx, game.ID)
	assert.NoError(t, err, "created games stay in the catalog")

	_, err = auth.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccountService_DeleteWithoutProfile(t *testing.T) {
	ctx := context.Background()
	auth, err := NewLocalAuthProvider(t.TempDir(), "secret", time.Hour)
	require.NoError(t, err)

	svc := NewAccountService(
		NewMemoryProfileService(),
		NewMemoryCollectionService(),
		NewMemoryCommentService(),
		NewMemoryFlagService(),
		nil,
		auth,
	)

	result, err := svc.Delete(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, result.ImageURLs)
	assert.NotNil(t, result.ImageURLs)
}
