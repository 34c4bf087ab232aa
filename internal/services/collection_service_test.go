package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletop/backend/internal/models"
)

func TestMemoryCollectionService_AddRejectsDuplicates(t *testing.T) {
	svc := NewMemoryCollectionService()
	ctx := context.Background()
	game := models.Game{ID: "g1", Title: "Azul"}

	entry, err := svc.Add(ctx, "alice", game)
	require.NoError(t, err)
	assert.Equal(t, "Azul", entry.Game.Title)
	assert.Equal(t, "g1", entry.GameID)

	_, err = svc.Add(ctx, "alice", game)
	assert.ErrorIs(t, err, ErrAlreadyInCollection)

	_, err = svc.Add(ctx, "bob", game)
	assert.NoError(t, err)
}

func TestMemoryCollectionService_ListNewestFirst(t *testing.T) {
	svc := NewMemoryCollectionService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", models.Game{ID: "old"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "alice", models.Game{ID: "new"})
	require.NoError(t, err)
	svc.entries[collectionKey{userID: "alice", gameID: "old"}].AddedAt = time.Now().Add(-time.Hour)

	entries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].GameID)
	assert.Equal(t, "old", entries[1].GameID)
}

func TestMemoryCollectionService_RemoveAndContains(t *testing.T) {
	svc := NewMemoryCollectionService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", models.Game{ID: "g1"})
	require.NoError(t, err)

	found, err := svc.Contains(ctx, "alice", "g1")
	require.NoError(t, err)
	assert.True(t, found)

	ids, err := svc.GameIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"g1": true}, ids)

	require.NoError(t, svc.Remove(ctx, "alice", "g1"))
	assert.ErrorIs(t, svc.Remove(ctx, "alice", "g1"), ErrNotInCollection)

	found, err = svc.Contains(ctx, "alice", "g1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCollectionService_DeleteByUser(t *testing.T) {
	svc := NewMemoryCollectionService()
	ctx := context.Background()

	for _, id := range []string{"g1", "g2"} {
		_, err := svc.Add(ctx, "alice", models.Game{ID: id})
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, "bob", models.Game{ID: "g1"})
	require.NoError(t, err)

	n, err := svc.DeleteByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
