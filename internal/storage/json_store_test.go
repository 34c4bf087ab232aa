package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Users map[string]string `json:"users"`
}

func TestJSONStore_LoadMissingFile(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), "users.json")
	require.NoError(t, err)

	var c credentials
	require.NoError(t, store.Load(&c))
	assert.Nil(t, c.Users)
}

func TestJSONStore_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir, "users.json")
	require.NoError(t, err)

	require.NoError(t, store.Save(credentials{Users: map[string]string{"u1": "hash"}}))

	reopened, err := NewJSONStore(dir, "users.json")
	require.NoError(t, err)
	var c credentials
	require.NoError(t, reopened.Load(&c))
	assert.Equal(t, "hash", c.Users["u1"])
}

func TestJSONStore_UpdateAbortsOnError(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), "users.json")
	require.NoError(t, err)
	require.NoError(t, store.Save(credentials{Users: map[string]string{"u1": "a"}}))

	var c credentials
	boom := errors.New("boom")
	err = store.Update(&c, func() error {
		c.Users["u2"] = "b"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var after credentials
	require.NoError(t, store.Load(&after))
	assert.NotContains(t, after.Users, "u2")
}
