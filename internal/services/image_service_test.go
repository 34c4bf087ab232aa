package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00")
	webpBytes = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return "mem://" + key, nil
}

func (s *memoryObjectStore) Move(ctx context.Context, from, to string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[from]
	if !ok {
		return "", os.ErrNotExist
	}
	s.objects[to] = b
	s.types[to] = s.types[from]
	delete(s.objects, from)
	delete(s.types, from)
	return "mem://" + to, nil
}

func (s *memoryObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type stubModerator struct {
	err  error
	keys []string
}

func (m *stubModerator) Review(ctx context.Context, key, userID string) error {
	m.keys = append(m.keys, key)
	return m.err
}

func TestImageService_UploadGameImage(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewImageService(store, nil, 1<<20)

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)
	resp, err := svc.UploadGameImage(context.Background(), "alice", ImageUpload{
		Filename: "box.PNG",
		Size:     int64(len(body)),
		Body:     bytes.NewReader(body),
	})
	require.NoError(t, err)

	assert.Equal(t, resp.ID+".png", resp.Filename)
	key := "gameImages/" + resp.Filename
	assert.Equal(t, "mem://"+key, resp.URL)
	assert.Equal(t, body, store.objects[key])
	assert.Equal(t, "image/png", store.types[key])
}

func TestImageService_GameImageAcceptsWebP(t *testing.T) {
	svc := NewImageService(newMemoryObjectStore(), nil, 1<<20)

	resp, err := svc.UploadGameImage(context.Background(), "alice", ImageUpload{Body: bytes.NewReader(webpBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.Filename, ".webp"))
}

func TestImageService_RejectsNonImages(t *testing.T) {
	svc := NewImageService(newMemoryObjectStore(), nil, 1<<20)

	_, err := svc.UploadGameImage(context.Background(), "alice", ImageUpload{Body: strings.NewReader("plain text, not an image")})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.UploadGameImage(context.Background(), "alice", ImageUpload{Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestImageService_SizeLimits(t *testing.T) {
	svc := NewImageService(newMemoryObjectStore(), nil, 1024)

	_, err := svc.UploadGameImage(context.Background(), "alice", ImageUpload{Size: 2048, Body: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = svc.UploadProfileImage(context.Background(), "alice", ImageUpload{Size: MaxProfileImageBytes + 1, Body: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestImageService_ProfileImageOverwritesFixedKey(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewImageService(store, nil, 1<<20)
	ctx := context.Background()

	url, err := svc.UploadProfileImage(ctx, "alice", ImageUpload{Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "mem://profileImages/alice", url)

	_, err = svc.UploadProfileImage(ctx, "alice", ImageUpload{Body: bytes.NewReader(gifHeader)})
	require.NoError(t, err)
	assert.Equal(t, gifHeader, store.objects["profileImages/alice"])
	assert.Len(t, store.objects, 1)

	_, err = svc.UploadProfileImage(ctx, "alice", ImageUpload{Body: bytes.NewReader(webpBytes)})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestImageService_ModerationRejection(t *testing.T) {
	store := newMemoryObjectStore()
	moderator := &stubModerator{err: ErrImageRejected}
	svc := NewImageService(store, moderator, 1<<20)

	_, err := svc.UploadGameImage(context.Background(), "alice", ImageUpload{Body: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageRejected)
	require.Len(t, moderator.keys, 1)
	assert.True(t, strings.HasPrefix(moderator.keys[0], "gameImages/"))
}

func TestImageService_ModerationFailureRemovesObject(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewImageService(store, &stubModerator{err: errors.New("vision unavailable")}, 1<<20)

	_, err := svc.UploadProfileImage(context.Background(), "alice", ImageUpload{Body: bytes.NewReader(pngHeader)})
	require.Error(t, err)
	assert.Empty(t, store.objects)
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasPrefix(store.deleted[0], "profileImages/alice.pending-"))
}

func TestImageService_RejectedProfileImageKeepsCurrent(t *testing.T) {
	store := newMemoryObjectStore()
	moderator := &stubModerator{}
	svc := NewImageService(store, moderator, 1<<20)
	ctx := context.Background()

	url, err := svc.UploadProfileImage(ctx, "alice", ImageUpload{Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "mem://profileImages/alice", url)
	require.Len(t, moderator.keys, 1)
	assert.True(t, strings.HasPrefix(moderator.keys[0], "profileImages/alice.pending-"))

	moderator.err = ErrImageRejected
	_, err = svc.UploadProfileImage(ctx, "alice", ImageUpload{Body: bytes.NewReader(gifHeader)})
	assert.ErrorIs(t, err, ErrImageRejected)

	assert.Equal(t, pngHeader, store.objects["profileImages/alice"])
	assert.Equal(t, "image/png", store.types["profileImages/alice"])
	assert.Len(t, store.objects, 1, "pending upload is removed")
}

func TestSafeSearchModerator(t *testing.T) {
	store := newMemoryObjectStore()
	flags := NewMemoryFlagService()
	ctx := context.Background()
	_, err := store.Put(ctx, "gameImages/x.png", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	var gotURI string
	result := &SafeSearchResult{Adult: "VERY_UNLIKELY", Violence: "UNLIKELY", Racy: "POSSIBLE"}
	detect := func(ctx context.Context, uri string) (*SafeSearchResult, error) {
		gotURI = uri
		return result, nil
	}
	m := NewSafeSearchModerator("tabletop.appspot.com", detect, store, flags)

	require.NoError(t, m.Review(ctx, "gameImages/x.png", "alice"))
	assert.Equal(t, "gs://tabletop.appspot.com/gameImages/x.png", gotURI)
	assert.Contains(t, store.objects, "gameImages/x.png")

	result.Racy = "LIKELY"
	assert.ErrorIs(t, m.Review(ctx, "gameImages/x.png", "alice"), ErrImageRejected)
	assert.NotContains(t, store.objects, "gameImages/x.png")

	flag, err := flags.AddStrike(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, flag.Strikes)
}

func TestSafeSearchResult_IsUnsafe(t *testing.T) {
	assert.False(t, (&SafeSearchResult{}).IsUnsafe())
	assert.False(t, (&SafeSearchResult{Spoof: "VERY_LIKELY", Medical: "LIKELY"}).IsUnsafe())
	assert.True(t, (&SafeSearchResult{Violence: "VERY_LIKELY"}).IsUnsafe())
	assert.True(t, (&SafeSearchResult{Adult: "LIKELY"}).IsUnsafe())
}

func TestLocalObjectStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalObjectStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "profileImages/alice", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/profileImages/alice", url)

	b, err := os.ReadFile(filepath.Join(dir, "profileImages", "alice"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, b)

	url, err = store.Put(ctx, "../../escape.png", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.png", url)
	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "profileImages/alice"))
	require.NoError(t, store.Delete(ctx, "profileImages/alice"))
	_, err = os.Stat(filepath.Join(dir, "profileImages", "alice"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalObjectStore_Move(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalObjectStore(dir, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "profileImages/alice", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	_, err = store.Put(ctx, "profileImages/alice.pending-1", "image/gif", bytes.NewReader(gifHeader))
	require.NoError(t, err)

	url, err := store.Move(ctx, "profileImages/alice.pending-1", "profileImages/alice")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/profileImages/alice", url)

	b, err := os.ReadFile(filepath.Join(dir, "profileImages", "alice"))
	require.NoError(t, err)
	assert.Equal(t, gifHeader, b)
	_, err = os.Stat(filepath.Join(dir, "profileImages", "alice.pending-1"))
	assert.True(t, os.IsNotExist(err))
}
