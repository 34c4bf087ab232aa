package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

var (
	ErrInvalidImage  = errors.New("invalid image file")
	ErrImageTooLarge = errors.New("image file too large")
)

const (
	gameImagePrefix    = "gameImages/"
	profileImagePrefix = "profileImages/"

	MaxProfileImageBytes = 5 << 20
)

var (
	gameImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	profileImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
	}
)

// ImageUpload is one file taken from a multipart form.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type ImageService struct {
	store        ObjectStore
	moderator    ImageModerator
	maxGameBytes int64
}

// NewImageService stores uploads in store. moderator may be nil.
func NewImageService(store ObjectStore, moderator ImageModerator, maxGameBytes int64) *ImageService {
	return &ImageService{
		store:        store,
		moderator:    moderator,
		maxGameBytes: maxGameBytes,
	}
}

// UploadGameImage stores a catalog image under a fresh id.
func (s *ImageService) UploadGameImage(ctx context.Context, userID string, up ImageUpload) (*models.ImageUploadResponse, error) {
	if up.Size > s.maxGameBytes {
		return nil, ErrImageTooLarge
	}
	contentType, body, err := sniffImage(up.Body, gameImageTypes)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	filename := imageID + gameImageTypes[contentType]
	key := gameImagePrefix + filename

	url, err := s.put(ctx, key, contentType, body, userID)
	if err != nil {
		return nil, err
	}
	return &models.ImageUploadResponse{
		ID:       imageID,
		URL:      url,
		Filename: filename,
	}, nil
}

// UploadProfileImage replaces the user's profile picture and returns its URL.
func (s *ImageService) UploadProfileImage(ctx context.Context, userID string, up ImageUpload) (string, error) {
	if up.Size > MaxProfileImageBytes {
		return "", ErrImageTooLarge
	}
	contentType, body, err := sniffImage(up.Body, profileImageTypes)
	if err != nil {
		return "", err
	}

	key := ProfileImageKey(userID)
	if s.moderator == nil {
		return s.store.Put(ctx, key, contentType, body)
	}

	// The current picture stays in place until the new one passes review.
	pending := key + ".pending-" + uuid.New().String()
	if _, err := s.store.Put(ctx, pending, contentType, body); err != nil {
		return "", err
	}
	if err := s.moderator.Review(ctx, pending, userID); err != nil {
		s.discard(ctx, pending)
		return "", err
	}
	url, err := s.store.Move(ctx, pending, key)
	if err != nil {
		s.discard(ctx, pending)
		return "", err
	}
	return url, nil
}

// DeleteProfileImage removes the stored profile picture, if any.
func (s *ImageService) DeleteProfileImage(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, ProfileImageKey(userID))
}

func ProfileImageKey(userID string) string {
	return profileImagePrefix + userID
}

func (s *ImageService) put(ctx context.Context, key, contentType string, body io.Reader, userID string) (string, error) {
	url, err := s.store.Put(ctx, key, contentType, body)
	if err != nil {
		return "", err
	}
	if s.moderator == nil {
		return url, nil
	}

	if err := s.moderator.Review(ctx, key, userID); err != nil {
		if !errors.Is(err, ErrImageRejected) {
			s.discard(ctx, key)
		}
		return "", err
	}
	return url, nil
}

func (s *ImageService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("object", key).Msg("cleanup after failed moderation")
	}
}

// sniffImage detects the content type from the leading bytes. The returned
// reader still yields the whole file.
func sniffImage(r io.Reader, allowed map[string]string) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	if len(head) == 0 {
		return "", nil, ErrInvalidImage
	}

	contentType := http.DetectContentType(head)
	if _, ok := allowed[contentType]; !ok {
		return "", nil, ErrInvalidImage
	}
	return contentType, br, nil
}
