package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabletop/backend/internal/logging"
)

// ErrImageRejected is returned when SafeSearch flags an image as unsafe.
var ErrImageRejected = errors.New("image rejected: violates community guidelines")

// ImageModerator inspects an object that has just been stored under key.
type ImageModerator interface {
	Review(ctx context.Context, key, userID string) error
}

// SafeSearchModerator runs SafeSearch on freshly uploaded objects. Unsafe
// objects are deleted and the uploader gets a strike.
type SafeSearchModerator struct {
	bucket string
	detect SafeSearchDetector
	store  ObjectStore
	flags  FlagService
}

// NewSafeSearchModerator wires a detector to the bucket the store writes to.
// flags may be nil when strikes are not tracked.
func NewSafeSearchModerator(bucket string, detect SafeSearchDetector, store ObjectStore, flags FlagService) *SafeSearchModerator {
	return &SafeSearchModerator{
		bucket: bucket,
		detect: detect,
		store:  store,
		flags:  flags,
	}
}

func (m *SafeSearchModerator) Review(ctx context.Context, key, userID string) error {
	logger := logging.FromContext(ctx)
	gcsURI := fmt.Sprintf("gs://%s/%s", m.bucket, key)

	ss, err := m.detect(ctx, gcsURI)
	if err != nil {
		return fmt.Errorf("moderation: safesearch: %w", err)
	}

	logger.Debug().
		Str("object", key).
		Str("adult", ss.Adult).
		Str("violence", ss.Violence).
		Str("racy", ss.Racy).
		Msg("safesearch result")

	if !ss.IsUnsafe() {
		return nil
	}

	logger.Info().Str("object", key).Str("user_id", userID).Msg("image rejected by moderation")
	if err := m.store.Delete(ctx, key); err != nil {
		logger.Error().Err(err).Str("object", key).Msg("delete of rejected image failed")
	}
	if m.flags != nil && userID != "" {
		if _, err := m.flags.AddStrike(ctx, userID); err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("recording strike failed")
		}
	}
	return ErrImageRejected
}
