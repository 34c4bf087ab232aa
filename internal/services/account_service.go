package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

// AccountTimeout bounds a whole account deletion.
const AccountTimeout = 20 * time.Second

// AccountService removes everything tied to one user. Games the user created
// are left in the catalog.
type AccountService struct {
	profiles   ProfileService
	collection CollectionService
	comments   CommentService
	flags      FlagService
	images     *ImageService
	auth       AuthProvider
}

func NewAccountService(
	profiles ProfileService,
	collection CollectionService,
	comments CommentService,
	flags FlagService,
	images *ImageService,
	auth AuthProvider,
) *AccountService {
	return &AccountService{
		profiles:   profiles,
		collection: collection,
		comments:   comments,
		flags:      flags,
		images:     images,
		auth:       auth,
	}
}

func (s *AccountService) Delete(ctx context.Context, userID string) (*models.DeleteAccountResult, error) {
	logger := logging.FromContext(ctx)
	result := &models.DeleteAccountResult{ImageURLs: []string{}}

	prof, err := s.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		if prof.ProfileImageURL != "" {
			result.ImageURLs = append(result.ImageURLs, prof.ProfileImageURL)
		}
	case !errors.Is(err, ErrProfileNotFound):
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if result.CollectionRemoved, err = s.collection.DeleteByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete collection: %w", err)
	}
	if result.CommentsDeleted, err = s.comments.DeleteByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete comments: %w", err)
	}
	if s.flags != nil {
		if err := s.flags.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("delete flags: %w", err)
		}
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete profile: %w", err)
	}

	if s.images != nil && len(result.ImageURLs) > 0 {
		if err := s.images.DeleteProfileImage(ctx, userID); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("profile image cleanup failed")
		}
	}

	if err := s.auth.DeleteUser(ctx, userID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("delete identity: %w", err)
	}

	logger.Info().
		Str("user_id", userID).
		Int64("comments_deleted", result.CommentsDeleted).
		Int64("collection_removed", result.CollectionRemoved).
		Msg("account deleted")
	return result, nil
}
