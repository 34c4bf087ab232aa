package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type MongoProfileService struct {
	profilesCol *mongo.Collection
}

func NewMongoProfileService(ctx context.Context, db *mongo.Database) *MongoProfileService {
	col := db.Collection(usersCollection)

	// Best-effort indexes.
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("collection", usersCollection).Msg("index creation failed")
	}

	return &MongoProfileService{profilesCol: col}
}

func (s *MongoProfileService) Create(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	// Mongo forbids touching the same path in both $set and $setOnInsert.
	res := s.profilesCol.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set": bson.M{
				"email":        email,
				"display_name": strings.TrimSpace(displayName),
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{"user_id": userID},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var prof models.UserProfile
	if err := res.Decode(&prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var prof models.UserProfile
	if err := s.profilesCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) Update(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	set := bson.M{
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if update.DisplayName != nil {
		set["display_name"] = strings.TrimSpace(*update.DisplayName)
	}
	if update.ProfileImageURL != nil {
		set["profile_image_url"] = *update.ProfileImageURL
	}
	if update.LastLoginAt != nil {
		set["last_login_at"] = update.LastLoginAt.UTC().Truncate(time.Millisecond)
	}

	res := s.profilesCol.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var prof models.UserProfile
	if err := res.Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) Delete(ctx context.Context, userID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := s.profilesCol.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
