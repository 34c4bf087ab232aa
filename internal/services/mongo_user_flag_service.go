package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type MongoFlagService struct {
	flagsCol *mongo.Collection
}

func NewMongoFlagService(ctx context.Context, db *mongo.Database) *MongoFlagService {
	col := db.Collection(userFlagsCollection)

	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("collection", userFlagsCollection).Msg("index creation failed")
	}

	return &MongoFlagService{flagsCol: col}
}

// AddStrike increments the user's strike counter, creating the record on first strike.
func (s *MongoFlagService) AddStrike(ctx context.Context, userID string) (*models.UserFlag, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	res := s.flagsCol.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc":         bson.M{"strikes": 1},
			"$set":         bson.M{"last_strike_at": now, "updated_at": now},
			"$setOnInsert": bson.M{"user_id": userID},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var flag models.UserFlag
	if err := res.Decode(&flag); err != nil {
		return nil, err
	}
	return &flag, nil
}

func (s *MongoFlagService) Delete(ctx context.Context, userID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := s.flagsCol.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
