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

type MongoCollectionService struct {
	entriesCol *mongo.Collection
}

func NewMongoCollectionService(ctx context.Context, db *mongo.Database) *MongoCollectionService {
	col := db.Collection(userGamesCollection)

	// Best-effort indexes. The unique pair backs ErrAlreadyInCollection.
	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "game_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "added_at", Value: -1}}},
	}); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("collection", userGamesCollection).Msg("index creation failed")
	}

	return &MongoCollectionService{entriesCol: col}
}

func (s *MongoCollectionService) List(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.entriesCol.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.CollectionEntry, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoCollectionService) Add(ctx context.Context, userID string, game models.Game) (*models.CollectionEntry, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	entry := models.CollectionEntry{
		UserID:  userID,
		GameID:  game.ID,
		Game:    game,
		AddedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.entriesCol.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyInCollection
		}
		return nil, err
	}
	return &entry, nil
}

func (s *MongoCollectionService) Remove(ctx context.Context, userID, gameID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.entriesCol.DeleteOne(ctx, bson.M{"user_id": userID, "game_id": gameID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotInCollection
	}
	return nil
}

func (s *MongoCollectionService) Contains(ctx context.Context, userID, gameID string) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	n, err := s.entriesCol.CountDocuments(ctx, bson.M{"user_id": userID, "game_id": gameID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoCollectionService) GameIDs(ctx context.Context, userID string) (map[string]bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.entriesCol.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"game_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make(map[string]bool)
	for cur.Next(ctx) {
		var doc struct {
			GameID string `bson:"game_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids[doc.GameID] = true
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *MongoCollectionService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.entriesCol.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
