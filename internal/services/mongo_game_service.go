package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type MongoGameService struct {
	gamesCol *mongo.Collection
}

func NewMongoGameService(ctx context.Context, db *mongo.Database) *MongoGameService {
	col := db.Collection(gamesCollection)

	// Best-effort indexes.
	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("collection", gamesCollection).Msg("index creation failed")
	}

	return &MongoGameService{gamesCol: col}
}

func (s *MongoGameService) List(ctx context.Context) ([]models.Game, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.gamesCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Game, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoGameService) GetByID(ctx context.Context, id string) (*models.Game, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var game models.Game
	if err := s.gamesCol.FindOne(ctx, bson.M{"_id": id}).Decode(&game); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *MongoGameService) Create(ctx context.Context, creator models.Identity, req *models.GameRequest) (*models.Game, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	game := models.Game{
		ID:              uuid.New().String(),
		UserID:          creator.UserID,
		UserDisplayName: creator.DisplayName,
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	req.Apply(&game)

	if _, err := s.gamesCol.InsertOne(ctx, game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MongoGameService) Update(ctx context.Context, userID, gameID string, req *models.GameRequest) (*models.Game, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var fields models.Game
	req.Apply(&fields)

	res := s.gamesCol.FindOneAndUpdate(
		ctx,
		bson.M{"_id": gameID, "user_id": userID},
		bson.M{"$set": bson.M{
			"title":       fields.Title,
			"year":        fields.Year,
			"designer":    fields.Designer,
			"artist":      fields.Artist,
			"publisher":   fields.Publisher,
			"rating":      fields.Rating,
			"category":    fields.Category,
			"description": fields.Description,
			"image":       fields.Image,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Game
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.missingOrForbidden(ctx, gameID)
		}
		return nil, err
	}
	return &updated, nil
}

func (s *MongoGameService) Delete(ctx context.Context, userID, gameID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.gamesCol.DeleteOne(ctx, bson.M{"_id": gameID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missingOrForbidden(ctx, gameID)
	}
	return nil
}

// missingOrForbidden tells a missing game apart from one owned by someone else
// after an owner-scoped write matched nothing.
func (s *MongoGameService) missingOrForbidden(ctx context.Context, gameID string) error {
	err := s.gamesCol.FindOne(ctx, bson.M{"_id": gameID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrGameNotFound
	}
	if err != nil {
		return err
	}
	return ErrUnauthorized
}
