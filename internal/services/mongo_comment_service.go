package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type MongoCommentService struct {
	commentsCol *mongo.Collection
}

func NewMongoCommentService(ctx context.Context, db *mongo.Database) *MongoCommentService {
	col := db.Collection(commentsCollection)

	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "game_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("collection", commentsCollection).Msg("index creation failed")
	}

	return &MongoCommentService{commentsCol: col}
}

func (s *MongoCommentService) ListByGame(ctx context.Context, gameID string) ([]models.Comment, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := s.commentsCol.Find(
		ctx,
		bson.M{"game_id": gameID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Comment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoCommentService) Add(ctx context.Context, gameID string, author models.Identity, text string) (*models.Comment, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	comment := models.Comment{
		ID:        uuid.New().String(),
		Text:      strings.TrimSpace(text),
		UserID:    author.UserID,
		UserName:  models.CommentAuthorName(author.DisplayName),
		GameID:    gameID,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.commentsCol.InsertOne(ctx, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *MongoCommentService) Update(ctx context.Context, userID, gameID, commentID, text string) (*models.Comment, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res := s.commentsCol.FindOneAndUpdate(
		ctx,
		bson.M{"_id": commentID, "game_id": gameID, "user_id": userID},
		bson.M{"$set": bson.M{
			"text":       strings.TrimSpace(text),
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Comment
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.missingOrForbidden(ctx, gameID, commentID)
		}
		return nil, err
	}
	return &updated, nil
}

func (s *MongoCommentService) Delete(ctx context.Context, userID, gameID, commentID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.commentsCol.DeleteOne(ctx, bson.M{"_id": commentID, "game_id": gameID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missingOrForbidden(ctx, gameID, commentID)
	}
	return nil
}

func (s *MongoCommentService) DeleteByGame(ctx context.Context, gameID string) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.commentsCol.DeleteMany(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoCommentService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.commentsCol.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoCommentService) missingOrForbidden(ctx context.Context, gameID, commentID string) error {
	err := s.commentsCol.FindOne(ctx, bson.M{"_id": commentID, "game_id": gameID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	return ErrUnauthorized
}
