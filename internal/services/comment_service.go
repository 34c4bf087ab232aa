package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabletop/backend/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService interface {
	// ListByGame returns the game's comments, newest first.
	ListByGame(ctx context.Context, gameID string) ([]models.Comment, error)
	Add(ctx context.Context, gameID string, author models.Identity, text string) (*models.Comment, error)
	// Update and Delete return ErrUnauthorized unless userID wrote the comment.
	Update(ctx context.Context, userID, gameID, commentID, text string) (*models.Comment, error)
	Delete(ctx context.Context, userID, gameID, commentID string) error
	DeleteByGame(ctx context.Context, gameID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type MemoryCommentService struct {
	mu       sync.RWMutex
	comments map[string]*models.Comment
}

func NewMemoryCommentService() *MemoryCommentService {
	return &MemoryCommentService{
		comments: make(map[string]*models.Comment),
	}
}

func (s *MemoryCommentService) ListByGame(ctx context.Context, gameID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.GameID == gameID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryCommentService) Add(ctx context.Context, gameID string, author models.Identity, text string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment := &models.Comment{
		ID:        uuid.New().String(),
		Text:      strings.TrimSpace(text),
		UserID:    author.UserID,
		UserName:  models.CommentAuthorName(author.DisplayName),
		GameID:    gameID,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[comment.ID] = comment

	commentCopy := *comment
	return &commentCopy, nil
}

func (s *MemoryCommentService) Update(ctx context.Context, userID, gameID, commentID, text string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[commentID]
	if !exists || comment.GameID != gameID {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrUnauthorized
	}

	comment.Text = strings.TrimSpace(text)
	comment.UpdatedAt = time.Now().UTC()
	commentCopy := *comment
	return &commentCopy, nil
}

func (s *MemoryCommentService) Delete(ctx context.Context, userID, gameID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[commentID]
	if !exists || comment.GameID != gameID {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return ErrUnauthorized
	}

	delete(s.comments, commentID)
	return nil
}

func (s *MemoryCommentService) DeleteByGame(ctx context.Context, gameID string) (int64, error) {
	return s.deleteWhere(func(c *models.Comment) bool { return c.GameID == gameID }), nil
}

func (s *MemoryCommentService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return s.deleteWhere(func(c *models.Comment) bool { return c.UserID == userID }), nil
}

func (s *MemoryCommentService) deleteWhere(match func(*models.Comment) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.comments {
		if match(c) {
			delete(s.comments, id)
			n++
		}
	}
	return n
}
