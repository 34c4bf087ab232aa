package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tabletop/backend/internal/models"
)

type ContactService interface {
	Save(ctx context.Context, req *models.ContactRequest) (*models.ContactMessage, error)
}

func newContactMessage(req *models.ContactRequest) models.ContactMessage {
	return models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

type MemoryContactService struct {
	mu       sync.Mutex
	messages []models.ContactMessage
}

func NewMemoryContactService() *MemoryContactService {
	return &MemoryContactService{}
}

func (s *MemoryContactService) Save(ctx context.Context, req *models.ContactRequest) (*models.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := newContactMessage(req)
	s.messages = append(s.messages, msg)
	return &msg, nil
}

// Messages returns everything saved so far, oldest first.
func (s *MemoryContactService) Messages() []models.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ContactMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

type MongoContactService struct {
	formsCol *mongo.Collection
}

func NewMongoContactService(db *mongo.Database) *MongoContactService {
	return &MongoContactService{formsCol: db.Collection(contactFormsCollection)}
}

func (s *MongoContactService) Save(ctx context.Context, req *models.ContactRequest) (*models.ContactMessage, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	msg := newContactMessage(req)
	if _, err := s.formsCol.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
