package services

import (
	"context"
	"errors"

	"github.com/tabletop/backend/internal/models"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthProvider owns identities and the tokens that prove them.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// Verify returns ErrInvalidToken for anything it cannot accept,
	// including tokens revoked by SignOut.
	Verify(ctx context.Context, token string) (*models.Identity, error)
	SignOut(ctx context.Context, userID string) error
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
	DeleteUser(ctx context.Context, userID string) error
}
