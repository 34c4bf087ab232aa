package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type FirebaseAuthConfig struct {
	ProjectID       string
	CredentialsJSON string
	// APIKey is the web API key used for password sign-up and sign-in.
	APIKey string
}

// FirebaseAuthProvider verifies ID tokens with the Admin SDK and performs
// email/password flows through the Identity Toolkit REST API.
type FirebaseAuthProvider struct {
	auth    firebaseAdmin
	toolkit *identitytoolkit.RelyingpartyService
}

// firebaseAdmin is the part of *auth.Client the provider uses.
type firebaseAdmin interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

func NewFirebaseAuthProvider(ctx context.Context, cfg FirebaseAuthConfig) (*FirebaseAuthProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("firebase: missing FIREBASE_API_KEY")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client: %w", err)
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("firebase: identity toolkit: %w", err)
	}

	return &FirebaseAuthProvider{
		auth:    authClient,
		toolkit: toolkit.Relyingparty,
	}, nil
}

func (p *FirebaseAuthProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	name := strings.TrimSpace(displayName)
	resp, err := p.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: name,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}

	// The sign-up token predates the display name, so sign in again for a
	// token that carries it.
	session, err := p.SignIn(ctx, email, password)
	if err != nil {
		if delErr := p.DeleteUser(ctx, resp.LocalId); delErr != nil {
			logging.FromContext(ctx).Error().Err(delErr).Str("user_id", resp.LocalId).Msg("rollback of new identity failed")
		}
		return nil, err
	}
	if session.User.UserID == "" {
		session.User.UserID = resp.LocalId
	}
	if session.User.DisplayName == "" {
		session.User.DisplayName = name
	}
	return session, nil
}

func (p *FirebaseAuthProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}

	return &models.Session{
		Token:        resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User: models.Identity{
			UserID:      resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
		},
	}, nil
}

func (p *FirebaseAuthProvider) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	tok, err := p.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := tok.Claims["email"].(string)
	name, _ := tok.Claims["name"].(string)
	if email == "" || name == "" {
		// Tokens minted before a profile change may lack the claims.
		if u, err := p.auth.GetUser(ctx, tok.UID); err == nil {
			email, name = u.Email, u.DisplayName
		}
	}
	return &models.Identity{
		UserID:      tok.UID,
		Email:       email,
		DisplayName: name,
	}, nil
}

func (p *FirebaseAuthProvider) SignOut(ctx context.Context, userID string) error {
	return mapAdminError(p.auth.RevokeRefreshTokens(ctx, userID))
}

func (p *FirebaseAuthProvider) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	_, err := p.auth.UpdateUser(ctx, userID, (&fbauth.UserToUpdate{}).DisplayName(strings.TrimSpace(displayName)))
	return mapAdminError(err)
}

func (p *FirebaseAuthProvider) DeleteUser(ctx context.Context, userID string) error {
	return mapAdminError(p.auth.DeleteUser(ctx, userID))
}

func mapAdminError(err error) error {
	if err == nil {
		return nil
	}
	if fbauth.IsUserNotFound(err) {
		return ErrUserNotFound
	}
	return err
}

func mapToolkitError(err error) error {
	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		msg = gerr.Message
	}

	switch {
	case strings.Contains(msg, "EMAIL_EXISTS"):
		return ErrEmailExists
	case strings.Contains(msg, "EMAIL_NOT_FOUND"),
		strings.Contains(msg, "INVALID_PASSWORD"),
		strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.Contains(msg, "USER_DISABLED"):
		return ErrInvalidCredentials
	}
	return err
}

var _ AuthProvider = (*FirebaseAuthProvider)(nil)
