package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/storage"
)

const localCredentialsFile = "credentials.json"

type localAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	TokenVersion int       `json:"token_version"`
	CreatedAt    time.Time `json:"created_at"`
}

type localAccounts struct {
	Users map[string]*localAccount `json:"users"`
}

type localClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// LocalAuthProvider keeps bcrypt credentials in a JSON file and issues HS256
// tokens. SignOut bumps the account's token version, which invalidates every
// token issued before it.
type LocalAuthProvider struct {
	mu       sync.RWMutex
	store    *storage.JSONStore
	accounts localAccounts
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewLocalAuthProvider(dataDir, jwtSecret string, ttl time.Duration) (*LocalAuthProvider, error) {
	store, err := storage.NewJSONStore(dataDir, localCredentialsFile)
	if err != nil {
		return nil, err
	}

	p := &LocalAuthProvider{
		store:  store,
		secret: []byte(jwtSecret),
		ttl:    ttl,
		now:    time.Now,
	}
	if err := store.Load(&p.accounts); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if p.accounts.Users == nil {
		p.accounts.Users = make(map[string]*localAccount)
	}
	return p, nil
}

func (p *LocalAuthProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &localAccount{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}

	err = p.mutate(func(accts *localAccounts) error {
		if findByEmail(accts, account.Email) != nil {
			return ErrEmailExists
		}
		accts.Users[account.ID] = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.issue(account)
}

func (p *LocalAuthProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	p.mu.RLock()
	found := findByEmail(&p.accounts, normalizeEmail(email))
	var account localAccount
	if found != nil {
		account = *found
	}
	p.mu.RUnlock()

	if found == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(&account)
}

func (p *LocalAuthProvider) Verify(ctx context.Context, tokenString string) (*models.Identity, error) {
	var claims localClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	account, exists := p.accounts.Users[claims.UserID]
	if !exists || account.TokenVersion != claims.Version {
		return nil, ErrInvalidToken
	}
	return &models.Identity{
		UserID:      account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	}, nil
}

func (p *LocalAuthProvider) SignOut(ctx context.Context, userID string) error {
	return p.mutate(func(accts *localAccounts) error {
		account, exists := accts.Users[userID]
		if !exists {
			return ErrUserNotFound
		}
		account.TokenVersion++
		return nil
	})
}

func (p *LocalAuthProvider) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	return p.mutate(func(accts *localAccounts) error {
		account, exists := accts.Users[userID]
		if !exists {
			return ErrUserNotFound
		}
		account.DisplayName = strings.TrimSpace(displayName)
		return nil
	})
}

func (p *LocalAuthProvider) DeleteUser(ctx context.Context, userID string) error {
	return p.mutate(func(accts *localAccounts) error {
		if _, exists := accts.Users[userID]; !exists {
			return ErrUserNotFound
		}
		delete(accts.Users, userID)
		return nil
	})
}

// mutate applies fn to a fresh copy read from disk and swaps it in only once
// the file has been rewritten.
func (p *LocalAuthProvider) mutate(fn func(*localAccounts) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var next localAccounts
	err := p.store.Update(&next, func() error {
		if next.Users == nil {
			next.Users = make(map[string]*localAccount)
		}
		return fn(&next)
	})
	if err != nil {
		return err
	}
	p.accounts = next
	return nil
}

func (p *LocalAuthProvider) issue(account *localAccount) (*models.Session, error) {
	now := p.now()
	claims := localClaims{
		UserID:  account.ID,
		Email:   account.Email,
		Name:    account.DisplayName,
		Version: account.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		Token:     signed,
		ExpiresIn: int64(p.ttl / time.Second),
		User: models.Identity{
			UserID:      account.ID,
			Email:       account.Email,
			DisplayName: account.DisplayName,
		},
	}, nil
}

func findByEmail(accts *localAccounts, email string) *localAccount {
	for _, a := range accts.Users {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ AuthProvider = (*LocalAuthProvider)(nil)
