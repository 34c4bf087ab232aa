package services

import (
	"context"
	"sync"
	"time"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type AuthEventType string

const (
	AuthEventRegistered AuthEventType = "registered"
	AuthEventSignedIn   AuthEventType = "signed_in"
	AuthEventSignedOut  AuthEventType = "signed_out"
)

type AuthEvent struct {
	Type   AuthEventType
	UserID string
	Email  string
	At     time.Time
}

type AuthListener func(ctx context.Context, ev AuthEvent)

// AuthEvents fans auth-state changes out to in-process listeners. Listeners
// run synchronously on the publishing goroutine, in subscription order.
type AuthEvents struct {
	mu        sync.Mutex
	nextID    int
	listeners []authSubscription
}

type authSubscription struct {
	id int
	fn AuthListener
}

func NewAuthEvents() *AuthEvents {
	return &AuthEvents{}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (e *AuthEvents) Subscribe(fn AuthListener) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, authSubscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, sub := range e.listeners {
				if sub.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (e *AuthEvents) Publish(ctx context.Context, typ AuthEventType, user models.Identity) {
	ev := AuthEvent{
		Type:   typ,
		UserID: user.UserID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	}

	e.mu.Lock()
	listeners := make([]authSubscription, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(ctx, ev)
	}
}

// LogAuthEvents writes one structured line per event.
func LogAuthEvents(ctx context.Context, ev AuthEvent) {
	logging.FromContext(ctx).Info().
		Str("event", string(ev.Type)).
		Str("user_id", ev.UserID).
		Time("at", ev.At).
		Msg("auth state changed")
}

// TrackLastLogin returns a listener that stamps last_login_at on sign-in.
func TrackLastLogin(profiles ProfileService) AuthListener {
	return func(ctx context.Context, ev AuthEvent) {
		if ev.Type != AuthEventSignedIn {
			return
		}
		at := ev.At
		if _, err := profiles.Update(ctx, ev.UserID, models.ProfileUpdate{LastLoginAt: &at}); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("user_id", ev.UserID).Msg("recording last login failed")
		}
	}
}
