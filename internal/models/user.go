package models

import (
	"net/mail"
	"strings"
	"time"
)

const (
	minDisplayNameLen = 3
	minPasswordLen    = 6
)

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Session is returned by sign-up and sign-in.
type Session struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	User         Identity `json:"user"`
}

type AuthResponse struct {
	Session
	Profile *UserProfile `json:"profile,omitempty"`
}

type RegisterRequest struct {
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		errors["display_name"] = "Username is required"
	} else if len([]rune(name)) < minDisplayNameLen {
		errors["display_name"] = "Username must be at least 3 characters long"
	}

	validateEmail(errors, r.Email)

	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < minPasswordLen {
		errors["password"] = "Password must be at least 6 characters long"
	}

	if r.ConfirmPassword == "" {
		errors["confirm_password"] = "Confirm Password is required"
	} else if r.ConfirmPassword != r.Password {
		errors["confirm_password"] = "Passwords must match"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	validateEmail(errors, r.Email)

	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < minPasswordLen {
		errors["password"] = "Password must be at least 6 characters long"
	}

	return errors
}

func validateEmail(errors map[string]string, email string) {
	e := strings.TrimSpace(email)
	if e == "" {
		errors["email"] = "Email is required"
		return
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		errors["email"] = "Invalid email format"
	}
}

// UserProfile is the user document keyed by the auth-assigned id.
type UserProfile struct {
	UserID          string     `json:"user_id" bson:"user_id"`
	Email           string     `json:"email" bson:"email,omitempty"`
	DisplayName     string     `json:"display_name" bson:"display_name,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty" bson:"profile_image_url,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// PublicProfile is safe to show to other users (no email).
type PublicProfile struct {
	UserID          string `json:"user_id"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

func (p *UserProfile) Public() PublicProfile {
	return PublicProfile{
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
		ProfileImageURL: p.ProfileImageURL,
	}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

func (r *UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.DisplayName != nil && len([]rune(strings.TrimSpace(*r.DisplayName))) < minDisplayNameLen {
		errors["display_name"] = "Username must be at least 3 characters long"
	}
	return errors
}

// ProfileUpdate is a partial update of a profile document. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName     *string
	ProfileImageURL *string
	LastLoginAt     *time.Time
}

// MeResponse describes the signed-in caller. Profile is nil when no user
// document exists yet.
type MeResponse struct {
	User    Identity     `json:"user"`
	Profile *UserProfile `json:"profile"`
}
