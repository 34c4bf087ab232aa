package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validate(t *testing.T) {
	ok := RegisterRequest{DisplayName: "meeple", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}
	assert.Empty(t, ok.Validate())

	bad := RegisterRequest{DisplayName: "ab", Email: "not-an-email", Password: "123", ConfirmPassword: "1234"}
	errs := bad.Validate()
	assert.Equal(t, "Username must be at least 3 characters long", errs["display_name"])
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "Password must be at least 6 characters long", errs["password"])
	assert.Equal(t, "Passwords must match", errs["confirm_password"])
}

func TestRegisterRequest_RejectsNamedAddress(t *testing.T) {
	req := RegisterRequest{DisplayName: "meeple", Email: "Bob <bob@example.com>", Password: "secret1", ConfirmPassword: "secret1"}
	assert.Equal(t, "Invalid email format", req.Validate()["email"])
}

func TestLoginRequest_Validate(t *testing.T) {
	errs := (&LoginRequest{}).Validate()
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Password is required", errs["password"])

	assert.Empty(t, (&LoginRequest{Email: "a@b.co", Password: "secret1"}).Validate())
}

func TestCommentRequest_Validate(t *testing.T) {
	assert.Equal(t, "Comment is required", (&CommentRequest{Text: "   "}).Validate()["text"])
	assert.Empty(t, (&CommentRequest{Text: strings.Repeat("é", 200)}).Validate())
	assert.Equal(t, "Comment cannot be more than 200 characters",
		(&CommentRequest{Text: strings.Repeat("x", 201)}).Validate()["text"])
}

func TestCommentAuthorName(t *testing.T) {
	assert.Equal(t, "Anonymous", CommentAuthorName(" "))
	assert.Equal(t, "meeple", CommentAuthorName("meeple"))
}

func TestContactRequest_Validate(t *testing.T) {
	req := ContactRequest{Name: "Ann", Email: "ann@example.com", Message: "Hello"}
	assert.Empty(t, req.Validate(false))
	assert.Contains(t, req.Validate(true), "recaptchaToken")
}

func TestUserProfile_LastLoginOmittedUntilSet(t *testing.T) {
	b, err := json.Marshal(UserProfile{UserID: "alice", UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "last_login_at")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b, err = json.Marshal(UserProfile{UserID: "alice", LastLoginAt: &at})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"last_login_at":"2026-01-02T03:04:05Z"`)
}
