package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabletop/backend/internal/models"
)

type stubVerifier struct {
	tokens map[string]models.Identity
}

func (v stubVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	identity, ok := v.tokens[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &identity, nil
}

var verifier = stubVerifier{tokens: map[string]models.Identity{
	"good": {UserID: "alice", Email: "alice@example.com", DisplayName: "Alice"},
}}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r.Context())))
}

func TestAuthenticate(t *testing.T) {
	handler := Authenticate(verifier)(http.HandlerFunc(echoUser))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", status: http.StatusOK, body: "alice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	handler := OptionalAuth(verifier)(http.HandlerFunc(echoUser))

	for header, want := range map[string]string{
		"":            "",
		"Bearer nope": "",
		"Bearer good": "alice",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestGetIdentity(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), models.Identity{UserID: "bob", DisplayName: "Bob"})
	identity, ok := GetIdentity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Bob", identity.DisplayName)
	assert.Equal(t, "bob", GetUserID(ctx))
}
