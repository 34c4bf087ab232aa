package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/middleware"
	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

const (
	documentTimeout = 10 * time.Second
	outboundTimeout = 15 * time.Second
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServerError logs err with the request logger and answers 500 with msg.
func writeServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msg))
}

// requireIdentity writes 401 and reports false for anonymous requests.
func requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
	}
	return identity, ok
}

// withProfileName replaces the display name from the token with the one on
// the stored profile. Token claims lag behind renames until the token is
// refreshed.
func withProfileName(ctx context.Context, profiles services.ProfileService, identity models.Identity) models.Identity {
	prof, err := profiles.Get(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, services.ErrProfileNotFound) {
			logging.FromContext(ctx).Warn().Err(err).Str("user_id", identity.UserID).Msg("profile lookup for author name failed")
		}
		return identity
	}
	if prof.DisplayName != "" {
		identity.DisplayName = prof.DisplayName
	}
	return identity
}

// queryInt returns 0 when the parameter is missing or not a number.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func clientIP(r *http.Request) string {
	// Behind a proxy the first X-Forwarded-For hop is the client.
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
