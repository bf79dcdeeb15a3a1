package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"formwizard-go/session"
	"formwizard-go/utils"
)

type contextKey string

const SessionContextKey contextKey = "session"

// TokenHeader carries a freshly issued token on every authenticated
// response. Tokens expire SessionTTL after issue while sessions expire
// SessionTTL after their last request, so clients replace their token with
// this one to stay signed in for as long as the session lives.
const TokenHeader = "X-Session-Token"

// SessionAuth resolves the bearer token to a live session and stores the
// session in the request context.
func SessionAuth(issuer *utils.TokenIssuer, registry *session.Registry, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Debugf("No Authorization header found for %s", r.URL.Path)
				unauthorized(w, "Authorization header required")
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				log.Debugf("Invalid Authorization header format for %s", r.URL.Path)
				unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := issuer.Validate(bearerToken[1])
			if err != nil {
				log.WithError(err).Infof("Token validation failed for %s", r.URL.Path)
				unauthorized(w, "Invalid token")
				return
			}

			s, err := registry.Get(claims.SessionID)
			if err != nil {
				log.WithError(err).Info("Token refers to an unknown session")
				unauthorized(w, "Session not found or expired")
				return
			}

			if fresh, err := issuer.Issue(s.ID); err == nil {
				w.Header().Set(TokenHeader, fresh)
			} else {
				log.WithError(err).Warn("Failed to refresh session token")
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSessionFromContext(r *http.Request) *session.Session {
	if s, ok := r.Context().Value(SessionContextKey).(*session.Session); ok {
		return s
	}
	return nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": http.StatusUnauthorized,
		"error":  msg,
	})
}
