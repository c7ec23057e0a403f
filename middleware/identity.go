// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
)

const bearerPrefix = "Bearer "

// WithIdentity resolves the Authorization header into a requester stored on
// the request context. A missing header means an anonymous requester; a
// header that does not carry a valid token is rejected with 401.
func WithIdentity(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next(w, r.WithContext(auth.WithRequester(r.Context(), auth.Anonymous)))
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				WriteError(w, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			requester, err := auth.ValidateToken(strings.TrimPrefix(header, bearerPrefix), secret)
			if err != nil {
				slog.Debug("rejected bearer token", "path", r.URL.Path, "error", err)
				WriteError(w, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			next(w, r.WithContext(auth.WithRequester(r.Context(), requester)))
		}
	}
}
