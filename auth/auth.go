// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("token has no subject")
)

// Token expiration time - 24 hours
const tokenExpiration = 24 * time.Hour

const issuer = "pollapp-api"

// Requester is the resolved identity of the caller. The zero value is the
// anonymous requester.
type Requester struct {
	UserID string
}

// Anonymous is the unauthenticated requester.
var Anonymous = Requester{}

func User(id string) Requester {
	return Requester{UserID: id}
}

func (r Requester) Authenticated() bool {
	return r.UserID != ""
}

// Claims represents the JWT claims issued by the auth provider.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken creates a signed HS256 token for the given user id.
func GenerateToken(userID, secret string, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses a bearer token and returns the requester it names.
func ValidateToken(tokenString, secret string) (Requester, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Anonymous, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Anonymous, ErrMissingUser
	}

	return User(claims.Subject), nil
}

type contextKey string

const requesterKey contextKey = "requester"

// WithRequester stores the requester in the context.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey, r)
}

// FromContext returns the requester stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Requester {
	r, ok := ctx.Value(requesterKey).(Requester)
	if !ok {
		return Anonymous
	}
	return r
}

// NewID returns a random UUID string for database records.
func NewID() string {
	return uuid.NewString()
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
