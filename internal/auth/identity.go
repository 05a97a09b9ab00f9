package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abrezinsky/contestvote/internal/models"
)

var (
	ErrNoSecret       = stderrors.New("bearer tokens are not enabled")
	ErrInvalidToken   = stderrors.New("invalid bearer token")
	ErrMissingSubject = stderrors.New("token has no subject")
)

type identityKey struct{}

// Identifier resolves the voter behind a request. Tokens are HS256 JWTs
// whose subject is the account id.
type Identifier struct {
	secret []byte
}

// NewIdentifier creates an Identifier. With an empty secret no request can
// be identified, so voting and submitting are closed.
func NewIdentifier(secret string) *Identifier {
	return &Identifier{secret: []byte(secret)}
}

// Identify returns the identity carried by r. A request without a bearer
// token yields the zero Identity and no error.
func (i *Identifier) Identify(r *http.Request) (models.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return models.Identity{}, ErrInvalidToken
		}
		sub, err := i.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			return models.Identity{}, err
		}
		return models.Identity{ID: sub, Authenticated: true}, nil
	}
	return models.Identity{}, nil
}

// ParseToken validates a signed token and returns its subject
func (i *Identifier) ParseToken(raw string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// IssueToken signs a token for subject valid for ttl
func (i *Identifier) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Middleware attaches the caller's identity to the request context. A
// malformed token is rejected with 401.
func (i *Identifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := i.Identify(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireVoter rejects requests that carry no identity. It expects
// Middleware to have run first.
func RequireVoter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).IsZero() {
			unauthorized(w, "a bearer token is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or the zero Identity
func FromContext(ctx context.Context) models.Identity {
	id, _ := ctx.Value(identityKey{}).(models.Identity)
	return id
}
