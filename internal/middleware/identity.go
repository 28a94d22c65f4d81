package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
)

type contextKey string

const ctxActorKey contextKey = "actor"

type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ActorFromCtx returns the authenticated actor, or nil outside an
// authenticated request.
func ActorFromCtx(ctx context.Context) *authz.Actor {
	if a, ok := ctx.Value(ctxActorKey).(*authz.Actor); ok {
		return a
	}
	return nil
}

// WithActor returns a context carrying the actor, as set by Identity.
func WithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, actor)
}

// Identity authenticates requests with a bearer token minted by the identity
// provider (HS256; sub is the user id, email rides along for the admin
// allow-list). On success the actor is set into request context.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}

			actor, err := parseToken(raw, secret)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalIdentity is Identity for endpoints that tolerate anonymous viewers:
// a missing Authorization header passes through with no actor, a valid token
// sets one, and a present-but-invalid token is still rejected.
func OptionalIdentity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := parseToken(raw, secret)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func parseToken(raw string, secret []byte) (*authz.Actor, error) {
	tok, err := jwt.ParseWithClaims(raw, &identityClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*identityClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, err
	}
	return &authz.Actor{UserID: userID, Email: c.Email}, nil
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
