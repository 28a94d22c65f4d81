package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
)

var testSecret = []byte("test-secret")

func mintToken(t *testing.T, userID uuid.UUID, email string, secret []byte) string {
	t.Helper()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestIdentitySetsActor(t *testing.T) {
	userID := uuid.New()
	var got *authz.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ActorFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/credits", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, userID, "user@example.com", testSecret))
	rr := httptest.NewRecorder()
	Identity(testSecret)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if got == nil {
		t.Fatal("actor missing from context")
	}
	if got.UserID != userID || got.Email != "user@example.com" {
		t.Errorf("actor: got %+v", got)
	}
}

func TestIdentityRejections(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with bad credentials")
	})
	handler := Identity(testSecret)(next)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + mintToken(t, uuid.New(), "user@example.com", []byte("other-secret"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/credits", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
		})
	}
}

func TestOptionalIdentity(t *testing.T) {
	userID := uuid.New()
	var got *authz.Actor
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		got = ActorFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := OptionalIdentity(testSecret)(next)

	// No header: anonymous passthrough, no actor.
	req := httptest.NewRequest("GET", "/api/listings", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !reached {
		t.Fatalf("anonymous request: status %d, reached %v", rr.Code, reached)
	}
	if got != nil {
		t.Errorf("anonymous request should carry no actor, got %+v", got)
	}

	// Valid token: actor set as with Identity.
	req = httptest.NewRequest("GET", "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, userID, "user@example.com", testSecret))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got == nil || got.UserID != userID {
		t.Errorf("authenticated request: actor %+v", got)
	}

	// A presented-but-invalid token is still rejected.
	reached = false
	req = httptest.NewRequest("GET", "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: got %d, want 401", rr.Code)
	}
	if reached {
		t.Error("handler reached with invalid token")
	}
}

func TestIdentityRejectsExpiredToken(t *testing.T) {
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Email: "user@example.com",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/credits", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := httptest.NewRecorder()
	Identity(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached with expired token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
