package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evdms/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func protected(t *testing.T, captured *domain.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			t.Fatal("actor missing from context")
		}
		*captured = actor
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidTokenPutsActorInContext(t *testing.T) {
	actor := domain.Actor{ID: 42, Role: domain.RoleDealerManager}
	token, err := IssueToken(testSecret, actor, time.Minute)
	assert.NoError(t, err)

	var got domain.Actor
	handler := Auth(testSecret, zap.NewNop())(protected(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/quotes/pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, actor, got)
}

func TestAuth_MissingHeaderRejected(t *testing.T) {
	handler := Auth(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/quotes/pending", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongSecretRejected(t *testing.T) {
	token, err := IssueToken("other-secret", domain.Actor{ID: 1, Role: domain.RoleAdmin}, time.Minute)
	assert.NoError(t, err)

	handler := Auth(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a forged token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/quotes/pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredTokenRejected(t *testing.T) {
	token, err := IssueToken(testSecret, domain.Actor{ID: 1, Role: domain.RoleAdmin}, -time.Minute)
	assert.NoError(t, err)

	handler := Auth(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/quotes/pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
