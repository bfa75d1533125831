package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainerdesk/backend/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-User", p.UserID)
		w.Header().Set("X-Role", string(p.Role))
		w.Header().Set("X-Workspace", p.WorkspaceID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(testSecret)(principalEcho())

	valid := signToken(t, testSecret, Claims{UserID: "trainer-1", Role: "TRAINER", WorkspaceID: "ws-1"})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", Claims{UserID: "u", Role: "ADMIN", WorkspaceID: "ws-1"}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, Claims{
			UserID: "u", Role: "ADMIN", WorkspaceID: "ws-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		}), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, testSecret, Claims{UserID: "u", Role: "OWNER", WorkspaceID: "ws-1"}), http.StatusUnauthorized},
		{"missing workspace", "Bearer " + signToken(t, testSecret, Claims{UserID: "u", Role: "ADMIN"}), http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("principal in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "trainer-1", w.Header().Get("X-User"))
		assert.Equal(t, "TRAINER", w.Header().Get("X-Role"))
		assert.Equal(t, "ws-1", w.Header().Get("X-Workspace"))
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleAdmin, models.RoleTrainer)(principalEcho())

	for role, status := range map[models.Role]int{
		models.RoleAdmin:   http.StatusOK,
		models.RoleTrainer: http.StatusOK,
		models.RoleClient:  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: "u", Role: role, WorkspaceID: "ws-1"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, role)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("matching secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(CronSecretHeader, "s3cret")
		w := httptest.NewRecorder()
		CronAuth("s3cret")(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(CronSecretHeader, "guess")
		w := httptest.NewRecorder()
		CronAuth("s3cret")(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unconfigured secret disables endpoints", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		w := httptest.NewRecorder()
		CronAuth("")(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(principalEcho()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
