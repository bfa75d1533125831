package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

type contextKey string

const principalKey contextKey = "principal"

// CronSecretHeader carries the shared secret on scheduler calls.
const CronSecretHeader = "X-Cron-Secret"

// Principal is the authenticated caller.
type Principal struct {
	UserID      string
	Role        models.Role
	WorkspaceID string
}

func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Claims is the JWT payload issued by the auth service.
type Claims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			principal, err := validateToken(parts[1], secret)
			if err != nil {
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func validateToken(tokenString, secret string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token invalid")
	}

	role := models.Role(claims.Role)
	switch role {
	case models.RoleAdmin, models.RoleTrainer, models.RoleClient:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	if claims.UserID == "" || claims.WorkspaceID == "" {
		return nil, fmt.Errorf("token missing user or workspace")
	}

	return &Principal{
		UserID:      claims.UserID,
		Role:        role,
		WorkspaceID: claims.WorkspaceID,
	}, nil
}

// RequireRole rejects callers whose role is not in roles with 403.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			services.SendErrorResponse(w, "You do not have access to this resource", http.StatusForbidden, nil)
		})
	}
}

// CronAuth guards scheduler endpoints with a shared secret. An empty
// secret disables the endpoints.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(CronSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
