package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/pkg/config"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
)

type contextKey string

const (
	actorContextKey contextKey = "actor"
	roleContextKey  contextKey = "actor_role"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

const (
	actorHeader = "X-User"
	roleHeader  = "X-User-Role"
)

type identityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity resolves who is calling. With JWT configured the bearer token is
// mandatory and carries the actor and role; without it the gateway's
// X-User/X-User-Role headers are trusted. Unidentified requests default to
// the operator role.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, role, err := resolveIdentity(cfg, r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, actorContextKey, actor)
			ctx = context.WithValue(ctx, roleContextKey, role)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
				ctx = logg.WithActorRole(ctx, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(cfg config.JWTConfig, r *http.Request) (actor, role string, err error) {
	if !cfg.Enabled() {
		actor = strings.TrimSpace(r.Header.Get(actorHeader))
		role = strings.TrimSpace(r.Header.Get(roleHeader))
		if role == "" {
			role = RoleOperator
		}
		return actor, role, nil
	}

	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token required")
	}

	claims := &identityClaims{}
	parsed, parseErr := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if parseErr != nil || !parsed.Valid {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, parseErr, "invalid token")
	}

	role = claims.Role
	if role == "" {
		role = RoleOperator
	}
	return claims.Subject, role, nil
}

// RequireRole guards a subtree behind one role.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext returns the caller identity, empty when anonymous.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey).(string)
	return actor
}

// RoleFromContext returns the caller role, defaulting to operator.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleContextKey).(string)
	if role == "" {
		return RoleOperator
	}
	return role
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == RoleAdmin
}
