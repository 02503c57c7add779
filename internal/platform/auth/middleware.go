package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
	UserEmailKey contextKey = "user_email"
	TokenJTIKey  contextKey = "token_jti"
)

// Middleware validates bearer tokens and places the caller's identity on the
// request context. Tokens whose jti has been revoked at signout, or that
// were issued before the user's sessions were bulk-revoked, are rejected
// even if their signature and expiry are still valid.
func Middleware(issuer *TokenIssuer, revoked *TokenRevocationStore, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			if revoked != nil {
				if revoked.IsRevoked(claims.ID) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
				if claims.IssuedAt != nil && revoked.IsRevokedForUser(claims.Subject, claims.IssuedAt.Time) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserRoleKey, ParseRole(claims.Role))
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, TokenJTIKey, claims.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevMiddleware is a permissive middleware for development that grants
// unauthenticated requests super-admin access. Requests that do carry a
// token are still validated normally.
func DevMiddleware(issuer *TokenIssuer, revoked *TokenRevocationStore, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	validate := Middleware(issuer, revoked, skipper)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		validated := validate(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				ctx := c.Request().Context()
				ctx = context.WithValue(ctx, UserIDKey, "dev-user")
				ctx = context.WithValue(ctx, UserRoleKey, RoleSuperAdmin)
				ctx = context.WithValue(ctx, UserEmailKey, "dev@localhost")
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
			return validated(c)
		}
	}
}

// DefaultSkipper exempts the public endpoints from authentication: health
// checks, signup/signin, and the pharmacy locator (which is usable without
// an account).
func DefaultSkipper(c echo.Context) bool {
	path := c.Path()
	switch path {
	case "/health", "/health/db", "/api/v1/auth/signup", "/api/v1/auth/signin":
		return true
	}
	return strings.HasPrefix(path, "/api/v1/locator/")
}

// ContextWithUser returns a context carrying the given identity. Used by
// the dev middleware and by tests that exercise services directly.
func ContextWithUser(ctx context.Context, userID string, role Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRoleKey, role)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(UserRoleKey).(Role)
	return role
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func JTIFromContext(ctx context.Context) string {
	jti, _ := ctx.Value(TokenJTIKey).(string)
	return jti
}
