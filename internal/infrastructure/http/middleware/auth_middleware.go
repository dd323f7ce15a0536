package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/visitnote/visit-summary/errors"
	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	ActorContextKey = "actor"
	RoleContextKey  = "role"
)

// EchoAuth returns an Echo middleware that validates the access token and
// sets "actor" (string) and "role" (entities.Role) into Echo context.
// Unknown roles are passed through; the prompt builder falls back for them.
func EchoAuth(jwtManager *jwt.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("auth")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return apperrors.ErrUnauthenticated()
			}

			claims, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				logger.Debug("Rejected access token", zap.Error(err))
				return apperrors.ErrInvalidToken()
			}

			role, ok := entities.ParseRole(claims.UserType)
			if !ok {
				logger.Warn("Token carries unknown user type",
					zap.String("actor", claims.Username),
					zap.String("user_type", claims.UserType),
				)
			}

			c.Set(ActorContextKey, claims.Username)
			c.Set(RoleContextKey, role)

			return next(c)
		}
	}
}

// GetActor returns the authenticated username
func GetActor(c echo.Context) (string, bool) {
	actor, ok := c.Get(ActorContextKey).(string)
	return actor, ok && actor != ""
}

// GetRole returns the authenticated user's role
func GetRole(c echo.Context) entities.Role {
	role, _ := c.Get(RoleContextKey).(entities.Role)
	return role
}

func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Try cookie as fallback
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}
