package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/visitnote/visit-summary/errors"
	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/pkg/jwt"
)

func runAuth(t *testing.T, m *jwt.Manager, setup func(r *http.Request)) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/forms/42/summary", nil)
	setup(req)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := EchoAuth(m, nil)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func TestEchoAuth(t *testing.T) {
	m := jwt.NewManager("secret", time.Minute)
	token, err := m.GenerateAccessToken("admin.bob", "quality_administrator")
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		c, called, err := runAuth(t, m, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		})
		require.NoError(t, err)
		assert.True(t, called)

		actor, ok := GetActor(c)
		assert.True(t, ok)
		assert.Equal(t, "admin.bob", actor)
		assert.Equal(t, entities.RoleQualityAdministrator, GetRole(c))
	})

	t.Run("cookie", func(t *testing.T) {
		c, called, err := runAuth(t, m, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		})
		require.NoError(t, err)
		assert.True(t, called)
		actor, _ := GetActor(c)
		assert.Equal(t, "admin.bob", actor)
	})

	t.Run("missing token", func(t *testing.T) {
		_, called, err := runAuth(t, m, func(r *http.Request) {})
		assert.False(t, called)

		var appErr apperrors.AppError
		require.True(t, stdErrors.As(err, &appErr))
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode)
		assert.Equal(t, apperrors.ErrorCode_UNAUTHENTICATED, appErr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, called, err := runAuth(t, m, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		})
		assert.False(t, called)

		var appErr apperrors.AppError
		require.True(t, stdErrors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrorCode_AUTH_INVALID_TOKEN, appErr.Code)
	})

	t.Run("unknown role passes through", func(t *testing.T) {
		other, err := m.GenerateAccessToken("clerk", "billing")
		require.NoError(t, err)

		c, called, err := runAuth(t, m, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+other)
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, entities.Role("billing"), GetRole(c))
	})
}
