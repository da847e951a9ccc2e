package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

func newProtectedApp(t *testing.T, store *memory.Store, tm *TokenManager, guards ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, store.Users())
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Viewer().ID)
	})
	app.Get("/me", handlers...)
	return app
}

func seedUser(t *testing.T, store *memory.Store, id string, role domain.UserRole, active bool) {
	t.Helper()
	require.NoError(t, store.Users().Create(context.Background(), &domain.User{
		ID: id, Email: id + "@example.com", Role: role, IsActive: active,
	}))
}

func bearer(t *testing.T, tm *TokenManager, id string, role domain.UserRole) string {
	t.Helper()
	raw, _, err := tm.GenerateToken(id, role)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	store := memory.New()
	seedUser(t, store, "active", domain.UserRoleRequester, true)
	seedUser(t, store, "inactive", domain.UserRoleRequester, false)

	cases := map[string]struct {
		header string
		status int
	}{
		"missing header": {header: "", status: http.StatusUnauthorized},
		"wrong scheme":   {header: "Basic abc", status: http.StatusUnauthorized},
		"garbage token":  {header: "Bearer abc", status: http.StatusUnauthorized},
		"unknown user":   {header: bearer(t, tm, "ghost", domain.UserRoleRequester), status: http.StatusUnauthorized},
		"inactive user":  {header: bearer(t, tm, "inactive", domain.UserRoleRequester), status: http.StatusUnauthorized},
		"active user":    {header: bearer(t, tm, "active", domain.UserRoleRequester), status: http.StatusOK},
	}

	app := newProtectedApp(t, store, tm)
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireStaff_UsesStoredRole(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	store := memory.New()
	seedUser(t, store, "req", domain.UserRoleRequester, true)
	seedUser(t, store, "res", domain.UserRoleResolver, true)
	app := newProtectedApp(t, store, tm, RequireStaff())

	// A token claiming a staff role does not outrank the stored account.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, tm, "req", domain.UserRoleAdmin))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, tm, "res", domain.UserRoleResolver))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
