package middleware_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"boutique/internal/middleware"
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// adminStore is a single-admin AdminUserRepository.
type adminStore struct {
	admin models.AdminUser
}

func (s *adminStore) Create(context.Context, *models.AdminUser) error { return nil }
func (s *adminStore) GetByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	if username != s.admin.Username {
		return nil, services.ErrNotFound
	}
	a := s.admin
	return &a, nil
}
func (s *adminStore) GetByEmail(context.Context, string) (*models.AdminUser, error) {
	return nil, services.ErrNotFound
}
func (s *adminStore) GetByID(context.Context, string) (*models.AdminUser, error) {
	return nil, services.ErrNotFound
}
func (s *adminStore) Count(context.Context) (int64, error) { return 1, nil }

func newAuth(t *testing.T) (*services.AuthService, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := services.NewAuthService(&adminStore{admin: models.AdminUser{ID: "a1", Username: "ops", Password: string(hash)}}, "middleware-test-secret", time.Hour, zap.NewNop())
	token, err := auth.Login(context.Background(), "ops", "pw")
	require.NoError(t, err)
	return auth, token
}

func TestAuthRequired(t *testing.T) {
	auth, token := newAuth(t)
	app := fiber.New()
	app.Get("/admin", middleware.AuthRequired(auth), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.LocalUsername).(string))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCustomerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", middleware.CustomerToken(), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CustomerJWT(c))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer cms-jwt")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(reg, "boutique")

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "nope") })

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	series := make(map[string]int)
	for _, f := range families {
		series[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 2, series["http_requests_total"])
	assert.Equal(t, 2, series["http_request_duration_seconds"])
}
