package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func findHTTPLog(t *testing.T, logs []observer.LoggedEntry) observer.LoggedEntry {
	t.Helper()
	for _, l := range logs {
		if l.Message == "HTTP Request" {
			return l
		}
	}
	require.FailNow(t, "HTTP Request log should exist")
	return observer.LoggedEntry{}
}

func TestFiberMiddleware_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		name    string
		handler fiber.Handler
		status  int
		level   zapcore.Level
	}{
		{"ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }, 200, zapcore.InfoLevel},
		{"client error", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) }, 404, zapcore.WarnLevel},
		{"fiber error", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "cms down") }, 502, zapcore.ErrorLevel},
		{"plain error", func(c *fiber.Ctx) error { return errors.New("boom") }, 500, zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			app := fiber.New()
			app.Use(FiberMiddleware(zap.New(core)))
			app.Get("/test", tc.handler)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test?x=1", nil), -1)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

			entry := findHTTPLog(t, recorded.All())
			assert.Equal(t, tc.level, entry.Level)
			assert.EqualValues(t, tc.status, entry.ContextMap()["status"])
		})
	}
}

func TestFiberMiddleware_KeepsIncomingRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(FiberMiddleware(zap.New(core)))
	app.Get("/test", func(c *fiber.Ctx) error {
		FromCtx(c).Info("inside handler")
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	for _, entry := range recorded.All() {
		assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
	}
	assert.Len(t, recorded.FilterMessage("inside handler").All(), 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}

func TestNew(t *testing.T) {
	l := New(&Config{Level: "debug", Format: "json", Output: "stderr"})
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
