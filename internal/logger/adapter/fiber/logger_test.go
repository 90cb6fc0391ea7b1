package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markstash/markstash/internal/logger"
	adapter "github.com/markstash/markstash/internal/logger/adapter/fiber"
)

type accessEntry struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(adapter.New(cfg))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/checkalive", func(c *fiber.Ctx) error { return c.SendString("alive") })
	app.Get("/fail", func(_ *fiber.Ctx) error { return errors.New("boom") }) //nolint:goerr113

	return app
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantURI    string
	}{
		{name: "root", target: "/", wantStatus: http.StatusOK, wantURI: "/"},
		{name: "query string is kept", target: "/?test=123", wantStatus: http.StatusOK, wantURI: "/?test=123"},
		{name: "unknown path", target: "/no_path//?test=123", wantStatus: http.StatusNotFound, wantURI: "/no_path//?test=123"},
		{name: "handler error", target: "/fail", wantStatus: http.StatusInternalServerError, wantURI: "/fail"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer

			app := newApp(adapter.Config{Output: &out})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.target, nil), -1)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Performance"))

			var entry accessEntry
			require.NoError(t, json.Unmarshal(out.Bytes(), &entry), "output: %s", out.String())
			assert.Equal(t, tc.wantStatus, entry.Status)
			assert.Equal(t, tc.wantURI, entry.URI)
			assert.Equal(t, fiber.MethodGet, entry.Method)
			assert.Equal(t, "example.com", entry.Host)
		})
	}
}

func TestNewErrorSetsCacheControl(t *testing.T) {
	var out bytes.Buffer

	app := newApp(adapter.Config{Output: &out})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "max-age=0", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Contains(t, out.String(), "boom")
}

func TestNewSkipsCheckAlive(t *testing.T) {
	var out bytes.Buffer

	app := newApp(adapter.Config{
		Output:        &out,
		CheckAliveURI: "/checkalive",
		Config:        logger.Log{DisableCheckAlive: true},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/checkalive", nil), -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, strings.TrimSpace(out.String()))
}

func TestNewNext(t *testing.T) {
	var out bytes.Buffer

	app := newApp(adapter.Config{
		Output: &out,
		Next:   func(_ *fiber.Ctx) bool { return true },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, out.String())
	assert.Empty(t, resp.Header.Get("X-Performance"))
}
