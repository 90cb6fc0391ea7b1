package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markstash/markstash/internal/config"
)

// newDiscoveryServer serves just enough of an identity provider for startup.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/jwks",
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestConfig(t *testing.T, providerURL string) *config.Config {
	t.Helper()

	return &config.Config{
		DevMode: true,
		DB: config.DB{
			GormEngine: "sqlite",
			Name:       filepath.Join(t.TempDir(), "markstash.db"),
		},
		Webserver: config.Webserver{
			URL:     "http://localhost:8080",
			Port:    8080,
			Session: config.Session{Storage: "memory"},
		},
		Auth: config.Auth{
			BasePath:    "/users/login",
			LandingPath: "/",
			OIDC: config.OIDC{
				ProviderURL: providerURL,
				ClientID:    "markstash",
				RedirectURL: "http://localhost:8080/users/login/callback",
			},
		},
	}
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, config.ErrNilConfig)
}

func TestNewProviderUnreachable(t *testing.T) {
	_, err := New(context.Background(), newTestConfig(t, "http://127.0.0.1:1"))
	require.Error(t, err)
}

func TestNewUnknownSessionStorage(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")
	cfg.Webserver.Session.Storage = "etcd"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	srv := newDiscoveryServer(t)

	d, err := New(context.Background(), newTestConfig(t, srv.URL))
	require.NoError(t, err)
	require.NotNil(t, d.webService)

	resp, err := d.webService.App.Test(httptest.NewRequest(http.MethodGet, "/users/login/authenticate", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), srv.URL+"/authorize")
}
