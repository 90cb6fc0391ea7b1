package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-id"
	testClientSecret = "test-client-secret"
	testRedirectURI  = "http://localhost:8080/users/login/callback"
)

// grant is what the mock provider issues for one authorization code.
type grant struct {
	subject     string
	nonce       string
	email       string
	audience    string
	signWith    *rsa.PrivateKey
	omitIDToken bool
}

// mockOIDCServer is a minimal identity provider: discovery, jwks and token endpoint.
type mockOIDCServer struct {
	*httptest.Server
	issuer     string
	privateKey *rsa.PrivateKey
	keyID      string
	endSession bool

	mu     sync.Mutex
	grants map[string]grant

	// tokenGate, when set, is received from before the token endpoint answers.
	tokenGate chan struct{}
	// tokenHit, when set, is signalled when a token request arrives.
	tokenHit chan struct{}
}

func newMockOIDCServer(t *testing.T) *mockOIDCServer {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	mock := &mockOIDCServer{
		privateKey: privateKey,
		keyID:      "test-key-1",
		grants:     make(map[string]grant),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", mock.handleDiscovery)
	mux.HandleFunc("/token", mock.handleToken)
	mux.HandleFunc("/jwks", mock.handleJWKS)

	mock.Server = httptest.NewServer(mux)
	mock.issuer = mock.URL
	t.Cleanup(mock.Close)

	return mock
}

func (m *mockOIDCServer) grant(code string, g grant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants[code] = g
}

func (m *mockOIDCServer) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	doc := map[string]any{
		"issuer":                                m.issuer,
		"authorization_endpoint":                m.issuer + "/authorize",
		"token_endpoint":                        m.issuer + "/token",
		"jwks_uri":                              m.issuer + "/jwks",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	}

	if m.endSession {
		doc["end_session_endpoint"] = m.issuer + "/logout"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (m *mockOIDCServer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	jwks := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &m.privateKey.PublicKey,
		KeyID:     m.keyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}

func (m *mockOIDCServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if m.tokenHit != nil {
		m.tokenHit <- struct{}{}
	}

	if m.tokenGate != nil {
		<-m.tokenGate
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	g, ok := m.grants[r.PostForm.Get("code")]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})

		return
	}

	resp := map[string]any{
		"access_token": "test-access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}

	if !g.omitIDToken {
		idToken, err := m.sign(g)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp["id_token"] = idToken
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func (m *mockOIDCServer) sign(g grant) (string, error) {
	key := m.privateKey
	if g.signWith != nil {
		key = g.signWith
	}

	audience := g.audience
	if audience == "" {
		audience = testClientID
	}

	claims := map[string]any{
		"iss": m.issuer,
		"sub": g.subject,
		"aud": audience,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	if g.nonce != "" {
		claims["nonce"] = g.nonce
	}

	if g.email != "" {
		claims["email"] = g.email
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", m.keyID),
	)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	obj, err := signer.Sign(payload)
	if err != nil {
		return "", err
	}

	return obj.CompactSerialize()
}

func (m *mockOIDCServer) config() *OIDCConfig {
	return &OIDCConfig{
		ProviderURL:  m.issuer,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  testRedirectURI,
	}
}

var errUnknownTestSubject = errors.New("unknown subject")

// fakeDirectory resolves subjects from a fixed map.
type fakeDirectory struct {
	users map[string]uint64
	err   error
}

func (d *fakeDirectory) Resolve(_ context.Context, subject string) (uint64, error) {
	if d.err != nil {
		return 0, d.err
	}

	id, ok := d.users[subject]
	if !ok {
		return 0, errUnknownTestSubject
	}

	return id, nil
}

// profileDirectory records the profile it was asked to resolve.
type profileDirectory struct {
	fakeDirectory
	got *Profile
}

func (d *profileDirectory) ResolveProfile(ctx context.Context, profile *Profile) (uint64, error) {
	d.got = profile
	return d.Resolve(ctx, profile.Subject)
}
