// ABOUTME: End-to-end tests for the HTTP surface via httptest
// ABOUTME: Covers the login flow, protected CRUD round-trips, and error bodies

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unilab/restlab/internal/auth"
	"github.com/unilab/restlab/internal/config"
	"github.com/unilab/restlab/internal/store"
)

const testSecret = "api-e2e-test-signing-secret-32-b!"

// newTestServer builds a Server with a demo/12345 credential and the given
// token lifetime, returning the handler under test.
func newTestServer(t *testing.T, lifetime time.Duration) (*Server, http.Handler) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
		Auth: config.AuthConfig{
			JWTSecret:     testSecret,
			TokenLifetime: lifetime,
			Users:         []config.Credential{{Username: "demo", PasswordHash: string(hash)}},
		},
	}

	codec, err := auth.NewCodec([]byte(cfg.Auth.JWTSecret))
	require.NoError(t, err)
	gate := auth.NewGate(codec, cfg.Auth.TokenLifetime, cfg.CredentialMap())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, store.New(), gate, logger, "test")
	return srv, srv.Handler()
}

// do issues a request against the handler and returns the recorder.
func do(handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// login obtains a token for demo/12345.
func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := do(handler, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "demo", Password: "12345"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_Success(t *testing.T) {
	_, handler := newTestServer(t, 12*time.Hour)

	rec := do(handler, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "demo", Password: "12345"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.Type)
	assert.Equal(t, (12 * time.Hour).Milliseconds(), resp.ExpiresIn)
}

func TestLogin_BadCredentialsShareGenericBody(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)

	wrongPassword := do(handler, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "demo", Password: "wrong"})
	unknownUser := do(handler, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "ghost", Password: "12345"})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// The body must not reveal which field was wrong.
	assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.NotContains(t, wrongPassword.Body.String(), "password was")
}

func TestLogin_MissingFields(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)

	rec := do(handler, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "demo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Fields, "password")
}

func TestProtectedRoutes_RejectAnonymous(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)

	expiredSrv, _ := newTestServer(t, -time.Hour)
	expiredToken, err := expiredSrv.gate.Issue("demo")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "garbage"},
		{name: "expired token", token: expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(handler, http.MethodGet, "/api/v1/users", tt.token, nil)
			// Invalid and missing tokens are indistinguishable here: the
			// middleware degrades both to anonymous and RequireAuth rejects.
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
		})
	}
}

func TestUsers_CRUDRoundTrip(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)
	token := login(t, handler)

	// Create
	rec := do(handler, http.MethodPost, "/api/v1/users", token, CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/users/1", rec.Header().Get("Location"))

	var created store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, store.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, created)

	// Get
	rec = do(handler, http.MethodGet, "/api/v1/users/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	// Update
	rec = do(handler, http.MethodPut, "/api/v1/users/1", token, CreateUserRequest{Name: "Alicia", Email: "alicia@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, store.User{ID: 1, Name: "Alicia", Email: "alicia@example.com"}, updated)

	// List
	rec = do(handler, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Equal(t, []store.User{updated}, users)

	// Delete
	rec = do(handler, http.MethodDelete, "/api/v1/users/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Gone now
	rec = do(handler, http.MethodGet, "/api/v1/users/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delete is idempotent at the store level but the route reports 404
	// for an id that no longer exists.
	rec = do(handler, http.MethodDelete, "/api/v1/users/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_ValidationErrors(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)
	token := login(t, handler)

	tests := []struct {
		name      string
		body      CreateUserRequest
		wantField string
	}{
		{name: "missing name", body: CreateUserRequest{Email: "a@example.com"}, wantField: "name"},
		{name: "blank name", body: CreateUserRequest{Name: "   ", Email: "a@example.com"}, wantField: "name"},
		{name: "missing email", body: CreateUserRequest{Name: "Alice"}, wantField: "email"},
		{name: "bad email", body: CreateUserRequest{Name: "Alice", Email: "not-an-address"}, wantField: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(handler, http.MethodPost, "/api/v1/users", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation failed", resp.Error)
			assert.Contains(t, resp.Fields, tt.wantField)
		})
	}
}

func TestUsers_MalformedBody(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)
	token := login(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_UnknownIDForms(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)
	token := login(t, handler)

	for _, path := range []string{
		"/api/v1/users/999",
		"/api/v1/users/abc",
		"/api/v1/users/1/extra",
	} {
		rec := do(handler, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
		assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
	}
}

func TestUsers_MethodNotAllowed(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)
	token := login(t, handler)

	rec := do(handler, http.MethodPatch, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodGet)

	rec = do(handler, http.MethodGet, "/api/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth_Public(t *testing.T) {
	_, handler := newTestServer(t, time.Hour)

	rec := do(handler, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["server_id"])
}

func TestSeededStore_VisibleThroughAPI(t *testing.T) {
	srv, handler := newTestServer(t, time.Hour)
	srv.store.SeedDemo()
	token := login(t, handler)

	rec := do(handler, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
}
