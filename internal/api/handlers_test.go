// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/swipelab/swipelab/internal/auth"
	"github.com/swipelab/swipelab/internal/config"
	"github.com/swipelab/swipelab/internal/database"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testServer bundles the router with its backing database so tests can
// both drive the HTTP surface and inspect state directly.
type testServer struct {
	router http.Handler
	db     *database.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
			BcryptCost:        bcrypt.MinCost,
		},
	}

	db, err := database.New(&config.DatabaseConfig{MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("failed to create jwt manager: %v", err)
	}

	handler := NewHandler(db, jwtManager, cfg)
	return &testServer{
		router: NewRouter(handler, &cfg.Security),
		db:     db,
	}
}

// do issues a request against the router and returns the recorder.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the response envelope's data field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got error %+v", envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
}

// register creates a researcher through the API and returns the token.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
		"name":     "Ada",
		"lastname": "Lovelace",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", rec.Code, rec.Body.String())
	}
	var tok tokenResponse
	decodeData(t, rec, &tok)
	return tok.Token
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "ada@example.edu")

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.edu",
		"password": "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}
	var tok tokenResponse
	decodeData(t, rec, &tok)

	rec = ts.do(t, http.MethodGet, "/api/v1/auth/me", tok.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed with %d: %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Email string `json:"email"`
	}
	decodeData(t, rec, &me)
	if me.Email != "ada@example.edu" {
		t.Errorf("expected email ada@example.edu, got %q", me.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "ada@example.edu")

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.edu",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "ada@example.edu")

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "ada@example.edu",
		"password": "correct-horse",
		"name":     "Ada",
		"lastname": "Lovelace",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestProtectedEndpointRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/projects/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/projects/", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED, got %+v", envelope.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := ts.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
