package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakilabs/ott-price-compare/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "s3cret", AdminUser: "admin", AdminPassword: "pw"}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoginHandler(t *testing.T) {
	cfg := testConfig()
	h := LoginHandler(cfg, discard())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"pw"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	sub, err := Verify(cfg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	for _, body := range []string{`{"username":"admin","password":"nope"}`, `{"username":"root","password":"pw"}`} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = ""
	rec := httptest.NewRecorder()
	LoginHandler(cfg, discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":""}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware(t *testing.T) {
	cfg := testConfig()
	protected := Middleware(cfg, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	valid, _, err := IssueToken(cfg, "admin")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	otherKey, _, err := IssueToken(&config.Config{JWTSecret: "other"}, "admin")
	require.NoError(t, err)

	cases := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"header", "/api/admin/alerts", "Bearer " + valid, http.StatusNoContent},
		{"query token", "/api/admin/alerts?token=" + valid, "", http.StatusNoContent},
		{"missing", "/api/admin/alerts", "", http.StatusUnauthorized},
		{"not bearer", "/api/admin/alerts", "Basic abc", http.StatusUnauthorized},
		{"expired", "/api/admin/alerts", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "/api/admin/alerts", "Bearer " + otherKey, http.StatusUnauthorized},
		{"garbage", "/api/admin/alerts", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
