package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/config"
)

const tokenTTL = time.Hour

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func IssueToken(cfg *config.Config, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	return signed, exp, err
}

// Verify parses an HS256 admin token and returns its subject.
func Verify(cfg *config.Config, token string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("jwt secret not configured")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Middleware admits requests carrying a valid bearer token, from the
// Authorization header or a ?token= query parameter for clients that cannot
// set headers.
func Middleware(cfg *config.Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authH := r.Header.Get("Authorization")
			if authH == "" {
				if t := r.URL.Query().Get("token"); t != "" {
					authH = "Bearer " + t
				}
			}
			if !strings.HasPrefix(authH, "Bearer ") {
				apperr.Write(w, r, logger, apperr.Unauthorized("missing bearer token"))
				return
			}
			sub, err := Verify(cfg, strings.TrimPrefix(authH, "Bearer "))
			if err != nil {
				apperr.Write(w, r, logger, apperr.Wrap(err, apperr.CodeUnauthorized, "invalid token"))
				return
			}
			logger.DebugContext(r.Context(), "admin request", "sub", sub, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func LoginHandler(cfg *config.Config, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.AdminEnabled() {
			apperr.Write(w, r, logger, apperr.Unauthorized("admin login is disabled"))
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.Write(w, r, logger, apperr.BadRequest("bad json"))
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			apperr.Write(w, r, logger, apperr.Unauthorized("invalid credentials"))
			return
		}
		tok, exp, err := IssueToken(cfg, req.Username)
		if err != nil {
			apperr.Write(w, r, logger, apperr.Internal(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: tok, ExpiresAt: exp.UTC()})
	}
}
