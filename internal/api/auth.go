package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

// loginResponse carries the issued access token.
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// authEnabled reports whether the gateway requires authentication.
// With no password configured the gateway is open, which suits a
// trusted LAN deployment.
func (s *Server) authEnabled() bool {
	return s.cfg.Security.Password != ""
}

// handleLogin checks the gateway password and issues a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.authEnabled() {
		writeBadRequest(w, "authentication is not enabled")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "password is required")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.Security.Password)) != 1 {
		s.logger.Warn("failed login attempt", "request_id", r.Context().Value(ctxKeyRequestID))
		writeUnauthorized(w, "invalid password")
		return
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.Security.JWT.AccessTokenTTL) * time.Minute)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "homedeck-dashboard",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Issuer:    "homedeck",
	})

	signed, err := token.SignedString([]byte(s.cfg.Security.JWT.Secret))
	if err != nil {
		s.logger.Error("signing token", "error", err)
		writeInternalError(w, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: signed, ExpiresAt: expiresAt})
}

// verifyToken parses and validates a bearer token.
func (s *Server) verifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Security.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("token invalid")
	}
	return nil
}
