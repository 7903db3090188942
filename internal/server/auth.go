package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates the bearer tokens that gate the query
// endpoints and exchanges a shared API key (bcrypt-hashed at rest) for one.
type AuthService struct {
	secretKey  string
	tokenTTL   time.Duration
	apiKeyHash string
}

// NewAuthService builds an AuthService signing and verifying with HS256.
// apiKeyHash is the bcrypt hash configured clients must present to /auth/token.
func NewAuthService(secretKey, apiKeyHash string, tokenTTL time.Duration) *AuthService {
	return &AuthService{secretKey: secretKey, tokenTTL: tokenTTL, apiKeyHash: apiKeyHash}
}

// ExchangeAPIKey checks apiKey against the configured bcrypt hash and, if it
// matches, mints a bearer token for clientID.
func (s *AuthService) ExchangeAPIKey(clientID, apiKey string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(apiKey)); err != nil {
		return "", fmt.Errorf("invalid API key")
	}
	return s.IssueToken(clientID)
}

// IssueToken mints a bearer token for the given client identity.
func (s *AuthService) IssueToken(clientID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": clientID,
		"exp": now.Add(s.tokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// Validate parses and verifies a bearer token, returning its claims.
func (s *AuthService) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type clientIDKey struct{}

// ClientID returns the subject claim stashed in the request context by
// RequireAuth, or "" if the request carries none.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}

type tokenExchangeRequest struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
}

type tokenExchangeResponse struct {
	Token string `json:"token"`
}

// handleTokenExchange issues a bearer token in return for the shared API key.
func (s *Server) handleTokenExchange(w http.ResponseWriter, r *http.Request) {
	var req tokenExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id must not be empty")
		return
	}
	token, err := s.auth.ExchangeAPIKey(req.ClientID, req.APIKey)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenExchangeResponse{Token: token})
}

// RequireAuth wraps a handler with bearer-token authentication. When auth is
// disabled it passes every request through unchanged.
func RequireAuth(svc *AuthService, disabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if disabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := svc.Validate(strings.TrimPrefix(header, prefix))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}
			sub, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), clientIDKey{}, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
