// internal/app/auth.go
package app

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"
)

// TokenSource reports the token of the currently signed-in teacher.
type TokenSource interface {
	Token() string
}

// Auth guards the HTTP front-end: callers must present the token the
// tracker received from the remote sign-in.
type Auth struct {
	enabled bool
	tokens  TokenSource
}

func NewAuth(config *Config, tokens TokenSource) *Auth {
	return &Auth{
		enabled: config.Server.EnableAuth,
		tokens:  tokens,
	}
}

func (a *Auth) ValidateRequest(r *http.Request) error {
	if !a.enabled {
		return nil
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	current := a.tokens.Token()
	if current == "" {
		return fmt.Errorf("no teacher signed in")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(current)) != 1 {
		logger.Debug.Printf("Token mismatch for request %s %s", r.Method, r.URL.Path)
		return fmt.Errorf("invalid token")
	}
	return nil
}
