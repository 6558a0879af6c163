package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scottfrazer/blog/internal/cache"
)

const sessionPrefix = "session"

// Sessions issues and checks admin session tokens.
type Sessions struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessions stores tokens in c, each living for ttl.
func NewSessions(c cache.Cache, ttl time.Duration) *Sessions {
	return &Sessions{cache: c, ttl: ttl}
}

// Create issues a new session token.
func (s *Sessions) Create() (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(cache.Key(sessionPrefix, token), time.Now().UTC().Format(time.RFC3339), s.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Valid reports whether token names a live session.
func (s *Sessions) Valid(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, found, err := s.cache.Get(cache.Key(sessionPrefix, token))
	if err != nil {
		return false, fmt.Errorf("looking up session: %w", err)
	}
	return found, nil
}

// Revoke ends a session. Unknown tokens are ignored.
func (s *Sessions) Revoke(token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(cache.Key(sessionPrefix, token))
}

// TokenFromHeader extracts the session token from an Authorization header
// value. Both a bare token and "Bearer <token>" are accepted.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
