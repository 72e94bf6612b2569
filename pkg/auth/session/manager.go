package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/milletmart/milletmart-backend/pkg/redis"
)

const tokenBytes = 32

// ErrInvalidSession signals a token that is unknown, expired, or revoked.
var ErrInvalidSession = errors.New("invalid admin session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(token string) string
}

// Manager stores opaque admin session tokens in Redis with an explicit TTL.
// The store is injected so sessions survive process restarts and expiry is
// enforced server-side instead of only advising the cookie.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Validator is the read-only surface admin middleware needs.
type Validator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// NewManager builds a session manager backed by the Redis client.
func NewManager(client *redisclient.Client, ttl time.Duration) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Create issues a fresh opaque token bound to the given user id.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(token), userID, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a token to its user id, refusing unknown or expired
// tokens with ErrInvalidSession.
func (m *Manager) Validate(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidSession
	}
	userID, err := m.store.Get(ctx, m.keyer.SessionKey(token))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return "", ErrInvalidSession
		}
		return "", err
	}
	if userID == "" {
		return "", ErrInvalidSession
	}
	return userID, nil
}

// Revoke deletes the session bound to the token.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidSession
	}
	return m.store.Del(ctx, m.keyer.SessionKey(token))
}

// TTL reports the configured session lifetime, used for the cookie max-age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
