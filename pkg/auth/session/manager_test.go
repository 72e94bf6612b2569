package session

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/milletmart/milletmart-backend/pkg/redis"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	val, ok := m.values[key]
	if !ok {
		return "", redisclient.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type passthroughKeyer struct{}

func (passthroughKeyer) SessionKey(token string) string { return "test:" + token }

func newTestManager() (*Manager, *memoryStore) {
	store := &memoryStore{values: map[string]string{}}
	return &Manager{store: store, keyer: passthroughKeyer{}, ttl: time.Hour}, store
}

func TestCreateValidateRevoke(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	token, err := mgr.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	userID, err := mgr.Validate(ctx, token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}

	if err := mgr.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := mgr.Validate(ctx, token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession after revoke, got %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.Validate(context.Background(), "never-issued"); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := mgr.Validate(context.Background(), "  "); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for blank token, got %v", err)
	}
}

func TestCreateRequiresUserID(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.Create(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestTokensAreUnique(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 32; i++ {
		token, err := mgr.Create(ctx, "user-1")
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatal("token collision")
		}
		seen[token] = struct{}{}
	}
}
