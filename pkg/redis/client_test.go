package redis

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/milletmart/milletmart-backend/pkg/config"
)

type fakeStore struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) *redislib.StatusCmd {
	return redislib.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redislib.StatusCmd {
	f.values[key] = value.(string)
	f.expires[key] = ttl
	return redislib.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redislib.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return redislib.NewStringResult("", redislib.Nil)
	}
	return redislib.NewStringResult(val, nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redislib.IntCmd {
	f.counts[key]++
	return redislib.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redislib.BoolCmd {
	f.expires[key] = ttl
	return redislib.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			removed++
		}
		delete(f.values, key)
	}
	return redislib.NewIntResult(removed, nil)
}

func TestSetGetDel(t *testing.T) {
	client := &Client{store: newFakeStore()}
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get returned %q, %v", got, err)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestIncrWithTTLStampsWindowOnce(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	count, err := client.IncrWithTTL(ctx, "rl", time.Minute)
	if err != nil || count != 1 {
		t.Fatalf("first increment returned %d, %v", count, err)
	}
	if store.expires["rl"] != time.Minute {
		t.Fatalf("expected TTL stamped on first increment, got %v", store.expires["rl"])
	}

	count, err = client.IncrWithTTL(ctx, "rl", time.Minute)
	if err != nil || count != 2 {
		t.Fatalf("second increment returned %d, %v", count, err)
	}
}

func TestKeyNamespacing(t *testing.T) {
	client := &Client{}
	if got := client.SessionKey("tok123"); got != "mm:admin_session:tok123" {
		t.Fatalf("unexpected session key %q", got)
	}
	if got := client.RateLimitKey("login", "1.2.3.4"); got != "mm:rate_limit:login:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address is set")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 5 {
		t.Fatalf("options not mapped: %+v", opts)
	}
}
