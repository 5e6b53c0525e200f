package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreLifecycle(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	ok, err := s.Exists(ctx, token)
	if err != nil || !ok {
		t.Fatalf("token should exist, got ok=%v err=%v", ok, err)
	}

	ok, err = s.Exists(ctx, "not-a-token")
	if err != nil || ok {
		t.Fatalf("unknown token should not exist, got ok=%v err=%v", ok, err)
	}

	if err := s.Delete(ctx, token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ = s.Exists(ctx, token)
	if ok {
		t.Fatal("token should be gone after delete")
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	token, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, _ := s.Exists(ctx, token)
	if !ok {
		t.Fatal("token should exist")
	}

	if err := s.Delete(ctx, token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ = s.Exists(ctx, token)
	if ok {
		t.Fatal("token should be gone after delete")
	}
}
