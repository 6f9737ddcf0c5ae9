package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDeduper(t *testing.T) *RedisDeduper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDeduper(client, time.Hour)
}

func TestDeduperAdd(t *testing.T) {
	deduper := newTestDeduper(t)
	ctx := context.Background()

	added, err := deduper.Add(ctx, "user", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("expected first add to succeed")
	}

	added, err = deduper.Add(ctx, "user", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatal("expected duplicate add to report false")
	}
}

func TestDeduperScopedByUser(t *testing.T) {
	deduper := newTestDeduper(t)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "alice", "key-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := deduper.Add(ctx, "bob", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("expected same key under another user to be fresh")
	}
}

func TestDeduperAddMany(t *testing.T) {
	deduper := newTestDeduper(t)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "user", "seen"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := deduper.AddMany(ctx, "user", []string{"fresh-1", "seen", "fresh-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("unexpected results: %v", results)
		}
	}
}

func TestDeduperAddManyEmpty(t *testing.T) {
	deduper := newTestDeduper(t)

	results, err := deduper.AddMany(context.Background(), "user", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestDeduperRemoveAllowsRetry(t *testing.T) {
	deduper := newTestDeduper(t)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "user", "key-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := deduper.Remove(ctx, "user", "key-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := deduper.Add(ctx, "user", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("expected removed key to be addable again")
	}
}
