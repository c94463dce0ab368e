package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisLockAcquireRelease(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	l1 := NewRedisLock(client, "catalog-sync:run", time.Minute)
	ok, err := l1.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !ok {
		t.Fatal("first Acquire returned false")
	}

	// A second holder must be rejected while the lock is held.
	l2 := NewRedisLock(client, "catalog-sync:run", time.Minute)
	ok, err = l2.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if ok {
		t.Fatal("second Acquire succeeded while lock held")
	}

	if err := l1.Release(ctx); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	ok, err = l2.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	if !ok {
		t.Fatal("Acquire after release returned false")
	}
}

func TestRedisLockReleaseOnlyIfOwned(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	l1 := NewRedisLock(client, "catalog-sync:run", time.Minute)
	if ok, _ := l1.Acquire(ctx); !ok {
		t.Fatal("Acquire returned false")
	}

	// A non-owner release must not free the lock.
	other := NewRedisLock(client, "catalog-sync:run", time.Minute)
	if err := other.Release(ctx); err != nil {
		t.Fatalf("non-owner Release errored: %v", err)
	}

	l2 := NewRedisLock(client, "catalog-sync:run", time.Minute)
	ok, err := l2.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if ok {
		t.Fatal("lock was freed by a non-owner release")
	}
}

func TestNewFallsBackToNoop(t *testing.T) {
	l := New(nil, nil, "catalog-sync:run", time.Minute)
	ok, err := l.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("noop Acquire = (%v, %v), want (true, nil)", ok, err)
	}
	if err := l.Release(context.Background()); err != nil {
		t.Fatalf("noop Release errored: %v", err)
	}
}
