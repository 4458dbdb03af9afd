package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kicklab/challenge-api/internal/domain"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = (%v, %v), want miss", ok, err)
	}

	if err := kv.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || val != "v" {
		t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", val, ok, err)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatalf("key survived delete")
	}
}

func TestMemoryKV_TTL(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	if err := kv.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatalf("expired entry still present")
	}
}

func TestUserInfo_ReadThrough(t *testing.T) {
	ctx := context.Background()
	lookups := 0
	lookup := func(ctx context.Context, id string) (domain.User, error) {
		lookups++
		if id == "missing" {
			return domain.User{}, errors.New("not found")
		}
		return domain.User{ID: id, DisplayName: "Ada"}, nil
	}

	cache := NewUserInfo(NewMemory(), lookup, 0)

	name, err := cache.DisplayName(ctx, "user-1")
	if err != nil || name != "Ada" {
		t.Fatalf("DisplayName = (%q, %v), want (Ada, nil)", name, err)
	}
	if _, err := cache.DisplayName(ctx, "user-1"); err != nil {
		t.Fatalf("second DisplayName: %v", err)
	}
	if lookups != 1 {
		t.Fatalf("lookups = %d, want 1 (second call should hit cache)", lookups)
	}

	if _, err := cache.DisplayName(ctx, "missing"); err == nil {
		t.Fatalf("expected lookup error to propagate")
	}

	if err := cache.Invalidate(ctx, "user-1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := cache.DisplayName(ctx, "user-1"); err != nil {
		t.Fatalf("DisplayName after invalidate: %v", err)
	}
	if lookups != 3 {
		t.Fatalf("lookups = %d, want 3 after invalidate", lookups)
	}
}

func TestLeaderboard_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewLeaderboard(NewMemory(), time.Minute)

	if _, ok, err := cache.Get(ctx, "ch-1"); err != nil || ok {
		t.Fatalf("Get on empty cache = (%v, %v), want miss", ok, err)
	}

	top := []domain.Submission{
		{ID: "s1", TotalPoints: 50, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "s2", TotalPoints: 40, CreatedAt: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)},
	}
	if err := cache.Put(ctx, "ch-1", top); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(ctx, "ch-1")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if len(got) != 2 || got[0].ID != "s1" || got[1].TotalPoints != 40 {
		t.Fatalf("cached leaderboard mangled: %+v", got)
	}

	if err := cache.Invalidate(ctx, "ch-1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "ch-1"); ok {
		t.Fatalf("leaderboard survived invalidate")
	}
}

func TestLeaderboard_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	cache := NewLeaderboard(kv, time.Minute)

	_ = kv.Set(ctx, "leaderboard:ch-1", "{not json", 0)
	if _, ok, err := cache.Get(ctx, "ch-1"); err != nil || ok {
		t.Fatalf("corrupt entry = (%v, %v), want treated as miss", ok, err)
	}
}
