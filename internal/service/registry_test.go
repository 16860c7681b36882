package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"balagh/internal/locale"
	"balagh/internal/storage"
)

func TestRegistryIsolatesDevices(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newTestClock()
	r := NewRegistry(store, Options{Now: clock.Now, Location: time.UTC}, time.Hour)
	ctx := context.Background()

	a, err := r.Get(ctx, "device-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, _ := r.Get(ctx, "device-b")

	a.SetLanguage(ctx, "en")
	if b.Language() != locale.Arabic {
		t.Errorf("device b language = %v, want untouched default", b.Language())
	}
	if _, ok, _ := store.Get(ctx, DeviceNamespace("device-a")+":language"); !ok {
		t.Error("device a language should be stored under its namespace")
	}

	again, _ := r.Get(ctx, "device-a")
	if again != a {
		t.Error("Get() should return the cached state")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistryEvictIdle(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newTestClock()
	r := NewRegistry(store, Options{Now: clock.Now, Location: time.UTC}, 30*time.Minute)
	ctx := context.Background()

	idle, _ := r.Get(ctx, "idle")
	idle.AwardGame(ctx, 20)

	clock.Advance(20 * time.Minute)
	r.Get(ctx, "busy")
	clock.Advance(20 * time.Minute)

	if n := r.EvictIdle(); n != 1 {
		t.Fatalf("EvictIdle() = %d, want 1", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	reloaded, err := r.Get(ctx, "idle")
	if err != nil {
		t.Fatalf("Get() after eviction error = %v", err)
	}
	if reloaded == idle {
		t.Error("evicted state should be rehydrated, not reused")
	}
	if got := reloaded.KidsProgress(); got.Stars != 20 || got.Level != 2 {
		t.Errorf("rehydrated progress = %+v", got)
	}
}

func TestRegistryRejectsEmptyDevice(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore(), Options{}, time.Hour)
	if _, err := r.Get(context.Background(), ""); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("Get(\"\") error = %v, want %v", err, ErrInvalidDevice)
	}
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore(), Options{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRegistryAcquireBlocksEviction(t *testing.T) {
	clock := newTestClock()
	r := NewRegistry(storage.NewMemoryStore(), Options{Now: clock.Now, Location: time.UTC}, 30*time.Minute)
	ctx := context.Background()

	held, release, err := r.Acquire(ctx, "device-a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	clock.Advance(time.Hour)
	if n := r.EvictIdle(); n != 0 {
		t.Fatalf("EvictIdle() = %d while acquired, want 0", n)
	}
	if again, _ := r.Get(ctx, "device-a"); again != held {
		t.Error("an acquired state must stay the device's only state")
	}

	release()
	release()
	clock.Advance(time.Hour)
	if n := r.EvictIdle(); n != 1 {
		t.Errorf("EvictIdle() after release = %d, want 1", n)
	}
}

func TestRegistryTransient(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewRegistry(store, Options{Now: newTestClock().Now, Location: time.UTC}, time.Hour)
	ctx := context.Background()

	s, err := r.Transient(ctx, "new-device")
	if err != nil {
		t.Fatalf("Transient() error = %v", err)
	}
	if got := s.KidsProgress(); got.DailyStreak != 1 {
		t.Errorf("DailyStreak = %d, want 1", got.DailyStreak)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if keys := store.Keys(""); len(keys) != 0 {
		t.Errorf("store keys = %v, want none", keys)
	}
	if _, err := r.Transient(ctx, ""); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("Transient(\"\") error = %v, want %v", err, ErrInvalidDevice)
	}
}
