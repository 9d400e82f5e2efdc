package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestStoreSeedLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "identity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("close store: %v", cerr)
		}
	}()

	if _, err := store.Get(ctx); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}

	seed, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if err := store.Set(ctx, seed); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !seed.Equal(got) {
		t.Fatalf("stored seed mismatch")
	}

	// Set replaces the previous seed.
	seed2, _ := NewSeed()
	if err := store.Set(ctx, seed2); err != nil {
		t.Fatalf("set2: %v", err)
	}
	got, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("get2: %v", err)
	}
	if !seed2.Equal(got) {
		t.Fatalf("expected replacement seed")
	}
}

func TestStoreState(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "identity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if v, err := store.GetState(ctx, "missing", "default"); err != nil || v != "default" {
		t.Fatalf("GetState default: %v %q", err, v)
	}
	if err := store.SetState(ctx, "last_backup_id", "01ABC"); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if v, err := store.GetState(ctx, "last_backup_id", ""); err != nil || v != "01ABC" {
		t.Fatalf("GetState stored: %v %q", err, v)
	}
}

func TestStoreRejectsShortSeed(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "identity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Set(context.Background(), Seed{Raw: []byte{1}}); err == nil {
		t.Fatalf("expected error for short seed")
	}
}
