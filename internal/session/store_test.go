package session

import (
	"errors"
	"path/filepath"
	"testing"

	"karsdrive/internal/domain"
)

func TestStore_LoadWithoutFile(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	t.Parallel()

	// The parent directory does not exist yet; Save must create it.
	store := NewStore(filepath.Join(t.TempDir(), "karsdrive", "session.json"))

	saved := Session{UserID: "user-1", Role: domain.RoleDriver}
	if err := store.Save(saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *loaded != saved {
		t.Errorf("expected %+v, got %+v", saved, *loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after Clear, got %v", err)
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
}

func TestStore_IncompleteSessionIsNoSession(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(Session{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("a session missing the role should read as ErrNoSession, got %v", err)
	}
}
