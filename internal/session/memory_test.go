package session

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_RegisterAndFetch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	userId := UserId("alice")
	gotUser, sessionId, err := store.Register(ctx, &userId)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if gotUser != userId {
		t.Errorf("Register() user = %q, want %q", gotUser, userId)
	}

	fetched, err := store.Fetch(ctx, sessionId)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if fetched != userId {
		t.Errorf("Fetch() = %q, want %q", fetched, userId)
	}
}

func TestMemoryStore_UnregisterRemovesSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	userId := UserId("bob")
	_, sessionId, err := store.Register(ctx, &userId)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if err := store.Unregister(ctx, userId); err != nil {
		t.Fatalf("Unregister() error: %v", err)
	}

	if _, err := store.Fetch(ctx, sessionId); !errors.Is(err, &Error{Kind: ErrSessionIdNotExists}) {
		t.Errorf("Fetch() after unregister = %v, want ErrSessionIdNotExists", err)
	}
}

func TestMemoryStore_FetchUnknownSessionFails(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Fetch(context.Background(), SessionId("nope"))
	if !errors.Is(err, &Error{Kind: ErrSessionIdNotExists}) {
		t.Errorf("Fetch() = %v, want ErrSessionIdNotExists", err)
	}
}

func TestMemoryStore_RegisterConflictingUserIdFails(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	userId := UserId("carol")
	if _, _, err := store.Register(ctx, &userId); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	_, _, err := store.Register(ctx, &userId)
	if !errors.Is(err, &Error{Kind: ErrUserIdConflict}) {
		t.Errorf("second Register() = %v, want ErrUserIdConflict", err)
	}
}

func TestMemoryStore_RegisterNilUserIdGeneratesGuestNames(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, _, err := store.Register(ctx, nil)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if first != "guest1" {
		t.Errorf("first guest = %q, want guest1", first)
	}

	second, _, err := store.Register(ctx, nil)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if second != "guest2" {
		t.Errorf("second guest = %q, want guest2", second)
	}
}

func TestMemoryStore_GuestCounterSurvivesUnregister(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, _, err := store.Register(ctx, nil)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := store.Unregister(ctx, first); err != nil {
		t.Fatalf("Unregister() error: %v", err)
	}

	second, _, err := store.Register(ctx, nil)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if second != "guest2" {
		t.Errorf("guest after unregister = %q, want guest2 (counter must not reset)", second)
	}
}

func TestMemoryStore_UserCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	count, err := store.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount() error: %v", err)
	}
	if count != 0 {
		t.Fatalf("UserCount() = %d, want 0", count)
	}

	if _, _, err := store.Register(ctx, nil); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if _, _, err := store.Register(ctx, nil); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	count, err = store.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount() error: %v", err)
	}
	if count != 2 {
		t.Errorf("UserCount() = %d, want 2", count)
	}
}
