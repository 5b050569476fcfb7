// Package session tracks which users are connected to a room: who holds
// which session id, and how many users are currently registered.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserId names a participant within a room. Two callers racing to
// register the same UserId is a conflict (UserIdConflict), not a retry.
type UserId string

// SessionId is the opaque token a client presents on every subsequent
// request to prove which UserId it is.
type SessionId string

func newSessionId() SessionId {
	return SessionId(uuid.NewString())
}

func (u UserId) String() string    { return string(u) }
func (s SessionId) String() string { return string(s) }

// ErrKind enumerates the ways a Store operation can fail.
type ErrKind int

const (
	// ErrSessionIdNotExists means Fetch was given an id no Register call
	// produced (or Unregister has since reclaimed it).
	ErrSessionIdNotExists ErrKind = iota
	// ErrUserIdConflict means Register was asked for a UserId already
	// held by another session.
	ErrUserIdConflict
)

// Error is the structured error type Store implementations return.
type Error struct {
	Kind   ErrKind
	UserId UserId
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUserIdConflict:
		return fmt.Sprintf("session: user id %q already registered", e.UserId)
	default:
		return "session: session id does not exist"
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Store registers and resolves the users connected to a single room.
// Implementations serialize their own state; callers need no external
// lock. Grounded on original_source's SessionIo trait
// (meltos_backend/src/session/{sqlite,mock}.rs), renamed to the
// register/unregister/fetch/user_count vocabulary spec.md names.
type Store interface {
	// Register assigns userId a new session. A nil userId is filled in
	// with an auto-incrementing "guestN" id, mirroring the original's
	// guest-naming scheme.
	Register(ctx context.Context, userId *UserId) (UserId, SessionId, error)
	Unregister(ctx context.Context, userId UserId) error
	Fetch(ctx context.Context, sessionId SessionId) (UserId, error)
	UserCount(ctx context.Context) (uint64, error)
	Close() error
}
