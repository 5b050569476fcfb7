package room

import (
	"fmt"

	"github.com/meltosdev/meltos/internal/session"
)

// ErrKind enumerates the room-level failure taxonomy of spec.md §7 —
// distinct from tvc.ErrKind, since these describe room/session
// lifecycle failures rather than repository corruption.
type ErrKind int

const (
	// ErrReachedCapacity means join was refused because user_count
	// already equals the room's capacity.
	ErrReachedCapacity ErrKind = iota
	// ErrOwnerCannotKick means a kick list named the room's owner, or
	// Kick was called by someone other than the owner.
	ErrOwnerCannotKick
	// ErrRoomNotExists means the registry holds no room for this id.
	ErrRoomNotExists
	// ErrRoomOwnerDisconnected means a send_to(ownerOnly) call found no
	// channel registered for the owner.
	ErrRoomOwnerDisconnected
	// ErrSessionIdNotExists mirrors session.ErrSessionIdNotExists,
	// surfaced at the room boundary so callers need not import session.
	ErrSessionIdNotExists
	// ErrUserIdConflict mirrors session.ErrUserIdConflict.
	ErrUserIdConflict
	// ErrExceedBundleSize means Open's initial bundle exceeded the
	// configured size limit.
	ErrExceedBundleSize
	// ErrExceedRepositorySize means Push's bundle would grow the
	// repository past the configured size limit.
	ErrExceedRepositorySize
)

// Error is the structured error type every room operation returns.
type Error struct {
	Kind     ErrKind
	RoomId   Id
	UserId   session.UserId
	Capacity uint64
	Limit    int64
	Observed int64
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrReachedCapacity:
		return fmt.Sprintf("room: capacity %d reached", e.Capacity)
	case ErrOwnerCannotKick:
		return "room: owner cannot be kicked"
	case ErrRoomNotExists:
		return fmt.Sprintf("room: %q does not exist", e.RoomId)
	case ErrRoomOwnerDisconnected:
		return fmt.Sprintf("room: owner of %q is disconnected", e.RoomId)
	case ErrUserIdConflict:
		return fmt.Sprintf("room: user id %q already registered", e.UserId)
	case ErrExceedBundleSize:
		return fmt.Sprintf("room: bundle size %d exceeds limit %d", e.Observed, e.Limit)
	case ErrExceedRepositorySize:
		return fmt.Sprintf("room: repository size %d exceeds limit %d", e.Observed, e.Limit)
	default:
		return "room: session id does not exist"
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func errReachedCapacity(capacity uint64) *Error {
	return &Error{Kind: ErrReachedCapacity, Capacity: capacity}
}

func errRoomNotExists(id Id) *Error { return &Error{Kind: ErrRoomNotExists, RoomId: id} }

func errRoomOwnerDisconnected(id Id) *Error {
	return &Error{Kind: ErrRoomOwnerDisconnected, RoomId: id}
}

func errExceedBundleSize(limit, observed int64) *Error {
	return &Error{Kind: ErrExceedBundleSize, Limit: limit, Observed: observed}
}

func errExceedRepositorySize(limit, observed int64) *Error {
	return &Error{Kind: ErrExceedRepositorySize, Limit: limit, Observed: observed}
}

// translateSessionErr maps a session.Error onto the room-level taxonomy
// so callers never need to import internal/session to recognize a
// failure from a Store call made on their behalf.
func translateSessionErr(err error) error {
	se, ok := err.(*session.Error)
	if !ok {
		return err
	}
	switch se.Kind {
	case session.ErrUserIdConflict:
		return &Error{Kind: ErrUserIdConflict, UserId: se.UserId}
	default:
		return &Error{Kind: ErrSessionIdNotExists}
	}
}
