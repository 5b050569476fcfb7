// Package discussion is a room's discussion log: threads of messages a
// room's users speak into and reply within, independent of the TVC
// repository the same room also owns.
package discussion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltosdev/meltos/internal/session"
)

// DiscussionId identifies one discussion thread within a room.
type DiscussionId string

// MessageId identifies one message, whether a thread-opening Speak or a
// threaded Reply.
type MessageId string

func newDiscussionId() DiscussionId { return DiscussionId(uuid.NewString()) }
func newMessageId() MessageId       { return MessageId(uuid.NewString()) }

func (d DiscussionId) String() string { return string(d) }
func (m MessageId) String() string    { return string(m) }

// Meta describes a discussion without its messages — enough to list
// open discussions in a room.
type Meta struct {
	Id      DiscussionId
	Title   string
	Creator session.UserId
}

// Message is one post, either a root Speak (ReplyTo is empty) or a
// threaded Reply (ReplyTo names the message it answers).
type Message struct {
	Id      MessageId
	UserId  session.UserId
	Text    string
	ReplyTo MessageId
}

// Bundle is a discussion and every message posted into it, the shape
// sync() hands a joining client per spec.md §6.
type Bundle struct {
	Meta     Meta
	Messages []Message
}

// ErrKind enumerates the ways a Store operation can fail.
type ErrKind int

const (
	// ErrDiscussionNotExists means the discussion id names no open
	// discussion — either it was never created or Close removed it.
	ErrDiscussionNotExists ErrKind = iota
	// ErrMessageNotExists means Reply targeted a message id nothing
	// posted.
	ErrMessageNotExists
)

// Error is the structured error type Store implementations return.
type Error struct {
	Kind         ErrKind
	DiscussionId DiscussionId
	MessageId    MessageId
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMessageNotExists:
		return fmt.Sprintf("discussion: message %q does not exist", e.MessageId)
	default:
		return fmt.Sprintf("discussion: discussion %q does not exist", e.DiscussionId)
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Store is a room's discussion log. Implementations serialize their
// own state; callers need no external lock. Grounded on
// original_source's DiscussionIo trait
// (meltos_backend/src/discussion/global/{sqlite,mock}.rs).
type Store interface {
	Create(ctx context.Context, title string, creator session.UserId) (Meta, error)
	Speak(ctx context.Context, discussionId DiscussionId, userId session.UserId, text string) (Message, error)
	Reply(ctx context.Context, userId session.UserId, to MessageId, text string) (Message, error)
	Close(ctx context.Context, discussionId DiscussionId) error
	DiscussionBy(ctx context.Context, discussionId DiscussionId) (Bundle, error)
	AllDiscussions(ctx context.Context) ([]Bundle, error)
	CloseStore() error
}
