package room

import (
	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// MessageKind discriminates the payload carried on a participant's
// broadcast channel (spec.md §6's "Broadcast message kinds").
type MessageKind int

const (
	MessageJoined MessageKind = iota
	MessageLeft
	MessageClosedRoom
	MessagePushed
	MessageDiscussionCreated
	MessageDiscussionSpoke
	MessageDiscussionReplied
	MessageDiscussionClosed
)

// Message is the single envelope every broadcast kind is carried in,
// grounded on the teacher's flattened UpdateMessage
// (internal/server/types.go) rather than a tagged union, since a
// gateway serializing this to JSON for a WebSocket frame wants one
// struct with optional fields, not a Go interface.
type Message struct {
	Kind MessageKind `json:"kind"`

	UserId     session.UserId      `json:"userId,omitempty"`     // Joined
	Users      []session.UserId    `json:"users,omitempty"`      // Left
	Bundle     *tvc.Bundle         `json:"bundle,omitempty"`     // Pushed
	Discussion *discussion.Meta    `json:"discussion,omitempty"` // DiscussionCreated / Closed
	Post       *discussion.Message `json:"post,omitempty"`       // Spoke / Replied
}

// MessageSender delivers a Message to one connected participant. A
// failed Send causes the room to drop that recipient from its channel
// map — it is never retried and never surfaced past the room
// (SendChannelFailed, spec.md §7).
type MessageSender interface {
	Send(msg Message) error
}
