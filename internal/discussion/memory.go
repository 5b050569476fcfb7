package discussion

import (
	"context"
	"sync"

	"github.com/meltosdev/meltos/internal/session"
)

type record struct {
	meta     Meta
	messages []Message
	closed   bool
}

// MemoryStore is an in-process Store backed by a map, for rooms whose
// operator did not request durable discussion persistence. Grounded on
// original_source's MockGlobalDiscussionIo
// (meltos_backend/src/discussion/global/mock.rs).
type MemoryStore struct {
	mu          sync.Mutex
	discussions map[DiscussionId]*record
	ownerOf     map[MessageId]DiscussionId
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		discussions: make(map[DiscussionId]*record),
		ownerOf:     make(map[MessageId]DiscussionId),
	}
}

func (m *MemoryStore) Create(_ context.Context, title string, creator session.UserId) (Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta := Meta{Id: newDiscussionId(), Title: title, Creator: creator}
	m.discussions[meta.Id] = &record{meta: meta}
	return meta, nil
}

func (m *MemoryStore) Speak(_ context.Context, discussionId DiscussionId, userId session.UserId, text string) (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.discussions[discussionId]
	if !ok || rec.closed {
		return Message{}, &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}

	msg := Message{Id: newMessageId(), UserId: userId, Text: text}
	rec.messages = append(rec.messages, msg)
	m.ownerOf[msg.Id] = discussionId
	return msg, nil
}

func (m *MemoryStore) Reply(_ context.Context, userId session.UserId, to MessageId, text string) (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	discussionId, ok := m.ownerOf[to]
	if !ok {
		return Message{}, &Error{Kind: ErrMessageNotExists, MessageId: to}
	}
	rec := m.discussions[discussionId]
	if rec.closed {
		return Message{}, &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}

	reply := Message{Id: newMessageId(), UserId: userId, Text: text, ReplyTo: to}
	rec.messages = append(rec.messages, reply)
	m.ownerOf[reply.Id] = discussionId
	return reply, nil
}

func (m *MemoryStore) Close(_ context.Context, discussionId DiscussionId) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.discussions[discussionId]
	if !ok {
		return &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}
	rec.closed = true
	return nil
}

func (m *MemoryStore) DiscussionBy(_ context.Context, discussionId DiscussionId) (Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.discussions[discussionId]
	if !ok {
		return Bundle{}, &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}
	messages := make([]Message, len(rec.messages))
	copy(messages, rec.messages)
	return Bundle{Meta: rec.meta, Messages: messages}, nil
}

func (m *MemoryStore) AllDiscussions(_ context.Context) ([]Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bundles := make([]Bundle, 0, len(m.discussions))
	for _, rec := range m.discussions {
		if rec.closed {
			continue
		}
		messages := make([]Message, len(rec.messages))
		copy(messages, rec.messages)
		bundles = append(bundles, Bundle{Meta: rec.meta, Messages: messages})
	}
	return bundles, nil
}

func (m *MemoryStore) CloseStore() error { return nil }
