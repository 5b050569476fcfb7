package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store backed by a map, for rooms whose
// operator did not request durable session persistence. Grounded on
// original_source's MockSessionIo (meltos_backend/src/session/mock.rs).
type MemoryStore struct {
	mu         sync.Mutex
	bySession  map[SessionId]UserId
	createdCnt uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySession:  make(map[SessionId]UserId),
		createdCnt: 0,
	}
}

func (m *MemoryStore) Register(_ context.Context, userId *UserId) (UserId, SessionId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createdCnt++

	var id UserId
	if userId != nil {
		id = *userId
		for _, existing := range m.bySession {
			if existing == id {
				return "", "", &Error{Kind: ErrUserIdConflict, UserId: id}
			}
		}
	} else {
		id = UserId(fmt.Sprintf("guest%d", m.createdCnt))
	}

	sessionId := m.freshSessionId()
	m.bySession[sessionId] = id
	return id, sessionId, nil
}

// freshSessionId retries uuid generation on the astronomically unlikely
// chance of a collision, matching the original's generate_session_id loop.
func (m *MemoryStore) freshSessionId() SessionId {
	for {
		id := newSessionId()
		if _, exists := m.bySession[id]; !exists {
			return id
		}
	}
}

func (m *MemoryStore) Unregister(_ context.Context, userId UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sessionId, id := range m.bySession {
		if id == userId {
			delete(m.bySession, sessionId)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) Fetch(_ context.Context, sessionId SessionId) (UserId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySession[sessionId]
	if !ok {
		return "", &Error{Kind: ErrSessionIdNotExists}
	}
	return id, nil
}

func (m *MemoryStore) UserCount(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return uint64(len(m.bySession)), nil
}

func (m *MemoryStore) Close() error { return nil }
