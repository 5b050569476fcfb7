package room

import (
	"log/slog"
	"sync"
	"time"
)

// Rooms is the process-wide registry of live rooms. Its map is guarded
// by a mutex held only for structural edits (insert/delete/lookup);
// room operations themselves run unlocked, so distinct rooms operate
// independently (spec.md §5's cross-repository parallelism). Grounded
// on the teacher's RepoManager (internal/repomanager/manager.go) for
// the map-plus-background-worker registry shape, generalized from
// "cloned git repos with a TTL" to "rooms with a TTL and an
// owner-connect watchdog".
type Rooms struct {
	mu    sync.RWMutex
	rooms map[Id]*Room

	// metadata is optional durable bookkeeping; nil disables it.
	metadata *MetadataStore
	logger   *slog.Logger
}

// NewRooms constructs an empty registry with no durable bookkeeping.
func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[Id]*Room), logger: slog.Default()}
}

// NewRoomsWithMetadata constructs a registry that records every
// inserted/removed room's identity in store, so a restarted gateway
// can at least report what existed at the last clean shutdown.
func NewRoomsWithMetadata(store *MetadataStore) *Rooms {
	return &Rooms{rooms: make(map[Id]*Room), metadata: store, logger: slog.Default()}
}

// Insert adds room to the registry and spawns a TTL task that deletes
// it after ttl elapses — a no-op if the room already closed itself
// (e.g. via the owner leaving, or the owner-connect watchdog) in the
// meantime (spec.md §4.14).
func (rs *Rooms) Insert(room *Room, ttl time.Duration) {
	rs.mu.Lock()
	rs.rooms[room.id] = room
	room.onClose = rs.remove
	rs.mu.Unlock()

	if rs.metadata != nil {
		now := time.Now()
		m := Metadata{Id: room.id, Owner: room.owner, Capacity: room.capacity, OpenedAt: now}
		if ttl > 0 {
			m.ExpiresAt = now.Add(ttl)
		}
		if err := rs.metadata.Put(m); err != nil {
			rs.logger.Error("failed to record room metadata", "room", room.id, "err", err)
		}
	}

	if ttl <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(ttl)
		defer timer.Stop()
		select {
		case <-room.ctx.Done():
			return
		case <-timer.C:
			rs.Delete(room.id)
		}
	}()
}

// Get looks up a room by id, failing with RoomNotExists.
func (rs *Rooms) Get(id Id) (*Room, error) {
	rs.mu.RLock()
	room, ok := rs.rooms[id]
	rs.mu.RUnlock()
	if !ok {
		return nil, errRoomNotExists(id)
	}
	return room, nil
}

// Delete closes room (if still registered) and removes it from the
// registry. Safe to call more than once for the same id.
func (rs *Rooms) Delete(id Id) {
	rs.mu.RLock()
	room, ok := rs.rooms[id]
	rs.mu.RUnlock()
	if !ok {
		return
	}
	room.Close()
}

// remove drops id from the map without touching the room itself — the
// callback Room.Close invokes once its own teardown has run.
func (rs *Rooms) remove(id Id) {
	rs.mu.Lock()
	delete(rs.rooms, id)
	rs.mu.Unlock()

	if rs.metadata != nil {
		if err := rs.metadata.Delete(id); err != nil {
			rs.logger.Error("failed to remove room metadata", "room", id, "err", err)
		}
	}
}

// Count returns the number of currently registered rooms.
func (rs *Rooms) Count() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rooms)
}
