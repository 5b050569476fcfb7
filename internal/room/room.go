// Package room implements the per-collaboration-session controller: one
// TVC repository, one discussion log, one session store, and the
// connected users multiplexing operations across them.
package room

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// defaultConnectTimeout is how long join() gives a newly-registered user
// to attach a channel before they are unregistered, and how long Open
// gives the owner before the room is closed, per spec.md §4.13/§4.14.
const defaultConnectTimeout = 30 * time.Second

// Config configures a new Room. Capacity, BundleSizeLimit, and
// RepositorySizeLimit have no usable default and must be set by the
// caller (the gateway, reading operator configuration); ConnectTimeout
// and Logger fall back to sensible defaults.
//
// BundleSizeLimit and RepositorySizeLimit are two independently
// configured ceilings (spec.md §6): BundleSizeLimit bounds a single
// incoming bundle's footprint — checked once, at Open, against the
// initial bundle a room is seeded with — while RepositorySizeLimit
// bounds the room's cumulative repository size after absorbing a push,
// checked on every subsequent Push.
type Config struct {
	Capacity            uint64
	BundleSizeLimit     int64
	RepositorySizeLimit int64
	ConnectTimeout      time.Duration
	Logger              *slog.Logger

	// DataDir is the room's on-disk resource directory, removed entirely
	// on Close. Left empty for rooms with no durable footprint (e.g. an
	// in-memory repository in tests).
	DataDir string
}

func (c *Config) defaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Room owns one repository, one discussion store, one session store, a
// capacity, a set of connected users, a set of waiting-for-channel
// users, and a per-user broadcast channel. Grounded on the teacher's
// RepoSession (internal/server/session.go) for the client-map /
// broadcast / ctx-cancel-WaitGroup lifecycle shape, generalized from
// "one WebSocket session over one repository" to "one room over a
// repository, a session store, and a discussion store".
type Room struct {
	id        Id
	owner     session.UserId
	capacity  uint64
	sizeLimit int64
	dataDir   string
	logger    *slog.Logger

	sessions    session.Store
	discussions discussion.Store
	repo        *tvc.Repository

	htmlCache *lruCache[string]

	clientsMu sync.RWMutex
	channels  map[session.UserId]MessageSender
	waitUsers map[session.UserId]struct{}

	connectTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ownerMu        sync.Mutex
	ownerConnected bool

	// onClose is set by the registry on insert, letting Close() remove
	// this room from the registry's map without Room holding a pointer
	// back to the whole Rooms value.
	onClose func(Id)
}

// Open constructs a room, registers owner in sessionStore, and — if
// initialBundle is non-nil — installs it into repo via Save after
// gating its size against cfg.BundleSizeLimit (ExceedBundleSize). This is
// a distinct ceiling from cfg.RepositorySizeLimit, which gates ongoing
// Push calls once the room already holds a repository. Grounded on
// spec.md §4.13's open(owner) and the room controller interface's
// open(owner_user_id, capacity, ttl, initial_bundle?) in §6.
func Open(
	ctx context.Context,
	cfg Config,
	sessionStore session.Store,
	discussionStore discussion.Store,
	repo *tvc.Repository,
	ownerUserId *session.UserId,
	initialBundle *tvc.Bundle,
) (*Room, session.UserId, session.SessionId, error) {
	cfg.defaults()

	if initialBundle != nil {
		size := initialBundle.ObjDataSize()
		if cfg.BundleSizeLimit > 0 && size > cfg.BundleSizeLimit {
			return nil, "", "", errExceedBundleSize(cfg.BundleSizeLimit, size)
		}
	}

	ownerId, sessionId, err := sessionStore.Register(ctx, ownerUserId)
	if err != nil {
		return nil, "", "", translateSessionErr(err)
	}

	if initialBundle != nil {
		if err := tvc.Save(repo, *initialBundle); err != nil {
			return nil, "", "", err
		}
	}

	roomCtx, cancel := context.WithCancel(context.Background())
	r := &Room{
		id:             newId(),
		owner:          ownerId,
		capacity:       cfg.Capacity,
		sizeLimit:      cfg.RepositorySizeLimit,
		dataDir:        cfg.DataDir,
		sessions:       sessionStore,
		discussions:    discussionStore,
		repo:           repo,
		htmlCache:      newLRUCache[string](500),
		channels:       make(map[session.UserId]MessageSender),
		waitUsers:      make(map[session.UserId]struct{}),
		connectTimeout: cfg.ConnectTimeout,
		ctx:            roomCtx,
		cancel:         cancel,
	}
	r.logger = cfg.Logger.With("room", r.id.String())
	r.waitUsers[ownerId] = struct{}{}

	r.startConnectWatchdog()

	return r, ownerId, sessionId, nil
}

// Id returns the room's identifier.
func (r *Room) Id() Id { return r.id }

// Owner returns the room's owner user id.
func (r *Room) Owner() session.UserId { return r.owner }

// Repo returns the room's repository, for callers (Push/Fetch/sync)
// that need direct TVC access.
func (r *Room) Repo() *tvc.Repository { return r.repo }

// Discussions returns the room's discussion store.
func (r *Room) Discussions() discussion.Store { return r.discussions }

// ResolveSession looks up the user id a session belongs to, translating
// a miss into the room-level ErrSessionIdNotExists.
func (r *Room) ResolveSession(sessionId session.SessionId) (session.UserId, error) {
	userId, err := r.sessions.Fetch(context.Background(), sessionId)
	if err != nil {
		return "", translateSessionErr(err)
	}
	return userId, nil
}

// Join registers a new participant, rejecting ReachedCapacity once
// user_count reaches capacity, and starts a connect timer that
// unregisters the user if no channel attaches within ConnectTimeout.
func (r *Room) Join(ctx context.Context, userId *session.UserId) (session.UserId, session.SessionId, error) {
	count, err := r.sessions.UserCount(ctx)
	if err != nil {
		return "", "", err
	}
	if count >= r.capacity {
		return "", "", errReachedCapacity(r.capacity)
	}

	id, sessionId, err := r.sessions.Register(ctx, userId)
	if err != nil {
		return "", "", translateSessionErr(err)
	}

	r.clientsMu.Lock()
	r.waitUsers[id] = struct{}{}
	r.clientsMu.Unlock()

	r.startJoinTimer(id)

	return id, sessionId, nil
}

// startJoinTimer unregisters userId if it never attaches a channel
// within connectTimeout.
func (r *Room) startJoinTimer(userId session.UserId) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		timer := time.NewTimer(r.connectTimeout)
		defer timer.Stop()

		select {
		case <-r.ctx.Done():
			return
		case <-timer.C:
			r.clientsMu.Lock()
			_, stillWaiting := r.waitUsers[userId]
			if stillWaiting {
				delete(r.waitUsers, userId)
			}
			r.clientsMu.Unlock()

			if stillWaiting {
				if err := r.sessions.Unregister(context.Background(), userId); err != nil {
					r.logger.Error("failed to unregister timed-out user", "user", userId, "err", err)
				}
			}
		}
	}()
}

// startConnectWatchdog deletes the room if owner never attaches a
// channel within connectTimeout of room creation (spec.md §4.14).
func (r *Room) startConnectWatchdog() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		timer := time.NewTimer(r.connectTimeout)
		defer timer.Stop()

		select {
		case <-r.ctx.Done():
			return
		case <-timer.C:
			r.ownerMu.Lock()
			connected := r.ownerConnected
			r.ownerMu.Unlock()
			if !connected {
				// Close waits for this goroutine's wg.Done (deferred
				// above) to fire, so it must run after this one exits.
				go r.Close()
			}
		}
	}()
}

// OnChannelConnect moves userId from wait_users to channels, converting
// an HTTP upgrade into channel membership (spec.md §4.13).
func (r *Room) OnChannelConnect(userId session.UserId, sender MessageSender) {
	r.clientsMu.Lock()
	delete(r.waitUsers, userId)
	r.channels[userId] = sender
	r.clientsMu.Unlock()

	if userId == r.owner {
		r.ownerMu.Lock()
		r.ownerConnected = true
		r.ownerMu.Unlock()
		return
	}

	r.SendAll(Message{Kind: MessageJoined, UserId: userId})
}

// SendAll attempts delivery on every channel; senders whose Send fails
// are dropped, never retried, and never block delivery to the rest
// (spec.md §5's broadcast discipline).
func (r *Room) SendAll(msg Message) {
	r.clientsMu.RLock()
	snapshot := make(map[session.UserId]MessageSender, len(r.channels))
	for id, sender := range r.channels {
		snapshot[id] = sender
	}
	r.clientsMu.RUnlock()

	var failed []session.UserId
	for id, sender := range snapshot {
		if err := sender.Send(msg); err != nil {
			failed = append(failed, id)
		}
	}

	if len(failed) == 0 {
		return
	}
	r.clientsMu.Lock()
	for _, id := range failed {
		delete(r.channels, id)
	}
	r.clientsMu.Unlock()
}

// SendToOwner delivers msg to the owner's channel alone, returning
// RoomOwnerDisconnected if the owner has no channel registered.
func (r *Room) SendToOwner(msg Message) error {
	r.clientsMu.RLock()
	sender, ok := r.channels[r.owner]
	r.clientsMu.RUnlock()
	if !ok {
		return errRoomOwnerDisconnected(r.id)
	}

	if err := sender.Send(msg); err != nil {
		r.clientsMu.Lock()
		delete(r.channels, r.owner)
		r.clientsMu.Unlock()
	}
	return nil
}

// Leave unregisters userId from the session store and drops its
// channel. The owner leaving deletes the whole room; any other user
// leaving only unregisters that user (spec.md §4.13).
func (r *Room) Leave(ctx context.Context, userId session.UserId) error {
	if err := r.sessions.Unregister(ctx, userId); err != nil {
		return err
	}

	r.clientsMu.Lock()
	delete(r.channels, userId)
	delete(r.waitUsers, userId)
	r.clientsMu.Unlock()

	if userId == r.owner {
		r.Close()
	}
	return nil
}

// Kick removes users from the room; only the owner may call it, and
// the owner may never appear in the kick list. Broadcasts Left{users}
// on success.
func (r *Room) Kick(ctx context.Context, caller session.UserId, users []session.UserId) error {
	if caller != r.owner {
		return &Error{Kind: ErrOwnerCannotKick}
	}
	for _, u := range users {
		if u == r.owner {
			return &Error{Kind: ErrOwnerCannotKick}
		}
	}

	for _, u := range users {
		if err := r.Leave(ctx, u); err != nil {
			return err
		}
	}
	r.SendAll(Message{Kind: MessageLeft, Users: users})
	return nil
}

// Close broadcasts ClosedRoom, stops the room's background tasks, and
// removes its on-disk resource directory (spec.md §4.13).
func (r *Room) Close() {
	r.SendAll(Message{Kind: MessageClosedRoom})

	r.cancel()
	r.wg.Wait()

	if err := r.sessions.Close(); err != nil {
		r.logger.Error("failed to close session store", "err", err)
	}
	if err := r.discussions.CloseStore(); err != nil {
		r.logger.Error("failed to close discussion store", "err", err)
	}

	if r.dataDir != "" {
		if err := os.RemoveAll(r.dataDir); err != nil {
			r.logger.Error("failed to remove room data directory", "dir", r.dataDir, "err", err)
		}
	}

	if r.onClose != nil {
		r.onClose(r.id)
	}
}
