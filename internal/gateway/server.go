// Package gateway is the HTTP/WebSocket surface over a room registry:
// it translates the room controller interface (spec.md §6) into JSON
// request/response bodies and WebSocket channel membership, leaving
// every actual lifecycle and TVC decision to internal/room.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meltosdev/meltos/internal/config"
	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/room"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// Gateway owns the HTTP server and the process-wide room registry.
// Grounded on the teacher's Server (internal/server/server.go), with
// RepoManager/sessions-map generalized to a single room.Rooms registry
// since every room is already its own independently-locked unit.
type Gateway struct {
	addr        string
	limits      config.RoomLimits
	dataDir     string
	logger      *slog.Logger
	rooms       *room.Rooms
	rateLimiter *rateLimiter
	httpServer  *http.Server
}

// New constructs a Gateway ready to Start. If dataDir is non-empty, room
// identities are recorded durably in a bbolt file under it
// (room.MetadataStore); an empty dataDir keeps the registry in-memory
// only, which is sufficient for tests.
func New(addr string, limits config.RoomLimits, dataDir string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		addr:        addr,
		limits:      limits,
		dataDir:     dataDir,
		logger:      logger,
		rateLimiter: newRateLimiter(100, 200, time.Second),
	}

	if dataDir != "" {
		store, err := room.OpenMetadataStore(filepath.Join(dataDir, "rooms.bbolt"))
		if err != nil {
			logger.Error("failed to open room metadata store, falling back to in-memory registry", "err", err)
			g.rooms = room.NewRooms()
		} else {
			g.rooms = room.NewRoomsWithMetadata(store)
		}
	} else {
		g.rooms = room.NewRooms()
	}

	return g
}

// newRoomStores constructs the repository, session store, and discussion
// store for a freshly-opened room. When g.dataDir is empty (the default
// in tests and single-process local use), every store is in-memory and
// disappears with the process — matching New's own empty-dataDir
// fallback to an in-memory room registry. When g.dataDir is set,
// each room gets its own subdirectory: the TVC repository is rooted
// on-disk there, and the session/discussion stores open their
// goose-migrated sqlite databases under it, so a room's membership and
// discussion log both survive a gateway restart the same way its
// repository objects already do.
func (g *Gateway) newRoomStores() (dir string, repo *tvc.Repository, sessionStore session.Store, discussionStore discussion.Store, err error) {
	if g.dataDir == "" {
		return "", tvc.OpenRepository(tvc.NewMemoryFileSystem()), session.NewMemoryStore(), discussion.NewMemoryStore(), nil
	}

	dir = filepath.Join(g.dataDir, "rooms", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, nil, nil, err
	}

	sessionStore, err = session.OpenSqliteStore(context.Background(), filepath.Join(dir, "session.sqlite"))
	if err != nil {
		return "", nil, nil, nil, err
	}
	discussionStore, err = discussion.OpenSqliteStore(context.Background(), filepath.Join(dir, "discussion.sqlite"))
	if err != nil {
		return "", nil, nil, nil, err
	}
	repo = tvc.OpenRepository(tvc.NewOSFileSystem(dir))
	return dir, repo, sessionStore, discussionStore, nil
}

// Start begins serving and blocks until the server exits or encounters
// a fatal error.
func (g *Gateway) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/api/rooms", g.rateLimiter.middleware(g.handleOpen))
	mux.HandleFunc("/api/rooms/{id}/join", g.rateLimiter.middleware(g.handleJoin))
	mux.HandleFunc("/api/rooms/{id}/leave", g.rateLimiter.middleware(g.handleLeave))
	mux.HandleFunc("/api/rooms/{id}/kick", g.rateLimiter.middleware(g.handleKick))
	mux.HandleFunc("/api/rooms/{id}/push", g.rateLimiter.middleware(g.handlePush))
	mux.HandleFunc("/api/rooms/{id}/fetch", g.handleFetch)
	mux.HandleFunc("/api/rooms/{id}/sync", g.handleSync)
	mux.HandleFunc("/api/rooms/{id}/diff", g.handleDiff)
	mux.HandleFunc("/api/rooms/{id}/discussions", g.rateLimiter.middleware(g.handleOpenDiscussion))
	mux.HandleFunc("/api/rooms/{id}/discussions/{discussionId}/speak", g.rateLimiter.middleware(g.handleSpeak))
	mux.HandleFunc("/api/rooms/{id}/discussions/{discussionId}/messages/{messageId}/html", g.handleRenderMessage)
	mux.HandleFunc("/api/rooms/{id}/ws", g.handleWebSocket)

	handler := corsMiddleware(requestLogger(g.logger, mux))

	g.httpServer = &http.Server{
		Addr:         g.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived.
		IdleTimeout:  120 * time.Second,
	}

	g.logger.Info("gateway starting", "addr", "http://"+g.addr)
	err := g.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener; rooms tear themselves
// down on their own TTL/owner-disconnect schedule, the same way the
// teacher leaves watcher goroutines to their own context cancellation.
func (g *Gateway) Shutdown() {
	g.rateLimiter.Close()

	if g.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(ctx); err != nil {
		g.logger.Error("gateway shutdown error", "err", err)
	}
}
