package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/room"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// writeJSON writes v as the JSON response body with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates a *room.Error into an HTTP status chosen by its
// kind (any other error becomes 500) and writes err.Error() as the JSON
// body's "error" field, mirroring spec.md §7's surfaced-verbatim taxonomy.
func writeError(w http.ResponseWriter, err error) {
	var re *room.Error
	if errors.As(err, &re) {
		status := http.StatusBadRequest
		switch re.Kind {
		case room.ErrRoomNotExists, room.ErrSessionIdNotExists:
			status = http.StatusNotFound
		case room.ErrReachedCapacity, room.ErrUserIdConflict,
			room.ErrExceedBundleSize, room.ErrExceedRepositorySize:
			status = http.StatusConflict
		case room.ErrOwnerCannotKick, room.ErrRoomOwnerDisconnected:
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

type openRequest struct {
	OwnerUserId   *session.UserId `json:"ownerUserId,omitempty"`
	Capacity      uint64          `json:"capacity"`
	TTLSeconds    int64           `json:"ttlSeconds"`
	InitialBundle *tvc.Bundle     `json:"initialBundle,omitempty"`
}

type openResponse struct {
	RoomId    room.Id           `json:"roomId"`
	UserId    session.UserId    `json:"userId"`
	SessionId session.SessionId `json:"sessionId"`
	Capacity  uint64            `json:"capacity"`
}

// handleOpen implements open(owner_user_id, capacity, ttl, initial_bundle?).
func (g *Gateway) handleOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Capacity == 0 || req.Capacity > g.limits.MaxCapacity {
		req.Capacity = g.limits.MaxCapacity
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second
	maxTTL, err := g.limits.TTL()
	if err == nil && (ttl <= 0 || ttl > maxTTL) {
		ttl = maxTTL
	}

	dir, repo, sessionStore, discussionStore, err := g.newRoomStores()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	cfg := room.Config{
		Capacity:            req.Capacity,
		BundleSizeLimit:     g.limits.LimitBundleSize,
		RepositorySizeLimit: g.limits.LimitRepositorySize,
		Logger:              g.logger,
		DataDir:             dir,
	}
	if timeout, err := g.limits.Timeout(); err == nil {
		cfg.ConnectTimeout = timeout
	}

	rm, ownerId, sessionId, err := room.Open(r.Context(), cfg, sessionStore, discussionStore, repo, req.OwnerUserId, req.InitialBundle)
	if err != nil {
		writeError(w, err)
		return
	}
	g.rooms.Insert(rm, ttl)

	writeJSON(w, http.StatusCreated, openResponse{
		RoomId:    rm.Id(),
		UserId:    ownerId,
		SessionId: sessionId,
		Capacity:  req.Capacity,
	})
}

type joinRequest struct {
	UserId *session.UserId `json:"userId,omitempty"`
}

type joinResponse struct {
	UserId    session.UserId    `json:"userId"`
	SessionId session.SessionId `json:"sessionId"`
	Bundle    tvc.Bundle        `json:"bundle"`
}

// handleJoin implements join(room_id, user_id?) -> {user_id, session_id, bundle}.
func (g *Gateway) handleJoin(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	userId, sessionId, err := rm.Join(r.Context(), req.UserId)
	if err != nil {
		writeError(w, err)
		return
	}

	bundle, err := rm.Fetch()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{UserId: userId, SessionId: sessionId, Bundle: bundle})
}

type sessionRequest struct {
	SessionId session.SessionId `json:"sessionId"`
}

// handleLeave implements leave(room_id, session_id).
func (g *Gateway) handleLeave(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	uid, err := g.resolveUser(rm, req.SessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := rm.Leave(r.Context(), uid); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type kickRequest struct {
	SessionId session.SessionId `json:"sessionId"`
	UserIds   []session.UserId  `json:"userIds"`
}

// handleKick implements kick(room_id, session_id, [user_id]) — owner only.
func (g *Gateway) handleKick(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	var req kickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	caller, err := g.resolveUser(rm, req.SessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := rm.Kick(r.Context(), caller, req.UserIds); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pushRequest struct {
	SessionId session.SessionId `json:"sessionId"`
	Bundle    tvc.Bundle        `json:"bundle"`
}

// handlePush implements push(room_id, session_id, bundle).
func (g *Gateway) handlePush(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := g.resolveUser(rm, req.SessionId); err != nil {
		writeError(w, err)
		return
	}

	if err := rm.Push(req.Bundle); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFetch implements fetch(room_id, session_id) -> bundle.
func (g *Gateway) handleFetch(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}
	if _, err := g.resolveUser(rm, session.SessionId(r.URL.Query().Get("sessionId"))); err != nil {
		writeError(w, err)
		return
	}

	bundle, err := rm.Fetch()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// handleSync implements sync(room_id, session_id) -> {repository bundle + discussion transcript}.
func (g *Gateway) handleSync(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}
	if _, err := g.resolveUser(rm, session.SessionId(r.URL.Query().Get("sessionId"))); err != nil {
		writeError(w, err)
		return
	}

	sync, err := rm.Sync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sync)
}

type openDiscussionRequest struct {
	SessionId session.SessionId `json:"sessionId"`
	Title     string            `json:"title"`
}

// handleOpenDiscussion opens a discussion thread within the room.
func (g *Gateway) handleOpenDiscussion(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	var req openDiscussionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	creator, err := g.resolveUser(rm, req.SessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	meta, err := rm.OpenDiscussion(r.Context(), req.Title, creator)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

type speakRequest struct {
	SessionId session.SessionId    `json:"sessionId"`
	Text      string               `json:"text"`
	ReplyTo   discussion.MessageId `json:"replyTo,omitempty"`
}

// handleSpeak posts a message into a discussion, threading it if
// ReplyTo is set.
func (g *Gateway) handleSpeak(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}
	discussionId := discussion.DiscussionId(r.PathValue("discussionId"))

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	userId, err := g.resolveUser(rm, req.SessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	var msg discussion.Message
	if req.ReplyTo != "" {
		msg, err = rm.Reply(r.Context(), userId, req.ReplyTo, req.Text)
	} else {
		msg, err = rm.Speak(r.Context(), discussionId, userId, req.Text)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleDiff implements diff(room_id, session_id, path, old_hash?, new_hash?)
// -> unified line diff, for discussion-side change previews.
func (g *Gateway) handleDiff(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}
	if _, err := g.resolveUser(rm, session.SessionId(r.URL.Query().Get("sessionId"))); err != nil {
		writeError(w, err)
		return
	}

	path := r.URL.Query().Get("path")
	oldHash := tvc.ObjHash(r.URL.Query().Get("oldHash"))
	newHash := tvc.ObjHash(r.URL.Query().Get("newHash"))

	diff, err := rm.Diff(path, oldHash, newHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// handleRenderMessage implements renderMessage(room_id, session_id,
// discussion_id, message_id) -> HTML, markdown-rendering a discussion
// message's text (and caching it) for a client that wants to display it
// without shipping its own markdown renderer.
func (g *Gateway) handleRenderMessage(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}
	if _, err := g.resolveUser(rm, session.SessionId(r.URL.Query().Get("sessionId"))); err != nil {
		writeError(w, err)
		return
	}

	discussionId := discussion.DiscussionId(r.PathValue("discussionId"))
	messageId := discussion.MessageId(r.PathValue("messageId"))

	html, err := rm.RenderMessage(r.Context(), discussionId, messageId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

// roomFromPath resolves the {id} path value to a *room.Room, writing an
// error response and returning ok=false on failure.
func (g *Gateway) roomFromPath(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	rm, err := g.rooms.Get(room.Id(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return rm, true
}

// resolveUser looks up the user id a session belongs to within rm's
// own session store.
func (g *Gateway) resolveUser(rm *room.Room, sessionId session.SessionId) (session.UserId, error) {
	return rm.ResolveSession(sessionId)
}
