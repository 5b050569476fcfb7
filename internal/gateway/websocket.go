package gateway

import (
	"compress/flate"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meltosdev/meltos/internal/room"
	"github.com/meltosdev/meltos/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// upgrader allows all origins; a multi-tenant deployment would instead
// validate Origin against Host the way the teacher's saasUpgrader does
// (internal/server/websocket.go) — left to the deployment's reverse
// proxy here since spec.md names no same-origin requirement.
var upgrader = websocket.Upgrader{
	CheckOrigin:       func(_ *http.Request) bool { return true },
	EnableCompression: true,
}

// wsSender adapts one gorilla/websocket connection into a
// room.MessageSender, serializing writes behind writeMu the way the
// teacher's clientWritePump does.
type wsSender struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *wsSender) Send(msg room.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// handleWebSocket upgrades the connection and attaches it to the room
// as userId's channel, implementing channel_attach(room_id, session_id,
// sender) from spec.md §6.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rm, ok := g.roomFromPath(w, r)
	if !ok {
		return
	}

	userId, err := g.resolveUser(rm, session.SessionId(r.URL.Query().Get("sessionId")))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	conn.EnableWriteCompression(true)
	if err := conn.SetCompressionLevel(flate.BestSpeed); err != nil {
		g.logger.Error("failed to set compression level", "err", err)
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	sender := &wsSender{conn: conn}
	rm.OnChannelConnect(userId, sender)

	go g.pingLoop(conn)
	g.readLoop(conn)
}

// pingLoop keeps the connection alive until the peer disconnects or a
// ping write fails.
func (g *Gateway) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

// readLoop discards inbound frames (this channel is broadcast-only
// from the room's side) until the connection closes, the way the
// teacher's clientReadPump drains control frames.
func (g *Gateway) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
