//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meltosdev/meltos/internal/config"
	"github.com/meltosdev/meltos/internal/gateway"
	"github.com/meltosdev/meltos/internal/room"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// TestGatewayIntegration exercises the real HTTP/WebSocket surface end to
// end: open a room, join it from a second session, push an update,
// fetch/sync it back, and watch it arrive over the room's broadcast
// channel. Replaces a teacher-era test that drove a single git-backed
// server; there is no single repository to serve here, so every
// assertion is scoped to one freshly opened room instead.
func TestGatewayIntegration(t *testing.T) {
	addr := "127.0.0.1:18080"
	limits := config.Default().Room

	g := gateway.New(addr, limits, "", slog.Default())

	errCh := make(chan error, 1)
	go func() {
		if err := g.Start(); err != nil {
			errCh <- err
		}
	}()
	defer g.Shutdown()

	time.Sleep(100 * time.Millisecond)
	select {
	case err := <-errCh:
		t.Fatalf("gateway failed to start: %v", err)
	default:
	}

	baseURL := "http://" + addr

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var health map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if health["status"] != "ok" {
			t.Errorf("status = %v, want ok", health["status"])
		}
	})

	openBody, _ := json.Marshal(map[string]any{"capacity": 4, "ttlSeconds": 3600})
	resp, err := http.Post(baseURL+"/api/rooms", "application/json", bytes.NewReader(openBody))
	if err != nil {
		t.Fatalf("open room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var opened struct {
		RoomId    room.Id           `json:"roomId"`
		UserId    session.UserId    `json:"userId"`
		SessionId session.SessionId `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}

	roomURL := fmt.Sprintf("%s/api/rooms/%s", baseURL, opened.RoomId)

	t.Run("join returns a fresh session and an empty bundle", func(t *testing.T) {
		resp, err := http.Post(roomURL+"/join", "application/json", bytes.NewReader([]byte("{}")))
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("join status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var joined struct {
			SessionId session.SessionId `json:"sessionId"`
			Bundle    tvc.Bundle        `json:"bundle"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&joined); err != nil {
			t.Fatalf("decode join response: %v", err)
		}
		if joined.SessionId == "" {
			t.Error("join returned an empty session id")
		}
	})

	t.Run("push broadcasts to a connected websocket listener", func(t *testing.T) {
		wsURL := fmt.Sprintf("ws://%s/api/rooms/%s/ws?sessionId=%s", addr, opened.RoomId, opened.SessionId)
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("websocket dial failed: %v (status: %v)", err, resp)
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		pushBody, _ := json.Marshal(map[string]any{
			"sessionId": opened.SessionId,
			"bundle":    tvc.Bundle{},
		})
		resp2, err := http.Post(roomURL+"/push", "application/json", bytes.NewReader(pushBody))
		if err != nil {
			t.Fatalf("push: %v", err)
		}
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusNoContent {
			t.Fatalf("push status = %d, want %d", resp2.StatusCode, http.StatusNoContent)
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read broadcast message: %v", err)
		}
		if messageType != websocket.TextMessage {
			t.Errorf("message type = %d, want %d", messageType, websocket.TextMessage)
		}

		var msg room.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if msg.Kind != room.MessagePushed {
			t.Errorf("message kind = %v, want %v", msg.Kind, room.MessagePushed)
		}
	})

	t.Run("fetch and sync reflect the pushed bundle", func(t *testing.T) {
		fetchResp, err := http.Get(fmt.Sprintf("%s/fetch?sessionId=%s", roomURL, opened.SessionId))
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		defer fetchResp.Body.Close()
		if fetchResp.StatusCode != http.StatusOK {
			t.Errorf("fetch status = %d, want %d", fetchResp.StatusCode, http.StatusOK)
		}

		syncResp, err := http.Get(fmt.Sprintf("%s/sync?sessionId=%s", roomURL, opened.SessionId))
		if err != nil {
			t.Fatalf("sync: %v", err)
		}
		defer syncResp.Body.Close()
		if syncResp.StatusCode != http.StatusOK {
			t.Errorf("sync status = %d, want %d", syncResp.StatusCode, http.StatusOK)
		}
	})

	t.Run("unknown room returns 404", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/rooms/does-not-exist/fetch?sessionId=x")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("rate limiting rejects a burst of room opens", func(t *testing.T) {
		var sawLimited bool
		for i := 0; i < 400; i++ {
			resp, err := http.Post(baseURL+"/api/rooms", "application/json", bytes.NewReader(openBody))
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				sawLimited = true
				break
			}
		}
		if !sawLimited {
			t.Error("expected at least one request to be rate limited")
		}
	})
}
