package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

// httpRemote implements tvc.Pushable and tvc.Fetcher against a running
// meltosd gateway, mirroring the shape of the room controller's own
// push/fetch handlers (internal/gateway/handlers.go) from the client
// side.
type httpRemote struct {
	client    *http.Client
	serverURL string
	roomId    string
	sessionId session.SessionId
}

func newHTTPRemote() (*httpRemote, error) {
	server := os.Getenv("MELTOS_SERVER")
	room := os.Getenv("MELTOS_ROOM")
	sid := os.Getenv("MELTOS_SESSION")
	if server == "" || room == "" || sid == "" {
		return nil, fmt.Errorf("MELTOS_SERVER, MELTOS_ROOM, and MELTOS_SESSION must all be set")
	}
	return &httpRemote{
		client:    http.DefaultClient,
		serverURL: server,
		roomId:    room,
		sessionId: session.SessionId(sid),
	}, nil
}

type pushBody struct {
	SessionId session.SessionId `json:"sessionId"`
	Bundle    tvc.Bundle        `json:"bundle"`
}

func (h *httpRemote) Push(ctx context.Context, bundle tvc.Bundle) error {
	body, err := json.Marshal(pushBody{SessionId: h.sessionId, Bundle: bundle})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/rooms/%s/push", h.serverURL, h.roomId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("push: server responded %s", resp.Status)
	}
	return nil
}

func (h *httpRemote) Fetch(ctx context.Context) (tvc.Bundle, error) {
	url := fmt.Sprintf("%s/api/rooms/%s/fetch?sessionId=%s", h.serverURL, h.roomId, h.sessionId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tvc.Bundle{}, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return tvc.Bundle{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tvc.Bundle{}, fmt.Errorf("fetch: server responded %s", resp.Status)
	}

	var bundle tvc.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return tvc.Bundle{}, err
	}
	return bundle, nil
}
