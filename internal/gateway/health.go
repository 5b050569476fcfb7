package gateway

import (
	"encoding/json"
	"net/http"
)

// healthStatus is the health check response shape.
type healthStatus struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

// handleHealth reports the gateway's liveness and room count for load
// balancers and monitoring.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := healthStatus{Status: "ok", Rooms: g.rooms.Count()}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
