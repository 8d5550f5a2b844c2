// Package server is the HTTP and websocket boundary. It upgrades
// connections, performs the join handshake, relays inbound action
// envelopes to the session controller, and pumps outbound view and
// notice frames back to each client.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rookwood101/irish-snap/internal/auth"
	"github.com/rookwood101/irish-snap/internal/game"
)

// Server holds the transport dependencies.
type Server struct {
	game    *game.Game
	auth    *auth.Service
	origins []string
	log     *logrus.Entry
}

// New wires the transport around one game session. origins is the
// websocket origin allow-list; empty means accept any origin.
func New(g *game.Game, a *auth.Service, origins []string) *Server {
	return &Server{
		game:    g,
		auth:    a,
		origins: origins,
		log:     logrus.WithField("component", "server"),
	}
}

// Routes returns the HTTP mux: health, guest tokens, and the game socket.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/auth/guest", s.handleGuest)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// guestRequest is the POST /auth/guest body.
type guestRequest struct {
	Name string `json:"name"`
}

// guestResponse returns the signed token and the player id it binds.
type guestResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	token, playerID, err := s.auth.IssueGuest(req.Name)
	if err != nil {
		s.log.WithError(err).Error("failed issuing guest token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guestResponse{Token: token, PlayerID: playerID.String()})
}
