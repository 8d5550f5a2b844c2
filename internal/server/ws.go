package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rookwood101/irish-snap/engine"
	"github.com/rookwood101/irish-snap/internal/models"
)

// inbound is the client-to-server frame. Kind "Join" carries Name;
// "SayAndPlay" carries Payload (the spoken value); "Slap" carries
// nothing else.
type inbound struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// outbound is the server-to-client frame: either a full state view or
// a private notice.
type outbound struct {
	Kind    string       `json:"kind"` // "State" or "Notice"
	State   *engine.View `json:"state,omitempty"`
	Message string       `json:"message,omitempty"`
}

// client is one websocket connection's send side. Frames are queued on
// a buffered channel and written by a single pump goroutine, so the
// session controller never blocks on a slow client.
type client struct {
	playerID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	log      *logrus.Entry
}

// enqueue queues a frame, dropping it if the client can't keep up.
func (c *client) enqueue(frame outbound) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.log.WithError(err).Error("failed marshalling outbound frame")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send queue full, dropping frame")
	}
}

// writePump drains the send queue onto the wire.
func (c *client) writePump(ctx context.Context) {
	for data := range c.send {
		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := c.conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			c.log.WithError(err).Debug("write failed, stopping pump")
			return
		}
	}
}

// handleWS upgrades the connection and runs the session for one player:
// resolve identity, wait for the Join frame, register with the game,
// then relay actions until the connection drops.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: s.origins}
	if len(s.origins) == 0 {
		// No allow-list configured: accept any origin (dev default).
		opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	ctx := r.Context()

	// A valid token pins the player id and name; otherwise the
	// connection gets a fresh connection-scoped identity.
	playerID := uuid.New()
	tokenName := ""
	if token := r.URL.Query().Get("token"); token != "" {
		id, name, err := s.auth.Parse(token)
		if err != nil {
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}
		playerID = id
		tokenName = name
	}

	c := &client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, 64),
		log:      s.log.WithField("player", playerID),
	}
	go c.writePump(ctx)
	// The pump exits when the channel closes; failed handshakes included.
	defer close(c.send)

	// First frame must be a Join.
	msg, err := readFrame(ctx, conn)
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "expected join")
		return
	}
	if msg.Kind != "Join" {
		conn.Close(websocket.StatusProtocolError, "expected join")
		return
	}
	name := msg.Name
	if tokenName != "" {
		name = tokenName
	}
	if name == "" {
		conn.Close(websocket.StatusPolicyViolation, "a display name is required")
		return
	}

	s.game.AddPlayer(playerID, name,
		func(v engine.View) {
			view := v
			c.enqueue(outbound{Kind: "State", State: &view})
		},
		func(message string) {
			c.enqueue(outbound{Kind: "Notice", Message: message})
		},
	)
	defer func() {
		s.game.RemovePlayer(playerID)
		conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	c.log.WithField("name", name).Info("player connected")

	for {
		msg, err := readFrame(ctx, conn)
		if err != nil {
			c.log.WithError(err).Debug("read loop ended")
			return
		}
		switch msg.Kind {
		case "Join":
			c.enqueue(outbound{Kind: "Notice", Message: "You have already joined."})
		case string(models.ActionSayAndPlay), string(models.ActionSlap):
			s.game.HandleAction(playerID, models.Action{
				Kind:    models.ActionKind(msg.Kind),
				Payload: msg.Payload,
			})
		default:
			c.enqueue(outbound{Kind: "Notice", Message: "Unknown message kind " + msg.Kind + "."})
		}
	}
}

// readFrame reads and decodes one inbound frame.
func readFrame(ctx context.Context, conn *websocket.Conn) (inbound, error) {
	var msg inbound
	_, data, err := conn.Read(ctx)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}
