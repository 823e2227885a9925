package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Peer represents one WebSocket connection of one participant.
type Peer struct {
	RoomCode string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// Envelope is the outbound frame shape: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// RoomHubForHandler is the surface the WebSocket handler depends on.
type RoomHubForHandler interface {
	Register(roomCode, playerID string, conn *websocket.Conn) (*Peer, func())
	Upgrader() *websocket.Upgrader
}

// RoomHub manages WebSocket connections and implements Notifier: every
// room push is marshalled once and fanned out to the participant's
// connections without blocking the room.
type RoomHub struct {
	mu         sync.RWMutex
	peers      map[string]map[*Peer]struct{} // playerID -> set of peers
	upgrader   websocket.Upgrader
	maxMsgSize int64
	log        *zap.Logger
}

// NewRoomHub creates an empty hub.
func NewRoomHub(maxMessageSize int64, readBuf, writeBuf int, log *zap.Logger) *RoomHub {
	return &RoomHub{
		peers:      make(map[string]map[*Peer]struct{}),
		maxMsgSize: maxMessageSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Allow all origins for dev; in prod set CheckOrigin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register adds a peer for a participant and returns a cleanup function.
func (h *RoomHub) Register(roomCode, playerID string, conn *websocket.Conn) (*Peer, func()) {
	if h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	p := &Peer{
		RoomCode: roomCode,
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}
	h.mu.Lock()
	if h.peers[playerID] == nil {
		h.peers[playerID] = make(map[*Peer]struct{})
	}
	h.peers[playerID][p] = struct{}{}
	h.mu.Unlock()

	h.log.Info("peer registered",
		zap.String("room_code", roomCode),
		zap.String("player_id", playerID))

	cleanup := func() {
		h.unregister(playerID, p)
	}
	return p, cleanup
}

func (h *RoomHub) unregister(playerID string, p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.peers[playerID]; ok {
		delete(m, p)
		if len(m) == 0 {
			delete(h.peers, playerID)
		}
	}
	close(p.Send)
	h.log.Info("peer unregistered",
		zap.String("room_code", p.RoomCode),
		zap.String("player_id", playerID))
}

// Send implements Notifier. A participant with no open connection (or a
// full send buffer) just misses the frame; the next snapshot on reconnect
// catches them up. The read lock is held across the fan-out so unregister
// cannot close a send channel mid-push; the sends never block, so the
// critical section stays short.
func (h *RoomHub) Send(playerID, event string, data any) {
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("marshal outbound frame", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers[playerID] {
		select {
		case p.Send <- raw:
		default:
			h.log.Warn("send buffer full", zap.String("player_id", playerID), zap.String("event", event))
		}
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *RoomHub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// PeerCount returns the number of open connections for a participant.
func (h *RoomHub) PeerCount(playerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers[playerID])
}

// WSConfig holds the WebSocket URL base for REST responses.
type WSConfig struct {
	BaseURL string
}

// WSURL returns the WebSocket URL for a room and participant
// (e.g. wss://host/ws/room/CODE/playerID).
func (c *WSConfig) WSURL(roomCode, playerID string) string {
	if c == nil || c.BaseURL == "" {
		return fmt.Sprintf("/ws/room/%s/%s", roomCode, playerID)
	}
	base := c.BaseURL
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return fmt.Sprintf("%s/ws/room/%s/%s", base, roomCode, playerID)
}
