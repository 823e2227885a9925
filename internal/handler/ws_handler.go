package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/service"
)

// RoomWSHandler handles WebSocket connections for /ws/room/:code/:player_id.
type RoomWSHandler struct {
	hub    service.RoomHubForHandler
	reg    *service.RoomRegistry
	logger *zap.Logger
}

// NewRoomWSHandler creates the WebSocket room handler.
func NewRoomWSHandler(hub service.RoomHubForHandler, reg *service.RoomRegistry, logger *zap.Logger) *RoomWSHandler {
	return &RoomWSHandler{hub: hub, reg: reg, logger: logger}
}

// ServeWS upgrades the request, joins (or reconnects) the participant and
// runs the command loop. Path: /ws/room/:code/:player_id
func (h *RoomWSHandler) ServeWS(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	playerID := c.Param("player_id")
	if code == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and player_id required"})
		return
	}

	room, _, err := h.reg.Join(code, playerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		h.reg.Disconnect(playerID)
		return
	}
	defer conn.Close()

	peer, cleanup := h.hub.Register(code, playerID, conn)
	defer func() {
		cleanup()
		h.reg.Disconnect(playerID)
	}()

	// Initial snapshot so a reconnecting participant catches up immediately.
	if view, err := room.View(playerID); err == nil {
		h.sendDirect(peer, service.EventRoomState, view)
	}

	// Writer goroutine: send from peer.Send to connection
	go h.writePump(peer)

	// Reader: parse inbound commands and dispatch them into the room
	h.readPump(peer, room)
}

func (h *RoomWSHandler) readPump(p *service.Peer, room *service.Room) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for {
		_, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			break
		}
		var cmd model.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendDirect(p, service.EventError, gin.H{"error": "malformed command frame"})
			continue
		}
		if err := room.Dispatch(p.PlayerID, cmd); err != nil {
			// Rejections go back to the issuing actor only.
			h.sendDirect(p, service.EventError, gin.H{"cmd": cmd.Cmd, "error": err.Error()})
		}
	}
}

func (h *RoomWSHandler) writePump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for data := range p.Send {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
}

// sendDirect pushes one frame onto the peer's own send queue, bypassing
// the per-player fan-out.
func (h *RoomWSHandler) sendDirect(p *service.Peer, event string, data any) {
	raw, err := json.Marshal(service.Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case p.Send <- raw:
	default:
	}
}
