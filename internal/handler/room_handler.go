package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/errs"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/service"
)

// RoomHandler handles the REST bootstrap API for rooms.
type RoomHandler struct {
	reg *service.RoomRegistry
	cfg *service.WSConfig
}

// NewRoomHandler creates a room handler.
func NewRoomHandler(reg *service.RoomRegistry, wsBaseURL string) *RoomHandler {
	return &RoomHandler{
		reg: reg,
		cfg: &service.WSConfig{BaseURL: wsBaseURL},
	}
}

// CreateRoom godoc
// POST /rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req model.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if req.TeamCount <= 0 {
		req.TeamCount = 2
	}
	room, gm, err := h.reg.CreateRoom(req.TeamCount, req.GMName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, model.CreateRoomResponse{
		Code:       room.Code(),
		GMPlayerID: gm.ID,
		WSURL:      h.cfg.WSURL(room.Code(), gm.ID),
	})
}

// GetRoom godoc
// GET /rooms/:code
func (h *RoomHandler) GetRoom(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room code required"})
		return
	}
	room, err := h.reg.LookupByCode(code)
	if err != nil {
		if errors.Is(err, errs.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up room"})
		return
	}
	c.JSON(http.StatusOK, room.Info())
}
