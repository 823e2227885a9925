package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/handler"
	"github.com/Peptide90/SubstationMimicSim-sub000/pkg/constants"
)

// New builds the HTTP router.
func New(
	roomHandler *handler.RoomHandler,
	roomWS *handler.RoomWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST bootstrap
	rooms := r.Group(constants.PathRooms)
	{
		rooms.POST("", roomHandler.CreateRoom)
		rooms.GET("/:code", roomHandler.GetRoom)
	}

	// WebSocket: /ws/room/:code/:player_id
	r.GET("/ws/room/:code/:player_id", roomWS.ServeWS)

	return r
}
