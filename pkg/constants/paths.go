package constants

// Пути health, ready и комнат; WebSocket путь собирается в router.
const (
	PathHealth = "/health"
	PathReady  = "/ready"
	PathRooms  = "/rooms"
)
