package service

// Notifier pushes one event to one participant. Implementations must be
// fire-and-forget: a slow or disconnected receiver never blocks the caller.
type Notifier interface {
	Send(playerID string, event string, data any)
}

// Outbound event names.
const (
	EventRoomState = "room_state"
	EventAlarm     = "alarm"
	EventTick      = "tick"
	EventError     = "error"
)

// NopNotifier discards everything; used before a transport is attached.
type NopNotifier struct{}

func (NopNotifier) Send(string, string, any) {}
