package errs

import "errors"

// Доменные сентинель-ошибки; каждая команда при отказе возвращает одну из них
// (завёрнутую с контекстом) только отправившему игроку.
var (
	// Authorization: wrong role or wrong room for the attempted command.
	ErrNotAuthorized = errors.New("not authorized for this command")
	ErrNotGM         = errors.New("only the game master may do that")

	// Not found: referenced room/asset/work-order/request does not exist.
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrOrderNotFound   = errors.New("work order not found")
	ErrRequestNotFound = errors.New("planner request not found")
	ErrAlarmNotFound   = errors.New("alarm not found")
	ErrNoScenario      = errors.New("no scenario loaded")

	// Precondition: the command is well-formed but the state refuses it.
	ErrLockedOut       = errors.New("asset is locked out")
	ErrNotRemote       = errors.New("asset is not remote-controllable")
	ErrRemotePathDown  = errors.New("remote command path failed")
	ErrNotPresent      = errors.New("you are not at that asset")
	ErrWrongStatus     = errors.New("not valid from the current status")
	ErrInterlocked     = errors.New("blocked by interlock")
	ErrGameNotRunning  = errors.New("game is not running")
	ErrGameNotFinished = errors.New("game is not finished")
	ErrRoomFull        = errors.New("room is full")

	// Validation: malformed input.
	ErrBadName     = errors.New("display name not allowed")
	ErrBadPayload  = errors.New("malformed command payload")
	ErrBadRole     = errors.New("role not available in this room")
	ErrBadLocation = errors.New("unknown field location")
)
