package service

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/config"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/errs"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// Join codes avoid easily-confused glyphs (no I, L, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RoomRegistry owns every live room and keeps byCode/byActor indexes in
// sync on join and disconnect, so command routing is O(1) instead of a
// scan over every room's player list.
type RoomRegistry struct {
	mu      sync.RWMutex
	cfg     *config.Config
	log     *zap.Logger
	clock   Clock
	rnd     *rand.Rand
	byCode  map[string]*Room
	byActor map[string]*Room

	notifier Notifier
}

// NewRoomRegistry creates an empty registry. Attach a transport with
// SetNotifier before creating rooms.
func NewRoomRegistry(cfg *config.Config, log *zap.Logger, clock Clock) *RoomRegistry {
	return &RoomRegistry{
		cfg:      cfg,
		log:      log,
		clock:    clock,
		rnd:      rand.New(rand.NewSource(clock.Now().UnixNano())),
		byCode:   make(map[string]*Room),
		byActor:  make(map[string]*Room),
		notifier: NopNotifier{},
	}
}

// SetNotifier attaches the outbound push transport used by all rooms
// created afterwards.
func (g *RoomRegistry) SetNotifier(n Notifier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifier = n
}

// CreateRoom builds a room with a fresh collision-checked code and its GM
// player, and indexes both.
func (g *RoomRegistry) CreateRoom(teamCount int, gmName string) (*Room, *model.Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code, err := g.newCodeLocked()
	if err != nil {
		return nil, nil, err
	}
	room := NewRoom(code, teamCount, g.cfg, g.log, g.clock, g.notifier)
	gm, err := room.AddPlayer(uuid.New().String(), true)
	if err != nil {
		return nil, nil, err
	}
	if gmName != "" && validDisplayName(gmName) {
		gm.Name = gmName
	}
	g.byCode[code] = room
	g.byActor[gm.ID] = room
	g.log.Info("room created", zap.String("room_code", code), zap.Int("teams", teamCount))
	return room, gm, nil
}

func (g *RoomRegistry) newCodeLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		buf := make([]byte, g.cfg.RoomCodeLength)
		for i := range buf {
			buf[i] = codeAlphabet[g.rnd.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := g.byCode[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("room code space exhausted")
}

// LookupByCode returns the room with the given join code.
func (g *RoomRegistry) LookupByCode(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.byCode[code]
	if !ok {
		return nil, errs.ErrRoomNotFound
	}
	return room, nil
}

// LookupByActor returns the room the given participant belongs to.
func (g *RoomRegistry) LookupByActor(playerID string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.byActor[playerID]
	if !ok {
		return nil, errs.ErrRoomNotFound
	}
	return room, nil
}

// Join adds (or reconnects) a participant to a room and indexes them.
// A player already indexed into a different room is rejected.
func (g *RoomRegistry) Join(code, playerID string) (*Room, *model.Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.byCode[code]
	if !ok {
		return nil, nil, errs.ErrRoomNotFound
	}
	if existing, indexed := g.byActor[playerID]; indexed && existing != room {
		return nil, nil, fmt.Errorf("%w: already in room %s", errs.ErrNotAuthorized, existing.Code())
	}
	p, err := room.AddPlayer(playerID, false)
	if err != nil {
		return nil, nil, err
	}
	g.byActor[playerID] = room
	return room, p, nil
}

// Disconnect marks the participant offline. Their room membership and the
// byActor index survive so a reconnect lands back in the same room; a
// lobby room with nobody left is evicted.
func (g *RoomRegistry) Disconnect(playerID string) {
	g.mu.Lock()
	room, ok := g.byActor[playerID]
	g.mu.Unlock()
	if !ok {
		return
	}
	room.MarkDisconnected(playerID)
	if room.Status() == model.RoomLobby && room.Empty() {
		g.Remove(room.Code())
	}
}

// Remove evicts a room: stops its timers and drops both indexes.
func (g *RoomRegistry) Remove(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.byCode[code]
	if !ok {
		return
	}
	room.Shutdown()
	delete(g.byCode, code)
	for id, rm := range g.byActor {
		if rm == room {
			delete(g.byActor, id)
		}
	}
	g.log.Info("room removed", zap.String("room_code", code))
}

// Shutdown tears down every room (process exit).
func (g *RoomRegistry) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for code, room := range g.byCode {
		room.Shutdown()
		delete(g.byCode, code)
	}
	g.byActor = make(map[string]*Room)
}

// Count returns the number of live rooms.
func (g *RoomRegistry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byCode)
}
