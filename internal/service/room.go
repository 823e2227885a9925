package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/config"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// Room is one isolated game session. All mutation is serialized behind mu:
// commands and tick callbacks never interleave against the same room, so
// read-then-write sequences (exactly-once dispatch, edge-triggered alarms,
// atomic switching validation) stay intact. Rooms run concurrently with
// each other.
type Room struct {
	mu sync.Mutex

	code     string
	cfg      *config.Config
	log      *zap.Logger
	clock    Clock
	notifier Notifier

	status        model.RoomStatus
	elapsedSec    int
	countdownLeft int
	frequencyHz   float64

	scenario *model.Scenario
	sched    *scheduler
	rules    []model.Rule
	assets   *AssetRegistry

	players        []*model.Player
	teams          []*model.Team
	orgName        string
	availableRoles []model.Role

	alarms      *ring[model.AlarmEvent]
	acked       map[string]bool
	comms       *ring[model.CommsMessage]
	workOrders  []*model.WorkOrder
	plannerReqs []*model.PlannerRequest

	awards         []model.Award
	gmAwards       model.SetGMAwardsPayload
	resultsVisible bool
	autoAnnounce   bool

	tickCancel context.CancelFunc
}

// NewRoom creates a lobby-status room with the given team count.
func NewRoom(code string, teamCount int, cfg *config.Config, log *zap.Logger, clock Clock, notifier Notifier) *Room {
	r := &Room{
		code:           code,
		cfg:            cfg,
		log:            log.With(zap.String("room_code", code)),
		clock:          clock,
		notifier:       notifier,
		status:         model.RoomLobby,
		frequencyHz:    cfg.FreqNominalHz,
		assets:         NewAssetRegistry(clock),
		availableRoles: []model.Role{model.RoleOperator, model.RoleField, model.RolePlanner},
		alarms:         newRing[model.AlarmEvent](cfg.AlarmLogCapacity),
		acked:          make(map[string]bool),
		comms:          newRing[model.CommsMessage](cfg.AlarmLogCapacity),
		autoAnnounce:   cfg.AutoAnnounceDefault,
	}
	r.rebuildTeamsLocked(teamCount)
	return r
}

// Code returns the room join code.
func (r *Room) Code() string { return r.code }

// Status returns the current lifecycle status.
func (r *Room) Status() model.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// AddPlayer registers a new participant (or reconnects an existing one).
// The first player of a room is created through this with isGM true.
func (r *Room) AddPlayer(playerID string, isGM bool) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerLocked(playerID); p != nil {
		p.Connected = true
		r.broadcastLocked()
		return p, nil
	}
	if len(r.players) >= r.cfg.MaxPlayersPerRoom {
		return nil, errRoomFull()
	}
	p := &model.Player{
		ID:        playerID,
		Connected: true,
		IsGM:      isGM,
		JoinedAt:  r.clock.Now(),
		Stats:     model.PlayerStats{FirstRestoreSec: -1},
	}
	if isGM {
		p.Role = model.RoleGM
	} else {
		p.TeamID = r.smallestTeamLocked()
	}
	r.players = append(r.players, p)
	r.log.Info("player joined", zap.String("player_id", playerID), zap.Bool("gm", isGM))
	r.broadcastLocked()
	return p, nil
}

// MarkDisconnected flags a participant as offline without removing their
// state; a later join with the same id reconnects.
func (r *Room) MarkDisconnected(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerLocked(playerID); p != nil {
		p.Connected = false
		r.broadcastLocked()
	}
}

// Empty reports whether no connected participants remain.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Connected {
			return false
		}
	}
	return true
}

// Shutdown stops the tick loop (room teardown).
func (r *Room) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopTickLocked()
}

func (r *Room) playerLocked(id string) *model.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) gmLocked() *model.Player {
	for _, p := range r.players {
		if p.IsGM {
			return p
		}
	}
	return nil
}

// rebuildTeamsLocked replaces the team set wholesale and reassigns every
// non-GM player round-robin. Existing scores are discarded with the teams.
func (r *Room) rebuildTeamsLocked(count int) {
	if count < 1 {
		count = 1
	}
	teams := make([]*model.Team, 0, count)
	for i := 0; i < count; i++ {
		teams = append(teams, &model.Team{
			ID:   fmt.Sprintf("team-%d", i+1),
			Name: fmt.Sprintf("Team %d", i+1),
		})
	}
	r.teams = teams
	i := 0
	for _, p := range r.players {
		if p.IsGM {
			continue
		}
		p.TeamID = teams[i%len(teams)].ID
		i++
	}
}

func (r *Room) smallestTeamLocked() string {
	if len(r.teams) == 0 {
		return ""
	}
	counts := make(map[string]int, len(r.teams))
	for _, p := range r.players {
		if p.TeamID != "" {
			counts[p.TeamID]++
		}
	}
	best := r.teams[0]
	for _, t := range r.teams[1:] {
		if counts[t.ID] < counts[best.ID] {
			best = t
		}
	}
	return best.ID
}

func (r *Room) teamLocked(id string) *model.Team {
	for _, t := range r.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// startGameLocked begins a countdown run. Only scenario-derived runtime
// state is reset: assets, logs, field locations and scores carry over.
func (r *Room) startGameLocked() error {
	if r.scenario == nil {
		return errNoScenario()
	}
	if r.status == model.RoomCountdown || r.status == model.RoomRunning {
		return errWrongStatus("game already started")
	}
	r.status = model.RoomCountdown
	r.countdownLeft = r.cfg.CountdownSeconds
	r.elapsedSec = 0
	r.frequencyHz = r.cfg.FreqNominalHz
	r.sched.reset()
	r.awards = nil
	r.resultsVisible = false
	r.startTickLocked()
	r.log.Info("game starting", zap.Int("countdown_sec", r.countdownLeft))
	return nil
}

func (r *Room) startTickLocked() {
	r.stopTickLocked()
	ctx, cancel := context.WithCancel(context.Background())
	r.tickCancel = cancel
	interval := time.Duration(r.cfg.TickIntervalMS) * time.Millisecond
	go r.run(ctx, interval)
}

func (r *Room) stopTickLocked() {
	if r.tickCancel != nil {
		r.tickCancel()
		r.tickCancel = nil
	}
}

func (r *Room) run(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(interval):
			r.Tick()
		}
	}
}

// Tick advances the room by one second. Exported so tests drive playback
// without wall-clock waits.
func (r *Room) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case model.RoomCountdown:
		r.countdownLeft--
		if r.countdownLeft <= 0 {
			r.status = model.RoomRunning
			r.elapsedSec = 0
			r.log.Info("game running")
			r.pushTickLocked()
			r.broadcastLocked()
			return
		}
		r.pushTickLocked()

	case model.RoomRunning:
		r.elapsedSec++
		dirty := false
		for _, ev := range r.sched.due(r.elapsedSec) {
			r.applyEventLocked(ev)
			dirty = true
		}
		for _, alarm := range r.assets.EvaluateAll(r.elapsedSec) {
			r.appendAlarmLocked(alarm)
			dirty = true
		}
		if r.elapsedSec >= r.scenario.DurationSec {
			r.finishLocked()
			dirty = true
		}
		r.pushTickLocked()
		if dirty {
			r.broadcastLocked()
		}
	}
}

func (r *Room) finishLocked() {
	r.status = model.RoomFinished
	r.awards = computeAwards(r.players, r.gmAwards)
	r.resultsVisible = r.autoAnnounce
	r.stopTickLocked()
	r.log.Info("game finished", zap.Int("elapsed_sec", r.elapsedSec), zap.Bool("auto_announce", r.autoAnnounce))
}

// applyEventLocked dispatches one scenario event.
func (r *Room) applyEventLocked(ev model.ScenarioEvent) {
	switch ev.Type {
	case model.EventTelemetry:
		tel := model.Telemetry{ev.Channel: ev.Value}
		_ = r.assets.UpdateTruth(ev.AssetID, nil, tel, nil)
		if a, ok := r.assets.Get(ev.AssetID); ok && !a.Scada.DBI {
			_ = r.assets.UpdateScada(ev.AssetID, nil, tel, nil, nil)
		}
	case model.EventRemoteFailure:
		if a, ok := r.assets.Get(ev.AssetID); ok {
			a.RemoteFails = ev.Set
		}
	case model.EventFrequency:
		r.frequencyHz = r.clampFreq(r.frequencyHz + ev.DeltaHz)
	case model.EventDBI:
		set := ev.Set
		_ = r.assets.UpdateScada(ev.AssetID, nil, nil, &set, nil)
	case model.EventAlarm:
		sev := ev.Severity
		if sev == "" {
			sev = model.SeverityMed
		}
		r.appendAlarmLocked(r.assets.newAlarm(ev.AssetID, r.elapsedSec, model.CategoryAlarm, sev, ev.Summary, ev.Detail))
	case model.EventNote:
		sev := ev.Severity
		if sev == "" {
			sev = model.SeverityLow
		}
		r.appendAlarmLocked(r.assets.newAlarm(ev.AssetID, r.elapsedSec, model.CategoryNote, sev, ev.Summary, ev.Detail))
	}
	if ev.Points != 0 {
		for _, t := range r.teams {
			t.Score += ev.Points
		}
	}
}

func (r *Room) clampFreq(v float64) float64 {
	if v < r.cfg.FreqMinHz {
		return r.cfg.FreqMinHz
	}
	if v > r.cfg.FreqMaxHz {
		return r.cfg.FreqMaxHz
	}
	return v
}

// appendAlarmLocked adds an entry to the bounded alarm log and pushes it
// incrementally to every connected participant, detail-filtered per role.
func (r *Room) appendAlarmLocked(ev model.AlarmEvent) {
	r.alarms.add(ev)
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		r.notifier.Send(p.ID, EventAlarm, projectAlarm(ev, alarmDetailVisible(p), r.acked[ev.ID]))
	}
}

func (r *Room) pushTickLocked() {
	tick := model.TickView{Status: r.status}
	switch r.status {
	case model.RoomCountdown:
		tick.RemainingSec = r.countdownLeft
	case model.RoomRunning, model.RoomFinished:
		tick.ElapsedSec = r.elapsedSec
		if r.scenario != nil && r.scenario.DurationSec > r.elapsedSec {
			tick.RemainingSec = r.scenario.DurationSec - r.elapsedSec
		}
	}
	for _, p := range r.players {
		if p.Connected {
			r.notifier.Send(p.ID, EventTick, tick)
		}
	}
}

// broadcastLocked recomputes and pushes one role-filtered snapshot per
// connected participant. Fan-out is fire-and-forget; a slow receiver never
// blocks the room.
func (r *Room) broadcastLocked() {
	truthE, scadaE := r.energizationLocked()
	for _, p := range r.players {
		if p.Connected {
			r.notifier.Send(p.ID, EventRoomState, r.viewForLocked(p, truthE, scadaE))
		}
	}
}

// View returns the current role-filtered snapshot for one participant
// (used for the initial push on connect).
func (r *Room) View(playerID string) (model.RoomView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playerLocked(playerID)
	if p == nil {
		return model.RoomView{}, errPlayerNotFound()
	}
	truthE, scadaE := r.energizationLocked()
	return r.viewForLocked(p, truthE, scadaE), nil
}

// Info returns the public lobby summary (REST GET /rooms/:code).
func (r *Room) Info() model.RoomInfoResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]model.PlayerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, projectPlayer(p))
	}
	return model.RoomInfoResponse{Code: r.code, Status: r.status, Players: players}
}
