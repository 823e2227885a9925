package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/config"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// fakeClock is a manually advanced clock; After never fires, tests call
// Room.Tick directly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEvent struct {
	PlayerID string
	Event    string
	Data     any
}

// fakeNotifier records every push.
type fakeNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *fakeNotifier) Send(playerID, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{PlayerID: playerID, Event: event, Data: data})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func (n *fakeNotifier) lastView(playerID string) (model.RoomView, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.events) - 1; i >= 0; i-- {
		e := n.events[i]
		if e.PlayerID == playerID && e.Event == EventRoomState {
			return e.Data.(model.RoomView), true
		}
	}
	return model.RoomView{}, false
}

func (n *fakeNotifier) alarms(playerID string) []model.AlarmView {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.AlarmView
	for _, e := range n.events {
		if e.PlayerID == playerID && e.Event == EventAlarm {
			out = append(out, e.Data.(model.AlarmView))
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		CountdownSeconds:  3,
		TickIntervalMS:    1000,
		AlarmLogCapacity:  200,
		RoomCodeLength:    6,
		MaxPlayersPerRoom: 24,
		FreqMinHz:         47.0,
		FreqMaxHz:         52.0,
		FreqNominalHz:     50.0,
	}
}

// testScenario: S1 -e1- CB1 -e2- B1 -e3- DS1 -e4- TX1, with TX1 telemetry
// thresholds, one scored note at t=10 and a 60 s duration.
func testScenario() model.Scenario {
	return model.Scenario{
		ID:          "test",
		Name:        "Test feeder",
		DurationSec: 60,
		Assets: []model.ScenarioAsset{
			{ID: "S1", Kind: model.AssetSource, InitialStatus: model.StatusClosed},
			{ID: "CB1", Kind: model.AssetBreaker, InitialStatus: model.StatusClosed, RemoteControllable: true},
			{ID: "B1", Kind: model.AssetBusbar, InitialStatus: model.StatusClosed},
			{ID: "DS1", Kind: model.AssetDisconnector, InitialStatus: model.StatusClosed, RemoteControllable: true},
			{
				ID: "TX1", Kind: model.AssetTransformer, InitialStatus: model.StatusClosed,
				Telemetry: model.Telemetry{model.ChannelOil: 60, model.ChannelWindingTemp: 55},
				Thresholds: map[model.Channel]model.Limits{
					model.ChannelOil:         {LockoutLow: 10, Low: 30, High: 80, HighHigh: 95},
					model.ChannelWindingTemp: {High: 90, HighHigh: 110},
				},
			},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "S1", To: "CB1"},
			{ID: "e2", From: "CB1", To: "B1"},
			{ID: "e3", From: "B1", To: "DS1"},
			{ID: "e4", From: "DS1", To: "TX1"},
		},
		Events: []model.ScenarioEvent{
			{AtSec: 10, Type: model.EventNote, Summary: "Checkpoint reached", Points: 5},
		},
	}
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// testRoom builds a registry-backed room with a GM, an operator, a field
// participant and a planner, scenario loaded.
type testRoom struct {
	reg      *RoomRegistry
	room     *Room
	clock    *fakeClock
	notifier *fakeNotifier
	gm       *model.Player
	operator *model.Player
	field    *model.Player
	planner  *model.Player
}

func newTestRoom(t *testing.T) *testRoom {
	t.Helper()
	clock := newFakeClock()
	notifier := &fakeNotifier{}
	reg := NewRoomRegistry(testConfig(), zap.NewNop(), clock)
	reg.SetNotifier(notifier)

	room, gm, err := reg.CreateRoom(2, "Alice")
	require.NoError(t, err)
	t.Cleanup(reg.Shutdown)

	join := func(role model.Role) *model.Player {
		_, p, err := reg.Join(room.Code(), "player-"+string(role))
		require.NoError(t, err)
		require.NoError(t, room.Dispatch(gm.ID, model.Command{
			Cmd:  model.CmdSetRole,
			Data: payload(t, model.SetRolePayload{Role: role, TargetPlayerID: p.ID}),
		}))
		return p
	}
	tr := &testRoom{
		reg:      reg,
		room:     room,
		clock:    clock,
		notifier: notifier,
		gm:       gm,
		operator: join(model.RoleOperator),
		field:    join(model.RoleField),
		planner:  join(model.RolePlanner),
	}

	require.NoError(t, room.Dispatch(gm.ID, model.Command{
		Cmd:  model.CmdLoadScenario,
		Data: payload(t, model.LoadScenarioPayload{Scenario: testScenario()}),
	}))
	return tr
}

// startRunning drives the room through countdown into running.
func (tr *testRoom) startRunning(t *testing.T) {
	t.Helper()
	require.NoError(t, tr.room.Dispatch(tr.gm.ID, model.Command{Cmd: model.CmdStartGame}))
	for i := 0; i < testConfig().CountdownSeconds; i++ {
		tr.tick()
	}
	require.Equal(t, model.RoomRunning, tr.room.Status())
}

func (tr *testRoom) tick() {
	tr.clock.advance(time.Second)
	tr.room.Tick()
}

// locked runs fn while holding the room mutex, for tests that poke at
// internals directly.
func (tr *testRoom) locked(fn func()) {
	tr.room.mu.Lock()
	defer tr.room.mu.Unlock()
	fn()
}

func (tr *testRoom) dispatch(t *testing.T, actorID, cmd string, data any) error {
	t.Helper()
	c := model.Command{Cmd: cmd}
	if data != nil {
		c.Data = payload(t, data)
	}
	return tr.room.Dispatch(actorID, c)
}
