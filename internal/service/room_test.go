package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/errs"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

func TestCountdownTransitionAtDeadline(t *testing.T) {
	tr := newTestRoom(t)
	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdStartGame, nil))
	require.Equal(t, model.RoomCountdown, tr.room.Status())

	// Countdown is 3 s: two ticks must not start the game.
	tr.tick()
	tr.tick()
	assert.Equal(t, model.RoomCountdown, tr.room.Status(), "transition must not fire before the deadline")

	tr.tick()
	assert.Equal(t, model.RoomRunning, tr.room.Status())

	view, err := tr.room.View(tr.gm.ID)
	require.NoError(t, err)
	assert.Zero(t, view.ElapsedSec, "elapsed time resets to zero at the countdown deadline")
}

func TestScenarioPointsAppliedExactlyOnce(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	for i := 0; i < 12; i++ {
		tr.tick()
	}

	view, err := tr.room.View(tr.gm.ID)
	require.NoError(t, err)
	require.Len(t, view.Teams, 2)
	assert.Equal(t, 5, view.Teams[0].Score)
	assert.Equal(t, 5, view.Teams[1].Score)

	count := 0
	for _, a := range view.Alarms {
		if a.Summary == "Checkpoint reached" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the scored event must appear exactly once in the log")
}

func TestRemoteSwitchOnFailedPathLeavesScadaUnchanged(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	a, ok := tr.room.assets.Get("CB1")
	require.True(t, ok)
	tr.locked(func() { a.RemoteFails = true })

	err := tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen})
	require.ErrorIs(t, err, errs.ErrRemotePathDown)

	assert.Equal(t, model.StatusClosed, a.Scada.Status, "scada must be unchanged")
	assert.Equal(t, model.StatusClosed, a.Truth.Status)

	view, verr := tr.room.View(tr.operator.ID)
	require.NoError(t, verr)
	found := false
	for _, al := range view.Alarms {
		if al.AssetID == "CB1" && al.Severity == model.SeverityHigh {
			found = true
		}
	}
	assert.True(t, found, "a high-severity alarm naming CB1 must be appended")
}

func TestRemoteSwitchRefusalRebroadcastsSnapshot(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	a, ok := tr.room.assets.Get("CB1")
	require.True(t, ok)
	tr.locked(func() { a.RemoteFails = true })

	before, ok := tr.notifier.lastView(tr.gm.ID)
	require.True(t, ok)

	err := tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen})
	require.ErrorIs(t, err, errs.ErrRemotePathDown)

	after, ok := tr.notifier.lastView(tr.gm.ID)
	require.True(t, ok)
	assert.Equal(t, len(before.Alarms)+1, len(after.Alarms),
		"the refusal alarm reaches the snapshot immediately, not on the next tick")
	last := after.Alarms[len(after.Alarms)-1]
	assert.Equal(t, "CB1", last.AssetID)
	assert.Equal(t, model.SeverityHigh, last.Severity)
}

func TestRemoteSwitchHappyPathUpdatesBothSides(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen}))

	a, _ := tr.room.assets.Get("CB1")
	assert.Equal(t, model.StatusOpen, a.Truth.Status)
	assert.Equal(t, model.StatusOpen, a.Scada.Status)

	// Re-closing restores supply and is credited to the operator.
	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusClosed}))
	assert.Equal(t, 1, tr.operator.Stats.Restores)
	assert.GreaterOrEqual(t, tr.operator.Stats.FirstRestoreSec, 0)
}

func TestRemoteSwitchRequiresOperatorRole(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	err := tr.dispatch(t, tr.field.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen})
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)

	a, _ := tr.room.assets.Get("CB1")
	assert.Equal(t, model.StatusClosed, a.Truth.Status, "rejection must not mutate")
}

func TestFieldTruthVisibilityFollowsLocation(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	view, err := tr.room.View(tr.field.ID)
	require.NoError(t, err)
	for _, av := range view.Assets {
		assert.Nil(t, av.Truth, "field participant away from the asset must not see truth (%s)", av.ID)
		assert.NotNil(t, av.Scada)
	}

	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdSetFieldLocation,
		model.SetFieldLocationPayload{Location: model.LocationForAsset("TX1")}))

	view, err = tr.room.View(tr.field.ID)
	require.NoError(t, err)
	for _, av := range view.Assets {
		if av.ID == "TX1" {
			require.NotNil(t, av.Truth, "truth visible at the asset the field participant is located at")
			assert.Equal(t, 60.0, av.Truth.Telemetry[model.ChannelOil])
		} else {
			assert.Nil(t, av.Truth)
		}
	}
}

func TestThresholdLockoutFlowEndToEnd(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	// Drive TX1 oil below the lockout floor via truth telemetry.
	tr.locked(func() {
		require.NoError(t, tr.room.assets.UpdateTruth("TX1", nil, model.Telemetry{model.ChannelOil: 5}, nil))
	})
	tr.tick()
	tr.tick()

	a, _ := tr.room.assets.Get("TX1")
	assert.True(t, a.Truth.Lockout, "lockout set on truth")
	assert.True(t, a.Scada.Lockout, "lockout propagated to scada")

	view, err := tr.room.View(tr.gm.ID)
	require.NoError(t, err)
	faults := 0
	for _, al := range view.Alarms {
		if al.Category == model.CategoryFault && al.AssetID == "TX1" {
			faults++
		}
	}
	assert.Equal(t, 1, faults, "exactly one fault on the transition into lockout")

	// Maintenance requires presence, then clears the lockout.
	err = tr.dispatch(t, tr.field.ID, model.CmdPerformMaintenance, model.AssetIDPayload{AssetID: "TX1"})
	assert.ErrorIs(t, err, errs.ErrNotPresent)

	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdSetFieldLocation,
		model.SetFieldLocationPayload{Location: model.LocationForAsset("TX1")}))
	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdPerformMaintenance, model.AssetIDPayload{AssetID: "TX1"}))

	a, _ = tr.room.assets.Get("TX1")
	assert.False(t, a.Truth.Lockout)
	assert.False(t, a.Scada.Lockout)
}

func TestLockoutBlocksSwitchingUntilReset(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	lock := true
	tr.locked(func() {
		require.NoError(t, tr.room.assets.UpdateTruth("CB1", nil, nil, &lock))
	})

	err := tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen})
	assert.ErrorIs(t, err, errs.ErrLockedOut)

	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdSetFieldLocation,
		model.SetFieldLocationPayload{Location: model.LocationForAsset("CB1")}))
	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdResetLockout, model.AssetIDPayload{AssetID: "CB1"}))

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdRemoteSwitch,
		model.RemoteSwitchPayload{AssetID: "CB1", Action: model.StatusOpen}))
}

func TestGameFinishesAtScenarioDuration(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	for i := 0; i < 59; i++ {
		tr.tick()
	}
	assert.Equal(t, model.RoomRunning, tr.room.Status())
	tr.tick()
	assert.Equal(t, model.RoomFinished, tr.room.Status())

	// Results stay hidden from players until the GM reveals them.
	view, err := tr.room.View(tr.operator.ID)
	require.NoError(t, err)
	assert.False(t, view.ResultsVisible)
	assert.Nil(t, view.Awards)

	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdSetResultsVisibility,
		model.SetResultsVisibilityPayload{Visible: true}))
	view, err = tr.room.View(tr.operator.ID)
	require.NoError(t, err)
	assert.True(t, view.ResultsVisible)
}

func TestRestartAfterFinished(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)
	for i := 0; i < 60; i++ {
		tr.tick()
	}
	require.Equal(t, model.RoomFinished, tr.room.Status())

	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdStartGame, nil))
	assert.Equal(t, model.RoomCountdown, tr.room.Status())

	// Scores are not reset by a restart; the scenario cursor is.
	for i := 0; i < 3+12; i++ {
		tr.tick()
	}
	view, err := tr.room.View(tr.gm.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, view.Teams[0].Score, "5 from each run")
}

func TestWorkOrderFlow(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdCreateWorkOrder,
		model.CreateWorkOrderPayload{AssetID: "DS1", Action: model.StatusOpen, Notes: "isolate TX1"}))

	view, _ := tr.room.View(tr.operator.ID)
	require.Len(t, view.WorkOrders, 1)
	orderID := view.WorkOrders[0].ID

	// Completing before accepting is a precondition error.
	err := tr.dispatch(t, tr.field.ID, model.CmdCompleteWorkOrder, model.WorkOrderIDPayload{ID: orderID})
	assert.ErrorIs(t, err, errs.ErrWrongStatus)

	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdAcceptWorkOrder, model.WorkOrderIDPayload{ID: orderID}))

	// Must be on site to operate.
	err = tr.dispatch(t, tr.field.ID, model.CmdCompleteWorkOrder, model.WorkOrderIDPayload{ID: orderID})
	assert.ErrorIs(t, err, errs.ErrNotPresent)

	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdSetFieldLocation,
		model.SetFieldLocationPayload{Location: model.LocationForAsset("DS1")}))
	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdCompleteWorkOrder, model.WorkOrderIDPayload{ID: orderID}))

	a, _ := tr.room.assets.Get("DS1")
	assert.Equal(t, model.StatusOpen, a.Truth.Status)

	view, _ = tr.room.View(tr.operator.ID)
	assert.Equal(t, model.OrderCompleted, view.WorkOrders[0].Status)
}

func TestPlannerRequestFlow(t *testing.T) {
	tr := newTestRoom(t)

	require.NoError(t, tr.dispatch(t, tr.planner.ID, model.CmdSubmitPlannerRequest,
		model.SubmitPlannerRequestPayload{Type: "outage", Notes: "planned TX1 outage"}))
	assert.Equal(t, 1, tr.planner.Stats.PlannerRequests)

	view, _ := tr.room.View(tr.planner.ID)
	require.Len(t, view.PlannerRequests, 1)
	id := view.PlannerRequests[0].ID

	// Completing a pending request skips a state.
	err := tr.dispatch(t, tr.operator.ID, model.CmdHandlePlannerRequest,
		model.HandlePlannerRequestPayload{ID: id, Status: model.RequestCompleted})
	assert.ErrorIs(t, err, errs.ErrWrongStatus)

	// Only the operator owns the transition.
	err = tr.dispatch(t, tr.planner.ID, model.CmdHandlePlannerRequest,
		model.HandlePlannerRequestPayload{ID: id, Status: model.RequestAccepted})
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdHandlePlannerRequest,
		model.HandlePlannerRequestPayload{ID: id, Status: model.RequestAccepted}))
	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdHandlePlannerRequest,
		model.HandlePlannerRequestPayload{ID: id, Status: model.RequestCompleted}))
}

func TestFrequencyEventsAndGenerator(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	tr.locked(func() {
		tr.room.applyEventLocked(model.ScenarioEvent{Type: model.EventFrequency, DeltaHz: -10})
	})
	view, _ := tr.room.View(tr.operator.ID)
	assert.Equal(t, 47.0, view.FrequencyHz, "frequency clamps to the safe band")

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdConnectGenerator,
		model.ConnectGeneratorPayload{AmountHz: 2.0}))
	view, _ = tr.room.View(tr.operator.ID)
	assert.Equal(t, 49.0, view.FrequencyHz)

	// Never overshoots nominal.
	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdConnectGenerator,
		model.ConnectGeneratorPayload{AmountHz: 5.0}))
	view, _ = tr.room.View(tr.operator.ID)
	assert.Equal(t, 50.0, view.FrequencyHz)
}

func TestConnectGeneratorRequiresRunningGame(t *testing.T) {
	tr := newTestRoom(t)
	err := tr.dispatch(t, tr.operator.ID, model.CmdConnectGenerator,
		model.ConnectGeneratorPayload{AmountHz: 1.0})
	assert.ErrorIs(t, err, errs.ErrGameNotRunning)
}

func TestDisplayNamePolicy(t *testing.T) {
	tr := newTestRoom(t)

	for _, bad := range []string{"x", "has space", "name1", "thisnameiswaytoolongtobeallowed", "admin", "System"} {
		err := tr.dispatch(t, tr.operator.ID, model.CmdSetDisplayName, model.SetDisplayNamePayload{Name: bad})
		assert.ErrorIs(t, err, errs.ErrBadName, "name %q must be rejected", bad)
	}
	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdSetDisplayName,
		model.SetDisplayNamePayload{Name: "Bob"}))
	assert.Equal(t, "Bob", tr.operator.Name)
}

func TestGMOnlyCommands(t *testing.T) {
	tr := newTestRoom(t)

	assert.ErrorIs(t, tr.dispatch(t, tr.operator.ID, model.CmdStartGame, nil), errs.ErrNotGM)
	assert.ErrorIs(t, tr.dispatch(t, tr.operator.ID, model.CmdSetTeams,
		model.SetTeamsPayload{TeamCount: 3}), errs.ErrNotGM)
	assert.ErrorIs(t, tr.dispatch(t, tr.operator.ID, model.CmdGrantPoints,
		model.GrantPointsPayload{TeamID: "team-1", Points: 5}), errs.ErrNotGM)
}

func TestSetTeamsRebuildsWholesale(t *testing.T) {
	tr := newTestRoom(t)

	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdGrantPoints,
		model.GrantPointsPayload{TeamID: "team-1", Points: 7}))
	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdSetTeams, model.SetTeamsPayload{TeamCount: 3}))

	view, _ := tr.room.View(tr.gm.ID)
	require.Len(t, view.Teams, 3)
	for _, team := range view.Teams {
		assert.Zero(t, team.Score, "rebuilding discards old teams")
	}
	for _, p := range []*model.Player{tr.operator, tr.field, tr.planner} {
		assert.NotEmpty(t, p.TeamID, "players are reassigned")
	}
	assert.Empty(t, tr.gm.TeamID, "the GM has no team")
}

func TestAckAlarmCountsOnce(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	require.NoError(t, tr.dispatch(t, tr.gm.ID, model.CmdInjectEvent,
		model.InjectEventPayload{Type: "alarm", Message: "Manual drill alarm"}))

	view, _ := tr.room.View(tr.operator.ID)
	require.NotEmpty(t, view.Alarms)
	id := view.Alarms[len(view.Alarms)-1].ID

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdAckAlarm, model.AckAlarmPayload{AlarmID: id}))
	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdAckAlarm, model.AckAlarmPayload{AlarmID: id}))
	assert.Equal(t, 1, tr.operator.Stats.AlarmsAcked, "re-acking the same alarm does not double count")

	assert.ErrorIs(t, tr.dispatch(t, tr.planner.ID, model.CmdAckAlarm,
		model.AckAlarmPayload{AlarmID: id}), errs.ErrNotAuthorized)
}

func TestDBIReportConfirmCycle(t *testing.T) {
	tr := newTestRoom(t)
	tr.startRunning(t)

	// Scenario injects DBI; scada telemetry stops following truth.
	tr.locked(func() {
		tr.room.applyEventLocked(model.ScenarioEvent{Type: model.EventDBI, AssetID: "TX1", Set: true})
		tr.room.applyEventLocked(model.ScenarioEvent{Type: model.EventTelemetry, AssetID: "TX1",
			Channel: model.ChannelOil, Value: 20})
	})

	a, _ := tr.room.assets.Get("TX1")
	assert.True(t, a.Scada.DBI)
	assert.Equal(t, 20.0, a.Truth.Telemetry[model.ChannelOil])
	assert.Equal(t, 60.0, a.Scada.Telemetry[model.ChannelOil], "DBI freezes scada telemetry")

	// Field inspects on site, operator confirms from the report.
	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdSetFieldLocation,
		model.SetFieldLocationPayload{Location: model.LocationForAsset("TX1")}))
	require.NoError(t, tr.dispatch(t, tr.field.ID, model.CmdReportAsset, model.AssetIDPayload{AssetID: "TX1"}))
	assert.Equal(t, 1, tr.field.Stats.Inspections)

	require.NoError(t, tr.dispatch(t, tr.operator.ID, model.CmdConfirmAsset, model.ConfirmAssetPayload{
		AssetID:            "TX1",
		ConfirmedStatus:    model.StatusClosed,
		ConfirmedTelemetry: model.Telemetry{model.ChannelOil: 20},
	}))
	a, _ = tr.room.assets.Get("TX1")
	assert.False(t, a.Scada.DBI)
	assert.Equal(t, 20.0, a.Scada.Telemetry[model.ChannelOil])
}

func TestErrorsGoOnlyToIssuingActor(t *testing.T) {
	tr := newTestRoom(t)

	err := tr.dispatch(t, tr.operator.ID, model.CmdStartGame, nil)
	require.Error(t, err)

	// Rejection must not have produced a broadcast: the push count is
	// unchanged by the failed command.
	before := tr.notifier.count()
	_ = tr.dispatch(t, tr.operator.ID, model.CmdStartGame, nil)
	assert.Equal(t, before, tr.notifier.count(), "rejected commands push nothing")
}
