package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/errs"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/grid"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/scenario"
)

var namePattern = regexp.MustCompile(`^[A-Za-z]{2,20}$`)

// Display names rejected regardless of pattern.
var nameDenyList = []string{"admin", "gamemaster", "moderator", "operator", "system", "null"}

func validDisplayName(name string) bool {
	if !namePattern.MatchString(name) {
		return false
	}
	lower := strings.ToLower(name)
	for _, deny := range nameDenyList {
		if lower == deny {
			return false
		}
	}
	return true
}

func errRoomFull() error       { return errs.ErrRoomFull }
func errNoScenario() error     { return errs.ErrNoScenario }
func errPlayerNotFound() error { return errs.ErrPlayerNotFound }
func errWrongStatus(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrWrongStatus, msg)
}

func decode[T any](data json.RawMessage, out *T) error {
	if len(data) == 0 {
		return errs.ErrBadPayload
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrBadPayload, err)
	}
	return nil
}

// Dispatch authorizes and executes one inbound command for the given actor.
// On error the requested mutation has not happened and the message is for
// the issuing actor only (asset-caused switching refusals still log an
// alarm and rebroadcast); on success the room has already been rebroadcast.
func (r *Room) Dispatch(actorID string, cmd model.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	actor := r.playerLocked(actorID)
	if actor == nil {
		return errs.ErrPlayerNotFound
	}

	var err error
	switch cmd.Cmd {
	case model.CmdSetDisplayName:
		err = r.cmdSetDisplayName(actor, cmd.Data)
	case model.CmdSetRole:
		err = r.cmdSetRole(actor, cmd.Data)
	case model.CmdStartGame:
		err = r.requireGM(actor, func() error { return r.startGameLocked() })
	case model.CmdSetTeams:
		err = r.cmdSetTeams(actor, cmd.Data)
	case model.CmdMovePlayerTeam:
		err = r.cmdMovePlayerTeam(actor, cmd.Data)
	case model.CmdSetTeamNames:
		err = r.cmdSetTeamNames(actor, cmd.Data)
	case model.CmdSetAvailableRoles:
		err = r.cmdSetAvailableRoles(actor, cmd.Data)
	case model.CmdLoadScenario:
		err = r.cmdLoadScenario(actor, cmd.Data)
	case model.CmdInjectEvent:
		err = r.cmdInjectEvent(actor, cmd.Data)
	case model.CmdRemoteSwitch:
		err = r.cmdRemoteSwitch(actor, cmd.Data)
	case model.CmdCreateWorkOrder:
		err = r.cmdCreateWorkOrder(actor, cmd.Data)
	case model.CmdAcceptWorkOrder:
		err = r.cmdAcceptWorkOrder(actor, cmd.Data)
	case model.CmdCompleteWorkOrder:
		err = r.cmdCompleteWorkOrder(actor, cmd.Data)
	case model.CmdSetFieldLocation:
		err = r.cmdSetFieldLocation(actor, cmd.Data)
	case model.CmdReportAsset:
		err = r.cmdReportAsset(actor, cmd.Data)
	case model.CmdPerformMaintenance:
		err = r.cmdPerformMaintenance(actor, cmd.Data)
	case model.CmdResetLockout:
		err = r.cmdResetLockout(actor, cmd.Data)
	case model.CmdConfirmAsset:
		err = r.cmdConfirmAsset(actor, cmd.Data)
	case model.CmdSubmitPlannerRequest:
		err = r.cmdSubmitPlannerRequest(actor, cmd.Data)
	case model.CmdHandlePlannerRequest:
		err = r.cmdHandlePlannerRequest(actor, cmd.Data)
	case model.CmdConnectGenerator:
		err = r.cmdConnectGenerator(actor, cmd.Data)
	case model.CmdPostComms:
		err = r.cmdPostComms(actor, cmd.Data)
	case model.CmdGrantPoints:
		err = r.cmdGrantPoints(actor, cmd.Data)
	case model.CmdSetResultsVisibility:
		err = r.cmdSetResultsVisibility(actor, cmd.Data)
	case model.CmdSetAutoAnnounce:
		err = r.cmdSetAutoAnnounce(actor, cmd.Data)
	case model.CmdSetGMAwards:
		err = r.cmdSetGMAwards(actor, cmd.Data)
	case model.CmdAckAlarm:
		err = r.cmdAckAlarm(actor, cmd.Data)
	default:
		err = fmt.Errorf("%w: unknown command %q", errs.ErrBadPayload, cmd.Cmd)
	}
	if err != nil {
		r.log.Debug("command rejected",
			zap.String("cmd", cmd.Cmd),
			zap.String("player_id", actorID),
			zap.Error(err))
		return err
	}
	r.broadcastLocked()
	return nil
}

func (r *Room) requireGM(actor *model.Player, fn func() error) error {
	if !actor.IsGM {
		return errs.ErrNotGM
	}
	return fn()
}

func requireRole(actor *model.Player, role model.Role) error {
	if actor.Role != role {
		return fmt.Errorf("%w: requires the %s role", errs.ErrNotAuthorized, role)
	}
	return nil
}

func (r *Room) cmdSetDisplayName(actor *model.Player, data json.RawMessage) error {
	var p model.SetDisplayNamePayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if !validDisplayName(p.Name) {
		return errs.ErrBadName
	}
	actor.Name = p.Name
	return nil
}

func (r *Room) cmdSetRole(actor *model.Player, data json.RawMessage) error {
	var p model.SetRolePayload
	if err := decode(data, &p); err != nil {
		return err
	}
	target := actor
	if p.TargetPlayerID != "" && p.TargetPlayerID != actor.ID {
		if !actor.IsGM {
			return errs.ErrNotGM
		}
		target = r.playerLocked(p.TargetPlayerID)
		if target == nil {
			return errs.ErrPlayerNotFound
		}
	}
	if target.IsGM {
		return fmt.Errorf("%w: the game master role is fixed", errs.ErrBadRole)
	}
	if !roleAvailable(r.availableRoles, p.Role) {
		return errs.ErrBadRole
	}
	target.Role = p.Role
	if p.Role != model.RoleField {
		target.Location = model.LocationNone
	}
	return nil
}

func roleAvailable(available []model.Role, role model.Role) bool {
	if role == model.RoleGM {
		return false
	}
	for _, a := range available {
		if a == role {
			return true
		}
	}
	return false
}

func (r *Room) cmdSetTeams(actor *model.Player, data json.RawMessage) error {
	var p model.SetTeamsPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		r.rebuildTeamsLocked(p.TeamCount)
		return nil
	})
}

func (r *Room) cmdMovePlayerTeam(actor *model.Player, data json.RawMessage) error {
	var p model.MovePlayerTeamPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		target := r.playerLocked(p.PlayerID)
		if target == nil {
			return errs.ErrPlayerNotFound
		}
		if target.IsGM {
			return fmt.Errorf("%w: the game master has no team", errs.ErrNotAuthorized)
		}
		if r.teamLocked(p.TeamID) == nil {
			return errs.ErrTeamNotFound
		}
		target.TeamID = p.TeamID
		return nil
	})
}

func (r *Room) cmdSetTeamNames(actor *model.Player, data json.RawMessage) error {
	var p model.SetTeamNamesPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		for i, name := range p.Names {
			if i >= len(r.teams) {
				break
			}
			if name != "" {
				r.teams[i].Name = name
			}
		}
		if p.OrgName != "" {
			r.orgName = p.OrgName
		}
		return nil
	})
}

func (r *Room) cmdSetAvailableRoles(actor *model.Player, data json.RawMessage) error {
	var p model.SetAvailableRolesPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		roles := make([]model.Role, 0, len(p.Roles))
		for _, role := range p.Roles {
			if role != model.RoleGM && role != model.RoleNone {
				roles = append(roles, role)
			}
		}
		r.availableRoles = roles
		return nil
	})
}

func (r *Room) cmdLoadScenario(actor *model.Player, data json.RawMessage) error {
	var p model.LoadScenarioPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		if r.status == model.RoomCountdown || r.status == model.RoomRunning {
			return errWrongStatus("cannot load a scenario mid-game")
		}
		if err := scenario.Validate(&p.Scenario); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrBadPayload, err)
		}
		sc := p.Scenario
		r.scenario = &sc
		r.rules = sc.Rules
		r.sched = newScheduler(sc.Events)
		r.assets.Load(sc.Assets)
		r.elapsedSec = 0
		r.frequencyHz = r.cfg.FreqNominalHz
		for _, pl := range r.players {
			pl.Location = model.LocationNone
		}
		r.log.Info("scenario loaded", zap.String("scenario", sc.Name), zap.Int("duration_sec", sc.DurationSec))
		return nil
	})
}

func (r *Room) cmdInjectEvent(actor *model.Player, data json.RawMessage) error {
	var p model.InjectEventPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		cat := model.CategoryNote
		sev := model.SeverityLow
		if p.Type == string(model.CategoryAlarm) {
			cat = model.CategoryAlarm
			sev = model.SeverityMed
		}
		r.appendAlarmLocked(r.assets.newAlarm("", r.elapsedSec, cat, sev, p.Message, ""))
		return nil
	})
}

// cmdRemoteSwitch is the operator's remote switching path. Refusals caused
// by the asset itself (not remote-controllable, simulated remote failure,
// lockout) are logged as alarms; interlock refusals only go back to the
// actor.
func (r *Room) cmdRemoteSwitch(actor *model.Player, data json.RawMessage) error {
	var p model.RemoteSwitchPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleOperator); err != nil {
		return err
	}
	a, ok := r.assets.Get(p.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	if !a.IsSwitch() {
		return fmt.Errorf("%w: %s has no switching capability", errs.ErrBadPayload, a.Name)
	}
	if a.Truth.Lockout || a.Scada.Lockout {
		r.refusalAlarmLocked(r.assets.newAlarm(a.ID, r.elapsedSec, model.CategoryAlarm, model.SeverityMed,
			fmt.Sprintf("%s remote command rejected", a.Name),
			fmt.Sprintf("Remote %s command on %s rejected: asset is locked out.", p.Action, a.Name)))
		return errs.ErrLockedOut
	}
	if !a.RemoteControllable {
		r.refusalAlarmLocked(r.assets.newAlarm(a.ID, r.elapsedSec, model.CategoryAlarm, model.SeverityMed,
			fmt.Sprintf("%s remote command rejected", a.Name),
			fmt.Sprintf("Remote %s command on %s rejected: no remote control path.", p.Action, a.Name)))
		return errs.ErrNotRemote
	}
	if a.RemoteFails {
		r.refusalAlarmLocked(r.assets.newAlarm(a.ID, r.elapsedSec, model.CategoryAlarm, model.SeverityHigh,
			fmt.Sprintf("%s remote command failed", a.Name),
			fmt.Sprintf("Remote %s command on %s sent but the device did not respond.", p.Action, a.Name)))
		return errs.ErrRemotePathDown
	}
	if err := r.checkInterlockLocked(p.AssetID, p.Action); err != nil {
		return err
	}
	r.applySwitchLocked(actor, a, p.Action, true)
	return nil
}

// refusalAlarmLocked logs an asset-caused refusal. The rejected command
// still errors back to the actor only, but the alarm log changed, so the
// room snapshot is rebroadcast immediately rather than on the next tick.
func (r *Room) refusalAlarmLocked(ev model.AlarmEvent) {
	r.appendAlarmLocked(ev)
	r.broadcastLocked()
}

func (r *Room) checkInterlockLocked(assetID string, target model.SwitchStatus) error {
	d := grid.Validate(r.assets.TruthStates(), r.rules, grid.Action{AssetID: assetID, Target: target})
	if !d.Allowed {
		return fmt.Errorf("%w: %s (rule %s)", errs.ErrInterlocked, d.Reason, d.RuleID)
	}
	return nil
}

// applySwitchLocked performs a validated status change on the truth side.
// Scada follows unless the position indication path is down (remote
// failure on a manual switch), in which case scada is flagged DBI. A
// switch that brings previously dead nodes live counts as a restore.
func (r *Room) applySwitchLocked(actor *model.Player, a *model.Asset, target model.SwitchStatus, remote bool) {
	var beforeLive int
	if r.scenario != nil {
		beforeLive = len(grid.Solve(r.assets.GridNodes(true), r.scenario.Edges).Nodes)
	}

	st := target
	_ = r.assets.UpdateTruth(a.ID, &st, nil, nil)
	if remote || !a.RemoteFails {
		_ = r.assets.UpdateScada(a.ID, &st, nil, nil, nil)
	} else {
		dbi := true
		_ = r.assets.UpdateScada(a.ID, nil, nil, &dbi, nil)
	}

	if r.scenario != nil {
		afterLive := len(grid.Solve(r.assets.GridNodes(true), r.scenario.Edges).Nodes)
		if afterLive > beforeLive {
			actor.Stats.Restores++
			if actor.Stats.FirstRestoreSec < 0 && r.status == model.RoomRunning {
				actor.Stats.FirstRestoreSec = r.elapsedSec
			}
		}
	}
	r.log.Info("switch operated",
		zap.String("asset_id", a.ID),
		zap.String("target", string(target)),
		zap.Bool("remote", remote),
		zap.String("player_id", actor.ID))
}

func (r *Room) cmdCreateWorkOrder(actor *model.Player, data json.RawMessage) error {
	var p model.CreateWorkOrderPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleOperator); err != nil {
		return err
	}
	a, ok := r.assets.Get(p.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	r.workOrders = append(r.workOrders, &model.WorkOrder{
		ID:        uuid.New().String(),
		AssetID:   a.ID,
		Action:    p.Action,
		Notes:     p.Notes,
		Status:    model.OrderOpen,
		CreatedBy: actor.ID,
		CreatedAt: r.clock.Now(),
	})
	return nil
}

func (r *Room) workOrderLocked(id string) *model.WorkOrder {
	for _, w := range r.workOrders {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (r *Room) cmdAcceptWorkOrder(actor *model.Player, data json.RawMessage) error {
	var p model.WorkOrderIDPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	w := r.workOrderLocked(p.ID)
	if w == nil {
		return errs.ErrOrderNotFound
	}
	if w.Status != model.OrderOpen {
		return errWrongStatus(fmt.Sprintf("work order is %s", w.Status))
	}
	now := r.clock.Now()
	w.Status = model.OrderAccepted
	w.AcceptedBy = actor.ID
	w.AcceptedAt = &now
	return nil
}

// cmdCompleteWorkOrder is the manual (on-site) switching path: the field
// participant must have accepted the order and be physically at the asset.
func (r *Room) cmdCompleteWorkOrder(actor *model.Player, data json.RawMessage) error {
	var p model.WorkOrderIDPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	w := r.workOrderLocked(p.ID)
	if w == nil {
		return errs.ErrOrderNotFound
	}
	if w.Status != model.OrderAccepted {
		return errWrongStatus(fmt.Sprintf("work order is %s", w.Status))
	}
	if w.AcceptedBy != actor.ID {
		return fmt.Errorf("%w: accepted by another crew", errs.ErrNotAuthorized)
	}
	a, ok := r.assets.Get(w.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	if actor.Location.AtAsset() != a.ID {
		return errs.ErrNotPresent
	}
	if a.Truth.Lockout {
		return errs.ErrLockedOut
	}
	if err := r.checkInterlockLocked(a.ID, w.Action); err != nil {
		return err
	}
	r.applySwitchLocked(actor, a, w.Action, false)
	now := r.clock.Now()
	w.Status = model.OrderCompleted
	w.CompletedAt = &now
	return nil
}

func (r *Room) cmdSetFieldLocation(actor *model.Player, data json.RawMessage) error {
	var p model.SetFieldLocationPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	switch {
	case p.Location == model.LocationNone, p.Location == model.LocationSCADAPanel:
	case p.Location.AtAsset() != "":
		if _, ok := r.assets.Get(p.Location.AtAsset()); !ok {
			return errs.ErrAssetNotFound
		}
	default:
		return errs.ErrBadLocation
	}
	actor.Location = p.Location
	return nil
}

func (r *Room) cmdReportAsset(actor *model.Player, data json.RawMessage) error {
	var p model.AssetIDPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	a, ok := r.assets.Get(p.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	if actor.Location.AtAsset() != a.ID {
		return errs.ErrNotPresent
	}
	actor.Stats.Inspections++
	detail := fmt.Sprintf("Field report on %s: status %s", a.Name, a.Truth.Status)
	for ch, v := range a.Truth.Telemetry {
		detail += fmt.Sprintf(", %s %.1f", ch, v)
	}
	if a.Truth.Lockout {
		detail += ", LOCKED OUT"
	}
	r.appendAlarmLocked(r.assets.newAlarm(a.ID, r.elapsedSec, model.CategoryNote, model.SeverityLow,
		fmt.Sprintf("Field report: %s", a.Name), detail+"."))
	return nil
}

func (r *Room) cmdPerformMaintenance(actor *model.Player, data json.RawMessage) error {
	var p model.AssetIDPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	a, ok := r.assets.Get(p.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	if actor.Location.AtAsset() != a.ID {
		return errs.ErrNotPresent
	}
	alarms, err := r.assets.Maintain(a.ID, r.elapsedSec)
	if err != nil {
		return err
	}
	for _, ev := range alarms {
		r.appendAlarmLocked(ev)
	}
	return nil
}

func (r *Room) cmdResetLockout(actor *model.Player, data json.RawMessage) error {
	var p model.AssetIDPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleField); err != nil {
		return err
	}
	a, ok := r.assets.Get(p.AssetID)
	if !ok {
		return errs.ErrAssetNotFound
	}
	if actor.Location.AtAsset() != a.ID {
		return errs.ErrNotPresent
	}
	if err := r.assets.ResetLockout(a.ID); err != nil {
		return err
	}
	r.appendAlarmLocked(r.assets.newAlarm(a.ID, r.elapsedSec, model.CategoryNote, model.SeverityLow,
		fmt.Sprintf("%s lockout reset", a.Name),
		fmt.Sprintf("Lockout on %s cleared on site.", a.Name)))
	return nil
}

// cmdConfirmAsset reconciles scada against a field report: the operator
// overwrites the reported state with the confirmed one and clears DBI.
func (r *Room) cmdConfirmAsset(actor *model.Player, data json.RawMessage) error {
	var p model.ConfirmAssetPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleOperator); err != nil {
		return err
	}
	if _, ok := r.assets.Get(p.AssetID); !ok {
		return errs.ErrAssetNotFound
	}
	dbi := false
	var status *model.SwitchStatus
	if p.ConfirmedStatus != "" {
		status = &p.ConfirmedStatus
	}
	return r.assets.UpdateScada(p.AssetID, status, p.ConfirmedTelemetry, &dbi, nil)
}

func (r *Room) cmdSubmitPlannerRequest(actor *model.Player, data json.RawMessage) error {
	var p model.SubmitPlannerRequestPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RolePlanner); err != nil {
		return err
	}
	r.plannerReqs = append(r.plannerReqs, &model.PlannerRequest{
		ID:          uuid.New().String(),
		Type:        p.Type,
		Notes:       p.Notes,
		Status:      model.RequestPending,
		SubmittedBy: actor.ID,
		SubmittedAt: r.clock.Now(),
	})
	actor.Stats.PlannerRequests++
	return nil
}

func (r *Room) cmdHandlePlannerRequest(actor *model.Player, data json.RawMessage) error {
	var p model.HandlePlannerRequestPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := requireRole(actor, model.RoleOperator); err != nil {
		return err
	}
	var req *model.PlannerRequest
	for _, q := range r.plannerReqs {
		if q.ID == p.ID {
			req = q
			break
		}
	}
	if req == nil {
		return errs.ErrRequestNotFound
	}
	valid := (req.Status == model.RequestPending && (p.Status == model.RequestAccepted || p.Status == model.RequestRejected)) ||
		(req.Status == model.RequestAccepted && p.Status == model.RequestCompleted)
	if !valid {
		return errWrongStatus(fmt.Sprintf("request is %s, cannot move to %s", req.Status, p.Status))
	}
	now := r.clock.Now()
	req.Status = p.Status
	req.HandledBy = actor.ID
	req.HandledAt = &now
	return nil
}

func (r *Room) cmdConnectGenerator(actor *model.Player, data json.RawMessage) error {
	var p model.ConnectGeneratorPayload
	if len(data) > 0 {
		if err := decode(data, &p); err != nil {
			return err
		}
	}
	if err := requireRole(actor, model.RoleOperator); err != nil {
		return err
	}
	if r.status != model.RoomRunning {
		return errs.ErrGameNotRunning
	}
	amount := p.AmountHz
	if amount <= 0 {
		amount = 0.2
	}
	// Nudge the simulated frequency back toward nominal, never past it.
	nominal := r.cfg.FreqNominalHz
	switch {
	case r.frequencyHz < nominal:
		r.frequencyHz = r.clampFreq(min(nominal, r.frequencyHz+amount))
	case r.frequencyHz > nominal:
		r.frequencyHz = r.clampFreq(max(nominal, r.frequencyHz-amount))
	}
	return nil
}

func (r *Room) cmdPostComms(actor *model.Player, data json.RawMessage) error {
	var p model.PostCommsPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.Text == "" {
		return errs.ErrBadPayload
	}
	role := actor.Role
	if actor.IsGM {
		role = model.RoleGM
	}
	r.comms.add(model.CommsMessage{
		ID:       uuid.New().String(),
		At:       r.clock.Now(),
		Kind:     p.Type,
		Text:     p.Text,
		FromID:   actor.ID,
		FromName: actor.Name,
		FromRole: role,
	})
	return nil
}

func (r *Room) cmdGrantPoints(actor *model.Player, data json.RawMessage) error {
	var p model.GrantPointsPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		t := r.teamLocked(p.TeamID)
		if t == nil {
			return errs.ErrTeamNotFound
		}
		t.Score += p.Points
		if p.Reason != "" {
			r.appendAlarmLocked(r.assets.newAlarm("", r.elapsedSec, model.CategoryNote, model.SeverityLow,
				fmt.Sprintf("%+d points to %s", p.Points, t.Name), p.Reason))
		}
		return nil
	})
}

func (r *Room) cmdSetResultsVisibility(actor *model.Player, data json.RawMessage) error {
	var p model.SetResultsVisibilityPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		if r.status != model.RoomFinished {
			return errs.ErrGameNotFinished
		}
		r.resultsVisible = p.Visible
		return nil
	})
}

func (r *Room) cmdSetAutoAnnounce(actor *model.Player, data json.RawMessage) error {
	var p model.SetAutoAnnouncePayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		r.autoAnnounce = p.Enabled
		return nil
	})
}

func (r *Room) cmdSetGMAwards(actor *model.Player, data json.RawMessage) error {
	var p model.SetGMAwardsPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	return r.requireGM(actor, func() error {
		r.gmAwards = p
		if r.status == model.RoomFinished {
			r.awards = computeAwards(r.players, r.gmAwards)
		}
		return nil
	})
}

func (r *Room) cmdAckAlarm(actor *model.Player, data json.RawMessage) error {
	var p model.AckAlarmPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if actor.Role != model.RoleOperator && actor.Role != model.RoleField {
		return fmt.Errorf("%w: requires the operator or field role", errs.ErrNotAuthorized)
	}
	found := false
	for _, ev := range r.alarms.all() {
		if ev.ID == p.AlarmID {
			found = true
			break
		}
	}
	if !found {
		return errs.ErrAlarmNotFound
	}
	if !r.acked[p.AlarmID] {
		r.acked[p.AlarmID] = true
		actor.Stats.AlarmsAcked++
	}
	return nil
}
