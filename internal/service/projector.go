package service

import (
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/grid"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// Projection rules per role:
//   - GM sees unrestricted truth and scada for every asset plus all logs.
//   - Operator sees scada only (never truth), the detailed alarm log, work
//     orders and the planner queue.
//   - Field sees scada for all assets, truth only for the asset they are
//     physically at, and the detailed alarm log only at the scada panel.
//   - Planner sees the aggregate frequency and planner queue, no per-asset
//     state.
// Views are recomputed after every mutation because truth visibility also
// hangs off the mutable field location.

func projectPlayer(p *model.Player) model.PlayerView {
	return model.PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		Role:      p.Role,
		TeamID:    p.TeamID,
		IsGM:      p.IsGM,
		Connected: p.Connected,
	}
}

func projectTruth(t model.TruthState) *model.TruthView {
	return &model.TruthView{
		Status:       t.Status,
		Telemetry:    t.Telemetry.Clone(),
		Lockout:      t.Lockout,
		Observations: t.Observations,
		UpdatedAt:    t.UpdatedAt,
	}
}

func projectScada(s model.ScadaState) *model.ScadaView {
	return &model.ScadaView{
		Status:    s.Status,
		Telemetry: s.Telemetry.Clone(),
		DBI:       s.DBI,
		Lockout:   s.Lockout,
		UpdatedAt: s.UpdatedAt,
	}
}

// projectAsset restricts one asset to what the viewer may see.
func projectAsset(a *model.Asset, viewer *model.Player) model.AssetView {
	v := model.AssetView{
		ID:                 a.ID,
		Name:               a.Name,
		Kind:               a.Kind,
		RemoteControllable: a.RemoteControllable,
		Scada:              projectScada(a.Scada),
	}
	switch {
	case viewer.IsGM:
		v.Truth = projectTruth(a.Truth)
	case viewer.Role == model.RoleField && viewer.Location.AtAsset() == a.ID:
		v.Truth = projectTruth(a.Truth)
	}
	return v
}

// alarmDetailVisible reports whether the viewer gets the detailed message
// variant: GM and operator always, field only at the scada panel.
func alarmDetailVisible(p *model.Player) bool {
	if p.IsGM || p.Role == model.RoleOperator {
		return true
	}
	return p.Role == model.RoleField && p.Location == model.LocationSCADAPanel
}

func projectAlarm(ev model.AlarmEvent, detailed bool, acked bool) model.AlarmView {
	v := model.AlarmView{
		ID:       ev.ID,
		At:       ev.At,
		AtSec:    ev.AtSec,
		Category: ev.Category,
		Severity: ev.Severity,
		Summary:  ev.Summary,
		AssetID:  ev.AssetID,
		Acked:    acked,
	}
	if detailed {
		v.Detail = ev.Detail
	}
	return v
}

// energizationLocked runs both conduction passes over the current diagram:
// the truth side for GM views, the scada side for operator/field views.
func (r *Room) energizationLocked() (truth, scada *model.EnergizationView) {
	if r.scenario == nil {
		return nil, nil
	}
	edges := r.scenario.Edges
	truth = energizationView(r.assets.GridNodes(true), edges)
	scada = energizationView(r.assets.GridNodes(false), edges)
	return truth, scada
}

func energizationView(nodes []grid.Node, edges []model.Edge) *model.EnergizationView {
	live := grid.Solve(nodes, edges)
	grounded := grid.Grounded(nodes, edges)
	return &model.EnergizationView{
		Nodes:         live.NodeIDs(),
		Edges:         live.EdgeIDs(),
		GroundedEdges: grounded.EdgeIDs(),
	}
}

// viewForLocked assembles the full role-filtered snapshot for one viewer.
func (r *Room) viewForLocked(p *model.Player, truthE, scadaE *model.EnergizationView) model.RoomView {
	v := model.RoomView{
		Code:           r.code,
		Status:         r.status,
		ElapsedSec:     r.elapsedSec,
		OrgName:        r.orgName,
		You:            projectPlayer(p),
		AvailableRoles: r.availableRoles,
		ResultsVisible: r.resultsVisible,
	}
	if r.scenario != nil {
		v.ScenarioName = r.scenario.Name
		if r.status == model.RoomRunning && r.scenario.DurationSec > r.elapsedSec {
			v.RemainingSec = r.scenario.DurationSec - r.elapsedSec
		}
	}
	for _, pl := range r.players {
		v.Players = append(v.Players, projectPlayer(pl))
	}
	for _, t := range r.teams {
		v.Teams = append(v.Teams, *t)
	}

	detailed := alarmDetailVisible(p)
	role := p.Role
	if p.IsGM {
		role = model.RoleGM
	}

	switch role {
	case model.RoleGM:
		v.FrequencyHz = r.frequencyHz
		v.Energization = truthE
		for _, a := range r.assets.All() {
			v.Assets = append(v.Assets, projectAsset(a, p))
		}
		v.WorkOrders = cloneOrders(r.workOrders)
		v.PlannerRequests = cloneRequests(r.plannerReqs)
		v.Alarms = r.projectAlarmsLocked(detailed)
		v.Comms = r.comms.all()

	case model.RoleOperator:
		v.FrequencyHz = r.frequencyHz
		v.Energization = scadaE
		for _, a := range r.assets.All() {
			v.Assets = append(v.Assets, projectAsset(a, p))
		}
		v.WorkOrders = cloneOrders(r.workOrders)
		v.PlannerRequests = cloneRequests(r.plannerReqs)
		v.Alarms = r.projectAlarmsLocked(detailed)
		v.Comms = r.comms.all()

	case model.RoleField:
		v.Energization = scadaE
		v.FieldLocation = p.Location
		for _, a := range r.assets.All() {
			v.Assets = append(v.Assets, projectAsset(a, p))
		}
		v.WorkOrders = cloneOrders(r.workOrders)
		v.Alarms = r.projectAlarmsLocked(detailed)
		v.Comms = r.comms.all()

	case model.RolePlanner:
		v.FrequencyHz = r.frequencyHz
		v.PlannerRequests = cloneRequests(r.plannerReqs)
		v.Comms = r.comms.all()

	default:
		// No role chosen yet: lobby-level data only.
		v.Comms = r.comms.all()
	}

	// Results stay hidden until announced; the GM always sees them.
	if r.status == model.RoomFinished && (r.resultsVisible || p.IsGM) {
		v.Awards = r.awards
	}
	return v
}

func (r *Room) projectAlarmsLocked(detailed bool) []model.AlarmView {
	entries := r.alarms.all()
	out := make([]model.AlarmView, 0, len(entries))
	for _, ev := range entries {
		out = append(out, projectAlarm(ev, detailed, r.acked[ev.ID]))
	}
	return out
}

func cloneOrders(in []*model.WorkOrder) []model.WorkOrder {
	out := make([]model.WorkOrder, 0, len(in))
	for _, w := range in {
		out = append(out, *w)
	}
	return out
}

func cloneRequests(in []*model.PlannerRequest) []model.PlannerRequest {
	out := make([]model.PlannerRequest, 0, len(in))
	for _, q := range in {
		out = append(out, *q)
	}
	return out
}
