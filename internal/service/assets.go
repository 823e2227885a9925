package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/grid"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/threshold"
)

// AssetRegistry owns the canonical asset list of one room: the dual
// truth/scada snapshots, lockout propagation and threshold evaluation.
// The owning room serializes all calls; the registry itself holds no lock.
type AssetRegistry struct {
	order  []string
	assets map[string]*model.Asset
	eval   *threshold.Evaluator
	clock  Clock
}

func NewAssetRegistry(clock Clock) *AssetRegistry {
	return &AssetRegistry{
		assets: make(map[string]*model.Asset),
		eval:   threshold.NewEvaluator(),
		clock:  clock,
	}
}

// Load rebuilds the registry from scenario content. Threshold history is
// reset; every channel starts at normal.
func (ar *AssetRegistry) Load(specs []model.ScenarioAsset) {
	ar.order = ar.order[:0]
	ar.assets = make(map[string]*model.Asset, len(specs))
	ar.eval.Reset()
	now := ar.clock.Now()
	for _, s := range specs {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		a := &model.Asset{
			ID:                 s.ID,
			Name:               name,
			Kind:               s.Kind,
			RemoteControllable: s.RemoteControllable,
			RemoteFails:        s.RemoteFails,
			Thresholds:         s.Thresholds,
			Truth: model.TruthState{
				Status:    s.InitialStatus,
				Telemetry: s.Telemetry.Clone(),
				UpdatedAt: now,
			},
			Scada: model.ScadaState{
				Status:    s.InitialStatus,
				Telemetry: s.Telemetry.Clone(),
				UpdatedAt: now,
			},
			UpdatedAt: now,
		}
		ar.order = append(ar.order, s.ID)
		ar.assets[s.ID] = a
	}
}

// Get returns one asset by id.
func (ar *AssetRegistry) Get(id string) (*model.Asset, bool) {
	a, ok := ar.assets[id]
	return a, ok
}

// All returns assets in declared order.
func (ar *AssetRegistry) All() []*model.Asset {
	out := make([]*model.Asset, 0, len(ar.order))
	for _, id := range ar.order {
		out = append(out, ar.assets[id])
	}
	return out
}

// TruthStates returns the authoritative switch positions for interlock
// validation and the truth-side conduction solve.
func (ar *AssetRegistry) TruthStates() map[string]model.SwitchStatus {
	out := make(map[string]model.SwitchStatus, len(ar.assets))
	for id, a := range ar.assets {
		out[id] = a.Truth.Status
	}
	return out
}

// GridNodes builds solver input from either the truth or the scada side.
func (ar *AssetRegistry) GridNodes(truth bool) []grid.Node {
	nodes := make([]grid.Node, 0, len(ar.order))
	for _, id := range ar.order {
		a := ar.assets[id]
		st := a.Scada.Status
		if truth {
			st = a.Truth.Status
		}
		nodes = append(nodes, grid.Node{
			ID:     a.ID,
			Kind:   a.Kind,
			Closed: st == model.StatusClosed,
			On:     a.Kind == model.AssetSource && st == model.StatusClosed,
		})
	}
	return nodes
}

// UpdateTruth applies a partial mutation to the truth snapshot. Setting
// lockout on truth propagates to scada; clearing is only done by
// ResetLockout.
func (ar *AssetRegistry) UpdateTruth(id string, status *model.SwitchStatus, tel model.Telemetry, lockout *bool) error {
	a, ok := ar.assets[id]
	if !ok {
		return fmt.Errorf("update truth %q: asset not found", id)
	}
	now := ar.clock.Now()
	if status != nil {
		a.Truth.Status = *status
	}
	if tel != nil {
		if a.Truth.Telemetry == nil {
			a.Truth.Telemetry = model.Telemetry{}
		}
		for ch, v := range tel {
			a.Truth.Telemetry[ch] = v
		}
	}
	if lockout != nil && *lockout {
		a.Truth.Lockout = true
		a.Scada.Lockout = true
		a.Scada.UpdatedAt = now
	}
	a.Truth.UpdatedAt = now
	a.UpdatedAt = now
	return nil
}

// UpdateScada applies a partial mutation to the scada snapshot.
func (ar *AssetRegistry) UpdateScada(id string, status *model.SwitchStatus, tel model.Telemetry, dbi, lockout *bool) error {
	a, ok := ar.assets[id]
	if !ok {
		return fmt.Errorf("update scada %q: asset not found", id)
	}
	now := ar.clock.Now()
	if status != nil {
		a.Scada.Status = *status
	}
	if tel != nil {
		if a.Scada.Telemetry == nil {
			a.Scada.Telemetry = model.Telemetry{}
		}
		for ch, v := range tel {
			a.Scada.Telemetry[ch] = v
		}
	}
	if dbi != nil {
		a.Scada.DBI = *dbi
	}
	if lockout != nil && *lockout {
		a.Scada.Lockout = true
	}
	a.Scada.UpdatedAt = now
	a.UpdatedAt = now
	return nil
}

// ResetLockout clears both lockout flags (explicit maintenance action).
func (ar *AssetRegistry) ResetLockout(id string) error {
	a, ok := ar.assets[id]
	if !ok {
		return fmt.Errorf("reset lockout %q: asset not found", id)
	}
	now := ar.clock.Now()
	a.Truth.Lockout = false
	a.Scada.Lockout = false
	a.Truth.UpdatedAt = now
	a.Scada.UpdatedAt = now
	a.UpdatedAt = now
	return nil
}

// EvaluateAll re-runs threshold evaluation over every asset's truth
// telemetry. Emits alarms only on level transitions; a transition into
// lockout sets both lockout flags and adds a distinct high-severity fault.
func (ar *AssetRegistry) EvaluateAll(elapsedSec int) []model.AlarmEvent {
	var out []model.AlarmEvent
	for _, id := range ar.order {
		a := ar.assets[id]
		for _, ch := range []model.Channel{model.ChannelOil, model.ChannelGas, model.ChannelWindingTemp} {
			v, ok := a.Truth.Telemetry[ch]
			if !ok {
				continue
			}
			limits, configured := a.Thresholds[ch]
			if !configured {
				continue
			}
			tr, changed := ar.eval.Evaluate(a.ID, ch, v, limits)
			if !changed {
				continue
			}
			out = append(out, ar.transitionAlarm(a, tr, elapsedSec))
			if tr.EnteredLockout() {
				lock := true
				_ = ar.UpdateTruth(a.ID, nil, nil, &lock)
				out = append(out, ar.newAlarm(a.ID, elapsedSec, model.CategoryFault, model.SeverityHigh,
					fmt.Sprintf("%s lockout", a.Name),
					fmt.Sprintf("%s tripped to lockout on %s (%.1f); switching is frozen until maintenance resets it.", a.Name, ch, v)))
			}
		}
	}
	return out
}

// Maintain resets every configured channel to its safe value, re-runs
// evaluation (which may clear the lockout level) and clears the lockout
// flags when no channel is still in lockout.
func (ar *AssetRegistry) Maintain(id string, elapsedSec int) ([]model.AlarmEvent, error) {
	a, ok := ar.assets[id]
	if !ok {
		return nil, fmt.Errorf("maintain %q: asset not found", id)
	}
	tel := model.Telemetry{}
	for ch := range a.Truth.Telemetry {
		limits, configured := a.Thresholds[ch]
		tel[ch] = threshold.SafeValue(ch, limits, configured)
	}
	if err := ar.UpdateTruth(id, nil, tel, nil); err != nil {
		return nil, err
	}
	// Scada follows: maintenance includes reinstating the telemetry path.
	dbi := false
	if err := ar.UpdateScada(id, nil, tel, &dbi, nil); err != nil {
		return nil, err
	}

	var out []model.AlarmEvent
	stillLocked := false
	for ch, v := range a.Truth.Telemetry {
		limits, configured := a.Thresholds[ch]
		if !configured {
			continue
		}
		tr, changed := ar.eval.Evaluate(a.ID, ch, v, limits)
		if changed {
			out = append(out, ar.transitionAlarm(a, tr, elapsedSec))
		}
		if ar.eval.Current(a.ID, ch) == threshold.LevelLockout {
			stillLocked = true
		}
	}
	if a.Truth.Lockout && !stillLocked {
		if err := ar.ResetLockout(id); err != nil {
			return nil, err
		}
		out = append(out, ar.newAlarm(id, elapsedSec, model.CategoryNote, model.SeverityLow,
			fmt.Sprintf("%s maintenance complete", a.Name),
			fmt.Sprintf("Maintenance on %s restored telemetry to safe values and cleared the lockout.", a.Name)))
	}
	return out, nil
}

func (ar *AssetRegistry) transitionAlarm(a *model.Asset, tr threshold.Transition, elapsedSec int) model.AlarmEvent {
	cat := model.CategoryAlarm
	if tr.To == threshold.LevelNormal {
		cat = model.CategoryNote
	}
	return ar.newAlarm(a.ID, elapsedSec, cat, severityFor(tr.To),
		fmt.Sprintf("%s %s %s", a.Name, tr.Channel, tr.To),
		fmt.Sprintf("%s on %s moved from %s to %s.", tr.Channel, a.Name, tr.From, tr.To))
}

func severityFor(lvl threshold.Level) model.Severity {
	switch lvl {
	case threshold.LevelLockout, threshold.LevelHighHigh:
		return model.SeverityHigh
	case threshold.LevelHigh, threshold.LevelLow:
		return model.SeverityMed
	default:
		return model.SeverityLow
	}
}

func (ar *AssetRegistry) newAlarm(assetID string, elapsedSec int, cat model.AlarmCategory, sev model.Severity, summary, detail string) model.AlarmEvent {
	return model.AlarmEvent{
		ID:       uuid.New().String(),
		At:       ar.clock.Now(),
		AtSec:    elapsedSec,
		Category: cat,
		Severity: sev,
		Summary:  summary,
		Detail:   detail,
		AssetID:  assetID,
	}
}
