// Package scenario loads and validates declarative exercise content.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// LoadFile reads and validates one scenario JSON file.
func LoadFile(path string) (*model.Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var sc model.Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := Validate(&sc); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks structural integrity of scenario content. The scheduler
// assumes events pre-sorted by at_sec and never re-sorts; out-of-order
// content is reported here as a content error, not corrected at runtime.
func Validate(sc *model.Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if sc.DurationSec <= 0 {
		return fmt.Errorf("duration_sec must be > 0")
	}
	if len(sc.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	ids := make(map[string]bool, len(sc.Assets))
	for _, a := range sc.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset with empty id")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate asset id %q", a.ID)
		}
		ids[a.ID] = true
	}
	for _, e := range sc.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("edge %q references unknown asset", e.ID)
		}
	}
	for _, r := range sc.Rules {
		if r.AssetID != "" && !ids[r.AssetID] {
			return fmt.Errorf("rule %q references unknown asset %q", r.ID, r.AssetID)
		}
		for _, c := range r.Conditions {
			if !ids[c.AssetID] {
				return fmt.Errorf("rule %q condition references unknown asset %q", r.ID, c.AssetID)
			}
		}
		for _, g := range r.Group {
			if !ids[g] {
				return fmt.Errorf("rule %q group references unknown asset %q", r.ID, g)
			}
		}
	}
	prev := 0
	for i, ev := range sc.Events {
		if ev.AtSec < 0 {
			return fmt.Errorf("event %d: negative at_sec", i)
		}
		if ev.AtSec < prev {
			return fmt.Errorf("event %d: at_sec %d out of order (previous %d); events must be pre-sorted", i, ev.AtSec, prev)
		}
		prev = ev.AtSec
		if ev.AssetID != "" && !ids[ev.AssetID] {
			return fmt.Errorf("event %d references unknown asset %q", i, ev.AssetID)
		}
	}
	return nil
}

// Sample returns a minimal runnable scenario, used by the scenario CLI to
// emit a skeleton file for exercise authors.
func Sample() *model.Scenario {
	return &model.Scenario{
		ID:          "sample-basic",
		Name:        "Single feeder basics",
		DurationSec: 600,
		Assets: []model.ScenarioAsset{
			{ID: "S1", Name: "Grid infeed", Kind: model.AssetSource, InitialStatus: model.StatusClosed},
			{ID: "CB1", Name: "Feeder breaker", Kind: model.AssetBreaker, InitialStatus: model.StatusClosed, RemoteControllable: true},
			{ID: "B1", Name: "Main busbar", Kind: model.AssetBusbar, InitialStatus: model.StatusClosed},
			{ID: "DS1", Name: "Transformer disconnector", Kind: model.AssetDisconnector, InitialStatus: model.StatusClosed},
			{ID: "ES1", Name: "Bus earth switch", Kind: model.AssetEarthSwitch, InitialStatus: model.StatusOpen},
			{
				ID: "TX1", Name: "Transformer T1", Kind: model.AssetTransformer, InitialStatus: model.StatusClosed,
				Telemetry: model.Telemetry{model.ChannelOil: 62, model.ChannelGas: 4, model.ChannelWindingTemp: 55},
				Thresholds: map[model.Channel]model.Limits{
					model.ChannelOil:         {LockoutLow: 10, Low: 30, High: 80, HighHigh: 95},
					model.ChannelGas:         {LockoutLow: -1, Low: 0, High: 40, HighHigh: 70},
					model.ChannelWindingTemp: {High: 90, HighHigh: 110},
				},
			},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "S1", To: "CB1"},
			{ID: "e2", From: "CB1", To: "B1"},
			{ID: "e3", From: "B1", To: "DS1"},
			{ID: "e4", From: "DS1", To: "TX1"},
			{ID: "e5", From: "B1", To: "ES1"},
		},
		Rules: []model.Rule{
			{
				ID: "es-needs-dead-bus", Type: model.RuleForbids,
				AssetID: "ES1", Target: model.StatusClosed,
				Conditions: []model.RuleCondition{{AssetID: "CB1", Status: model.StatusClosed}},
				Message:    "cannot earth the bus while CB1 is closed",
			},
			{
				ID: "cb-needs-ds", Type: model.RuleRequires,
				AssetID: "CB1", Target: model.StatusClosed,
				Conditions: []model.RuleCondition{{AssetID: "DS1", Status: model.StatusClosed}},
				Message:    "close DS1 before closing CB1",
			},
		},
		Events: []model.ScenarioEvent{
			{AtSec: 30, Type: model.EventNote, Summary: "Shift handover complete", Severity: model.SeverityLow},
			{AtSec: 120, Type: model.EventTelemetry, AssetID: "TX1", Channel: model.ChannelWindingTemp, Value: 95},
			{AtSec: 180, Type: model.EventDBI, AssetID: "TX1", Set: true},
			{AtSec: 240, Type: model.EventRemoteFailure, AssetID: "CB1", Set: true},
			{AtSec: 300, Type: model.EventFrequency, DeltaHz: -0.4},
			{AtSec: 420, Type: model.EventAlarm, AssetID: "TX1", Severity: model.SeverityHigh,
				Summary: "Buchholz gas accumulation", Detail: "Gas relay stage 1 on TX1; inspect on site.", Points: 5},
		},
	}
}
