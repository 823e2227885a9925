// Package threshold classifies continuous telemetry into discrete alarm
// levels with hysteresis-style edge triggering: a transition is reported
// once, never repeated while the level is sustained.
package threshold

import "github.com/Peptide90/SubstationMimicSim-sub000/internal/model"

// Level is the discrete alarm band of one telemetry channel.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelLow      Level = "low"
	LevelHigh     Level = "high"
	LevelHighHigh Level = "highHigh"
	LevelLockout  Level = "lockout"
)

// Safe floor/ceiling used by maintenance when an asset has no configured
// thresholds for a channel.
const (
	defaultSafeLevel = 55.0
	defaultSafeTemp  = 60.0
)

// IsTemperature reports whether the channel uses the two-band temperature
// ladder instead of the full level ladder.
func IsTemperature(ch model.Channel) bool {
	return ch == model.ChannelWindingTemp
}

// Classify maps a value to its level for the given channel and limits.
func Classify(ch model.Channel, value float64, limits model.Limits) Level {
	if IsTemperature(ch) {
		switch {
		case value >= limits.HighHigh:
			return LevelHighHigh
		case value >= limits.High:
			return LevelHigh
		default:
			return LevelNormal
		}
	}
	switch {
	case value <= limits.LockoutLow:
		return LevelLockout
	case value <= limits.Low:
		return LevelLow
	case value >= limits.HighHigh:
		return LevelHighHigh
	case value >= limits.High:
		return LevelHigh
	default:
		return LevelNormal
	}
}

// SafeValue returns the reset value maintenance applies to a channel:
// midway between the configured low and high bounds, or a hardcoded safe
// default when the channel has no limits.
func SafeValue(ch model.Channel, limits model.Limits, configured bool) float64 {
	if !configured {
		if IsTemperature(ch) {
			return defaultSafeTemp
		}
		return defaultSafeLevel
	}
	if IsTemperature(ch) {
		return limits.High - 10.0
	}
	return (limits.Low + limits.High) / 2.0
}

// Transition is one edge-triggered level change.
type Transition struct {
	AssetID string
	Channel model.Channel
	From    Level
	To      Level
}

// EnteredLockout reports whether this transition entered the lockout band.
func (t Transition) EnteredLockout() bool {
	return t.To == LevelLockout && t.From != LevelLockout
}

type key struct {
	asset   string
	channel model.Channel
}

// Evaluator keeps the per-asset per-channel last level and reports only
// transitions. Safe for single-room use; the owning room serializes calls.
type Evaluator struct {
	last map[key]Level
}

// NewEvaluator creates an empty evaluator; every channel starts at normal.
func NewEvaluator() *Evaluator {
	return &Evaluator{last: make(map[key]Level)}
}

// Evaluate classifies one sample and returns (transition, true) only when
// the level changed since the previous evaluation of that channel.
func (e *Evaluator) Evaluate(assetID string, ch model.Channel, value float64, limits model.Limits) (Transition, bool) {
	k := key{asset: assetID, channel: ch}
	prev, ok := e.last[k]
	if !ok {
		prev = LevelNormal
	}
	next := Classify(ch, value, limits)
	e.last[k] = next
	if next == prev {
		return Transition{}, false
	}
	return Transition{AssetID: assetID, Channel: ch, From: prev, To: next}, true
}

// Current returns the last evaluated level of a channel (normal if never
// evaluated).
func (e *Evaluator) Current(assetID string, ch model.Channel) Level {
	if lvl, ok := e.last[key{asset: assetID, channel: ch}]; ok {
		return lvl
	}
	return LevelNormal
}

// Reset forgets all evaluated levels (scenario reload).
func (e *Evaluator) Reset() {
	e.last = make(map[key]Level)
}
