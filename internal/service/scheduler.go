package service

import "github.com/Peptide90/SubstationMimicSim-sub000/internal/model"

// scheduler walks a pre-sorted scenario event list with a monotonic cursor.
// Dispatch order is the declared list order; events are assumed sorted by
// AtSec (enforced at content load, not here) and each fires at most once.
type scheduler struct {
	events []model.ScenarioEvent
	cursor int
}

func newScheduler(events []model.ScenarioEvent) *scheduler {
	return &scheduler{events: events}
}

// due returns every not-yet-dispatched event whose scheduled time is at or
// before elapsedSec, advancing the cursor past them. The cursor never
// rewinds.
func (s *scheduler) due(elapsedSec int) []model.ScenarioEvent {
	start := s.cursor
	for s.cursor < len(s.events) && s.events[s.cursor].AtSec <= elapsedSec {
		s.cursor++
	}
	return s.events[start:s.cursor]
}

// reset rewinds the cursor to zero (scenario reload or restart).
func (s *scheduler) reset() { s.cursor = 0 }

func (s *scheduler) pending() int { return len(s.events) - s.cursor }
