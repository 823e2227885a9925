package service

import (
	"fmt"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// computeAwards scans per-player statistics and selects the strictly
// highest scorer per category; ties resolve to the first player
// encountered in join order (no stronger tie-break is defined). The two
// GM-discretionary awards reflect whatever the GM most recently selected.
func computeAwards(players []*model.Player, gm model.SetGMAwardsPayload) []model.Award {
	var out []model.Award

	if w := pickMin(players, func(p *model.Player) int { return p.Stats.FirstRestoreSec }); w != nil {
		out = append(out, award(model.AwardFastestRestore, w, fmt.Sprintf("%ds", w.Stats.FirstRestoreSec)))
	}
	if w := pickMax(players, func(p *model.Player) int { return p.Stats.Restores }); w != nil {
		out = append(out, award(model.AwardMostRestores, w, fmt.Sprintf("%d", w.Stats.Restores)))
	}
	if w := pickMax(players, func(p *model.Player) int { return p.Stats.AlarmsAcked }); w != nil {
		out = append(out, award(model.AwardAlarmWatch, w, fmt.Sprintf("%d", w.Stats.AlarmsAcked)))
	}
	if w := pickMax(players, func(p *model.Player) int { return p.Stats.Inspections }); w != nil {
		out = append(out, award(model.AwardMostInspections, w, fmt.Sprintf("%d", w.Stats.Inspections)))
	}
	if w := pickMax(players, func(p *model.Player) int { return p.Stats.PlannerRequests }); w != nil {
		out = append(out, award(model.AwardBestPlanning, w, fmt.Sprintf("%d", w.Stats.PlannerRequests)))
	}

	if gm.BestSwitchingInstruction != "" {
		if p := findPlayer(players, gm.BestSwitchingInstruction); p != nil {
			out = append(out, award(model.AwardBestSwitching, p, ""))
		}
	}
	if gm.BestCommunication != "" {
		if p := findPlayer(players, gm.BestCommunication); p != nil {
			out = append(out, award(model.AwardBestComms, p, ""))
		}
	}
	return out
}

// pickMax returns the first player with the highest positive stat value.
func pickMax(players []*model.Player, stat func(*model.Player) int) *model.Player {
	var best *model.Player
	bestVal := 0
	for _, p := range players {
		if v := stat(p); v > bestVal {
			best, bestVal = p, v
		}
	}
	return best
}

// pickMin returns the first player with the lowest non-negative stat value.
func pickMin(players []*model.Player, stat func(*model.Player) int) *model.Player {
	var best *model.Player
	bestVal := -1
	for _, p := range players {
		v := stat(p)
		if v < 0 {
			continue
		}
		if best == nil || v < bestVal {
			best, bestVal = p, v
		}
	}
	return best
}

func findPlayer(players []*model.Player, id string) *model.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func award(category string, p *model.Player, value string) model.Award {
	return model.Award{Category: category, PlayerID: p.ID, PlayerName: p.Name, Value: value}
}
