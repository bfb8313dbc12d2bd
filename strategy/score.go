// Package strategy implements the lookahead planner: an incrementally
// re-rooted tree of predicted world states scored by a utility function.
package strategy

import (
	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
)

// Score rates a predicted snapshot. Mass dominates; momentum earns a small
// reward; hugging a wall costs a margin penalty per axis. Any live danger
// able to hurt an own cell zeroes the whole node, as does death.
func Score(cfg *config.Config, w *game.World) float64 {
	if len(w.Mine) == 0 {
		return 0
	}
	if inDanger(cfg, w) {
		return 0
	}
	total := 0.0
	for i := range w.Mine {
		c := &w.Mine[i]
		total += c.M + c.V.Length()*cfg.Planner.SpeedReward + safetyPenalty(cfg, c)
	}
	if total < 0 {
		return 0
	}
	return total
}

// safetyPenalty charges for each axis where the cell sits within its scaled
// radius of a wall.
func safetyPenalty(cfg *config.Config, c *game.Cell) float64 {
	margin := c.R * cfg.Planner.SafetyMarginFactor
	penalty := 0.0
	if c.X < margin || c.X > cfg.Game.Width-margin {
		penalty += cfg.Planner.SafetyMarginPenalty
	}
	if c.Y < margin || c.Y > cfg.Game.Height-margin {
		penalty += cfg.Planner.SafetyMarginPenalty
	}
	return penalty
}

func inDanger(cfg *config.Config, w *game.World) bool {
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if w.IsEaten(e.Key) {
			continue
		}
		for j := range w.Mine {
			if e.CanEat(cfg, w.Mine[j].Blob) {
				return true
			}
		}
	}
	for i := range w.Viruses {
		v := &w.Viruses[i]
		if w.IsEaten(v.Key) {
			continue
		}
		for j := range w.Mine {
			if v.CanHurt(cfg, &w.Mine[j]) {
				return true
			}
		}
	}
	return false
}
