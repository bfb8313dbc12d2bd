// Package engine implements the one-tick world simulator the planner looks
// ahead with. Predict is pure: the next snapshot is computed from the config,
// the input snapshot, and the command alone.
package engine

import (
	"math"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
)

// Predict rolls the world forward one tick under the given command,
// reproducing the engine's order of effects: intent, shrink, eating, being
// eaten, virus collisions, radius refresh, split, movement, viscosity, fusion
// countdown, re-sort.
//
// Static collections (food, viruses, enemies) are shared with the input
// snapshot; consumed items are recorded in the eaten set instead of being
// removed.
func Predict(cfg *config.Config, w *game.World, cmd game.Command) *game.World {
	next := &game.World{
		Tick:      w.Tick + 1,
		Mine:      append([]game.Cell(nil), w.Mine...),
		Food:      w.Food,
		Ejections: w.Ejections,
		Viruses:   w.Viruses,
		Enemies:   w.Enemies,
		Eaten:     w.Eaten,
	}
	eatenCloned := false
	markEaten := func(key uint64) {
		if !eatenCloned {
			clone := make(map[uint64]struct{}, len(next.Eaten)+1)
			for k := range next.Eaten {
				clone[k] = struct{}{}
			}
			next.Eaten = clone
			eatenCloned = true
		}
		next.Eaten[key] = struct{}{}
	}

	applyIntent(cfg, next, cmd.Target())
	applyShrink(cfg, next)
	applyEating(cfg, next, markEaten)
	applyBeingEaten(cfg, next)
	applyViruses(cfg, next)
	refreshRadiusAndSpeed(cfg, next)
	if cmd.Split {
		applySplit(cfg, next)
	}
	applyMove(cfg, next)
	applyViscosity(cfg, next)
	for i := range next.Mine {
		if next.Mine[i].TTF > 0 {
			next.Mine[i].TTF--
		}
	}
	next.SortMine()
	return next
}

// applyIntent steers every non-fast cell toward the command target. Fast
// cells coast: they are only slowed by viscosity.
func applyIntent(cfg *config.Config, w *game.World, target game.Point) {
	for i := range w.Mine {
		c := &w.Mine[i]
		if c.Fast {
			continue
		}
		maxSpeed := c.MaxSpeed(cfg)
		desired := target.Sub(c.Point).Unit().Mul(maxSpeed)
		c.V = c.V.Add(desired.Sub(c.V).Mul(cfg.Game.InertionFactor / c.M))
		if c.V.Length() > maxSpeed {
			c.V = c.V.WithLength(maxSpeed)
		}
	}
}

func applyShrink(cfg *config.Config, w *game.World) {
	if cfg.Game.ShrinkEveryTick <= 0 || w.Tick%cfg.Game.ShrinkEveryTick != 0 {
		return
	}
	for i := range w.Mine {
		c := &w.Mine[i]
		if c.M > cfg.Game.MinShrinkMass {
			c.M -= (c.M - cfg.Game.MinShrinkMass) * cfg.Game.ShrinkFactor
		}
	}
}

// applyEating consumes food, then ejections, then smaller enemies. Each item
// goes to the nearest own cell able to eat it.
func applyEating(cfg *config.Config, w *game.World, markEaten func(uint64)) {
	eatPellets := func(pellets []game.Pellet) {
		for i := range pellets {
			p := &pellets[i]
			if w.IsEaten(p.ID) {
				continue
			}
			if c := nearestEater(cfg, w.Mine, p.Blob); c != nil {
				markEaten(p.ID)
				c.M += p.M
			}
		}
	}
	eatPellets(w.Food)
	eatPellets(w.Ejections)
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if w.IsEaten(e.Key) {
			continue
		}
		if c := nearestEater(cfg, w.Mine, e.Blob); c != nil {
			markEaten(e.Key)
			c.M += e.M
		}
	}
}

// nearestEater returns the cell closest to prey among those that can eat it.
func nearestEater(cfg *config.Config, cells []game.Cell, prey game.Blob) *game.Cell {
	var best *game.Cell
	bestQDist := math.Inf(1)
	for i := range cells {
		c := &cells[i]
		if !c.CanEat(cfg, prey) {
			continue
		}
		if q := c.QDist(prey.Point); q < bestQDist {
			best = c
			bestQDist = q
		}
	}
	return best
}

// applyBeingEaten removes own cells captured by larger enemies. The eaten
// mark on the enemy is not set: an enemy that ate us is still a danger.
func applyBeingEaten(cfg *config.Config, w *game.World) {
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if w.IsEaten(e.Key) {
			continue
		}
		victim := -1
		bestQDist := math.Inf(1)
		for j := range w.Mine {
			c := &w.Mine[j]
			if !e.CanEat(cfg, c.Blob) {
				continue
			}
			if q := e.QDist(c.Point); q < bestQDist {
				victim = j
				bestQDist = q
			}
		}
		if victim >= 0 {
			w.Mine = append(w.Mine[:victim], w.Mine[victim+1:]...)
		}
	}
}

// applyViruses kills the nearest burstable cell of each triggering virus.
// Fragmentation is not simulated; a burst is pessimistically a death.
func applyViruses(cfg *config.Config, w *game.World) {
	for i := range w.Viruses {
		v := &w.Viruses[i]
		victim := -1
		bestQDist := math.Inf(1)
		for j := range w.Mine {
			c := &w.Mine[j]
			if !c.CanBurst(cfg) {
				continue
			}
			if q := v.QDist(c.Point); q < bestQDist {
				victim = j
				bestQDist = q
			}
		}
		if victim >= 0 && v.CanHurt(cfg, &w.Mine[victim]) {
			w.Mine = append(w.Mine[:victim], w.Mine[victim+1:]...)
		}
	}
}

func refreshRadiusAndSpeed(cfg *config.Config, w *game.World) {
	for i := range w.Mine {
		c := &w.Mine[i]
		c.R = cfg.Radius(c.M)
		if !c.Fast {
			if maxSpeed := c.MaxSpeed(cfg); c.V.Length() > maxSpeed {
				c.V = c.V.WithLength(maxSpeed)
			}
		}
	}
}

// applySplit halves every splittable cell: one half keeps the parent's
// velocity, the other shoots forward at split speed and is fast until
// viscosity brings it back under its cap.
func applySplit(cfg *config.Config, w *game.World) {
	split := make([]game.Cell, 0, len(w.Mine))
	for _, c := range w.Mine {
		if !c.CanSplit(cfg) {
			split = append(split, c)
			continue
		}
		half := c.M / 2
		r := cfg.Radius(half)

		stay := c
		stay.ID = c.ID + "+1"
		stay.M = half
		stay.R = r
		stay.TTF = cfg.Game.TicksTilFusion

		flung := c
		flung.ID = c.ID + "+2"
		flung.M = half
		flung.R = r
		flung.V = game.FromPolar(cfg.Game.SplitStartSpeed, c.V.Angle())
		flung.Fast = true
		flung.TTF = cfg.Game.TicksTilFusion

		split = append(split, stay, flung)
	}
	w.Mine = split
}

func applyMove(cfg *config.Config, w *game.World) {
	for i := range w.Mine {
		c := &w.Mine[i]
		c.Point = c.Point.Add(c.V)
		c.X = clamp(c.X, c.R, cfg.Game.Width-c.R)
		c.Y = clamp(c.Y, c.R, cfg.Game.Height-c.R)
	}
}

// applyViscosity slows fast cells down to their mass-derived cap and clears
// the fast flag once they reach it.
func applyViscosity(cfg *config.Config, w *game.World) {
	for i := range w.Mine {
		c := &w.Mine[i]
		if !c.Fast {
			continue
		}
		speed := c.V.Length()
		maxSpeed := c.MaxSpeed(cfg)
		if speed-cfg.Game.Viscosity > maxSpeed {
			speed -= cfg.Game.Viscosity
		} else {
			speed = maxSpeed
			c.Fast = false
		}
		c.V = c.V.WithLength(speed)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
