package game

import (
	"sort"

	"github.com/slava-sh/agarcup/config"
)

// World is one tick's snapshot: observed when parsed from the engine,
// predicted when produced by the simulator.
//
// Eaten accumulates the keys of items consumed along a simulation branch so
// later predictor steps do not credit them twice. The map is shared between
// snapshots and copied on first write.
type World struct {
	Tick      int
	Mine      []Cell
	Food      []Pellet
	Ejections []Pellet
	Viruses   []Virus
	Enemies   []Enemy
	Eaten     map[uint64]struct{}
}

// SortMine orders own cells by mass descending, fast cells first among equal
// masses, so index 0 is the primary cell.
func (w *World) SortMine() {
	sort.SliceStable(w.Mine, func(i, j int) bool {
		if w.Mine[i].M != w.Mine[j].M {
			return w.Mine[i].M > w.Mine[j].M
		}
		return w.Mine[i].Fast && !w.Mine[j].Fast
	})
}

// Primary returns the largest own cell, or nil if the agent is dead.
func (w *World) Primary() *Cell {
	if len(w.Mine) == 0 {
		return nil
	}
	return &w.Mine[0]
}

// IsEaten reports whether the item with the given key was consumed on this
// branch.
func (w *World) IsEaten(key uint64) bool {
	if w.Eaten == nil {
		return false
	}
	_, ok := w.Eaten[key]
	return ok
}

// Command is one tick's output: the movement target, optionally with a split.
type Command struct {
	X     float64
	Y     float64
	Split bool
	Debug string
}

// Target returns the command's movement target.
func (c Command) Target() Point {
	return Point{X: c.X, Y: c.Y}
}

// NewCommand builds a movement command toward the target, clamped to the
// arena.
func NewCommand(cfg *config.Config, target Point) Command {
	return Command{
		X: clamp(target.X, 0, cfg.Game.Width),
		Y: clamp(target.Y, 0, cfg.Game.Height),
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
