package game

import (
	"math"

	"github.com/slava-sh/agarcup/config"
)

// Blob is anything circular with mass: a food pellet, a virus, a player cell.
type Blob struct {
	Point
	R float64
	M float64
}

// Cell is one of our own player cells.
type Cell struct {
	Blob
	ID   string
	V    Point
	Fast bool
	TTF  int
}

// Enemy is another player's cell, mass and radius as reported.
type Enemy struct {
	Blob
	ID  string
	Key uint64
}

// Pellet is a food or ejection item. The ID is synthesized from the rounded
// position, so it is stable across ticks for an item that does not move.
type Pellet struct {
	Blob
	ID uint64
}

// Virus is a stationary hazard that bursts large cells.
type Virus struct {
	Blob
	ID  string
	Key uint64
}

// Pellet kinds for synthetic id derivation.
const (
	KindFood     = 'F'
	KindEjection = 'E'
)

// PelletKey derives a stable id from the pellet kind and position rounded to
// one decimal. The id is opaque; only per-tick stability matters.
func PelletKey(kind byte, x, y float64) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	h = (h ^ uint64(kind)) * prime
	h = (h ^ uint64(int64(math.Round(x*10)))) * prime
	h = (h ^ uint64(int64(math.Round(y*10)))) * prime
	return h
}

// IDKey hashes a wire id string into the eaten-set key space.
func IDKey(id string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(id); i++ {
		h = (h ^ uint64(id[i])) * prime
	}
	return h
}

// canEat reports whether an eater of the given mass and extent captures the
// prey: the eater must outweigh the prey by the mass factor and cover its
// centre past the overlap threshold.
func canEat(cfg *config.Config, eater, prey Blob) bool {
	if eater.M <= prey.M*cfg.Game.MassEatFactor {
		return false
	}
	return eater.Dist(prey.Point)-prey.R*cfg.Derived.EatDepthFactor < eater.R
}

// MaxSpeed returns the speed cap for this cell's mass.
func (c *Cell) MaxSpeed(cfg *config.Config) float64 {
	return cfg.MaxSpeed(c.M)
}

// CanEat reports whether this cell captures the given blob.
func (c *Cell) CanEat(cfg *config.Config, prey Blob) bool {
	return canEat(cfg, c.Blob, prey)
}

// CanHurt is CanEat from the dangerous side.
func (c *Cell) CanHurt(cfg *config.Config, prey Blob) bool {
	return c.CanEat(cfg, prey)
}

// CanSee reports whether the blob lies inside this cell's vision circle. The
// circle is centred ahead of the cell, shifted along its velocity.
func (c *Cell) CanSee(cfg *config.Config, other Blob) bool {
	centre := c.Point.Add(c.V.WithLength(cfg.Game.VisShift))
	vision := c.R*cfg.Game.VisFactor + other.R
	return centre.QDist(other.Point) < vision*vision
}

// CanBurst reports whether this cell is large enough to burst on a virus.
func (c *Cell) CanBurst(cfg *config.Config) bool {
	if c.M < 2*cfg.Game.MinBurstMass {
		return false
	}
	return int(c.M/cfg.Game.MinBurstMass) > 1
}

// CanSplit reports whether this cell is large enough to split.
func (c *Cell) CanSplit(cfg *config.Config) bool {
	return c.M > cfg.Game.MinSplitMass
}

// CanEat reports whether this enemy captures the given blob.
func (e *Enemy) CanEat(cfg *config.Config, prey Blob) bool {
	return canEat(cfg, e.Blob, prey)
}

// CanHurt reports whether the virus bursts the given cell.
func (v *Virus) CanHurt(cfg *config.Config, c *Cell) bool {
	if c.R < v.R || !c.CanBurst(cfg) {
		return false
	}
	hurt := v.R*cfg.Game.RadHurtFactor + c.R
	return v.QDist(c.Point) < hurt*hurt
}
