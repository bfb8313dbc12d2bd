// Package arena is a headless sparring world for the strategy: a miniature,
// self-consistent engine with pellets and one bot, enough to drive the full
// planner loop offline. The tuner scores parameter candidates with it and the
// end-to-end tests exercise the strategy against it.
package arena

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
)

// Position is an entity's world position.
type Position struct {
	X float64
	Y float64
}

// Velocity is a bot cell's velocity.
type Velocity struct {
	X float64
	Y float64
}

// Body is a bot cell's circular extent and mass.
type Body struct {
	R float64
	M float64
}

// Pellet is a food item's extent and mass. Pellets have no Velocity or Body,
// which is what tells the filters apart.
type Pellet struct {
	R float64
	M float64
}

// CommandSource produces one command per tick; the planner satisfies it.
type CommandSource interface {
	Tick(w *game.World) game.Command
}

// Arena holds the ECS world and the systems stepping it.
type Arena struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	tick  int

	botFilter    ecs.Filter3[Position, Velocity, Body]
	pelletFilter ecs.Filter2[Position, Pellet]
}

// New creates an arena with one bot cell at the centre and the given number
// of pellets at seeded-random positions.
func New(cfg *config.Config, pellets int, botMass float64, seed int64) *Arena {
	world := ecs.NewWorld()
	a := &Arena{
		cfg:          cfg,
		world:        world,
		rng:          rand.New(rand.NewSource(seed)),
		botFilter:    *ecs.NewFilter3[Position, Velocity, Body](world),
		pelletFilter: *ecs.NewFilter2[Position, Pellet](world),
	}

	botMapper := ecs.NewMap3[Position, Velocity, Body](world)
	botMapper.NewEntity(
		&Position{X: cfg.Game.Width / 2, Y: cfg.Game.Height / 2},
		&Velocity{},
		&Body{R: cfg.Radius(botMass), M: botMass},
	)

	pelletMapper := ecs.NewMap2[Position, Pellet](world)
	for i := 0; i < pellets; i++ {
		x, y := a.randomSpot()
		pelletMapper.NewEntity(
			&Position{X: x, Y: y},
			&Pellet{R: cfg.Game.FoodRadius, M: cfg.Game.FoodMass},
		)
	}
	return a
}

func (a *Arena) randomSpot() (float64, float64) {
	return a.rng.Float64() * a.cfg.Game.Width, a.rng.Float64() * a.cfg.Game.Height
}

// Snapshot builds the strategy's view of the arena.
func (a *Arena) Snapshot() *game.World {
	w := &game.World{Tick: a.tick}

	bots := a.botFilter.Query()
	for bots.Next() {
		pos, vel, body := bots.Get()
		w.Mine = append(w.Mine, game.Cell{
			Blob: game.Blob{Point: game.Pt(pos.X, pos.Y), R: body.R, M: body.M},
			ID:   "1",
			V:    game.Pt(vel.X, vel.Y),
		})
	}

	pellets := a.pelletFilter.Query()
	for pellets.Next() {
		pos, pellet := pellets.Get()
		w.Food = append(w.Food, game.Pellet{
			Blob: game.Blob{Point: game.Pt(pos.X, pos.Y), R: pellet.R, M: pellet.M},
			ID:   game.PelletKey(game.KindFood, pos.X, pos.Y),
		})
	}

	w.SortMine()
	return w
}

// Step advances the arena one tick: ask the source for a command, steer and
// move the bot, feed it pellets in reach (eaten pellets respawn elsewhere),
// and apply mass decay on the shrink cadence.
func (a *Arena) Step(source CommandSource) {
	cmd := source.Tick(a.Snapshot())
	target := cmd.Target()

	bots := a.botFilter.Query()
	for bots.Next() {
		pos, vel, body := bots.Get()
		a.steer(pos, vel, body, target)
		pos.X += vel.X
		pos.Y += vel.Y
		pos.X = clamp(pos.X, body.R, a.cfg.Game.Width-body.R)
		pos.Y = clamp(pos.Y, body.R, a.cfg.Game.Height-body.R)
	}

	a.feed()
	a.tick++
	if a.cfg.Game.ShrinkEveryTick > 0 && a.tick%a.cfg.Game.ShrinkEveryTick == 0 {
		a.shrink()
	}
}

// steer applies the engine's inertial movement rule.
func (a *Arena) steer(pos *Position, vel *Velocity, body *Body, target game.Point) {
	maxSpeed := a.cfg.MaxSpeed(body.M)
	v := game.Pt(vel.X, vel.Y)
	desired := target.Sub(game.Pt(pos.X, pos.Y)).Unit().Mul(maxSpeed)
	v = v.Add(desired.Sub(v).Mul(a.cfg.Game.InertionFactor / body.M))
	if v.Length() > maxSpeed {
		v = v.WithLength(maxSpeed)
	}
	vel.X = v.X
	vel.Y = v.Y
}

func (a *Arena) feed() {
	type respawn struct {
		pos *Position
	}
	var eaten []respawn

	bots := a.botFilter.Query()
	for bots.Next() {
		botPos, _, botBody := bots.Get()
		eater := game.Blob{Point: game.Pt(botPos.X, botPos.Y), R: botBody.R, M: botBody.M}

		pellets := a.pelletFilter.Query()
		for pellets.Next() {
			pos, pellet := pellets.Get()
			prey := game.Blob{Point: game.Pt(pos.X, pos.Y), R: pellet.R, M: pellet.M}
			if eats(a.cfg, eater, prey) {
				botBody.M += pellet.M
				botBody.R = a.cfg.Radius(botBody.M)
				eater.M = botBody.M
				eater.R = botBody.R
				eaten = append(eaten, respawn{pos: pos})
			}
		}
	}

	// Respawn after the queries are drained: density stays constant.
	for _, e := range eaten {
		e.pos.X, e.pos.Y = a.randomSpot()
	}
}

func (a *Arena) shrink() {
	bots := a.botFilter.Query()
	for bots.Next() {
		_, _, body := bots.Get()
		if body.M > a.cfg.Game.MinShrinkMass {
			body.M -= (body.M - a.cfg.Game.MinShrinkMass) * a.cfg.Game.ShrinkFactor
			body.R = a.cfg.Radius(body.M)
		}
	}
}

// eats mirrors the capture predicate without building a Cell.
func eats(cfg *config.Config, eater, prey game.Blob) bool {
	if eater.M <= prey.M*cfg.Game.MassEatFactor {
		return false
	}
	return eater.Dist(prey.Point)-prey.R*cfg.Derived.EatDepthFactor < eater.R
}

// TotalMass sums the bot's mass, the rollout fitness.
func (a *Arena) TotalMass() float64 {
	total := 0.0
	bots := a.botFilter.Query()
	for bots.Next() {
		_, _, body := bots.Get()
		total += body.M
	}
	return total
}

// Run steps the arena for the given number of ticks and returns the final
// total mass.
func (a *Arena) Run(source CommandSource, ticks int) float64 {
	for i := 0; i < ticks; i++ {
		a.Step(source)
	}
	return a.TotalMass()
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
