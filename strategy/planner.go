package strategy

import (
	"io"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/engine"
	"github.com/slava-sh/agarcup/game"
)

// expandAngles are the candidate directions of a single expansion, relative
// to the primary cell's velocity angle.
var expandAngles = [...]float64{0, math.Pi / 2, -math.Pi / 2, math.Pi}

// Planner maintains the search tree across ticks and produces one command
// per tick. It owns the tree exclusively.
type Planner struct {
	cfg *config.Config
	rng *rand.Rand
	log *logrus.Logger

	tree     *tree
	nextRoot nodeID
	commands []game.Command

	lastTarget    game.Point
	lastSplitTick int
}

// New creates a planner. The seed makes the weighted tip descent
// reproducible: identical seeds and inputs give identical outputs.
func New(cfg *config.Config, seed int64, log *logrus.Logger) *Planner {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Planner{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		log:           log,
		nextRoot:      noNode,
		lastSplitTick: -1 << 30,
	}
}

// Tick consumes the observed snapshot and returns the command to play.
func (p *Planner) Tick(w *game.World) game.Command {
	if len(w.Mine) == 0 {
		cmd := game.NewCommand(p.cfg, p.lastTarget)
		cmd.Debug = "dead"
		return cmd
	}

	p.syncRoot(w)

	for i := 0; i < p.cfg.Planner.ExpansionsPerTick; i++ {
		p.expandOnce()
	}

	if len(p.commands) == 0 {
		p.commit(w)
	}

	cmd := p.commands[0]
	p.commands = p.commands[1:]
	p.lastTarget = cmd.Target()
	return cmd
}

// TreeSize returns the current node count, for telemetry.
func (p *Planner) TreeSize() int {
	if p.tree == nil {
		return 0
	}
	return len(p.tree.nodes)
}

// Tips returns the current tip count, for telemetry.
func (p *Planner) Tips() int {
	if p.tree == nil {
		return 0
	}
	return len(p.tree.tips)
}

// BestScore returns the best tip score, for telemetry.
func (p *Planner) BestScore() float64 {
	if p.tree == nil {
		return 0
	}
	best := p.tree.bestTip()
	if best == noNode {
		return 0
	}
	return p.tree.node(best).score
}

// BestPath returns the primary-cell positions along the best branch, for
// debug drawing.
func (p *Planner) BestPath() []game.Point {
	if p.tree == nil {
		return nil
	}
	id := p.tree.bestTip()
	if id == noNode {
		return nil
	}
	var path []game.Point
	for ; id != noNode; id = p.tree.node(id).parent {
		if primary := p.tree.node(id).state.Primary(); primary != nil {
			path = append(path, primary.Point)
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// syncRoot reconciles the tree with the observed snapshot: reset when
// prediction has diverged beyond RootEps (and nothing is committed), advance
// the root when the committed next root has become the better anchor.
func (p *Planner) syncRoot(w *game.World) {
	obs := w.Primary().Point

	diverged := false
	var rootDist float64
	if p.tree != nil {
		rootPrimary := p.tree.node(p.tree.root).state.Primary()
		if rootPrimary == nil {
			diverged = true
		} else {
			rootDist = rootPrimary.QDist(obs)
			diverged = rootDist > p.cfg.Derived.RootEpsSq
		}
	}
	if p.tree == nil || (diverged && len(p.commands) == 0) {
		p.reset(w)
		return
	}

	if p.nextRoot != noNode {
		if nextPrimary := p.tree.node(p.nextRoot).state.Primary(); nextPrimary != nil {
			if nextPrimary.QDist(obs) < rootDist {
				p.tree.advanceRoot(p.nextRoot)
				p.nextRoot = noNode
				p.log.WithFields(logrus.Fields{
					"tick":  w.Tick,
					"nodes": len(p.tree.nodes),
				}).Debug("advanced root")
			}
		}
	}
}

// reset discards the tree and starts over from the observed snapshot.
func (p *Planner) reset(w *game.World) {
	if p.tree != nil {
		p.log.WithField("tick", w.Tick).Debug("root reset")
	}
	p.tree = newTree(w, Score(p.cfg, w))
	p.nextRoot = noNode
	p.commands = p.commands[:0]
}

// skips returns how many engine ticks one tree edge spans: a heavier, slower
// primary covers the skip distance in more ticks.
func (p *Planner) skips(primary *game.Cell) int {
	n := int(p.cfg.Planner.SkipDistance / primary.MaxSpeed(p.cfg))
	if n < 1 {
		n = 1
	}
	return n
}

// expandOnce descends to an expandable node and grows four children from it,
// one per candidate direction.
func (p *Planner) expandOnce() {
	id := p.tree.descend(p.rng)
	if id == noNode {
		return
	}
	p.expand(id)
}

func (p *Planner) expand(id nodeID) {
	n := p.tree.node(id)
	if !n.expandable {
		panic("strategy: expanding a non-expandable node")
	}
	n.expandable = false

	primary := n.state.Primary()
	if primary == nil {
		// Dead branch; nothing to grow.
		return
	}
	baseAngle := primary.V.Angle()
	skips := p.skips(primary)

	for _, da := range expandAngles {
		v := game.FromPolar(p.cfg.Game.SpeedFactor, baseAngle+da)
		cmd := game.NewCommand(p.cfg, primary.Point.Add(v))
		commands := make([]game.Command, skips)
		for i := range commands {
			commands[i] = cmd
		}
		state := n.state
		for range commands {
			state = engine.Predict(p.cfg, state, cmd)
		}
		p.tree.add(id, commands, state, Score(p.cfg, state), true)
		n = p.tree.node(id) // re-fetch: add may grow the slab
	}
}

// commit chooses the best tip, locks in the branch's first edge as the next
// root, queues its commands, and seeds fresh discovery chains from it.
func (p *Planner) commit(w *game.World) {
	best := p.tree.bestTip()
	if best == noNode || best == p.tree.root {
		// Nowhere to go yet; hold position.
		cmd := game.NewCommand(p.cfg, w.Primary().Point)
		cmd.Debug = "no tips"
		p.commands = append(p.commands, cmd)
		return
	}

	next := best
	for p.tree.node(next).parent != p.tree.root {
		next = p.tree.node(next).parent
	}
	p.nextRoot = next

	commands := append([]game.Command(nil), p.tree.node(next).commands...)
	if len(commands) > 0 && p.shouldSplit(w) {
		commands[0].Split = true
		p.lastSplitTick = w.Tick
	}
	p.commands = append(p.commands, commands...)

	p.seedDiscovery(next)
}

// shouldSplit gates the split flag: the primary must be splittable and the
// previous split far enough in the past.
func (p *Planner) shouldSplit(w *game.World) bool {
	return w.Primary().CanSplit(p.cfg) &&
		w.Tick-p.lastSplitTick >= p.cfg.Planner.SplitInterval
}

// seedDiscovery grows straight probe chains in evenly spaced directions from
// the committed next root. A chain extends while the anchor primary still
// sees the predicted position and the step actually moved; only nodes deep
// enough are eligible for later expansion.
func (p *Planner) seedDiscovery(from nodeID) {
	anchor := p.tree.node(from).state.Primary()
	if anchor == nil {
		return
	}
	anchorCell := *anchor

	for k := 0; k < p.cfg.Planner.DiscoveryAngles; k++ {
		angle := 2 * math.Pi * float64(k) / float64(p.cfg.Planner.DiscoveryAngles)
		parent := from
		state := p.tree.node(from).state
		depth := 0
		for {
			primary := state.Primary()
			if primary == nil {
				break
			}
			v := game.FromPolar(p.cfg.Game.SpeedFactor, angle)
			cmd := game.NewCommand(p.cfg, primary.Point.Add(v))
			skips := p.skips(primary)
			commands := make([]game.Command, skips)
			for i := range commands {
				commands[i] = cmd
			}
			next := state
			for range commands {
				next = engine.Predict(p.cfg, next, cmd)
			}
			nextPrimary := next.Primary()
			if nextPrimary == nil {
				break
			}
			if nextPrimary.Dist(primary.Point) < p.cfg.Planner.RootEps {
				break
			}
			if !anchorCell.CanSee(p.cfg, nextPrimary.Blob) {
				break
			}
			depth++
			expandable := depth > p.cfg.Planner.MinExpansionDepth
			parent = p.tree.add(parent, commands, next, Score(p.cfg, next), expandable)
			state = next
		}
	}
}
