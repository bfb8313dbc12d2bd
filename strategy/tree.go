package strategy

import (
	"math/rand"

	"github.com/slava-sh/agarcup/game"
)

// nodeID indexes into the tree's node slab. Nodes never hold pointers to each
// other, so re-rooting and resets are plain slice operations.
type nodeID int32

const noNode nodeID = -1

// node is one predicted future. commands is the per-edge command sequence
// that produced state from the parent's state.
type node struct {
	state    *game.World
	parent   nodeID
	commands []game.Command
	children []nodeID
	score    float64

	// Aggregates over the subtree rooted here, maintained on every insert:
	// subtreeSize = 1 + sum over children, subtreeScoreSum = score + sum
	// over children.
	subtreeScoreSum float64
	subtreeSize     int

	expandable bool
}

// tree is the planner's search tree: a slab of nodes, the current root, and
// the set of leaf tips eligible as movement targets.
type tree struct {
	nodes []node
	root  nodeID
	tips  map[nodeID]struct{}
}

// newTree creates a single-node tree rooted at the observed state.
func newTree(state *game.World, score float64) *tree {
	t := &tree{
		nodes: []node{{
			state:           state,
			parent:          noNode,
			score:           score,
			subtreeScoreSum: score,
			subtreeSize:     1,
			expandable:      true,
		}},
		root: 0,
		tips: map[nodeID]struct{}{0: {}},
	}
	return t
}

func (t *tree) node(id nodeID) *node {
	return &t.nodes[id]
}

// add inserts a child under parent and backpropagates its score and size up
// to the root. The parent stops being a tip; the child starts as one.
func (t *tree) add(parent nodeID, commands []game.Command, state *game.World, score float64, expandable bool) nodeID {
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		state:           state,
		parent:          parent,
		commands:        commands,
		score:           score,
		subtreeScoreSum: score,
		subtreeSize:     1,
		expandable:      expandable,
	})
	p := t.node(parent)
	p.children = append(p.children, id)
	delete(t.tips, parent)
	t.tips[id] = struct{}{}
	for anc := parent; anc != noNode; anc = t.node(anc).parent {
		t.node(anc).subtreeScoreSum += score
		t.node(anc).subtreeSize++
	}
	return id
}

// bestTip returns the highest-scoring tip, or noNode for an empty tip set.
// Ties break by slab order so identical runs pick identical tips.
func (t *tree) bestTip() nodeID {
	best := noNode
	bestScore := -1.0
	for id := range t.nodes {
		nid := nodeID(id)
		if _, ok := t.tips[nid]; !ok {
			continue
		}
		if s := t.nodes[id].score; s > bestScore {
			best = nid
			bestScore = s
		}
	}
	return best
}

// descend walks from the root toward an expandable node, choosing among
// children with probability proportional to the mean subtree score. All-zero
// weights fall back to the first child. Returns noNode when the walk dead-ends
// on an exhausted leaf.
func (t *tree) descend(rng *rand.Rand) nodeID {
	id := t.root
	for {
		n := t.node(id)
		if n.expandable {
			return id
		}
		if len(n.children) == 0 {
			return noNode
		}
		total := 0.0
		for _, child := range n.children {
			total += t.meanScore(child)
		}
		if total <= 0 {
			id = n.children[0]
			continue
		}
		r := rng.Float64() * total
		next := n.children[len(n.children)-1]
		for _, child := range n.children {
			r -= t.meanScore(child)
			if r <= 0 {
				next = child
				break
			}
		}
		id = next
	}
}

func (t *tree) meanScore(id nodeID) float64 {
	n := t.node(id)
	return n.subtreeScoreSum / float64(n.subtreeSize)
}

// advanceRoot promotes next to be the new root. Every sibling subtree is
// discarded: the surviving subtree is compacted into a fresh slab and the tip
// set is rebuilt, so dropped nodes are freed in bulk.
func (t *tree) advanceRoot(next nodeID) {
	old := t.nodes
	oldTips := t.tips
	t.nodes = make([]node, 0, old[next].subtreeSize)
	t.tips = make(map[nodeID]struct{})

	type frame struct {
		oldID  nodeID
		parent nodeID
	}
	stack := []frame{{oldID: next, parent: noNode}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := old[f.oldID]
		id := nodeID(len(t.nodes))
		copied := n
		copied.parent = f.parent
		copied.children = nil
		t.nodes = append(t.nodes, copied)
		if f.parent != noNode {
			p := t.node(f.parent)
			p.children = append(p.children, id)
		}
		if _, ok := oldTips[f.oldID]; ok {
			t.tips[id] = struct{}{}
		}
		// Push in reverse so children keep their original order.
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{oldID: n.children[i], parent: id})
		}
	}
	t.root = 0
	t.node(t.root).commands = nil
}
