// Package grid holds the pure electrical-continuity solver and the
// switching-interlock rule engine. Both are side-effect free so the same
// code serves pre-flight validation and authoritative enforcement.
package grid

import "github.com/Peptide90/SubstationMimicSim-sub000/internal/model"

// Node is one diagram element as the solver sees it.
type Node struct {
	ID     string
	Kind   model.AssetKind
	Closed bool // breakers, disconnectors, earth switches
	On     bool // sources
}

// Result holds the reachability sets of one solver pass.
type Result struct {
	Nodes map[string]bool
	Edges map[string]bool
}

// NodeIDs returns the energized node ids as a slice (unspecified order).
func (r Result) NodeIDs() []string { return keys(r.Nodes) }

// EdgeIDs returns the energized edge ids as a slice (unspecified order).
func (r Result) EdgeIDs() []string { return keys(r.Edges) }

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// conductsLive reports whether live current propagates through the node.
// Earth switches never conduct for live-circuit propagation.
func conductsLive(n Node) bool {
	switch n.Kind {
	case model.AssetSource:
		return n.On
	case model.AssetBreaker, model.AssetDisconnector:
		return n.Closed
	case model.AssetEarthSwitch:
		return false
	default:
		return true
	}
}

// conductsGround reports whether a ground reference propagates through the
// node. A closed earth switch is itself the ground seed; galvanic elements
// pass ground regardless of the source on-flag.
func conductsGround(n Node) bool {
	switch n.Kind {
	case model.AssetBreaker, model.AssetDisconnector, model.AssetEarthSwitch:
		return n.Closed
	default:
		return true
	}
}

// Solve computes the energized node and edge sets: a multi-source BFS
// seeded at every switched-on source, continuing only through conducting
// nodes. An edge incident to an energized node is energized even when the
// far side does not conduct. The result is a pure function of the inputs
// and independent of iteration order.
func Solve(nodes []Node, edges []model.Edge) Result {
	seeds := make([]string, 0, 1)
	for _, n := range nodes {
		if n.Kind == model.AssetSource && n.On {
			seeds = append(seeds, n.ID)
		}
	}
	return traverse(nodes, edges, seeds, conductsLive)
}

// Grounded computes which nodes and edges are connected to a ground
// reference, seeded at every closed earth switch. Structurally the same
// traversal as Solve; the two passes share no mutable state.
func Grounded(nodes []Node, edges []model.Edge) Result {
	seeds := make([]string, 0, 1)
	for _, n := range nodes {
		if n.Kind == model.AssetEarthSwitch && n.Closed {
			seeds = append(seeds, n.ID)
		}
	}
	return traverse(nodes, edges, seeds, conductsGround)
}

func traverse(nodes []Node, edges []model.Edge, seeds []string, conducts func(Node) bool) Result {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	adj := make(map[string][]model.Edge, len(nodes))
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e)
		adj[e.To] = append(adj[e.To], e)
	}

	res := Result{Nodes: make(map[string]bool), Edges: make(map[string]bool)}
	queue := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if _, ok := byID[id]; ok && !res.Nodes[id] {
			res.Nodes[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			res.Edges[e.ID] = true
			other := e.From
			if other == cur {
				other = e.To
			}
			n, ok := byID[other]
			if !ok || res.Nodes[other] {
				continue
			}
			if conducts(n) {
				res.Nodes[other] = true
				queue = append(queue, other)
			}
		}
	}
	return res
}
