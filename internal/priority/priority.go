// Package priority computes the latency-weighted longest-path priority of
// every node in a dependence graph, used by the list scheduler to choose
// among ready operations.
package priority

import "github.com/sarahluan11/iloclab/internal/depgraph"

// Compute fills in Priority on every node of g: the latency-weighted
// longest path from this node to any root of the transposed graph, via
// memoised recursion: priority(n) = latency(n) + max(priority(p) for p in
// Dependents(n)), with max over the empty set equal to 0.
func Compute(g *depgraph.Graph) {
	computed := make([]bool, len(g.Nodes))

	var rec func(n *depgraph.Node) int
	rec = func(n *depgraph.Node) int {
		if computed[n.Index] {
			return n.Priority
		}
		best := 0
		for _, p := range n.Dependents {
			if v := rec(p); v > best {
				best = v
			}
		}
		n.Priority = n.Op.Opcode.Latency() + best
		computed[n.Index] = true
		return n.Priority
	}

	for _, n := range g.Nodes {
		rec(n)
	}
}
