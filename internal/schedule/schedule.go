// Package schedule implements a list scheduler: cycle-driven, two-wide
// issue over the dependence graph and its priorities, honoring per-cycle
// opcode-class caps for a load, a store (never in the same cycle as a
// load), and a mult.
//
// Readiness tracking uses an unsatisfied-dependency counter per node,
// decremented on each dependency's retirement, rather than an O(n)
// successor scan at every retirement.
package schedule

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarahluan11/iloclab/internal/depgraph"
	"github.com/sarahluan11/iloclab/internal/ir"
)

// Cycle is one emitted schedule entry: up to two operations issued
// together. A nil slot renders as nop.
type Cycle struct {
	Number int
	Slot1  *ir.Operation
	Slot2  *ir.Operation
}

type activeEntry struct {
	idx    int
	retire int
}

// Schedule runs the list scheduler over g and returns the emitted
// schedule. g's nodes must already carry priorities (internal/priority).
func Schedule(g *depgraph.Graph) ([]Cycle, error) {
	n := len(g.Nodes)
	unsatisfied := make([]int, n)
	ready := make(map[int]bool, n)
	for i, node := range g.Nodes {
		unsatisfied[i] = len(node.Deps)
		if unsatisfied[i] == 0 {
			ready[i] = true
		}
	}

	var active []activeEntry
	var out []Cycle
	cycle := 1
	scheduledCount := 0

	for len(ready) > 0 || len(active) > 0 {
		candidates := make([]int, 0, len(ready))
		for idx := range ready {
			candidates = append(candidates, idx)
		}
		sort.Slice(candidates, func(a, b int) bool {
			pa, pb := g.Nodes[candidates[a]].Priority, g.Nodes[candidates[b]].Priority
			if pa != pb {
				return pa > pb
			}
			return candidates[a] < candidates[b]
		})

		var chosen []int
		usedMemRead, usedMemWrite, usedMult := false, false, false
		for _, idx := range candidates {
			if len(chosen) == 2 {
				break
			}
			op := g.Nodes[idx].Op
			switch {
			case op.Opcode.IsMemRead():
				if usedMemRead || usedMemWrite {
					continue
				}
				usedMemRead = true
			case op.Opcode.IsMemWrite():
				if usedMemRead || usedMemWrite {
					continue
				}
				usedMemWrite = true
			case op.Opcode == ir.Mult:
				if usedMult {
					continue
				}
				usedMult = true
			}
			chosen = append(chosen, idx)
		}

		if len(chosen) == 0 && len(active) == 0 {
			return nil, errors.New("schedule: no ready operation could be issued but the block is not yet fully scheduled")
		}

		entry := Cycle{Number: cycle}
		for i, idx := range chosen {
			delete(ready, idx)
			op := g.Nodes[idx].Op
			retire := cycle + op.Opcode.Latency()
			active = append(active, activeEntry{idx: idx, retire: retire})
			if i == 0 {
				entry.Slot1 = op
			} else {
				entry.Slot2 = op
			}
			scheduledCount++
		}
		out = append(out, entry)

		cycle++

		var stillActive []activeEntry
		var justRetired []int
		for _, a := range active {
			if cycle >= a.retire {
				justRetired = append(justRetired, a.idx)
			} else {
				stillActive = append(stillActive, a)
			}
		}
		active = stillActive

		for _, idx := range justRetired {
			for _, p := range g.Nodes[idx].Dependents {
				unsatisfied[p.Index]--
				if unsatisfied[p.Index] == 0 {
					ready[p.Index] = true
				}
			}
		}
	}

	if scheduledCount != n {
		return nil, errors.Errorf("schedule: scheduled %d operations, expected %d", scheduledCount, n)
	}
	return out, nil
}
