// Package depgraph builds the dependence graph over a renamed IR block: a
// DAG over the operations encoding data, memory-conflict, and
// memory-serialisation edges, with edges pointing from a reader/later
// operation to the producer/earlier operation it depends on.
//
// The adjacency-list-of-typed-edges representation, and the idiom of
// building the predecessor/successor index once during the same forward
// pass, is adapted from wazero's SSA control-flow passes
// (internal/engine/wazevo/ssa/pass_cfg.go), generalized from CFG edges
// between basic blocks down to data/memory edges between instructions in
// one block.
package depgraph

import "github.com/sarahluan11/iloclab/internal/ir"

// EdgeKind distinguishes the three edge flavors the graph builder emits.
type EdgeKind int

const (
	Data EdgeKind = iota
	Conflict
	Serial
)

func (k EdgeKind) String() string {
	switch k {
	case Data:
		return "data"
	case Conflict:
		return "conflict"
	case Serial:
		return "serial"
	default:
		return "unknown"
	}
}

// Edge is one typed dependence edge, from the node holding it to Node.
type Edge struct {
	Kind EdgeKind
	VR   int // valid only when Kind == Data; ir.None otherwise
	Node *Node
}

// Node wraps one operation with its dependence edges, in both directions:
// Deps is "what this node depends on" (the original DAG, reader->producer);
// Dependents is its reverse, "what depends on this node" — used by the
// priority computer and by the scheduler's release-on-retire step.
type Node struct {
	Op         *ir.Operation
	Index      int
	Deps       []Edge
	Dependents []*Node

	// Priority is filled in by internal/priority; zero until then.
	Priority int
}

// IsLeaf reports whether this node depends on nothing — a node with no
// outgoing edges in the original DAG, ready to schedule first.
func (n *Node) IsLeaf() bool { return len(n.Deps) == 0 }

// IsRoot reports whether nothing depends on this node — a node with no
// predecessors in the original DAG, i.e. no successors in the transpose.
// This is the base case of the priority recursion.
func (n *Node) IsRoot() bool { return len(n.Dependents) == 0 }

// Graph is the dependence graph of one IR block, in program order.
type Graph struct {
	Nodes []*Node
}

// Build runs a single forward pass over b, which must already be renamed
// (every use/def operand carries a Vr).
func Build(b *ir.Block) *Graph {
	ops := b.Operations()
	g := &Graph{Nodes: make([]*Node, len(ops))}
	for i, op := range ops {
		g.Nodes[i] = &Node{Op: op, Index: i}
	}

	lastDef := make(map[int]*Node)
	var lastMemOps []*Node

	addEdge := func(from *Node, kind EdgeKind, vr int, to *Node) {
		from.Deps = append(from.Deps, Edge{Kind: kind, VR: vr, Node: to})
		to.Dependents = append(to.Dependents, from)
	}

	for i, op := range ops {
		n := g.Nodes[i]

		// Register definitions before uses: record LastDef first so a
		// self-use/def pattern in the same instruction, were one to
		// arise, would be handled predictably.
		if def, ok := op.DefOperand(); ok {
			lastDef[def.Vr] = n
		}
		for _, u := range op.UseOperands() {
			if producer, ok := lastDef[u.Vr]; ok {
				addEdge(n, Data, u.Vr, producer)
			}
		}

		// Memory conflict edges: RAW via memory, load/output against
		// every prior store.
		if op.Opcode.IsMemRead() || op.Opcode == ir.Output {
			for _, m := range lastMemOps {
				if m.Op.Opcode == ir.Store {
					addEdge(n, Conflict, ir.None, m)
				}
			}
		}

		// Memory serialisation edges: store-store and output-output
		// ordering only. A store is never serial with a later output:
		// that pair is a conflict edge instead (possible aliasing, not
		// program-order visibility).
		if op.Opcode == ir.Store {
			for _, m := range lastMemOps {
				if m.Op.Opcode == ir.Store {
					addEdge(n, Serial, ir.None, m)
				}
			}
		}
		if op.Opcode == ir.Output {
			for _, m := range lastMemOps {
				if m.Op.Opcode == ir.Output {
					addEdge(n, Serial, ir.None, m)
				}
			}
		}

		if op.Opcode.IsMemVisible() {
			lastMemOps = append(lastMemOps, n)
		}
	}

	return g
}
