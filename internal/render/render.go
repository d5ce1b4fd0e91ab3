// Package render pretty-prints IR blocks and schedules, and emits the
// debug dependence-graph .dot file. None of this is part of the core
// algorithms; it exists so the CLI driver has something to show for each
// stage, the way original_source/iloc_ir.py's
// print_instructions/print_renamed_ILOC did.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarahluan11/iloclab/internal/depgraph"
	"github.com/sarahluan11/iloclab/internal/ir"
	"github.com/sarahluan11/iloclab/internal/regalloc"
	"github.com/sarahluan11/iloclab/internal/schedule"
)

type regField func(ir.Operand) string

func srField(o ir.Operand) string { return "r" + strconv.Itoa(o.Sr) }
func vrField(o ir.Operand) string { return "r" + strconv.Itoa(o.Vr) }
func prField(o ir.Operand) string { return regalloc.RegName(o.Pr) }

func formatOperation(op *ir.Operation, reg regField) string {
	switch op.Opcode {
	case ir.Load:
		return fmt.Sprintf("load\t%s => %s", reg(op.Arg1), reg(op.Arg3))
	case ir.Store:
		return fmt.Sprintf("store\t%s => %s", reg(op.Arg1), reg(op.Arg3))
	case ir.LoadI:
		return fmt.Sprintf("loadI\t%d => %s", op.Arg1.Sr, reg(op.Arg3))
	case ir.Add, ir.Sub, ir.Mult, ir.Lshift, ir.Rshift:
		return fmt.Sprintf("%s\t%s, %s => %s", op.Opcode, reg(op.Arg1), reg(op.Arg2), reg(op.Arg3))
	case ir.Output:
		return fmt.Sprintf("output\t%d", op.Arg1.Sr)
	default: // nop
		return "nop"
	}
}

func printBlock(b *ir.Block, reg regField) string {
	var sb strings.Builder
	for _, op := range b.Operations() {
		sb.WriteString(formatOperation(op, reg))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Source prints the block using each operand's source-register numbering.
func Source(b *ir.Block) string { return printBlock(b, srField) }

// Renamed prints the block using each operand's virtual-register
// numbering.
func Renamed(b *ir.Block) string { return printBlock(b, vrField) }

// Allocated prints the block using each operand's physical-register
// numbering.
func Allocated(b *ir.Block) string { return printBlock(b, prField) }

// Schedule renders the emitted two-slot schedule: each cycle as
// "[ slot1 ; slot2 ]", an empty slot rendered as nop. Slots render with
// each operand's virtual-register numbering, since scheduling runs on
// renamed IR before (if ever) it passes through the allocator.
func Schedule(cycles []schedule.Cycle) string {
	var sb strings.Builder
	for _, c := range cycles {
		s1, s2 := "nop", "nop"
		if c.Slot1 != nil {
			s1 = formatOperation(c.Slot1, vrField)
		}
		if c.Slot2 != nil {
			s2 = formatOperation(c.Slot2, vrField)
		}
		fmt.Fprintf(&sb, "[ %s ; %s ]\n", s1, s2)
	}
	return sb.String()
}

// WriteDOT emits an adjacency-listed .dot file of the dependence graph.
func WriteDOT(g *depgraph.Graph, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph dependence {"); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", n.Index, n.Op.Opcode.String()); err != nil {
			return err
		}
	}
	for _, n := range g.Nodes {
		for _, e := range n.Deps {
			label := e.Kind.String()
			if e.Kind == depgraph.Data {
				label = fmt.Sprintf("data(vr=%d)", e.VR)
			}
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", n.Index, e.Node.Index, label); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
