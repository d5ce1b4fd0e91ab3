package regalloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarahluan11/iloclab/internal/ir"
	"github.com/sarahluan11/iloclab/internal/rename"
)

func buildBlock(rows [][4]int) *ir.Block {
	b := ir.NewBlock()
	for _, r := range rows {
		op := b.Append(ir.Opcode(r[0]))
		op.Arg1.Sr, op.Arg2.Sr, op.Arg3.Sr = r[1], r[2], r[3]
	}
	return b
}

// TestAllocate_NoSpillWhenKAtLeastMaxLive is end-to-end scenario 1: a
// minimal four-operation block with k=3 should allocate with no spill
// code and every PR drawn from {0,1,2}.
func TestAllocate_NoSpillWhenKAtLeastMaxLive(t *testing.T) {
	b := buildBlock([][4]int{
		{int(ir.LoadI), 1024, ir.None, 1},
		{int(ir.LoadI), 4, ir.None, 2},
		{int(ir.Add), 1, 2, 3},
		{int(ir.Output), 1024, ir.None, ir.None},
	})
	result := rename.Rename(b)
	require.Equal(t, 2, result.MaxLive)

	a := NewAllocator(3)
	require.NoError(t, a.Allocate(b, result.MaxLive))
	require.NoError(t, a.CheckConsistency())

	require.Equal(t, 4, b.Len(), "no spill/restore code should have been inserted")
	for _, op := range b.Operations() {
		for _, u := range op.UseOperands() {
			require.GreaterOrEqual(t, u.Pr, 0)
			require.Less(t, u.Pr, 3)
		}
		if def, ok := op.DefOperand(); ok {
			require.GreaterOrEqual(t, def.Pr, 0)
			require.Less(t, def.Pr, 3)
		}
	}
}

// TestAllocate_ForcedSpill is end-to-end scenario 2: five simultaneously
// live values with k=3 forces SpillReg = r2 and at least one spill/restore
// pair using strictly increasing 4-byte-spaced offsets starting at 32768.
func TestAllocate_ForcedSpill(t *testing.T) {
	b := buildBlock([][4]int{
		{int(ir.LoadI), 1, ir.None, 1},
		{int(ir.LoadI), 2, ir.None, 2},
		{int(ir.LoadI), 3, ir.None, 3},
		{int(ir.LoadI), 4, ir.None, 4},
		{int(ir.LoadI), 5, ir.None, 5},
		{int(ir.Add), 1, 2, 6},
		{int(ir.Add), 3, 4, 7},
		{int(ir.Add), 6, 7, 8},
		{int(ir.Add), 8, 5, 9},
		{int(ir.Output), 9, ir.None, ir.None},
	})
	result := rename.Rename(b)
	require.Equal(t, 5, result.MaxLive)

	a := NewAllocator(3)
	require.NoError(t, a.Allocate(b, result.MaxLive))
	require.NoError(t, a.CheckConsistency())
	require.Equal(t, 2, a.spillReg, "SpillReg must be k-1")

	// A restore re-materializes the same offset a prior spill already
	// claimed for that VR, so the sequence of slots as they appear in
	// program order is not itself monotonic — only the sequence of
	// *newly* allocated offsets (one per distinct VR, in the order each
	// was first spilled) is.
	var slots []int
	seenSlot := make(map[int]bool)
	sawSpillStore := false
	for _, op := range b.Operations() {
		if op.Opcode == ir.LoadI && op.Arg1.Sr >= 32768 {
			s := op.Arg1.Sr
			if !seenSlot[s] {
				seenSlot[s] = true
				slots = append(slots, s)
			}
		}
		if op.Opcode == ir.Store && op.Arg3.Pr == a.spillReg {
			sawSpillStore = true
		}
	}
	require.NotEmpty(t, slots, "at least one spill slot must have been materialised")
	require.True(t, sawSpillStore)
	for i, s := range slots {
		require.Equal(t, 32768+4*i, s, "distinct newly-allocated spill offsets must increase strictly by 4")
	}

	// The reserved SpillReg must never be assigned to a VR.
	for _, op := range b.Operations() {
		if def, ok := op.DefOperand(); ok && op.Opcode != ir.LoadI {
			require.NotEqual(t, a.spillReg, def.Pr)
		}
	}
}

// TestAllocate_FatalWhenNoEligibleSpillCandidate drives the allocator with
// k=1, below the CLI's enforced [3,64] range but still a valid way to
// exercise CHOOSE_SPILL_PR's fatal "no eligible spill candidate" path
// directly: reserving SpillReg leaves zero allocatable registers for two
// simultaneously live operands.
func TestAllocate_FatalWhenNoEligibleSpillCandidate(t *testing.T) {
	b := buildBlock([][4]int{
		{int(ir.Add), 1, 2, 3},
	})
	result := rename.Rename(b)

	a := NewAllocator(1)
	err := a.Allocate(b, result.MaxLive)
	require.Error(t, err)
}
