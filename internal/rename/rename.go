// Package rename implements the renamer: one backward pass over a
// straight-line IR block that rewrites source registers into virtual
// registers, records next-use distances, and reports MAXLIVE.
package rename

import "github.com/sarahluan11/iloclab/internal/ir"

// Result is what one renaming pass reports back to the caller: how many
// distinct virtual registers it assigned, and the block's MAXLIVE.
type Result struct {
	VRCount int
	MaxLive int
}

// Rename rewrites b in place and returns the renaming result. It assumes
// the block has already been validated by the parser; an sr that is used
// but never defined is legal and gets a fresh VR with nu equal to its
// first-use index.
func Rename(b *ir.Block) Result {
	srToVR := make(map[int]int)
	lastUse := make(map[int]int)
	nextVR := 0
	live := 0
	maxLive := 0

	bumpLive := func() {
		live++
		if live > maxLive {
			maxLive = live
		}
	}
	nextUseOf := func(sr int) int {
		if nu, ok := lastUse[sr]; ok {
			return nu
		}
		return ir.Infinity
	}

	for _, op := range b.ReverseOperations() {
		idx := op.LineNumber

		// Step 1: the defining operand, processed before uses so that a
		// value is considered defined by this instruction before its
		// next-use becomes irrelevant to the live set above it.
		if def, ok := op.DefOperand(); ok {
			sr := def.Sr
			vr, existed := srToVR[sr]
			if !existed {
				vr = nextVR
				nextVR++
				bumpLive()
			}
			def.Vr = vr
			def.NextUse = nextUseOf(sr)
			delete(srToVR, sr)
			delete(lastUse, sr)
			live--
		}

		// Step 2: use operands, in canonical order arg1, arg2, then
		// store's arg3.
		uses := op.UseOperands()
		for _, u := range uses {
			sr := u.Sr
			vr, existed := srToVR[sr]
			if !existed {
				vr = nextVR
				nextVR++
				srToVR[sr] = vr
				bumpLive()
			}
			u.Vr = vr
			u.NextUse = nextUseOf(sr)
		}

		// Step 3: record this instruction as the most recent use of every
		// sr it uses, after all uses of this instruction have been
		// recorded (so repeated operands, e.g. add r1,r1=>r3, agree).
		for _, u := range uses {
			lastUse[u.Sr] = idx
		}
	}

	return Result{VRCount: nextVR, MaxLive: maxLive}
}
