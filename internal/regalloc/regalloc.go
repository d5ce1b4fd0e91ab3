// Package regalloc implements a bottom-up local register allocator: a
// single forward pass over an already-renamed IR block that binds
// virtual registers to a budget of k physical registers, spilling into a
// reserved memory area on demand.
//
// The allocation strategy here is Belady's farthest-next-use heuristic
// applied within one basic block, not the interference-graph coloring
// wazero's global allocator performs — but the bookkeeping vocabulary
// (VR/PR maps, a free-register stack, spill slots keyed by VR) is the same
// shape as wazero's regalloc.Allocator, scaled down to a single block.
package regalloc

import (
	"github.com/pkg/errors"

	"github.com/sarahluan11/iloclab/internal/ir"
)

// spillBase is the first byte address reserved for spill storage.
const spillBase = 32768

// spillSlotSize is the size in bytes of one spill slot.
const spillSlotSize = 4

// RegName renders a physical register index the way the CLI's printer
// expects, e.g. r0, r1, ....
func RegName(pr int) string {
	return "r" + itoa(pr)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Allocator holds the per-invocation allocator state.
type Allocator struct {
	k int

	vrToPR map[int]int
	prToVR []int
	prToNU []int
	free   []int // LIFO free-PR stack

	vrSpillSlot     map[int]int
	nextSpillOffset int

	spillReg int // ir.None if k >= MAXLIVE
	mark     int // ir.None at the start of each instruction

	block *ir.Block
}

// NewAllocator constructs an allocator targeting k physical registers.
func NewAllocator(k int) *Allocator {
	return &Allocator{k: k}
}

// Allocate rewrites every operand's Pr field in b and splices spill/
// restore operations into the list, given the renamer's reported maxLive.
// b must already hold renamed IR (every non-constant operand has Vr/NextUse
// populated).
func (a *Allocator) Allocate(b *ir.Block, maxLive int) error {
	a.block = b
	a.vrToPR = make(map[int]int)
	a.prToVR = make([]int, a.k)
	a.prToNU = make([]int, a.k)
	a.vrSpillSlot = make(map[int]int)
	a.nextSpillOffset = spillBase
	a.spillReg = ir.None

	if a.k < maxLive {
		a.spillReg = a.k - 1
	}
	for pr := 0; pr < a.k; pr++ {
		a.prToVR[pr] = ir.None
		a.prToNU[pr] = ir.Infinity
	}
	a.free = nil
	for pr := a.k - 1; pr >= 0; pr-- {
		if pr == a.spillReg {
			continue
		}
		a.free = append(a.free, pr)
	}

	for _, op := range b.Operations() {
		if err := a.allocateOne(op); err != nil {
			return err
		}
	}
	return nil
}

func (a *Allocator) allocateOne(op *ir.Operation) error {
	a.mark = ir.None

	uses := op.UseOperands()
	for i, u := range uses {
		if pr, bound := a.vrToPR[u.Vr]; bound {
			u.Pr = pr
			a.prToNU[pr] = u.NextUse
		} else {
			pr, err := a.getPR(op, u.Vr, u.NextUse)
			if err != nil {
				return err
			}
			if slot, spilled := a.vrSpillSlot[u.Vr]; spilled {
				a.emitRestore(op, pr, slot)
			}
			u.Pr = pr
		}
		if i == 0 {
			a.mark = u.Pr
		}
	}

	for _, u := range uses {
		if !u.HasNextUse() {
			a.freePR(u.Pr, u.Vr)
		}
	}

	if def, ok := op.DefOperand(); ok {
		pr, err := a.getPR(op, def.Vr, def.NextUse)
		if err != nil {
			return err
		}
		def.Pr = pr
	}
	return nil
}

// getPR binds vr to a physical register: pop a free PR, or spill a victim
// and reuse its now-free PR.
func (a *Allocator) getPR(before *ir.Operation, vr, nu int) (int, error) {
	var pr int
	if n := len(a.free); n > 0 {
		pr = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		victim, err := a.chooseSpillPR()
		if err != nil {
			return 0, err
		}
		a.emitSpill(before, victim)
		pr = victim
	}
	a.vrToPR[vr] = pr
	a.prToVR[pr] = vr
	a.prToNU[pr] = nu
	return pr, nil
}

// chooseSpillPR implements CHOOSE_SPILL_PR: farthest-next-use among every
// PR except SpillReg and Mark, ties broken by lowest PR index.
func (a *Allocator) chooseSpillPR() (int, error) {
	best, bestNU := ir.None, -1
	for pr := 0; pr < a.k; pr++ {
		if pr == a.spillReg || pr == a.mark {
			continue
		}
		nu := a.prToNU[pr]
		if nu > bestNU {
			best, bestNU = pr, nu
		}
	}
	if best == ir.None {
		return 0, errors.New("regalloc: no eligible spill candidate (every physical register is reserved or marked)")
	}
	return best, nil
}

// emitSpill implements "Spill emission": given victim PR p currently
// holding VR v, insert a loadI/store pair immediately before `before` and
// unbind v and p. The caller (getPR) immediately reuses p without pushing
// it onto the free stack.
func (a *Allocator) emitSpill(before *ir.Operation, victim int) {
	vr := a.prToVR[victim]
	slot, spilled := a.vrSpillSlot[vr]
	if !spilled {
		slot = a.nextSpillOffset
		a.nextSpillOffset += spillSlotSize
		a.vrSpillSlot[vr] = slot
	}

	materialize := a.block.InsertBefore(before, ir.LoadI)
	materialize.Arg1 = constOperand(slot)
	materialize.Arg3 = prOperand(a.spillReg)

	store := a.block.InsertBefore(before, ir.Store)
	store.Arg1 = prOperand(victim)
	store.Arg3 = prOperand(a.spillReg)

	delete(a.vrToPR, vr)
	a.prToVR[victim] = ir.None
	a.prToNU[victim] = ir.Infinity
}

// emitRestore implements "Restore emission": VR freshly re-bound to pr with
// prior spill slot.
func (a *Allocator) emitRestore(before *ir.Operation, pr, slot int) {
	materialize := a.block.InsertBefore(before, ir.LoadI)
	materialize.Arg1 = constOperand(slot)
	materialize.Arg3 = prOperand(a.spillReg)

	restore := a.block.InsertBefore(before, ir.Load)
	restore.Arg1 = prOperand(a.spillReg)
	restore.Arg3 = prOperand(pr)
}

func (a *Allocator) freePR(pr, vr int) {
	delete(a.vrToPR, vr)
	a.prToVR[pr] = ir.None
	a.prToNU[pr] = ir.Infinity
	a.free = append(a.free, pr)
}

func constOperand(v int) ir.Operand {
	return ir.Operand{Sr: v, Vr: ir.None, Pr: ir.None, NextUse: ir.Infinity}
}

func prOperand(pr int) ir.Operand {
	return ir.Operand{Sr: ir.None, Vr: ir.None, Pr: pr, NextUse: ir.Infinity}
}

// CheckConsistency is a test-only invariant checker: every VR→PR/PR→VR
// pair is mutual, no PR is simultaneously free and bound, SpillReg is
// never bound, and no VR is ever bound to SpillReg.
func (a *Allocator) CheckConsistency() error {
	for vr, pr := range a.vrToPR {
		if a.prToVR[pr] != vr {
			return errors.Errorf("regalloc: VR %d bound to PR %d, but PR %d holds VR %d", vr, pr, pr, a.prToVR[pr])
		}
		if pr == a.spillReg {
			return errors.Errorf("regalloc: VR %d bound to reserved spill register PR %d", vr, pr)
		}
	}
	for pr, vr := range a.prToVR {
		if vr == ir.None {
			continue
		}
		if bound, ok := a.vrToPR[vr]; !ok || bound != pr {
			return errors.Errorf("regalloc: PR %d holds VR %d, but VR %d is not bound to PR %d", pr, vr, vr, pr)
		}
	}
	freeSet := make(map[int]struct{}, len(a.free))
	for _, pr := range a.free {
		freeSet[pr] = struct{}{}
		if a.prToVR[pr] != ir.None {
			return errors.Errorf("regalloc: PR %d is on the free stack but still bound to VR %d", pr, a.prToVR[pr])
		}
	}
	if a.spillReg != ir.None {
		if _, free := freeSet[a.spillReg]; free {
			return errors.New("regalloc: SpillReg must never appear on the free stack")
		}
	}
	return nil
}
