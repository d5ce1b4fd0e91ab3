package ir

// Operation is one ILOC instruction: opcode, three operand slots, its
// neighbors in the block, and its source line number.
type Operation struct {
	Opcode     Opcode
	Arg1       Operand
	Arg2       Operand
	Arg3       Operand
	LineNumber int

	prev, next *Operation
}

func (op *Operation) reset() {
	op.Opcode = Nop
	op.Arg1 = newOperand()
	op.Arg2 = newOperand()
	op.Arg3 = newOperand()
	op.LineNumber = 0
	op.prev, op.next = nil, nil
}

// Prev returns the preceding operation in program order, or nil at the head.
func (op *Operation) Prev() *Operation { return op.prev }

// Next returns the following operation in program order, or nil at the tail.
func (op *Operation) Next() *Operation { return op.next }

// DefOperand returns the defining operand of this instruction and true, or
// (nil, false) if this opcode defines no register (store, output, nop).
// store's arg3 is a USE (the destination address), never a def.
func (op *Operation) DefOperand() (*Operand, bool) {
	if op.Opcode.Arg3IsDef() {
		return &op.Arg3, true
	}
	return nil, false
}

// UseOperands returns the use operands of this instruction in the
// canonical order arg1, arg2, then arg3-if-store, skipping constant slots
// (loadI/output's arg1).
func (op *Operation) UseOperands() []*Operand {
	var uses []*Operand
	role := op.Opcode
	if role.Arg1Role() && !role.Arg1IsConst() {
		uses = append(uses, &op.Arg1)
	}
	if role.Arg2Role() {
		uses = append(uses, &op.Arg2)
	}
	if role.Arg3IsUse() {
		uses = append(uses, &op.Arg3)
	}
	return uses
}

// String renders the operation in a debug-friendly textual form; it is not
// the canonical pretty-printer (internal/render owns that), but it is handy
// in test failures and logging.
func (op *Operation) String() string {
	return op.Opcode.String()
}
