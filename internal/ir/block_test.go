package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlock_AppendAndIterate(t *testing.T) {
	b := NewBlock()
	op1 := b.Append(LoadI)
	op1.Arg1.Sr = 1024
	op1.Arg3.Sr = 1
	op2 := b.Append(Output)
	op2.Arg1.Sr = 1024

	require.Equal(t, 2, b.Len())
	require.Equal(t, op1, b.Head())
	require.Equal(t, op2, b.Tail())
	require.Nil(t, op1.Prev())
	require.Equal(t, op2, op1.Next())
	require.Equal(t, op1, op2.Prev())
	require.Nil(t, op2.Next())

	fwd := b.Operations()
	require.Equal(t, []*Operation{op1, op2}, fwd)
	rev := b.ReverseOperations()
	require.Equal(t, []*Operation{op2, op1}, rev)
}

func TestBlock_InsertBefore(t *testing.T) {
	b := NewBlock()
	op1 := b.Append(LoadI)
	op2 := b.Append(Add)

	inserted := b.InsertBefore(op2, Store)
	require.Equal(t, []*Operation{op1, inserted, op2}, b.Operations())
	require.Equal(t, op1, inserted.Prev())
	require.Equal(t, op2, inserted.Next())

	// Inserting before the head must update Block.Head.
	head := b.InsertBefore(op1, Nop)
	require.Equal(t, head, b.Head())
	require.Nil(t, head.Prev())
	require.Equal(t, op1, head.Next())
}

func TestBlock_MaxSourceRegister(t *testing.T) {
	b := NewBlock()
	add := b.Append(Add)
	add.Arg1.Sr = 2
	add.Arg2.Sr = 5
	add.Arg3.Sr = 3

	require.Equal(t, 5, b.MaxSourceRegister())
}

func TestOperation_DefAndUseOperands(t *testing.T) {
	b := NewBlock()
	store := b.Append(Store)
	store.Arg1.Sr = 1
	store.Arg3.Sr = 2

	_, hasDef := store.DefOperand()
	require.False(t, hasDef, "store defines no register")

	uses := store.UseOperands()
	require.Len(t, uses, 2)
	require.Equal(t, 1, uses[0].Sr)
	require.Equal(t, 2, uses[1].Sr)

	add := b.Append(Add)
	add.Arg1.Sr = 1
	add.Arg2.Sr = 2
	add.Arg3.Sr = 3
	def, hasDef := add.DefOperand()
	require.True(t, hasDef)
	require.Equal(t, 3, def.Sr)
	require.Len(t, add.UseOperands(), 2)
}
