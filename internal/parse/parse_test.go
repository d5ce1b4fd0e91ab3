package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarahluan11/iloclab/internal/ir"
	"github.com/sarahluan11/iloclab/internal/scan"
)

func parseString(src string) (*ir.Block, error) {
	return New(scan.New(strings.NewReader(src))).Parse()
}

func TestParse_MinimalBlock(t *testing.T) {
	b, err := parseString("loadI 1024 => r1\nloadI 4 => r2\nadd r1, r2 => r3\noutput 1024\n")
	require.NoError(t, err)

	ops := b.Operations()
	require.Len(t, ops, 4)
	require.Equal(t, ir.LoadI, ops[0].Opcode)
	require.Equal(t, 1024, ops[0].Arg1.Sr)
	require.Equal(t, 1, ops[0].Arg3.Sr)
	require.Equal(t, ir.Add, ops[2].Opcode)
	require.Equal(t, 1, ops[2].Arg1.Sr)
	require.Equal(t, 2, ops[2].Arg2.Sr)
	require.Equal(t, 3, ops[2].Arg3.Sr)
	require.Equal(t, ir.Output, ops[3].Opcode)
	require.Equal(t, 1024, ops[3].Arg1.Sr)
}

func TestParse_StoreAndNop(t *testing.T) {
	b, err := parseString("store r1 => r2\nnop\n")
	require.NoError(t, err)

	ops := b.Operations()
	require.Len(t, ops, 2)
	require.Equal(t, ir.Store, ops[0].Opcode)
	require.Equal(t, 1, ops[0].Arg1.Sr)
	require.Equal(t, 2, ops[0].Arg3.Sr)
	require.Equal(t, ir.Nop, ops[1].Opcode)
}

func TestParse_CollectsMultipleErrors(t *testing.T) {
	_, err := parseString("add r1, => r3\nstore r1\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "errors occurred")
	require.Contains(t, err.Error(), "line 1")
	require.Contains(t, err.Error(), "line 2")
}

func TestParse_MissingArrowIsReported(t *testing.T) {
	_, err := parseString("loadI 5 r1\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}
