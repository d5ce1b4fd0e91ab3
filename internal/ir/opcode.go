package ir

import "math"

// None is the sentinel stored in an Operand's Sr/Vr/Pr slot when the slot
// holds no value. An empty NextUse slot holds Infinity instead.
const None = -1

// Infinity is the next-use sentinel meaning "no further use in the block".
// The spec calls for an ordinal sentinel rather than a floating value; we
// use math.MaxInt32 so NextUse remains comparable with plain '<'/'>'.
const Infinity = math.MaxInt32

// Opcode is a closed enumeration of the ten ILOC opcodes the core consumes.
type Opcode uint8

const (
	Load Opcode = iota
	Store
	LoadI
	Add
	Sub
	Mult
	Lshift
	Rshift
	Output
	Nop
)

func (o Opcode) String() string {
	return opcodeNames[o]
}

var opcodeNames = [...]string{
	Load: "load", Store: "store", LoadI: "loadI", Add: "add", Sub: "sub",
	Mult: "mult", Lshift: "lshift", Rshift: "rshift", Output: "output", Nop: "nop",
}

// role describes how one argument slot of an opcode is used.
type role uint8

const (
	roleNone role = iota
	roleUse
	roleDef
	roleConst
)

// argRoles answers "does argN play a use/def/constant role" without string
// comparisons scattered through each pass.
var argRoles = [...][3]role{
	LoadI:  {roleConst, roleNone, roleDef},
	Load:   {roleUse, roleNone, roleDef},
	Store:  {roleUse, roleNone, roleUse}, // arg3 is a USE (destination address), never a DEF
	Add:    {roleUse, roleUse, roleDef},
	Sub:    {roleUse, roleUse, roleDef},
	Mult:   {roleUse, roleUse, roleDef},
	Lshift: {roleUse, roleUse, roleDef},
	Rshift: {roleUse, roleUse, roleDef},
	Output: {roleConst, roleNone, roleNone},
	Nop:    {roleNone, roleNone, roleNone},
}

// Arg1Role and Arg2Role report whether the corresponding operand slot is a
// use for this opcode.
func (o Opcode) Arg1Role() bool { return argRoles[o][0] == roleUse }
func (o Opcode) Arg2Role() bool { return argRoles[o][1] == roleUse }

// Arg3IsDef reports whether arg3 is a defining operand for this opcode.
// Every opcode that writes a register writes it into arg3 (including
// loadI), except store, whose arg3 is a use: the destination address.
// output and nop leave arg3 unused.
func (o Opcode) Arg3IsDef() bool { return argRoles[o][2] == roleDef }

// Arg3IsUse reports whether arg3 is a use operand (true only for store).
func (o Opcode) Arg3IsUse() bool { return argRoles[o][2] == roleUse }

// Arg1IsConst reports whether arg1 holds an immediate constant rather than a
// register (loadI and output).
func (o Opcode) Arg1IsConst() bool { return argRoles[o][0] == roleConst }

// IsMemRead reports whether this opcode reads memory (load).
func (o Opcode) IsMemRead() bool { return o == Load }

// IsMemWrite reports whether this opcode writes memory (store).
func (o Opcode) IsMemWrite() bool { return o == Store }

// IsMemVisible reports whether this opcode has an externally visible
// effect that must stay ordered relative to other such effects (store,
// output).
func (o Opcode) IsMemVisible() bool { return o == Store || o == Output }

// Latency is the scheduling latency of this opcode in cycles.
func (o Opcode) Latency() int {
	switch o {
	case Load, Store:
		return 6
	case Mult:
		return 3
	default:
		return 1
	}
}
