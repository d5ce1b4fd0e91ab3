// Package token defines the lexical token shapes the scanner produces and
// the parser consumes.
package token

// Category is the lexical category of one scanned token.
type Category int

const (
	MemOp Category = iota
	LoadIOp
	ArithOp
	OutputOp
	NopOp
	Const
	Register
	Comma
	Into
	EOF
	EOL
	Invalid
)

var categoryNames = [...]string{
	MemOp: "MEMOP", LoadIOp: "LOADI", ArithOp: "ARITHOP", OutputOp: "OUTPUT",
	NopOp: "NOP", Const: "CONST", Register: "REG", Comma: "COMMA",
	Into: "INTO", EOF: "ENDFILE", EOL: "NEWLINE", Invalid: "INVALID",
}

func (c Category) String() string { return categoryNames[c] }

// Token is one scanned token: a line number, its category, and its lexeme.
// A Register lexeme is the bare digit string (no leading 'r').
type Token struct {
	Line     int
	Category Category
	Lexeme   string
}

// Keywords maps the ten fixed opcode spellings to their lexical category.
var Keywords = map[string]Category{
	"load": MemOp, "store": MemOp,
	"loadI": LoadIOp,
	"add":   ArithOp, "sub": ArithOp, "mult": ArithOp, "lshift": ArithOp, "rshift": ArithOp,
	"output": OutputOp,
	"nop":    NopOp,
}
