// Package parse implements the recursive-descent parser consumed by the
// CLI driver: syntactic validation of the scanner's token stream into an
// internal/ir.Block. Every syntax error is collected rather than failing
// fast, so a single invocation reports everything wrong with a file at
// once.
package parse

import (
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sarahluan11/iloclab/internal/ir"
	"github.com/sarahluan11/iloclab/internal/scan"
	"github.com/sarahluan11/iloclab/internal/token"
)

// Parser turns a scanned token stream into an IR block, collecting every
// syntax error it encounters into one aggregate.
type Parser struct {
	s    *scan.Scanner
	cur  token.Token
	errs *multierror.Error
}

// New returns a Parser reading tokens from s.
func New(s *scan.Scanner) *Parser {
	p := &Parser{s: s}
	p.advance()
	return p
}

func (p *Parser) advance() { p.cur = p.s.Next() }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = multierror.Append(p.errs, errors.Errorf("line %d: "+format, append([]interface{}{p.cur.Line}, args...)...))
}

// atLineEnd skips to the next EOL/EOF, flagging any extra token found.
func (p *Parser) atLineEnd() {
	if p.cur.Category != token.EOL && p.cur.Category != token.EOF {
		p.errorf("extra token %q at end of line", p.cur.Lexeme)
		for p.cur.Category != token.EOL && p.cur.Category != token.EOF {
			p.advance()
		}
	}
}

func (p *Parser) expectRegister() (int, bool) {
	if p.cur.Category != token.Register {
		p.errorf("expected register, got %q", p.cur.Lexeme)
		return 0, false
	}
	n, _ := strconv.Atoi(p.cur.Lexeme)
	p.advance()
	return n, true
}

func (p *Parser) expectConst() (int, bool) {
	if p.cur.Category != token.Const {
		p.errorf("expected constant, got %q", p.cur.Lexeme)
		return 0, false
	}
	n, _ := strconv.Atoi(p.cur.Lexeme)
	p.advance()
	return n, true
}

func (p *Parser) expect(cat token.Category, what string) bool {
	if p.cur.Category != cat {
		p.errorf("expected %s, got %q", what, p.cur.Lexeme)
		return false
	}
	p.advance()
	return true
}

// Parse consumes the entire token stream and returns the resulting block,
// and a non-nil error only if the aggregate error list is non-empty.
func (p *Parser) Parse() (*ir.Block, error) {
	b := ir.NewBlock()
	for p.cur.Category != token.EOF {
		if p.cur.Category == token.EOL {
			p.advance()
			continue
		}
		p.parseInstruction(b)
	}
	if p.errs != nil {
		return b, p.errs.ErrorOrNil()
	}
	return b, nil
}

func (p *Parser) parseInstruction(b *ir.Block) {
	switch p.cur.Category {
	case token.MemOp:
		p.parseMemOp(b)
	case token.LoadIOp:
		p.parseLoadI(b)
	case token.ArithOp:
		p.parseArithOp(b)
	case token.OutputOp:
		p.parseOutput(b)
	case token.NopOp:
		p.advance()
		b.Append(ir.Nop)
		p.atLineEnd()
	default:
		p.errorf("unexpected token %q", p.cur.Lexeme)
		p.advance()
	}
}

func (p *Parser) parseMemOp(b *ir.Block) {
	opcode := ir.Load
	if p.cur.Lexeme == "store" {
		opcode = ir.Store
	}
	p.advance()
	src, ok1 := p.expectRegister()
	ok2 := p.expect(token.Into, "'=>'")
	dst, ok3 := p.expectRegister()
	if ok1 && ok2 && ok3 {
		op := b.Append(opcode)
		op.Arg1.Sr = src
		op.Arg3.Sr = dst
	}
	p.atLineEnd()
}

func (p *Parser) parseLoadI(b *ir.Block) {
	p.advance()
	c, ok1 := p.expectConst()
	ok2 := p.expect(token.Into, "'=>'")
	dst, ok3 := p.expectRegister()
	if ok1 && ok2 && ok3 {
		op := b.Append(ir.LoadI)
		op.Arg1.Sr = c
		op.Arg3.Sr = dst
	}
	p.atLineEnd()
}

var arithOpcodes = map[string]ir.Opcode{
	"add": ir.Add, "sub": ir.Sub, "mult": ir.Mult, "lshift": ir.Lshift, "rshift": ir.Rshift,
}

func (p *Parser) parseArithOp(b *ir.Block) {
	opcode := arithOpcodes[p.cur.Lexeme]
	p.advance()
	r1, ok1 := p.expectRegister()
	ok2 := p.expect(token.Comma, "','")
	r2, ok3 := p.expectRegister()
	ok4 := p.expect(token.Into, "'=>'")
	dst, ok5 := p.expectRegister()
	if ok1 && ok2 && ok3 && ok4 && ok5 {
		op := b.Append(opcode)
		op.Arg1.Sr = r1
		op.Arg2.Sr = r2
		op.Arg3.Sr = dst
	}
	p.atLineEnd()
}

func (p *Parser) parseOutput(b *ir.Block) {
	p.advance()
	c, ok := p.expectConst()
	if ok {
		op := b.Append(ir.Output)
		op.Arg1.Sr = c
	}
	p.atLineEnd()
}
