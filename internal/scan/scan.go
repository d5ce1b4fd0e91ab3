// Package scan implements the lexical scanner consumed by internal/parse,
// grounded on original_source's hand-rolled character-class scanner:
// keywords and register/constant lexemes are recognized by simple
// character-class loops, not a generated lexer.
package scan

import (
	"bufio"
	"io"
	"unicode"

	"github.com/sarahluan11/iloclab/internal/token"
)

// Scanner yields one token.Token at a time from an input stream.
type Scanner struct {
	r    *bufio.Reader
	line int
}

// New returns a Scanner reading from r.
func New(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r), line: 1}
}

func (s *Scanner) peek() rune {
	c, _, err := s.r.ReadRune()
	if err != nil {
		return 0
	}
	_ = s.r.UnreadRune()
	return c
}

func (s *Scanner) next() rune {
	c, _, err := s.r.ReadRune()
	if err != nil {
		return 0
	}
	return c
}

// Next returns the next token, skipping whitespace other than newlines
// (each newline is its own EOL token, since the source is line-oriented)
// and comments introduced by "//" to end of line.
func (s *Scanner) Next() token.Token {
	for {
		c := s.peek()
		if c == 0 {
			return token.Token{Line: s.line, Category: token.EOF, Lexeme: ""}
		}
		if c == '\n' {
			s.next()
			line := s.line
			s.line++
			return token.Token{Line: line, Category: token.EOL, Lexeme: "\\n"}
		}
		if unicode.IsSpace(c) {
			s.next()
			continue
		}
		if c == '/' {
			s.next()
			if s.peek() == '/' {
				for s.peek() != '\n' && s.peek() != 0 {
					s.next()
				}
				continue
			}
			return token.Token{Line: s.line, Category: token.Invalid, Lexeme: "/"}
		}
		break
	}

	line := s.line
	c := s.peek()

	switch {
	case c == ',':
		s.next()
		return token.Token{Line: line, Category: token.Comma, Lexeme: ","}
	case c == '=':
		s.next()
		if s.peek() == '>' {
			s.next()
			return token.Token{Line: line, Category: token.Into, Lexeme: "=>"}
		}
		return token.Token{Line: line, Category: token.Invalid, Lexeme: "="}
	case c == 'r' && unicode.IsDigit(s.peekAfter()):
		s.next()
		digits := s.scanDigits()
		return token.Token{Line: line, Category: token.Register, Lexeme: digits}
	case unicode.IsDigit(c):
		digits := s.scanDigits()
		return token.Token{Line: line, Category: token.Const, Lexeme: digits}
	case unicode.IsLetter(c):
		word := s.scanWord()
		if cat, ok := token.Keywords[word]; ok {
			return token.Token{Line: line, Category: cat, Lexeme: word}
		}
		return token.Token{Line: line, Category: token.Invalid, Lexeme: word}
	default:
		s.next()
		return token.Token{Line: line, Category: token.Invalid, Lexeme: string(c)}
	}
}

// peekAfter looks at the rune after the current one, without consuming
// either. Used only to disambiguate a bare "r" identifier from an "rN"
// register lexeme.
func (s *Scanner) peekAfter() rune {
	b, err := s.r.Peek(2)
	if err != nil || len(b) < 2 {
		return 0
	}
	return rune(b[1])
}

func (s *Scanner) scanDigits() string {
	var buf []rune
	for unicode.IsDigit(s.peek()) {
		buf = append(buf, s.next())
	}
	return string(buf)
}

func (s *Scanner) scanWord() string {
	var buf []rune
	for {
		c := s.peek()
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		buf = append(buf, s.next())
	}
	return string(buf)
}
