// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner tokenizes source files for the compiler to consume. The
// scanner never fails; lexical errors are reported as ILLEGAL tokens whose
// literal value carries the error message, and it is up to the consumer to
// turn those into compilation errors.
package scanner

import (
	"go/scanner"

	"github.com/mna/nppc2/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// Scanner tokenizes a source buffer. The zero value is not usable, call Init
// first. A Scanner may be reused for multiple sources by calling Init again.
type Scanner struct {
	// immutable state after Init
	src []byte

	// mutable scanning state
	start     int // start offset of the token being scanned
	startLine int // line on which the token being scanned starts
	off       int // current reading offset in bytes
	line      int // current 1-based line number
}

// Init initializes the scanner to tokenize a new source buffer.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.start = 0
	s.startLine = 1
	s.off = 0
	s.line = 1
}

// Scan returns the next token in the source. Once EOF is returned, any
// subsequent call keeps returning EOF.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()
	s.start = s.off
	s.startLine = s.line

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case ';':
		return s.make(token.SEMI)
	case '+':
		return s.make(token.PLUS)
	case '-':
		return s.make(token.MINUS)
	case '*':
		return s.make(token.STAR)
	case '/':
		return s.make(token.SLASH)
	case '!':
		if s.match('=') {
			return s.make(token.BANGEQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQEQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.match('=') {
			return s.make(token.LE)
		}
		return s.make(token.LT)
	case '>':
		if s.match('=') {
			return s.make(token.GE)
		}
		return s.make(token.GT)
	case '"':
		return s.str()
	}
	return s.errorToken("unexpected character")
}

func (s *Scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.off++
		case '\n':
			s.line++
			s.off++
		case '/':
			if s.peekNext() != '/' {
				return
			}
			// line comment, runs to end of line
			for !s.atEnd() && s.peek() != '\n' {
				s.off++
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() token.Token {
	for !s.atEnd() && (isAlpha(s.peek()) || isDigit(s.peek())) {
		s.off++
	}
	name := string(s.src[s.start:s.off])
	tok := s.make(token.LookupIdent(name))
	tok.Lit = name
	return tok
}

func (s *Scanner) number() token.Token {
	for !s.atEnd() && isDigit(s.peek()) {
		s.off++
	}
	// fractional part requires a digit after the dot
	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekNext()) {
		s.off++
		for !s.atEnd() && isDigit(s.peek()) {
			s.off++
		}
	}
	tok := s.make(token.NUMBER)
	tok.Lit = tok.Lexeme
	return tok
}

func (s *Scanner) str() token.Token {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.off++
	}
	if s.atEnd() {
		return s.errorToken("unterminated string")
	}
	s.off++ // closing quote
	tok := s.make(token.STRING)
	tok.Lit = tok.Lexeme[1 : len(tok.Lexeme)-1]
	return tok
}

func (s *Scanner) make(k token.Kind) token.Token {
	return token.Token{
		Kind:   k,
		Lexeme: string(s.src[s.start:s.off]),
		Line:   s.startLine,
	}
}

// errorToken returns an ILLEGAL token carrying msg as its literal value.
func (s *Scanner) errorToken(msg string) token.Token {
	tok := s.make(token.ILLEGAL)
	tok.Lit = msg
	return tok
}

func (s *Scanner) atEnd() bool { return s.off >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.off]
	s.off++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.off]
}

func (s *Scanner) peekNext() byte {
	if s.off+1 >= len(s.src) {
		return 0
	}
	return s.src[s.off+1]
}

func (s *Scanner) match(c byte) bool {
	if s.atEnd() || s.src[s.off] != c {
		return false
	}
	s.off++
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
