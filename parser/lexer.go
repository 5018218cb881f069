// Copyright 2025 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"strconv"
	"strings"
)

// lexer scans UTF-8 XKB source text into tokens. It does not itself
// resolve includes; the parser does that by re-invoking the lexer on the
// content an IncludeResolver returns.
type lexer struct {
	file   string
	src    string
	pos    int
	line   int
	col    int
}

func newLexer(file, src string) *lexer {
	return &lexer{file: file, src: src, line: 1, col: 1}
}

func (lx *lexer) here() Pos { return Pos{File: lx.file, Line: lx.line, Column: lx.col} }

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) peekByteAt(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *lexer) advance() byte {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '/' && lx.peekByteAt(1) == '/':
			for lx.pos < len(lx.src) && lx.peekByte() != '\n' {
				lx.advance()
			}
		case c == '/' && lx.peekByteAt(1) == '*':
			lx.advance()
			lx.advance()
			for lx.pos < len(lx.src) {
				if lx.peekByte() == '*' && lx.peekByteAt(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, or a TokEOF token at end of input.
func (lx *lexer) Next() (Token, error) {
	lx.skipSpaceAndComments()
	start := lx.here()
	if lx.pos >= len(lx.src) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}
	c := lx.peekByte()

	switch {
	case c == '<':
		return lx.lexKeyName(start)
	case c == '"':
		return lx.lexString(start)
	case c >= '0' && c <= '9':
		return lx.lexNumber(start)
	case isIdentStart(c):
		return lx.lexIdent(start)
	}

	single := map[byte]TokKind{
		'{': TokLBrace, '}': TokRBrace,
		'[': TokLBracket, ']': TokRBracket,
		'(': TokLParen, ')': TokRParen,
		';': TokSemi, ',': TokComma, '.': TokDot,
		'=': TokEquals, '+': TokPlus, '-': TokMinus,
		'!': TokBang, '~': TokTilde, '|': TokOverride,
		'^': TokReplace, ':': TokColon,
	}
	if kind, ok := single[c]; ok {
		lx.advance()
		return Token{Kind: kind, Text: string(c), Pos: start}, nil
	}
	lx.advance()
	return Token{}, &SyntaxError{Pos: start, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
}

func (lx *lexer) lexKeyName(start Pos) (Token, error) {
	lx.advance() // '<'
	var sb strings.Builder
	for lx.pos < len(lx.src) && lx.peekByte() != '>' {
		sb.WriteByte(lx.advance())
	}
	if lx.pos >= len(lx.src) {
		return Token{}, &SyntaxError{Pos: start, Msg: "unterminated key name"}
	}
	lx.advance() // '>'
	return Token{Kind: TokKeyName, Text: sb.String(), Pos: start}, nil
}

func (lx *lexer) lexString(start Pos) (Token, error) {
	lx.advance() // opening quote
	var sb strings.Builder
	for lx.pos < len(lx.src) && lx.peekByte() != '"' {
		c := lx.advance()
		if c == '\\' && lx.pos < len(lx.src) {
			e := lx.advance()
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(e)
			}
			continue
		}
		sb.WriteByte(c)
	}
	if lx.pos >= len(lx.src) {
		return Token{}, &SyntaxError{Pos: start, Msg: "unterminated string"}
	}
	lx.advance() // closing quote
	return Token{Kind: TokString, Text: sb.String(), Pos: start}, nil
}

func (lx *lexer) lexNumber(start Pos) (Token, error) {
	begin := lx.pos
	if lx.peekByte() == '0' && (lx.peekByteAt(1) == 'x' || lx.peekByteAt(1) == 'X') {
		lx.advance()
		lx.advance()
		for lx.pos < len(lx.src) && isHexDigit(lx.peekByte()) {
			lx.advance()
		}
		text := lx.src[begin:lx.pos]
		n, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return Token{}, &SyntaxError{Pos: start, Msg: "invalid hex literal " + text}
		}
		return Token{Kind: TokNumber, Text: text, Num: n, Pos: start}, nil
	}
	for lx.pos < len(lx.src) && (lx.peekByte() >= '0' && lx.peekByte() <= '9') {
		lx.advance()
	}
	text := lx.src[begin:lx.pos]
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, &SyntaxError{Pos: start, Msg: "invalid numeric literal " + text}
	}
	return Token{Kind: TokNumber, Text: text, Num: n, Pos: start}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (lx *lexer) lexIdent(start Pos) (Token, error) {
	begin := lx.pos
	for lx.pos < len(lx.src) && isIdentCont(lx.peekByte()) {
		lx.advance()
	}
	return Token{Kind: TokIdent, Text: lx.src[begin:lx.pos], Pos: start}, nil
}
