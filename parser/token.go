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

// Package parser tokenizes and parses XKB keyboard-description text into
// an include-expanded abstract tree (§4.2 of the design).
package parser

import "fmt"

// TokKind enumerates the lexical token classes of the XKB grammar.
type TokKind int

const (
	TokEOF TokKind = iota
	TokIdent
	TokKeyName  // <AE01>
	TokString   // "quoted"
	TokNumber   // 123, 0x1B
	TokLBrace   // {
	TokRBrace   // }
	TokLBracket // [
	TokRBracket // ]
	TokLParen   // (
	TokRParen   // )
	TokSemi     // ;
	TokComma    // ,
	TokDot      // .
	TokEquals   // =
	TokPlus     // +
	TokMinus    // -
	TokBang     // !
	TokTilde    // ~
	TokOverride // |
	TokReplace  // ^
	TokColon    // :
)

// Pos is a (line, column) location, 1-based, used in every diagnostic.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token is one lexical token with its source text and location.
type Token struct {
	Kind Kind_
	Text string
	Num  int64
	Pos  Pos
}

// Kind_ exists only so Token.Kind reads naturally; it's an alias of TokKind.
type Kind_ = TokKind

// SyntaxError carries the location of a rejected token, per §4.2: "Syntax
// errors carry (file, line, column)."
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
