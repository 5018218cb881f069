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

import "testing"

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lx := newLexer("test", src)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("lexer error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexerKeyName(t *testing.T) {
	toks := lexAll(t, "<AC01>")
	if len(toks) != 2 || toks[0].Kind != TokKeyName || toks[0].Text != "AC01" {
		t.Fatalf("lexAll(<AC01>) = %#v", toks)
	}
}

func TestLexerUnterminatedKeyName(t *testing.T) {
	lx := newLexer("test", "<AC01")
	if _, err := lx.Next(); err == nil {
		t.Fatal("expected an error for an unterminated key name")
	}
}

func TestLexerStringWithEscapes(t *testing.T) {
	toks := lexAll(t, `"line1\nline2\ttabbed\"quoted\""`)
	if toks[0].Kind != TokString {
		t.Fatalf("expected a string token, got %#v", toks[0])
	}
	want := "line1\nline2\ttabbed\"quoted\""
	if toks[0].Text != want {
		t.Fatalf("lexed string = %q, want %q", toks[0].Text, want)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lx := newLexer("test", `"unterminated`)
	if _, err := lx.Next(); err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestLexerDecimalNumber(t *testing.T) {
	toks := lexAll(t, "38")
	if toks[0].Kind != TokNumber || toks[0].Num != 38 {
		t.Fatalf("lexAll(38) = %#v", toks[0])
	}
}

func TestLexerHexNumber(t *testing.T) {
	toks := lexAll(t, "0x2001")
	if toks[0].Kind != TokNumber || toks[0].Num != 0x2001 {
		t.Fatalf("lexAll(0x2001) = %#v", toks[0])
	}
}

func TestLexerIdentifierWithUnderscoreAndDigits(t *testing.T) {
	toks := lexAll(t, "dead_acute2")
	if toks[0].Kind != TokIdent || toks[0].Text != "dead_acute2" {
		t.Fatalf("lexAll(dead_acute2) = %#v", toks[0])
	}
}

func TestLexerSkipsLineAndBlockComments(t *testing.T) {
	toks := lexAll(t, "a // line comment\nb /* block\ncomment */ c")
	var idents []string
	for _, tok := range toks {
		if tok.Kind == TokIdent {
			idents = append(idents, tok.Text)
		}
	}
	if len(idents) != 3 || idents[0] != "a" || idents[1] != "b" || idents[2] != "c" {
		t.Fatalf("identifiers around comments = %v, want [a b c]", idents)
	}
}

func TestLexerSingleCharTokens(t *testing.T) {
	toks := lexAll(t, "{}[]();,.=+-!~|^:")
	wantKinds := []TokKind{
		TokLBrace, TokRBrace, TokLBracket, TokRBracket, TokLParen, TokRParen,
		TokSemi, TokComma, TokDot, TokEquals, TokPlus, TokMinus, TokBang,
		TokTilde, TokOverride, TokReplace, TokColon, TokEOF,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %#v", len(toks), len(wantKinds), toks)
	}
	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Fatalf("token %d kind = %v, want %v", i, toks[i].Kind, want)
		}
	}
}

func TestLexerUnexpectedCharacterIsError(t *testing.T) {
	lx := newLexer("test", "@")
	if _, err := lx.Next(); err == nil {
		t.Fatal("expected an error for an unrecognized character")
	}
}

func TestLexerEOFIsStable(t *testing.T) {
	lx := newLexer("test", "")
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("Next on empty input: %v", err)
	}
	if tok.Kind != TokEOF {
		t.Fatalf("Next on empty input = %#v, want TokEOF", tok)
	}
}
