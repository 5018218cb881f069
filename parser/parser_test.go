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

func findSection(f *File, kind SectionKind) *Section {
	for _, s := range f.Sections {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

func TestParseFileBareKeycodesSection(t *testing.T) {
	src := `
xkb_keycodes "test" {
	<AC01> = 38;
	<AC02> = 39;
	alias <AB01> = <AC01>;
	indicator 1 = "Caps Lock";
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionKeycodes)
	if sec == nil {
		t.Fatal("no xkb_keycodes section in parsed file")
	}
	if len(sec.Statements) != 4 {
		t.Fatalf("got %d statements, want 4: %#v", len(sec.Statements), sec.Statements)
	}
	kc, ok := sec.Statements[0].(*KeycodeStmt)
	if !ok || kc.Name != "AC01" || kc.Value != 38 {
		t.Fatalf("Statements[0] = %#v, want KeycodeStmt{AC01, 38}", sec.Statements[0])
	}
	alias, ok := sec.Statements[2].(*AliasStmt)
	if !ok || alias.Alias != "AB01" || alias.Real != "AC01" {
		t.Fatalf("Statements[2] = %#v, want AliasStmt{AB01, AC01}", sec.Statements[2])
	}
	ind, ok := sec.Statements[3].(*IndicatorNameStmt)
	if !ok || ind.Index != 1 || ind.Name != "Caps Lock" {
		t.Fatalf("Statements[3] = %#v, want IndicatorNameStmt{1, Caps Lock}", sec.Statements[3])
	}
}

func TestParseFileTypeDecl(t *testing.T) {
	src := `
xkb_types "test" {
	type "ALPHABETIC" {
		modifiers = Shift+Lock;
		map[Shift] = 1;
		map[Lock] = 0;
		level_name[0] = "Base";
		level_name[1] = "Caps";
	};
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionTypes)
	if sec == nil || len(sec.Statements) != 1 {
		t.Fatalf("xkb_types section = %#v", sec)
	}
	td, ok := sec.Statements[0].(*TypeDeclStmt)
	if !ok {
		t.Fatalf("Statements[0] = %#v, want *TypeDeclStmt", sec.Statements[0])
	}
	if td.Name != "ALPHABETIC" {
		t.Fatalf("type name = %q, want ALPHABETIC", td.Name)
	}
	if td.Mods == nil || len(td.Mods.Names) != 2 || td.Mods.Names[0] != "Shift" || td.Mods.Names[1] != "Lock" {
		t.Fatalf("type modifiers = %#v, want [Shift Lock]", td.Mods)
	}
	if len(td.Map) != 2 || td.Map[0].Level != 1 || td.Map[1].Level != 0 {
		t.Fatalf("type map = %#v", td.Map)
	}
	if len(td.LevelNames) != 2 || td.LevelNames[0].Name != "Base" || td.LevelNames[1].Name != "Caps" {
		t.Fatalf("level names = %#v", td.LevelNames)
	}
}

func TestParseFileInterpretWithMatchOpAndAction(t *testing.T) {
	src := `
xkb_compatibility "test" {
	interpret Shift_L+AnyOf(all) {
		action = SetMods(modifiers=Shift,clearLocks=True);
		repeat = False;
	};
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionCompat)
	if sec == nil || len(sec.Statements) != 1 {
		t.Fatalf("xkb_compatibility section = %#v", sec)
	}
	in, ok := sec.Statements[0].(*InterpretStmt)
	if !ok {
		t.Fatalf("Statements[0] = %#v, want *InterpretStmt", sec.Statements[0])
	}
	if in.Sym != "Shift_L" {
		t.Fatalf("interpret sym = %q, want Shift_L", in.Sym)
	}
	if in.MatchOp != "AnyOf" {
		t.Fatalf("interpret match op = %q, want AnyOf", in.MatchOp)
	}
	if in.Mods == nil || in.Mods.Keyword != "all" {
		t.Fatalf("interpret mods = %#v, want keyword all", in.Mods)
	}
	if len(in.Actions) != 1 || in.Actions[0].Name != "SetMods" {
		t.Fatalf("interpret actions = %#v", in.Actions)
	}
	if in.Repeat == nil || *in.Repeat != false {
		t.Fatalf("interpret repeat = %v, want false", in.Repeat)
	}
}

func TestParseFileKeyDeclWithSymbolsAndActions(t *testing.T) {
	src := `
xkb_symbols "test" {
	name[Group1] = "US";
	key <AC01> {
		type = "ALPHABETIC",
		symbols[Group1] = [ a, A ],
		actions[Group1] = [ NoAction(), SetMods(modifiers=Shift) ]
	};
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionSymbols)
	if sec == nil || len(sec.Statements) != 2 {
		t.Fatalf("xkb_symbols section = %#v", sec)
	}
	gn, ok := sec.Statements[0].(*GroupNameStmt)
	if !ok || gn.Group != 1 || gn.Name != "US" {
		t.Fatalf("Statements[0] = %#v, want GroupNameStmt{1, US}", sec.Statements[0])
	}
	kd, ok := sec.Statements[1].(*KeyDeclStmt)
	if !ok {
		t.Fatalf("Statements[1] = %#v, want *KeyDeclStmt", sec.Statements[1])
	}
	if kd.Name != "AC01" {
		t.Fatalf("key name = %q, want AC01", kd.Name)
	}
	if kd.Type[1] != "ALPHABETIC" {
		t.Fatalf("key type[1] = %q, want ALPHABETIC", kd.Type[1])
	}
	if len(kd.Symbols) != 1 || kd.Symbols[0].Group != 1 {
		t.Fatalf("key symbols = %#v", kd.Symbols)
	}
	levels := kd.Symbols[0].Syms
	if len(levels) != 2 || levels[0][0] != "a" || levels[1][0] != "A" {
		t.Fatalf("symbol levels = %#v, want [[a] [A]]", levels)
	}
	if len(kd.Actions) != 1 || len(kd.Actions[0].Actions) != 2 {
		t.Fatalf("key actions = %#v", kd.Actions)
	}
	if kd.Actions[0].Actions[0][0].Name != "NoAction" {
		t.Fatalf("action[0] = %#v, want NoAction", kd.Actions[0].Actions[0][0])
	}
	if kd.Actions[0].Actions[1][0].Name != "SetMods" {
		t.Fatalf("action[1] = %#v, want SetMods", kd.Actions[0].Actions[1][0])
	}
}

func TestParseFileKeyDeclShorthandSymbols(t *testing.T) {
	src := `
xkb_symbols "test" {
	key <AC02> { [ s, S ] };
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionSymbols)
	kd := sec.Statements[0].(*KeyDeclStmt)
	if len(kd.Symbols) != 1 || kd.Symbols[0].Group != 1 {
		t.Fatalf("shorthand symbols = %#v", kd.Symbols)
	}
	if kd.Symbols[0].Syms[0][0] != "s" || kd.Symbols[0].Syms[1][0] != "S" {
		t.Fatalf("shorthand symbol levels = %#v", kd.Symbols[0].Syms)
	}
}

func TestParseFileXkbKeymapWrapper(t *testing.T) {
	src := `
xkb_keymap {
	xkb_keycodes "test" { <AC01> = 38; };
	xkb_symbols "test" { key <AC01> { [ a ] }; };
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if findSection(f, SectionKeycodes) == nil {
		t.Fatal("wrapped xkb_keymap lost its xkb_keycodes section")
	}
	if findSection(f, SectionSymbols) == nil {
		t.Fatal("wrapped xkb_keymap lost its xkb_symbols section")
	}
}

func TestParseFileUnterminatedKeyNameIsError(t *testing.T) {
	src := `xkb_keycodes "test" { <AC01 = 38; };`
	if _, err := ParseFile("test", src, nil); err == nil {
		t.Fatal("expected a syntax error for an unterminated key name")
	}
}

func TestParseFileUnknownSectionKeywordIsError(t *testing.T) {
	src := `xkb_nonsense "test" { };`
	if _, err := ParseFile("test", src, nil); err == nil {
		t.Fatal("expected a syntax error for an unrecognized section keyword")
	}
}

func TestParseFileSkipsUnrecognizedStatement(t *testing.T) {
	src := `
xkb_types "test" {
	totally_unknown_directive 1 2 3;
	type "X" { modifiers = none; };
};
`
	f, err := ParseFile("test", src, nil)
	if err != nil {
		t.Fatalf("ParseFile unexpectedly failed on an unrecognized statement: %v", err)
	}
	sec := findSection(f, SectionTypes)
	if len(sec.Statements) != 1 {
		t.Fatalf("got %d statements, want the unrecognized one skipped and only the type kept", len(sec.Statements))
	}
}

type fakeResolver map[string]string

func (r fakeResolver) ResolveInclude(kind, name string) ([]byte, string, error) {
	if data, ok := r[kind+"/"+name]; ok {
		return []byte(data), kind + "/" + name, nil
	}
	return nil, "", &SyntaxError{Msg: "no such include " + kind + "/" + name}
}

func TestParseFileExpandsInclude(t *testing.T) {
	resolver := fakeResolver{
		"xkb_symbols/us": `xkb_symbols "basic" { key <AC01> { [ a ] }; };`,
	}
	src := `
xkb_symbols "test" {
	include "us";
	key <AC02> { [ b ] };
};
`
	f, err := ParseFile("test", src, resolver)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	sec := findSection(f, SectionSymbols)
	if len(sec.Statements) != 2 {
		t.Fatalf("got %d statements after include expansion, want 2: %#v", len(sec.Statements), sec.Statements)
	}
	first := sec.Statements[0].(*KeyDeclStmt)
	if first.Name != "AC01" {
		t.Fatalf("first statement after include = %#v, want the included AC01 key first", first)
	}
}

func TestParseFileIncludeWithoutResolverIsError(t *testing.T) {
	src := `
xkb_symbols "test" {
	include "us";
};
`
	if _, err := ParseFile("test", src, nil); err == nil {
		t.Fatal("expected an error for an include statement with no resolver configured")
	}
}
