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
	"fmt"
	"strconv"
	"strings"
)

// IncludeResolver looks up the content of an include target. kind is one
// of the xkb_* section keyword strings ("xkb_keycodes", "xkb_types",
// "xkb_compatibility", "xkb_symbols", "xkb_geometry"); name is the file
// name inside an include expression, e.g. "us" from "include "pc+us"".
type IncludeResolver interface {
	ResolveInclude(kind, name string) (data []byte, path string, err error)
}

// Parser holds the token stream for one source buffer plus the include
// resolver used to expand nested includes. The parser does not attempt
// error recovery past the offending statement (§4.2): the first syntax
// error aborts parsing of the whole file.
type Parser struct {
	lx       *lexer
	tok      Token
	resolver IncludeResolver
	depth    int // include recursion depth, to catch cycles
}

const maxIncludeDepth = 24

// ParseFile parses a single top-level XKB source (which may itself contain
// an `xkb_keymap { ... }` wrapper, or be a single bare section, or even a
// single component file meant to be included by name) and returns a fully
// include-expanded, merged File.
func ParseFile(name, src string, resolver IncludeResolver) (*File, error) {
	p := &Parser{lx: newLexer(name, src), resolver: resolver}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseTop()
}

func (p *Parser) next() error {
	t, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) expect(k TokKind, what string) (Token, error) {
	if p.tok.Kind != k {
		return Token{}, &SyntaxError{Pos: p.tok.Pos, Msg: fmt.Sprintf("expected %s, got %q", what, p.tok.Text)}
	}
	t := p.tok
	if err := p.next(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (p *Parser) isIdent(s string) bool {
	return p.tok.Kind == TokIdent && strings.EqualFold(p.tok.Text, s)
}

// parseTop parses either an `xkb_keymap { section* };` wrapper or a bare
// sequence of sections / a bare section body (for single-component files
// resolved by the rules system).
func (p *Parser) parseTop() (*File, error) {
	f := &File{}
	if p.isIdent("xkb_keymap") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokLBrace, "{"); err != nil {
			return nil, err
		}
		for p.tok.Kind != TokRBrace {
			sec, err := p.parseSectionDecl()
			if err != nil {
				return nil, err
			}
			if sec != nil {
				mergeSectionInto(f, sec)
			}
		}
		if err := p.next(); err != nil { // consume }
			return nil, err
		}
		if _, err := p.expect(TokSemi, ";"); err != nil {
			return nil, err
		}
		return f, nil
	}

	for p.tok.Kind != TokEOF {
		sec, err := p.parseSectionDecl()
		if err != nil {
			return nil, err
		}
		if sec != nil {
			mergeSectionInto(f, sec)
		}
	}
	return f, nil
}

func sectionKindFromKeyword(kw string) (SectionKind, bool) {
	switch strings.ToLower(kw) {
	case "xkb_keycodes":
		return SectionKeycodes, true
	case "xkb_types":
		return SectionTypes, true
	case "xkb_compatibility", "xkb_compat":
		return SectionCompat, true
	case "xkb_symbols":
		return SectionSymbols, true
	case "xkb_geometry":
		return SectionGeometry, true
	default:
		return 0, false
	}
}

// parseSectionDecl parses one `[mergeOp] [flags] xkb_<kind> "name" { stmt* };`
func (p *Parser) parseSectionDecl() (*Section, error) {
	merge := MergeDefault
	switch p.tok.Kind {
	case TokPlus:
		merge = MergeAugment
		if err := p.next(); err != nil {
			return nil, err
		}
	case TokOverride:
		merge = MergeOverride
		if err := p.next(); err != nil {
			return nil, err
		}
	case TokReplace:
		merge = MergeReplace
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	var flags SectionFlags
	for p.tok.Kind == TokIdent {
		switch strings.ToLower(p.tok.Text) {
		case "default":
			flags |= FlagDefault
		case "partial":
			flags |= FlagPartial
		case "hidden":
			flags |= FlagHidden
		case "alphanumeric_keys":
			flags |= FlagAlphanumericKeys
		case "modifier_keys":
			flags |= FlagModifierKeys
		default:
			goto doneFlags
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
doneFlags:

	kind, ok := sectionKindFromKeyword(p.tok.Text)
	if p.tok.Kind != TokIdent || !ok {
		return nil, &SyntaxError{Pos: p.tok.Pos, Msg: "expected section keyword, got " + p.tok.Text}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	name := ""
	if p.tok.Kind == TokString {
		name = p.tok.Text
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	sec := &Section{Kind: kind, Name: name, Flags: flags}
	for p.tok.Kind != TokRBrace {
		if p.tok.Kind == TokEOF {
			return nil, &SyntaxError{Pos: p.tok.Pos, Msg: "unexpected EOF in section body"}
		}
		if p.isIdent("include") {
			included, err := p.parseIncludeAndExpand(kind)
			if err != nil {
				return nil, err
			}
			sec.Statements = mergeStatements(sec.Statements, included, MergeAugment)
			continue
		}
		stmt, err := p.parseStatement(kind)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			sec.Statements = append(sec.Statements, stmt)
		}
	}
	if err := p.next(); err != nil { // consume }
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	sec.mergeMode = merge
	return sec, nil
}

// parseIncludeAndExpand handles `include "expr";` where expr is one or
// more "file(section)" references joined by merge operators, per §4.2.
func (p *Parser) parseIncludeAndExpand(kind SectionKind) ([]Statement, error) {
	if err := p.next(); err != nil { // consume 'include'
		return nil, err
	}
	tok, err := p.expect(TokString, "include expression string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	if p.resolver == nil {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: "include statement but no resolver configured"}
	}
	if p.depth >= maxIncludeDepth {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: "include recursion too deep (possible cycle)"}
	}
	return expandIncludeExpr(p, kind, tok.Text, tok.Pos)
}

// expandIncludeExpr resolves "file1(section1)+file2(section2)|file3" style
// expressions into a merged statement list.
func expandIncludeExpr(p *Parser, kind SectionKind, expr string, pos Pos) ([]Statement, error) {
	parts, ops, err := splitIncludeExpr(expr, pos)
	if err != nil {
		return nil, err
	}
	var out []Statement
	for i, part := range parts {
		file, section := splitFileSection(part)
		data, _, err := p.resolver.ResolveInclude(kind.Name(), file)
		if err != nil {
			return nil, &SyntaxError{Pos: pos, Msg: err.Error()}
		}
		sub := &Parser{lx: newLexer(file, string(data)), resolver: p.resolver, depth: p.depth + 1}
		if err := sub.next(); err != nil {
			return nil, err
		}
		f, err := sub.parseTop()
		if err != nil {
			return nil, err
		}
		var stmts []Statement
		for _, s := range f.Sections {
			if s.Kind != kind {
				continue
			}
			if section != "" && !strings.EqualFold(s.Name, section) {
				continue
			}
			stmts = append(stmts, s.Statements...)
		}
		op := MergeAugment
		if i > 0 {
			op = ops[i-1]
		}
		out = mergeStatements(out, stmts, op)
	}
	return out, nil
}

func splitFileSection(part string) (file, section string) {
	if i := strings.IndexByte(part, '('); i >= 0 && strings.HasSuffix(part, ")") {
		return part[:i], part[i+1 : len(part)-1]
	}
	return part, ""
}

// splitIncludeExpr splits "a+b|c^d" into ["a","b","c","d"] and the
// operators between consecutive parts.
func splitIncludeExpr(expr string, pos Pos) ([]string, []MergeMode, error) {
	var parts []string
	var ops []MergeMode
	start := 0
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '+', '|', '^':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				switch expr[i] {
				case '+':
					ops = append(ops, MergeAugment)
				case '|':
					ops = append(ops, MergeOverride)
				case '^':
					ops = append(ops, MergeReplace)
				}
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(expr[start:]))
	for _, pp := range parts {
		if pp == "" {
			return nil, nil, &SyntaxError{Pos: pos, Msg: "empty include component in " + expr}
		}
	}
	return parts, ops, nil
}

// parseStatement dispatches on the lookahead token to parse one statement
// inside a section body. Unrecognized constructs are skipped rather than
// rejected, so that files using parts of the grammar this parser doesn't
// model degrade gracefully instead of aborting compilation entirely.
func (p *Parser) parseStatement(kind SectionKind) (Statement, error) {
	switch {
	case p.tok.Kind == TokKeyName:
		return p.parseKeycodeStmt()
	case p.isIdent("alias"):
		return p.parseAliasStmt()
	case p.isIdent("indicator"):
		return p.parseIndicatorStmt()
	case p.isIdent("virtual_modifiers"):
		return p.parseVirtualModsStmt()
	case p.isIdent("type"):
		return p.parseTypeDeclStmt()
	case p.isIdent("interpret"):
		return p.parseInterpretStmt()
	case p.isIdent("modifier_map"):
		return p.parseModMapStmt()
	case p.isIdent("key"):
		return p.parseKeyDeclStmt()
	case p.isIdent("name"):
		return p.parseGroupNameStmt()
	default:
		return nil, p.skipStatement()
	}
}

// skipStatement consumes tokens through the next top-level ';' (honoring
// brace/bracket/paren nesting) so an unrecognized statement doesn't abort
// the whole parse.
func (p *Parser) skipStatement() error {
	depth := 0
	for {
		switch p.tok.Kind {
		case TokEOF:
			return &SyntaxError{Pos: p.tok.Pos, Msg: "unexpected EOF while skipping statement"}
		case TokLBrace, TokLBracket, TokLParen:
			depth++
		case TokRBrace, TokRBracket, TokRParen:
			if depth == 0 {
				return nil // let the caller see the closing brace of the section
			}
			depth--
		case TokSemi:
			if depth == 0 {
				return p.next()
			}
		}
		if err := p.next(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseKeycodeStmt() (Statement, error) {
	name := p.tok.Text
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals, "="); err != nil {
		return nil, err
	}
	num, err := p.expect(TokNumber, "number")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return &KeycodeStmt{Name: name, Value: num.Num}, nil
}

func (p *Parser) parseAliasStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	a, err := p.expect(TokKeyName, "<alias>")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals, "="); err != nil {
		return nil, err
	}
	r, err := p.expect(TokKeyName, "<real>")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return &AliasStmt{Alias: a.Text, Real: r.Text}, nil
}

// parseIndicatorStmt handles both `indicator N = "Name";` (keycodes) and
// `indicator "Name" { ... };` (compat LED map).
func (p *Parser) parseIndicatorStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.Kind == TokNumber {
		idx := p.tok.Num
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokEquals, "="); err != nil {
			return nil, err
		}
		name, err := p.expect(TokString, "string")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi, ";"); err != nil {
			return nil, err
		}
		return &IndicatorNameStmt{Index: idx, Name: name.Text}, nil
	}
	name, err := p.expect(TokString, "string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	led := &LedMapStmt{Name: name.Text}
	for p.tok.Kind != TokRBrace {
		switch {
		case p.isIdent("modifiers"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			led.Mods = me
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("whichModState"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			s, err := p.parseIdentSum()
			if err != nil {
				return nil, err
			}
			led.WhichMods = s
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("groups"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			led.Groups = me
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("whichGroupState"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			s, err := p.parseIdentSum()
			if err != nil {
				return nil, err
			}
			led.WhichGroups = s
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("controls"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			names, err := p.parseIdentSumList()
			if err != nil {
				return nil, err
			}
			led.Ctrls = names
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		default:
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil { // }
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return led, nil
}

func (p *Parser) parseIdentSum() (string, error) {
	var sb strings.Builder
	t, err := p.expect(TokIdent, "identifier")
	if err != nil {
		return "", err
	}
	sb.WriteString(t.Text)
	for p.tok.Kind == TokPlus {
		if err := p.next(); err != nil {
			return "", err
		}
		t, err := p.expect(TokIdent, "identifier")
		if err != nil {
			return "", err
		}
		sb.WriteByte('+')
		sb.WriteString(t.Text)
	}
	return sb.String(), nil
}

func (p *Parser) parseIdentSumList() ([]string, error) {
	s, err := p.parseIdentSum()
	if err != nil {
		return nil, err
	}
	return strings.Split(s, "+"), nil
}

func (p *Parser) parseVirtualModsStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	stmt := &VirtualModsStmt{}
	for {
		name, err := p.expect(TokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		stmt.Names = append(stmt.Names, name.Text)
		if p.tok.Kind == TokEquals {
			if err := p.next(); err != nil {
				return nil, err
			}
			n, err := p.expect(TokNumber, "number")
			if err != nil {
				return nil, err
			}
			v := uint32(n.Num)
			stmt.Masks = append(stmt.Masks, &v)
		} else {
			stmt.Masks = append(stmt.Masks, nil)
		}
		if p.tok.Kind == TokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseModExpr parses a sum-of-identifiers-or-hex-mask modifier
// expression, or one of the keywords all/none/any.
func (p *Parser) parseModExpr() (*ModExpr, error) {
	me := &ModExpr{}
	for {
		switch p.tok.Kind {
		case TokIdent:
			lower := strings.ToLower(p.tok.Text)
			if len(me.Names) == 0 && me.Mask == 0 && (lower == "all" || lower == "none" || lower == "any") {
				me.Keyword = lower
				if err := p.next(); err != nil {
					return nil, err
				}
			} else {
				me.Names = append(me.Names, p.tok.Text)
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		case TokNumber:
			me.Mask |= uint32(p.tok.Num)
			me.HasMask = true
			if err := p.next(); err != nil {
				return nil, err
			}
		default:
			return nil, &SyntaxError{Pos: p.tok.Pos, Msg: "expected modifier expression, got " + p.tok.Text}
		}
		if p.tok.Kind == TokPlus {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return me, nil
}

func (p *Parser) parseTypeDeclStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(TokString, "type name string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	td := &TypeDeclStmt{Name: name.Text}
	for p.tok.Kind != TokRBrace {
		switch {
		case p.isIdent("modifiers"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			td.Mods = me
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("map"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokLBracket, "["); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket, "]"); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			lvl, err := p.expect(TokNumber, "number")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
			td.Map = append(td.Map, TypeMapEntry{Mods: *me, Level: lvl.Num})
		case p.isIdent("preserve"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokLBracket, "["); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket, "]"); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			pe, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
			td.Preserve = append(td.Preserve, TypePreserveEntry{Mods: *me, Preserve: *pe})
		case p.isIdent("level_name"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokLBracket, "["); err != nil {
				return nil, err
			}
			lvl, err := p.expect(TokNumber, "number")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket, "]"); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			s, err := p.expect(TokString, "string")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
			td.LevelNames = append(td.LevelNames, TypeLevelName{Level: lvl.Num, Name: s.Text})
		default:
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *Parser) parseBool() (bool, error) {
	t, err := p.expect(TokIdent, "boolean")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(t.Text) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, &SyntaxError{Pos: t.Pos, Msg: "expected boolean, got " + t.Text}
	}
}

func (p *Parser) parseInterpretStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	sym, err := p.expect(TokIdent, "keysym name")
	if err != nil {
		return nil, err
	}
	in := &InterpretStmt{Sym: sym.Text}
	if p.tok.Kind == TokPlus {
		if err := p.next(); err != nil {
			return nil, err
		}
		op, err := p.expect(TokIdent, "match operator")
		if err != nil {
			return nil, err
		}
		in.MatchOp = op.Text
		if p.tok.Kind == TokLParen {
			if err := p.next(); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			in.Mods = me
			if _, err := p.expect(TokRParen, ")"); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	for p.tok.Kind != TokRBrace {
		switch {
		case p.isIdent("action"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			ae, err := p.parseActionExpr()
			if err != nil {
				return nil, err
			}
			in.Actions = append(in.Actions, *ae)
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("virtualModifier"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			vm, err := p.expect(TokIdent, "identifier")
			if err != nil {
				return nil, err
			}
			in.VirtualMod = vm.Text
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("repeat"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			b, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			in.Repeat = &b
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		case p.isIdent("levelOneOnly"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			b, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			in.LevelOneOnly = &b
			if _, err := p.expect(TokSemi, ";"); err != nil {
				return nil, err
			}
		default:
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Parser) parseActionExpr() (*ActionExpr, error) {
	name, err := p.expect(TokIdent, "action name")
	if err != nil {
		return nil, err
	}
	ae := &ActionExpr{Name: name.Text}
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	for p.tok.Kind != TokRParen {
		argName, err := p.expect(TokIdent, "argument name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokEquals, "="); err != nil {
			return nil, err
		}
		val, err := p.parseActionArgValue()
		if err != nil {
			return nil, err
		}
		ae.Args = append(ae.Args, ActionArg{Name: argName.Text, Value: val})
		if p.tok.Kind == TokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	return ae, nil
}

func (p *Parser) parseActionArgValue() (string, error) {
	var sb strings.Builder
	neg := false
	if p.tok.Kind == TokMinus || p.tok.Kind == TokBang {
		neg = p.tok.Kind == TokMinus
		if p.tok.Kind == TokBang {
			sb.WriteByte('!')
		}
		if err := p.next(); err != nil {
			return "", err
		}
	}
	if neg {
		sb.WriteByte('-')
	}
	switch p.tok.Kind {
	case TokIdent:
		sb.WriteString(p.tok.Text)
		if err := p.next(); err != nil {
			return "", err
		}
		for p.tok.Kind == TokPlus {
			sb.WriteByte('+')
			if err := p.next(); err != nil {
				return "", err
			}
			t, err := p.expect(TokIdent, "identifier")
			if err != nil {
				return "", err
			}
			sb.WriteString(t.Text)
		}
	case TokNumber:
		sb.WriteString(strconv.FormatInt(p.tok.Num, 10))
		if err := p.next(); err != nil {
			return "", err
		}
	case TokString:
		sb.WriteString(p.tok.Text)
		if err := p.next(); err != nil {
			return "", err
		}
	default:
		return "", &SyntaxError{Pos: p.tok.Pos, Msg: "expected action argument value, got " + p.tok.Text}
	}
	return sb.String(), nil
}

func (p *Parser) parseModMapStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	modName, err := p.expect(TokIdent, "modifier name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	mm := &ModMapStmt{Mod: modName.Text}
	for p.tok.Kind != TokRBrace {
		k, err := p.expect(TokKeyName, "<key>")
		if err != nil {
			return nil, err
		}
		mm.Keys = append(mm.Keys, k.Text)
		if p.tok.Kind == TokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return mm, nil
}

// parseGroupRef parses either a bare number or an identifier of the form
// "GroupN" and returns the 1-based group index.
func (p *Parser) parseGroupRef() (int, error) {
	if p.tok.Kind == TokNumber {
		n := int(p.tok.Num)
		return n, p.next()
	}
	if p.tok.Kind == TokIdent && strings.HasPrefix(strings.ToLower(p.tok.Text), "group") {
		n, err := strconv.Atoi(p.tok.Text[len("Group"):])
		if err != nil {
			return 0, &SyntaxError{Pos: p.tok.Pos, Msg: "bad group reference " + p.tok.Text}
		}
		return n, p.next()
	}
	return 0, &SyntaxError{Pos: p.tok.Pos, Msg: "expected group reference, got " + p.tok.Text}
}

func (p *Parser) parseGroupNameStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBracket, "["); err != nil {
		return nil, err
	}
	g, err := p.parseGroupRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBracket, "]"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals, "="); err != nil {
		return nil, err
	}
	s, err := p.expect(TokString, "string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return &GroupNameStmt{Group: g, Name: s.Text}, nil
}

func (p *Parser) parseKeyDeclStmt() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	keyName, err := p.expect(TokKeyName, "<key>")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	kd := &KeyDeclStmt{Name: keyName.Text, Type: map[int]string{}}
	for p.tok.Kind != TokRBrace {
		switch {
		case p.isIdent("type"):
			if err := p.next(); err != nil {
				return nil, err
			}
			group := 1
			if p.tok.Kind == TokLBracket {
				if err := p.next(); err != nil {
					return nil, err
				}
				g, err := p.parseGroupRef()
				if err != nil {
					return nil, err
				}
				group = g
				if _, err := p.expect(TokRBracket, "]"); err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			s, err := p.expect(TokString, "string")
			if err != nil {
				return nil, err
			}
			kd.Type[group] = s.Text
			if err := p.endKeyField(); err != nil {
				return nil, err
			}
		case p.isIdent("symbols"):
			sy, err := p.parseKeySymbolsClause()
			if err != nil {
				return nil, err
			}
			kd.Symbols = append(kd.Symbols, *sy)
		case p.isIdent("actions"):
			ac, err := p.parseKeyActionsClause()
			if err != nil {
				return nil, err
			}
			kd.Actions = append(kd.Actions, *ac)
		case p.isIdent("virtualMods"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			me, err := p.parseModExpr()
			if err != nil {
				return nil, err
			}
			kd.VirtualMods = me
			if err := p.endKeyField(); err != nil {
				return nil, err
			}
		case p.isIdent("repeat"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			b, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			kd.Repeat = &b
			if err := p.endKeyField(); err != nil {
				return nil, err
			}
		case p.isIdent("groups"):
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals, "="); err != nil {
				return nil, err
			}
			n, err := p.expect(TokNumber, "number")
			if err != nil {
				return nil, err
			}
			kd.Groups = int(n.Num)
			if err := p.endKeyField(); err != nil {
				return nil, err
			}
		default:
			// Shorthand form: `[ sym, sym ]` with no symbols[GroupN]= prefix,
			// meaning group 1.
			if p.tok.Kind == TokLBracket {
				levels, err := p.parseSymLevelList()
				if err != nil {
					return nil, err
				}
				kd.Symbols = append(kd.Symbols, KeyLevelSyms{Group: 1, Syms: levels})
				if err := p.endKeyField(); err != nil {
					return nil, err
				}
				continue
			}
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, ";"); err != nil {
		return nil, err
	}
	return kd, nil
}

func (p *Parser) parseKeySymbolsClause() (*KeyLevelSyms, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBracket, "["); err != nil {
		return nil, err
	}
	g, err := p.parseGroupRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBracket, "]"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals, "="); err != nil {
		return nil, err
	}
	levels, err := p.parseSymLevelList()
	if err != nil {
		return nil, err
	}
	if err := p.endKeyField(); err != nil {
		return nil, err
	}
	return &KeyLevelSyms{Group: g, Syms: levels}, nil
}

// endKeyField consumes the ';' or ',' that ends one field of a key body;
// the field right before the closing '}' may omit it.
func (p *Parser) endKeyField() error {
	if p.tok.Kind == TokRBrace {
		return nil
	}
	if p.tok.Kind == TokComma {
		return p.next()
	}
	_, err := p.expect(TokSemi, "; or ,")
	return err
}

// parseSymLevelList parses `[ level, level, ... ]` where level is a bare
// keysym name/number, or `{ sym, sym }` for a multi-sym level.
func (p *Parser) parseSymLevelList() ([][]string, error) {
	if _, err := p.expect(TokLBracket, "["); err != nil {
		return nil, err
	}
	var levels [][]string
	for p.tok.Kind != TokRBracket {
		if p.tok.Kind == TokLBrace {
			if err := p.next(); err != nil {
				return nil, err
			}
			var syms []string
			for p.tok.Kind != TokRBrace {
				s, err := p.parseSymToken()
				if err != nil {
					return nil, err
				}
				syms = append(syms, s)
				if p.tok.Kind == TokComma {
					if err := p.next(); err != nil {
						return nil, err
					}
				}
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			levels = append(levels, syms)
		} else {
			s, err := p.parseSymToken()
			if err != nil {
				return nil, err
			}
			levels = append(levels, []string{s})
		}
		if p.tok.Kind == TokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return levels, nil
}

func (p *Parser) parseSymToken() (string, error) {
	switch p.tok.Kind {
	case TokIdent:
		t := p.tok.Text
		return t, p.next()
	case TokNumber:
		t := strconv.FormatInt(p.tok.Num, 10)
		return t, p.next()
	default:
		return "", &SyntaxError{Pos: p.tok.Pos, Msg: "expected keysym, got " + p.tok.Text}
	}
}

func (p *Parser) parseKeyActionsClause() (*KeyLevelActions, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBracket, "["); err != nil {
		return nil, err
	}
	g, err := p.parseGroupRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBracket, "]"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEquals, "="); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBracket, "["); err != nil {
		return nil, err
	}
	var levels [][]ActionExpr
	for p.tok.Kind != TokRBracket {
		if p.tok.Kind == TokLBrace {
			if err := p.next(); err != nil {
				return nil, err
			}
			var actions []ActionExpr
			for p.tok.Kind != TokRBrace {
				ae, err := p.parseActionExpr()
				if err != nil {
					return nil, err
				}
				actions = append(actions, *ae)
				if p.tok.Kind == TokComma {
					if err := p.next(); err != nil {
						return nil, err
					}
				}
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			levels = append(levels, actions)
		} else {
			ae, err := p.parseActionExpr()
			if err != nil {
				return nil, err
			}
			levels = append(levels, []ActionExpr{*ae})
		}
		if p.tok.Kind == TokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.endKeyField(); err != nil {
		return nil, err
	}
	return &KeyLevelActions{Group: g, Actions: levels}, nil
}
