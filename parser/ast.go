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

// MergeMode is one of the three include-merge operators of §4.2, plus the
// implicit default applied to a section with no operator.
type MergeMode int

const (
	MergeDefault  MergeMode = iota // implicit; behaves like Augment
	MergeAugment                   // '+': existing wins
	MergeOverride                  // '|': new wins
	MergeReplace                   // '^': full substitution
)

// SectionKind is one of the four semantic section kinds the compiler
// passes operate over (xkb_geometry is parsed but ignored, per §1).
type SectionKind int

const (
	SectionKeycodes SectionKind = iota
	SectionTypes
	SectionCompat
	SectionSymbols
	SectionGeometry
)

func (k SectionKind) Name() string {
	switch k {
	case SectionKeycodes:
		return "xkb_keycodes"
	case SectionTypes:
		return "xkb_types"
	case SectionCompat:
		return "xkb_compatibility"
	case SectionSymbols:
		return "xkb_symbols"
	case SectionGeometry:
		return "xkb_geometry"
	default:
		return "unknown"
	}
}

// SectionFlags are the declaration-time flags a section or an include
// target may carry (default/partial/hidden/alphanumeric_keys/modifier_keys).
type SectionFlags uint8

const (
	FlagDefault SectionFlags = 1 << iota
	FlagPartial
	FlagHidden
	FlagAlphanumericKeys
	FlagModifierKeys
)

// File is a fully include-expanded parse tree: one merged Section per
// kind that appeared anywhere in the include graph.
type File struct {
	Sections []*Section
}

// Section holds every statement contributed to one section kind, after
// include expansion and merging (§4.2).
type Section struct {
	Kind       SectionKind
	Name       string
	Flags      SectionFlags
	Statements []Statement

	// mergeMode is the operator ('+'/'|'/'^') that preceded this section's
	// own declaration, used by mergeSectionInto when folding it into the
	// accumulating per-kind Section of the enclosing File.
	mergeMode MergeMode
}

// Statement is any one declaration inside a section or a nested block
// (key type, interpret, key, ...).
type Statement interface{ stmtNode() }

// ModExpr is a parsed modifier-mask expression: a sum of named modifiers
// and/or raw hex masks, e.g. "Shift+Control" or "0x2001" or "all"/"none"/
// "any".
type ModExpr struct {
	Names []string
	Mask  uint32
	HasMask bool
	Keyword string // "all", "none", "any", "" if not a keyword expression
}

// KeycodeStmt is `<NAME> = value;` inside xkb_keycodes.
type KeycodeStmt struct {
	Name  string
	Value int64
}

func (*KeycodeStmt) stmtNode() {}

// AliasStmt is `alias <A> = <B>;`.
type AliasStmt struct {
	Alias string
	Real  string
}

func (*AliasStmt) stmtNode() {}

// IndicatorNameStmt is `indicator N = "Name";`.
type IndicatorNameStmt struct {
	Index int64
	Name  string
}

func (*IndicatorNameStmt) stmtNode() {}

// VirtualModsStmt is `virtual_modifiers A, B = 0x100, C;` inside types or
// compat; each name may carry an explicit mask.
type VirtualModsStmt struct {
	Names []string
	Masks []*uint32 // parallel to Names; nil entry means "unspecified"
}

func (*VirtualModsStmt) stmtNode() {}

// TypeMapEntry is `map[Mods] = Level;` inside a type block.
type TypeMapEntry struct {
	Mods  ModExpr
	Level int64
}

// TypePreserveEntry is `preserve[Mods] = Preserve;` inside a type block.
type TypePreserveEntry struct {
	Mods     ModExpr
	Preserve ModExpr
}

// TypeLevelName is `level_name[N] = "Name";` inside a type block.
type TypeLevelName struct {
	Level int64
	Name  string
}

// TypeDeclStmt is a full `type "NAME" { ... };` block.
type TypeDeclStmt struct {
	Name       string
	Mods       *ModExpr
	Map        []TypeMapEntry
	Preserve   []TypePreserveEntry
	LevelNames []TypeLevelName
}

func (*TypeDeclStmt) stmtNode() {}

// ActionArg is one `name=value` argument to an action call.
type ActionArg struct {
	Name  string
	Value string // raw textual value; resolved by the compiler
}

// ActionExpr is a single `Name(arg=val, ...)` action invocation.
type ActionExpr struct {
	Name string
	Args []ActionArg
}

// InterpretStmt is `interpret SYM(+MODS) { ... };` inside xkb_compatibility.
type InterpretStmt struct {
	Sym          string // keysym name, or "Any"
	MatchOp      string // "AnyOfOrNone", "AnyOf", "AllOf", "Exactly", "" (none)
	Mods         *ModExpr
	Actions      []ActionExpr
	VirtualMod   string
	Repeat       *bool
	LevelOneOnly *bool
}

func (*InterpretStmt) stmtNode() {}

// ModMapStmt is `modifier_map Name { <K1>, <K2>, ... };`.
type ModMapStmt struct {
	Mod  string
	Keys []string
}

func (*ModMapStmt) stmtNode() {}

// LedMapStmt is `indicator "Name" { ... };` inside xkb_compatibility,
// declaring which mods/groups/ctrls light an LED.
type LedMapStmt struct {
	Name        string
	WhichMods   string
	Mods        *ModExpr
	WhichGroups string
	Groups      *ModExpr
	Ctrls       []string
}

func (*LedMapStmt) stmtNode() {}

// KeyLevelSyms is the RHS of `symbols[GroupN]=[sym1, sym2, ...]`.
type KeyLevelSyms struct {
	Group int
	Syms  [][]string // one slice of alternate syms per level
}

// KeyLevelActions is the RHS of `actions[GroupN]=[action1, action2]`.
type KeyLevelActions struct {
	Group   int
	Actions [][]ActionExpr // one slice of actions per level
}

// KeyDeclStmt is a full `key <NAME> { ... };` declaration.
type KeyDeclStmt struct {
	Name        string
	Type        map[int]string // group number -> type name; a bare `type =` is stored under group 1
	Symbols     []KeyLevelSyms
	Actions     []KeyLevelActions
	VirtualMods *ModExpr
	ModMap      *ModExpr
	Repeat      *bool
	Groups      int // explicit groups= N
}

func (*KeyDeclStmt) stmtNode() {}

// GroupNameStmt is `name[GroupN] = "Label";` inside xkb_symbols.
type GroupNameStmt struct {
	Group int
	Name  string
}

func (*GroupNameStmt) stmtNode() {}

// IncludeStmt is a raw, not-yet-resolved `include "expr";` statement; the
// parser expands these before returning a File, so it never appears in a
// finished Section's Statements, but the type is exported for tooling that
// wants to inspect raw trees.
type IncludeStmt struct {
	Expr string
}

func (*IncludeStmt) stmtNode() {}
