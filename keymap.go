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

package xkb

// Keycode is an unsigned keycode in [MinKeycode, MaxKeycode]. The library
// treats it as an opaque integer; collaborators translate their native
// codes (e.g. Linux evdev + 8, confirmed by the helixml-helix reference
// file in the example pack) before calling in.
type Keycode uint32

// MaxKeycodeCap is the implementation's hard ceiling on keycode values
// (§3).
const MaxKeycodeCap Keycode = 0x0FFF

// OutOfRangeGroupAction selects how a key with fewer groups than the
// keymap resolves a higher effective group index (§4.4).
type OutOfRangeGroupAction int

const (
	GroupActionWrap OutOfRangeGroupAction = iota
	GroupActionSaturate
	GroupActionRedirect
)

// ExplicitFlags records which aspects of a key were set explicitly in the
// symbols section, rather than inferred by the compiler, per §3's Key
// struct and §4.4's "no group has an explicit type" rule.
type ExplicitFlags uint8

const (
	ExplicitSymbols ExplicitFlags = 1 << iota
	ExplicitInterp
	ExplicitTypes
	ExplicitVModmap
	ExplicitRepeat
)

// KeyTypeEntry maps one modifier sub-mask to a level within its KeyType.
type KeyTypeEntry struct {
	Mods     ModMask
	Preserve ModMask // bits of Mods that survive a type transition
	Level    uint32
}

// KeyType declares how a modifier sub-mask selects a level within a group
// (§3, §4.4's types pass).
type KeyType struct {
	Name       Atom
	Mods       ModMask
	NumLevels  uint32
	LevelNames []Atom
	Entries    []KeyTypeEntry
}

// findLevel returns the entry matching effMods exactly, or (0, false) if
// none does, so the caller falls back to level 0 per §4.6 step 2.
func (kt *KeyType) findLevel(effMods ModMask) (uint32, bool) {
	for _, e := range kt.Entries {
		if e.Mods == (effMods & kt.Mods) {
			return e.Level, true
		}
	}
	return 0, false
}

// preserveFor returns the Preserve mask of the entry matching effMods, or 0.
func (kt *KeyType) preserveFor(effMods ModMask) ModMask {
	for _, e := range kt.Entries {
		if e.Mods == (effMods & kt.Mods) {
			return e.Preserve
		}
	}
	return 0
}

// Level is one row of a Group: the keysyms and actions available at that
// level. A single-symbol, single-action level is the common case; Syms and
// Actions are always allocated as slices for uniformity (the "inline"
// representation mentioned in §3 is the C ABI's cache-friendliness
// concern, not something a Go slice needs to reproduce).
type Level struct {
	Syms    []Keysym
	Actions []Action
}

// Group is one of up to MaxGroups layouts for a key.
type Group struct {
	Type            *KeyType
	Levels          []Level
	ExplicitType    bool
	ExplicitActions bool
}

// MaxGroupsV1 and MaxGroupsV2 are the per-format caps on group count named
// in §3 and §4.4.
const (
	MaxGroupsV1 = 4
	MaxGroupsV2 = 32
)

// Key is one physical/logical key position in the keymap.
type Key struct {
	Keycode                Keycode
	Name                   Atom
	ModMap                 ModMask
	VModMap                ModMask
	Repeats                bool
	OutOfRangeGroupAction  OutOfRangeGroupAction
	OutOfRangeGroupNumber  uint32
	Groups                 []Group
	ExplicitFlags          ExplicitFlags
}

// NumGroups returns the number of groups this key declares, independent of
// the keymap-wide group count.
func (k *Key) NumGroups() int { return len(k.Groups) }

// MatchOp is the matching discipline an Interpretation applies between the
// level's ambient modifiers and the interpretation's Mods (§3).
type MatchOp int

const (
	MatchNone MatchOp = iota
	MatchAnyOrNone
	MatchAny
	MatchAll
	MatchExactly
)

// Interpretation is a compat-section rule mapping a keysym (plus modifier
// match) to an implicit action/flag set for keys without explicit actions
// (§3, §4.4's compat pass).
type Interpretation struct {
	Sym           Keysym // KeysymAny matches every keysym
	MatchOp       MatchOp
	Mods          ModMask
	VirtualMod    int // index into the keymap's ModSet, or -1
	LevelOneOnly  bool
	Repeat        bool
	RepeatSet     bool
	Actions       []Action
}

// matches reports whether this interpretation applies to a level whose
// first sym is sym and whose ambient modifiers (already ANDed with the
// group type's Mods) are levelMods, per §4.4's symbols-pass rule (a).(b).
func (in *Interpretation) matches(sym Keysym, levelMods ModMask) bool {
	if in.Sym != KeysymAny && in.Sym != sym {
		return false
	}
	switch in.MatchOp {
	case MatchNone:
		return levelMods == 0
	case MatchAnyOrNone:
		return true
	case MatchAny:
		return levelMods&in.Mods != 0 || in.Mods == 0
	case MatchAll:
		return levelMods&in.Mods == in.Mods
	case MatchExactly:
		return levelMods == in.Mods
	default:
		return false
	}
}

// LedComponent names which state components a LED can watch.
type LedComponent uint8

const (
	LedDepressed LedComponent = 1 << iota
	LedLatched
	LedLocked
	LedEffective
)

// Led is an indicator declared by the compat section (§3).
type Led struct {
	Name         Atom
	WhichGroups  LedComponent
	Groups       uint32 // bitmask of group indices
	WhichMods    LedComponent
	Mods         ModMask
	Ctrls        Controls
}

// Format distinguishes the legacy X11-compatible text format (V1, capped
// at 4 groups, latch encoded via legacy actions) from the extended format
// (V2: up to 32 groups, multiple keysyms/actions per level, explicit
// lock/latch-on-press fields). Grounded on keymap-formats.c.
type Format int

const (
	FormatV1 Format = 1
	FormatV2 Format = 2
)

// Keymap is the immutable, reference-counted compiled result of §4.4's
// passes: the full set of keys, groups, levels, key types, interpretations,
// LEDs, and the modifier set. It is safe for concurrent reads once
// compiled; see §5.
type Keymap struct {
	ctx    *Context
	refs   int32
	Format Format

	MinKeycode Keycode
	MaxKeycode Keycode

	Mods *ModSet

	Types          []*KeyType
	typesByName    map[Atom]*KeyType
	Interps        []*Interpretation
	Leds           []*Led
	Keys           map[Keycode]*Key
	aliases        map[Atom]Atom // alias atom -> real atom
	keyByName      map[Atom]Keycode

	NumGroups uint32

	GroupNames []Atom // name[GroupN] = "..."
}

func newKeymap(ctx *Context) *Keymap {
	km := &Keymap{
		ctx:         ctx,
		refs:        1,
		Format:      FormatV2,
		typesByName: make(map[Atom]*KeyType),
		Keys:        make(map[Keycode]*Key),
		aliases:     make(map[Atom]Atom),
		keyByName:   make(map[Atom]Keycode),
	}
	km.Mods = newModSet(km)
	return km
}

// Ref and Unref mirror Context's reference-counting API (§5); States hold
// one Ref to their Keymap.
func (km *Keymap) Ref() *Keymap {
	km.refs++
	return km
}

func (km *Keymap) Unref() {
	km.refs--
}

// Context returns the Context this Keymap was compiled under.
func (km *Keymap) Context() *Context { return km.ctx }

// ResolveAlias follows an alias atom to the real key name it stands for,
// returning name unchanged if it isn't an alias.
func (km *Keymap) ResolveAlias(name Atom) Atom {
	seen := make(map[Atom]bool)
	for {
		real, ok := km.aliases[name]
		if !ok || seen[name] {
			return name
		}
		seen[name] = true
		name = real
	}
}

// KeyByName looks up a key by its symbolic name (resolving aliases), or
// returns (0, false).
func (km *Keymap) KeyByName(name Atom) (*Key, bool) {
	name = km.ResolveAlias(name)
	kc, ok := km.keyByName[name]
	if !ok {
		return nil, false
	}
	k, ok := km.Keys[kc]
	return k, ok
}

// Key looks up a key by keycode.
func (km *Keymap) Key(kc Keycode) (*Key, bool) {
	k, ok := km.Keys[kc]
	return k, ok
}

// TypeByName looks up a key type by name.
func (km *Keymap) TypeByName(name Atom) (*KeyType, bool) {
	t, ok := km.typesByName[name]
	return t, ok
}

// EffectiveGroup resolves the state's requested group against a key's
// NumGroups using its OutOfRangeGroupAction (§4.4).
func (k *Key) EffectiveGroup(requested int32) int {
	n := len(k.Groups)
	if n == 0 {
		return -1
	}
	if requested >= 0 && int(requested) < n {
		return int(requested)
	}
	switch k.OutOfRangeGroupAction {
	case GroupActionSaturate:
		if requested < 0 {
			return 0
		}
		return n - 1
	case GroupActionRedirect:
		r := int(k.OutOfRangeGroupNumber)
		if r < 0 || r >= n {
			return 0
		}
		return r
	default: // Wrap
		m := int(requested) % n
		if m < 0 {
			m += n
		}
		return m
	}
}
