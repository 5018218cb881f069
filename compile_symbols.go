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

import (
	"strconv"

	"github.com/xkbgo/xkbcommon/parser"
)

// compileSymbols implements §4.4's symbols pass: populates each key's
// groups, then (after every key is known) infers missing types, resolves
// the keymap's group count, and applies compat interpretations to levels
// lacking explicit actions.
func compileSymbols(km *Keymap, sec *parser.Section) error {
	if sec == nil {
		return finishSymbols(km)
	}
	for _, stmt := range sec.Statements {
		switch v := stmt.(type) {
		case *parser.GroupNameStmt:
			setGroupName(km, v.Group, km.ctx.Intern(v.Name))
		case *parser.KeyDeclStmt:
			if err := applyKeyDecl(km, v); err != nil {
				return err
			}
		}
	}
	return finishSymbols(km)
}

func setGroupName(km *Keymap, group int, name Atom) {
	idx := group - 1
	if idx < 0 {
		return
	}
	for len(km.GroupNames) <= idx {
		km.GroupNames = append(km.GroupNames, AtomNone)
	}
	km.GroupNames[idx] = name
}

// ensureKey creates a key that a symbols-section key decl named but that
// never appeared in xkb_keycodes, assigning it a synthetic keycode past
// the declared range so it can't collide with a real one.
func ensureKey(km *Keymap, name Atom) *Key {
	if k, ok := km.KeyByName(name); ok {
		return k
	}
	kc := km.MaxKeycode + Keycode(len(km.Keys)) + 1
	k := &Key{Keycode: kc, Name: name, Repeats: true, OutOfRangeGroupAction: GroupActionWrap}
	km.Keys[kc] = k
	km.keyByName[name] = kc
	if kc > km.MaxKeycode {
		km.MaxKeycode = kc
	}
	return k
}

func ensureGroups(k *Key, n int) {
	for len(k.Groups) < n {
		k.Groups = append(k.Groups, Group{})
	}
}

func applyKeyDecl(km *Keymap, v *parser.KeyDeclStmt) error {
	name := km.ctx.Intern(v.Name)
	key, ok := km.KeyByName(name)
	if !ok {
		key = ensureKey(km, name)
	}

	maxGroup := 0
	for _, sy := range v.Symbols {
		if sy.Group > maxGroup {
			maxGroup = sy.Group
		}
	}
	for _, ac := range v.Actions {
		if ac.Group > maxGroup {
			maxGroup = ac.Group
		}
	}
	for g := range v.Type {
		if g > maxGroup {
			maxGroup = g
		}
	}
	if v.Groups > maxGroup {
		maxGroup = v.Groups
	}
	if maxGroup == 0 {
		maxGroup = 1
	}
	ensureGroups(key, maxGroup)

	for _, sy := range v.Symbols {
		idx := sy.Group - 1
		if idx < 0 || idx >= len(key.Groups) {
			continue
		}
		g := &key.Groups[idx]
		g.Levels = make([]Level, len(sy.Syms))
		for li, level := range sy.Syms {
			syms := make([]Keysym, 0, len(level))
			for _, name := range level {
				syms = append(syms, resolveSymToken(km, name))
			}
			g.Levels[li].Syms = syms
		}
	}

	for _, ac := range v.Actions {
		idx := ac.Group - 1
		if idx < 0 || idx >= len(key.Groups) {
			continue
		}
		g := &key.Groups[idx]
		g.ExplicitActions = true
		for len(g.Levels) < len(ac.Actions) {
			g.Levels = append(g.Levels, Level{})
		}
		for li, exprs := range ac.Actions {
			acts := make([]Action, 0, len(exprs))
			for _, ae := range exprs {
				act, err := buildAction(km, ae)
				if err != nil {
					return err
				}
				acts = append(acts, act)
			}
			g.Levels[li].Actions = acts
		}
	}

	for groupNum, typeName := range v.Type {
		idx := groupNum - 1
		if idx < 0 || idx >= len(key.Groups) {
			continue
		}
		if kt, ok := km.typesByName[km.ctx.Intern(typeName)]; ok {
			key.Groups[idx].Type = kt
			key.Groups[idx].ExplicitType = true
		}
	}

	if v.VirtualMods != nil {
		key.VModMap |= resolveModExpr(km, v.VirtualMods)
		key.ExplicitFlags |= ExplicitVModmap
	}
	if v.Repeat != nil {
		key.Repeats = *v.Repeat
		key.ExplicitFlags |= ExplicitRepeat
	}
	if len(v.Symbols) > 0 {
		key.ExplicitFlags |= ExplicitSymbols
	}

	return nil
}

func resolveSymToken(km *Keymap, tok string) Keysym {
	if tok == "" {
		return KeysymNone
	}
	if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
		return Keysym(n)
	}
	if sym, ok := KeysymFromName(tok); ok {
		return sym
	}
	km.ctx.log(LogWarning, MsgUnresolvedKeysym, "unresolved keysym name %q", tok)
	return KeysymNone
}

// finishSymbols runs the cross-key steps that must happen after every key
// declaration has been seen: type inference, group-count resolution, and
// compat-interpretation application.
func finishSymbols(km *Keymap) error {
	resolveGroupCount(km)
	for _, key := range km.Keys {
		for i := range key.Groups {
			g := &key.Groups[i]
			if g.Type == nil {
				g.Type = inferKeyType(km, g)
			}
			if len(g.Levels) < int(g.Type.NumLevels) {
				levels := make([]Level, g.Type.NumLevels)
				copy(levels, g.Levels)
				g.Levels = levels
			}
		}
	}
	km.Mods.ResolveVirtual()
	for _, key := range km.Keys {
		applyInterpretations(km, key)
	}
	return nil
}

func resolveGroupCount(km *Keymap) {
	cap := MaxGroupsV2
	if km.Format == FormatV1 {
		cap = MaxGroupsV1
	}
	var max int
	for _, key := range km.Keys {
		if len(key.Groups) > cap {
			key.Groups = key.Groups[:cap]
		}
		if len(key.Groups) > max {
			max = len(key.Groups)
		}
	}
	km.NumGroups = uint32(max)
}

// inferKeyType picks a built-in type by level count and the syms present,
// per §4.4: "single-level -> ONE_LEVEL; two-level alphabetic -> ALPHABETIC
// etc., based on a built-in type-inference table."
func inferKeyType(km *Keymap, g *Group) *KeyType {
	name := "ONE_LEVEL"
	switch {
	case len(g.Levels) <= 1:
		name = "ONE_LEVEL"
	case len(g.Levels) == 2:
		if isAlphabeticGroup(g) {
			name = "ALPHABETIC"
		} else {
			name = "TWO_LEVEL"
		}
	case len(g.Levels) == 4:
		name = "FOUR_LEVEL"
	default:
		name = "TWO_LEVEL"
	}
	if kt, ok := km.typesByName[km.ctx.Intern(name)]; ok {
		return kt
	}
	return builtinKeyType(km, name, len(g.Levels))
}

func isAlphabeticGroup(g *Group) bool {
	if len(g.Levels) != 2 || len(g.Levels[0].Syms) == 0 {
		return false
	}
	sym := g.Levels[0].Syms[0]
	return sym.ToUpper() != sym
}

// builtinKeyType synthesizes one of the standard key types the real xkb
// base/types file declares, for keymaps (or test fixtures) that include no
// explicit xkb_types section of their own.
func builtinKeyType(km *Keymap, name string, numLevels int) *KeyType {
	kt := &KeyType{Name: km.ctx.Intern(name), NumLevels: uint32(numLevels)}
	shift := km.Mods.MaskFromNames(km.ctx.Intern("Shift"))
	lock := km.Mods.MaskFromNames(km.ctx.Intern("Lock"))
	switch name {
	case "ONE_LEVEL":
		kt.Mods = 0
		kt.Entries = []KeyTypeEntry{{Mods: 0, Level: 0}}
	case "TWO_LEVEL":
		kt.Mods = shift
		kt.Entries = []KeyTypeEntry{{Mods: 0, Level: 0}, {Mods: shift, Level: 1}}
	case "ALPHABETIC":
		kt.Mods = shift | lock
		kt.Entries = []KeyTypeEntry{
			{Mods: 0, Level: 0},
			{Mods: shift, Level: 1},
			{Mods: lock, Level: 1},
			{Mods: shift | lock, Level: 0},
		}
	case "FOUR_LEVEL":
		level3 := km.Mods.MaskFromNames(km.ctx.Intern("LevelThree"))
		kt.Mods = shift | level3
		kt.Entries = []KeyTypeEntry{
			{Mods: 0, Level: 0},
			{Mods: shift, Level: 1},
			{Mods: level3, Level: 2},
			{Mods: shift | level3, Level: 3},
		}
	default:
		kt.Mods = 0
		kt.Entries = []KeyTypeEntry{{Mods: 0, Level: 0}}
	}
	km.Types = append(km.Types, kt)
	km.typesByName[kt.Name] = kt
	return kt
}

// applyInterpretations walks every group/level of key not marked
// explicit_actions and assigns the first matching interpretation's action
// set and vmodmap contribution, per §4.4's symbols-pass rule.
func applyInterpretations(km *Keymap, key *Key) {
	for gi := range key.Groups {
		g := &key.Groups[gi]
		if g.ExplicitActions || g.Type == nil {
			continue
		}
		for li := range g.Levels {
			lvl := &g.Levels[li]
			if len(lvl.Syms) == 0 {
				continue
			}
			sym := lvl.Syms[0]
			levelMods := levelModsForLevel(g.Type, uint32(li))
			for _, in := range km.Interps {
				if in.LevelOneOnly && li != 0 {
					continue
				}
				if !in.matches(sym, levelMods) {
					continue
				}
				lvl.Actions = append([]Action{}, in.Actions...)
				if in.VirtualMod >= 0 {
					key.VModMap |= ModMask(1) << uint(in.VirtualMod)
				}
				if in.RepeatSet && key.ExplicitFlags&ExplicitRepeat == 0 {
					key.Repeats = in.Repeat
				}
				break
			}
		}
	}
}

// levelModsForLevel returns the first entry's mods that select li, or 0.
func levelModsForLevel(kt *KeyType, li uint32) ModMask {
	for _, e := range kt.Entries {
		if e.Level == li {
			return e.Mods
		}
	}
	return 0
}
