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

import "github.com/xkbgo/xkbcommon/parser"

// compileTypes implements §4.4's types pass: the eight real modifiers are
// already pre-seeded on km.Mods by newKeymap; this pass appends declared
// virtual modifiers and builds the type table.
func compileTypes(km *Keymap, sec *parser.Section) error {
	if sec == nil {
		return nil
	}
	for _, stmt := range sec.Statements {
		switch v := stmt.(type) {
		case *parser.VirtualModsStmt:
			if err := declareVirtualMods(km, v); err != nil {
				return err
			}
		case *parser.TypeDeclStmt:
			kt, err := buildKeyType(km, v)
			if err != nil {
				return err
			}
			if existing, ok := km.typesByName[kt.Name]; ok {
				*existing = *kt
			} else {
				km.Types = append(km.Types, kt)
				km.typesByName[kt.Name] = kt
			}
		}
	}
	return nil
}

func declareVirtualMods(km *Keymap, v *parser.VirtualModsStmt) error {
	for i, name := range v.Names {
		atom := km.ctx.Intern(name)
		if idx := km.Mods.ByName(atom); idx >= 0 {
			continue
		}
		var mapping ModMask
		if i < len(v.Masks) && v.Masks[i] != nil {
			mapping = ModMask(*v.Masks[i])
		}
		if _, err := km.Mods.AddVirtual(atom, mapping); err != nil {
			return err
		}
	}
	return nil
}

// resolveModExpr turns a parsed modifier expression into a ModMask over bit
// positions (not mapping values): named modifiers contribute their bit,
// a raw numeric literal ORs in directly, and the "all"/"none"/"any"
// keywords behave per §6.
func resolveModExpr(km *Keymap, me *parser.ModExpr) ModMask {
	if me == nil {
		return 0
	}
	switch me.Keyword {
	case "none":
		return 0
	case "all", "any":
		return ModMask(km.Mods.CanonicalStateMask())
	}
	var mask ModMask
	if me.HasMask {
		mask |= ModMask(me.Mask)
	}
	for _, name := range me.Names {
		atom := km.ctx.Intern(name)
		if idx := km.Mods.ByName(atom); idx >= 0 {
			mask |= ModMask(1) << uint(idx)
		}
	}
	return mask
}

func buildKeyType(km *Keymap, v *parser.TypeDeclStmt) (*KeyType, error) {
	kt := &KeyType{Name: km.ctx.Intern(v.Name)}
	kt.Mods = resolveModExpr(km, v.Mods)

	var numLevels uint32
	for _, m := range v.Map {
		lvl := uint32(m.Level)
		if lvl+1 > numLevels {
			numLevels = lvl + 1
		}
	}
	for _, ln := range v.LevelNames {
		lvl := uint32(ln.Level)
		if lvl+1 > numLevels {
			numLevels = lvl + 1
		}
	}
	if numLevels == 0 {
		numLevels = 1
	}
	kt.NumLevels = numLevels
	kt.LevelNames = make([]Atom, numLevels)
	for _, ln := range v.LevelNames {
		lvl := uint32(ln.Level)
		if lvl < numLevels {
			kt.LevelNames[lvl] = km.ctx.Intern(ln.Name)
		}
	}

	preserves := map[ModMask]ModMask{}
	for _, p := range v.Preserve {
		preserves[resolveModExpr(km, &p.Mods)] = resolveModExpr(km, &p.Preserve)
	}

	entryIndex := map[ModMask]int{}
	for _, m := range v.Map {
		mods := resolveModExpr(km, &m.Mods)
		lvl := uint32(m.Level)
		if lvl >= numLevels {
			return nil, newError(ErrSemantic, "type %q: map entry level %d out of range (num_levels=%d)", v.Name, lvl, numLevels)
		}
		if !subsetOf(mods, kt.Mods) {
			return nil, newError(ErrSemantic, "type %q: entry mods 0x%x are not a subset of the type's mods 0x%x", v.Name, mods, kt.Mods)
		}
		entry := KeyTypeEntry{Mods: mods, Preserve: preserves[mods], Level: lvl}
		if idx, dup := entryIndex[mods]; dup {
			kt.Entries[idx] = entry // a duplicate entry overrides the earlier one
			continue
		}
		entryIndex[mods] = len(kt.Entries)
		kt.Entries = append(kt.Entries, entry)
	}
	return kt, nil
}

func subsetOf(sub, super ModMask) bool {
	return sub&^super == 0
}
