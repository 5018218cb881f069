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

// Equal implements the observational-equality comparison required by §8's
// round-trip law: parse(serialize(K)) must produce a K' indistinguishable
// from K across modifiers, key types, LEDs, keycodes, and symbols. Atom
// values themselves are not compared (the two keymaps may come from
// different Contexts); their text is.
//
// Grounded on keymap-compare.c's approach of comparing by name/content
// rather than by pointer identity, generalized to Go value comparison.
func (km *Keymap) Equal(other *Keymap) bool {
	if km == nil || other == nil {
		return km == other
	}
	if km.MinKeycode != other.MinKeycode || km.MaxKeycode != other.MaxKeycode {
		return false
	}
	if km.NumGroups != other.NumGroups {
		return false
	}
	if !modSetsEqual(km.Mods, other.Mods) {
		return false
	}
	for i, m := range km.Mods.Mods {
		if km.ctx.AtomText(m.Name) != other.ctx.AtomText(other.Mods.Mods[i].Name) {
			return false
		}
	}
	if len(km.Types) != len(other.Types) {
		return false
	}
	for _, t := range km.Types {
		ot := other.lookupTypeByText(km.ctx.AtomText(t.Name))
		if ot == nil || !keyTypesEqual(t, ot) {
			return false
		}
	}
	if len(km.Keys) != len(other.Keys) {
		return false
	}
	for kc, k := range km.Keys {
		ok2, found := other.Keys[kc]
		if !found {
			return false
		}
		if !keysEqual(km, k, other, ok2) {
			return false
		}
	}
	if len(km.Leds) != len(other.Leds) {
		return false
	}
	for i, a := range km.Leds {
		b := other.Leds[i]
		if km.ctx.AtomText(a.Name) != other.ctx.AtomText(b.Name) || a.WhichMods != b.WhichMods ||
			a.Mods != b.Mods || a.WhichGroups != b.WhichGroups || a.Groups != b.Groups || a.Ctrls != b.Ctrls {
			return false
		}
	}
	return true
}

// lookupTypeByText exists because two Keymaps may use different Contexts
// (and therefore different Atom numbering) even when they describe the
// same keyboard; comparisons must go through text.
func (km *Keymap) lookupTypeByText(name string) *KeyType {
	for _, t := range km.Types {
		if km.ctx.AtomText(t.Name) == name {
			return t
		}
	}
	return nil
}

func keyTypesEqual(a, b *KeyType) bool {
	if a.Mods != b.Mods || a.NumLevels != b.NumLevels {
		return false
	}
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			return false
		}
	}
	return true
}

func modSetsEqual(a, b *ModSet) bool {
	if len(a.Mods) != len(b.Mods) {
		return false
	}
	for i := range a.Mods {
		if a.Mods[i].Kind != b.Mods[i].Kind || a.Mods[i].Mapping != b.Mods[i].Mapping {
			return false
		}
	}
	return true
}

func keysEqual(kmA *Keymap, a *Key, kmB *Keymap, b *Key) bool {
	if kmA.ctx.AtomText(a.Name) != kmB.ctx.AtomText(b.Name) {
		return false
	}
	if a.ModMap != b.ModMap || a.VModMap != b.VModMap || a.Repeats != b.Repeats {
		return false
	}
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		ga, gb := a.Groups[i], b.Groups[i]
		if len(ga.Levels) != len(gb.Levels) {
			return false
		}
		for j := range ga.Levels {
			la, lb := ga.Levels[j], gb.Levels[j]
			if len(la.Syms) != len(lb.Syms) {
				return false
			}
			for s := range la.Syms {
				if la.Syms[s] != lb.Syms[s] {
					return false
				}
			}
		}
	}
	return true
}
