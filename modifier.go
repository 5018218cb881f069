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

// ModMask is a bitmask over the modifier set: bits 0..7 are the real
// modifiers in their fixed order, bits 8..31 are assigned to virtual
// modifiers in declaration order.
type ModMask uint32

// ModKind distinguishes the eight fixed real modifiers from the up-to-24
// virtual modifiers a keymap may declare.
type ModKind int

const (
	ModKindReal ModKind = iota
	ModKindVirtual
)

// The eight real modifiers, in the fixed canonical order required by §3 and
// §8: index i always has mapping 1<<i.
const (
	ModIndexShift = iota
	ModIndexLock
	ModIndexControl
	ModIndexMod1
	ModIndexMod2
	ModIndexMod3
	ModIndexMod4
	ModIndexMod5
	NumRealMods
)

// MaxMods is the hard cap on the total number of modifiers (real + virtual)
// a keymap may declare (§3, §7 ErrLimit).
const MaxMods = 32

var realModNames = [NumRealMods]string{
	"Shift", "Lock", "Control", "Mod1", "Mod2", "Mod3", "Mod4", "Mod5",
}

// Modifier is one entry in a Keymap's modifier set: {name, kind, mapping}.
// A real modifier's mapping is always 1<<index. A virtual modifier's
// mapping is an arbitrary mask declared in compat/symbols and resolved to
// real bits by the compiler (§4.4).
type Modifier struct {
	Name    Atom
	Kind    ModKind
	Index   int // position in the keymap's Mods slice; real mods are 0..7
	Mapping ModMask
}

// ModSet is the fixed-prefix modifier table carried by every Keymap: the
// eight real modifiers (always present, in order) followed by up to 24
// virtual modifiers.
type ModSet struct {
	Mods []Modifier
}

// newModSet seeds a ModSet with the eight real modifiers.
func newModSet(km *Keymap) *ModSet {
	ms := &ModSet{Mods: make([]Modifier, NumRealMods)}
	for i := 0; i < NumRealMods; i++ {
		ms.Mods[i] = Modifier{
			Name:    km.ctx.Intern(realModNames[i]),
			Kind:    ModKindReal,
			Index:   i,
			Mapping: ModMask(1) << uint(i),
		}
	}
	return ms
}

// AddVirtual appends a virtual modifier with the given name and declared
// mapping, returning its index, or -1 and ErrLimit if the modifier set is
// already at MaxMods.
func (ms *ModSet) AddVirtual(name Atom, mapping ModMask) (int, error) {
	if len(ms.Mods) >= MaxMods {
		return -1, newError(ErrLimit, "modifier set already has the maximum of %d modifiers", MaxMods)
	}
	idx := len(ms.Mods)
	ms.Mods = append(ms.Mods, Modifier{
		Name:    name,
		Kind:    ModKindVirtual,
		Index:   idx,
		Mapping: mapping,
	})
	return idx, nil
}

// ByName returns the index of the modifier with the given name, or -1.
func (ms *ModSet) ByName(name Atom) int {
	for i := range ms.Mods {
		if ms.Mods[i].Name == name {
			return i
		}
	}
	return -1
}

// CanonicalStateMask is the bitwise OR of all real-modifier bits plus every
// virtual modifier's declared mapping (§3, §8's invariant). Bits outside it
// are masked off from any runtime input.
func (ms *ModSet) CanonicalStateMask() ModMask {
	var mask ModMask = 0xff
	for _, m := range ms.Mods {
		if m.Kind == ModKindVirtual {
			mask |= m.Mapping
		}
	}
	return mask
}

// ResolveVirtual reduces each virtual modifier's mapping to only
// real-modifier bits, by iteratively substituting each set bit with the
// mapping of the modifier it names until a fixpoint is reached or only real
// bits remain (§4.4's virtual-modifier mapping resolution). It must be
// called once, after all passes have declared every modifier.
func (ms *ModSet) ResolveVirtual() {
	for i := range ms.Mods {
		if ms.Mods[i].Kind != ModKindVirtual {
			continue
		}
		ms.Mods[i].Mapping = ms.reduce(ms.Mods[i].Mapping, make(map[int]bool))
	}
}

// reduce expands a mask's virtual bits into real bits, guarding against
// cycles via the visiting set.
func (ms *ModSet) reduce(mask ModMask, visiting map[int]bool) ModMask {
	var real ModMask
	for i := 0; i < len(ms.Mods); i++ {
		bit := ModMask(1) << uint(i)
		if mask&bit == 0 {
			continue
		}
		if ms.Mods[i].Kind == ModKindReal {
			real |= bit
			continue
		}
		if visiting[i] {
			continue // cycle; drop this bit rather than loop forever
		}
		visiting[i] = true
		real |= ms.reduce(ms.Mods[i].Mapping, visiting)
		delete(visiting, i)
	}
	return real
}

// EffectiveMask ANDs mask with the canonical state mask, then expands any
// remaining virtual bits to the real bits they resolve to (§4.4). Call
// after ResolveVirtual.
func (ms *ModSet) EffectiveMask(mask ModMask) ModMask {
	mask &= ms.CanonicalStateMask()
	return ms.reduce(mask, make(map[int]bool))
}

// MaskFromNames ORs together the index bits of the named modifiers; unknown
// names contribute nothing.
func (ms *ModSet) MaskFromNames(names ...Atom) ModMask {
	var mask ModMask
	for _, n := range names {
		if i := ms.ByName(n); i >= 0 {
			mask |= ModMask(1) << uint(i)
		}
	}
	return mask
}
