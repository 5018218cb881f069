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
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Serialize renders km as XKB text that Context.NewKeymapFromString can
// parse back into an equal keymap (§4.5, §8's round-trip law). Keys are
// emitted in keycode order and types in the keymap's table order, so two
// serializations of the same keymap are byte-identical. The keycode range
// is not written: the reparsed keymap's MinKeycode and MaxKeycode are its
// lowest and highest declared keycodes, so a keymap whose range extends
// past its keys does not round-trip to an equal one.
func (km *Keymap) Serialize() string {
	var buf bytes.Buffer
	km.writeKeycodes(&buf)
	km.writeTypes(&buf)
	km.writeCompat(&buf)
	km.writeSymbols(&buf)
	return buf.String()
}

func (km *Keymap) sortedKeycodes() []Keycode {
	kcs := make([]Keycode, 0, len(km.Keys))
	for kc := range km.Keys {
		kcs = append(kcs, kc)
	}
	sort.Slice(kcs, func(i, j int) bool { return kcs[i] < kcs[j] })
	return kcs
}

func (km *Keymap) writeKeycodes(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "xkb_keycodes \"generated\" {\n")
	for _, kc := range km.sortedKeycodes() {
		k := km.Keys[kc]
		fmt.Fprintf(buf, "\t<%s> = %d;\n", km.ctx.AtomText(k.Name), kc)
	}
	aliasNames := make([]string, 0, len(km.aliases))
	for a := range km.aliases {
		aliasNames = append(aliasNames, km.ctx.AtomText(a))
	}
	sort.Strings(aliasNames)
	for _, a := range aliasNames {
		real := km.aliases[km.ctx.Intern(a)]
		fmt.Fprintf(buf, "\talias <%s> = <%s>;\n", a, km.ctx.AtomText(real))
	}
	for i, led := range km.Leds {
		fmt.Fprintf(buf, "\tindicator %d = \"%s\";\n", i+1, km.ctx.AtomText(led.Name))
	}
	buf.WriteString("};\n")
}

func (km *Keymap) writeTypes(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "xkb_types \"generated\" {\n")
	virtualNames := make([]string, 0)
	for _, m := range km.Mods.Mods {
		if m.Kind == ModKindVirtual {
			virtualNames = append(virtualNames, km.ctx.AtomText(m.Name))
		}
	}
	if len(virtualNames) > 0 {
		fmt.Fprintf(buf, "\tvirtual_modifiers %s;\n", strings.Join(virtualNames, ","))
	}
	for _, kt := range km.Types {
		fmt.Fprintf(buf, "\ttype \"%s\" {\n", km.ctx.AtomText(kt.Name))
		fmt.Fprintf(buf, "\t\tmodifiers = %s;\n", km.maskNames(kt.Mods))
		for _, e := range kt.Entries {
			fmt.Fprintf(buf, "\t\tmap[%s] = %d;\n", km.maskNames(e.Mods), e.Level)
			if e.Preserve != 0 {
				fmt.Fprintf(buf, "\t\tpreserve[%s] = %s;\n", km.maskNames(e.Mods), km.maskNames(e.Preserve))
			}
		}
		for i, name := range kt.LevelNames {
			if name == AtomNone {
				continue
			}
			fmt.Fprintf(buf, "\t\tlevel_name[%d] = \"%s\";\n", i, km.ctx.AtomText(name))
		}
		buf.WriteString("\t};\n")
	}
	buf.WriteString("};\n")
}

func (km *Keymap) writeCompat(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "xkb_compatibility \"generated\" {\n")
	for _, in := range km.Interps {
		symName := "Any"
		if in.Sym != KeysymAny {
			symName = in.Sym.Name()
		}
		op := matchOpName(in.MatchOp)
		if op == "" {
			fmt.Fprintf(buf, "\tinterpret %s {\n", symName)
		} else {
			fmt.Fprintf(buf, "\tinterpret %s+%s(%s) {\n", symName, op, km.maskNames(in.Mods))
		}
		if in.VirtualMod >= 0 && in.VirtualMod < len(km.Mods.Mods) {
			fmt.Fprintf(buf, "\t\tvirtualModifier = %s;\n", km.ctx.AtomText(km.Mods.Mods[in.VirtualMod].Name))
		}
		if in.Repeat {
			buf.WriteString("\t\trepeat = True;\n")
		}
		if in.LevelOneOnly {
			buf.WriteString("\t\tlevelOneOnly = True;\n")
		}
		for _, act := range in.Actions {
			fmt.Fprintf(buf, "\t\taction = %s;\n", km.actionLiteral(act))
		}
		buf.WriteString("\t};\n")
	}

	for _, kc := range km.sortedKeycodes() {
		k := km.Keys[kc]
		if k.ModMap == 0 {
			continue
		}
		for i := 0; i < NumRealMods; i++ {
			if k.ModMap&(ModMask(1)<<uint(i)) == 0 {
				continue
			}
			fmt.Fprintf(buf, "\tmodifier_map %s { <%s> };\n", km.ctx.AtomText(km.Mods.Mods[i].Name), km.ctx.AtomText(k.Name))
		}
	}

	for _, led := range km.Leds {
		fmt.Fprintf(buf, "\tindicator \"%s\" {\n", km.ctx.AtomText(led.Name))
		if led.WhichMods != 0 {
			fmt.Fprintf(buf, "\t\twhichModState = %s;\n", ledComponentName(led.WhichMods))
		}
		if led.Mods != 0 {
			fmt.Fprintf(buf, "\t\tmodifiers = %s;\n", km.maskNames(led.Mods))
		}
		if led.WhichGroups != 0 {
			fmt.Fprintf(buf, "\t\twhichGroupState = %s;\n", ledComponentName(led.WhichGroups))
		}
		if led.Groups != 0 {
			fmt.Fprintf(buf, "\t\tgroups = 0x%x;\n", led.Groups)
		}
		if led.Ctrls != 0 {
			fmt.Fprintf(buf, "\t\tcontrols = %s;\n", controlsName(led.Ctrls))
		}
		buf.WriteString("\t};\n")
	}
	buf.WriteString("};\n")
}

func (km *Keymap) writeSymbols(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "xkb_symbols \"generated\" {\n")
	for i, name := range km.GroupNames {
		if name == AtomNone {
			continue
		}
		fmt.Fprintf(buf, "\tname[Group%d] = \"%s\";\n", i+1, km.ctx.AtomText(name))
	}
	for _, kc := range km.sortedKeycodes() {
		k := km.Keys[kc]
		if !k.hasExplicitSymbolsContent() {
			continue
		}
		fmt.Fprintf(buf, "\tkey <%s> {\n", km.ctx.AtomText(k.Name))
		for gi, g := range k.Groups {
			if len(g.Levels) == 0 {
				continue
			}
			if g.ExplicitType && g.Type != nil {
				fmt.Fprintf(buf, "\t\ttype[Group%d] = \"%s\";\n", gi+1, km.ctx.AtomText(g.Type.Name))
			}
			syms := make([]string, len(g.Levels))
			for li, lvl := range g.Levels {
				names := make([]string, len(lvl.Syms))
				for si, s := range lvl.Syms {
					names[si] = s.Name()
				}
				if len(names) == 1 {
					syms[li] = names[0]
				} else if len(names) == 0 {
					syms[li] = "NoSymbol"
				} else {
					syms[li] = "{ " + strings.Join(names, ", ") + " }"
				}
			}
			fmt.Fprintf(buf, "\t\tsymbols[Group%d] = [ %s ];\n", gi+1, strings.Join(syms, ", "))
			if g.ExplicitActions {
				acts := make([]string, len(g.Levels))
				for li, lvl := range g.Levels {
					lits := make([]string, len(lvl.Actions))
					for ai, a := range lvl.Actions {
						lits[ai] = km.actionLiteral(a)
					}
					if len(lits) == 0 {
						acts[li] = "NoAction()"
					} else {
						acts[li] = strings.Join(lits, ", ")
					}
				}
				fmt.Fprintf(buf, "\t\tactions[Group%d] = [ %s ];\n", gi+1, strings.Join(acts, ", "))
			}
		}
		if k.ExplicitFlags&ExplicitVModmap != 0 && k.VModMap != 0 {
			fmt.Fprintf(buf, "\t\tvirtualMods = %s;\n", km.maskNames(k.VModMap))
		}
		if k.ExplicitFlags&ExplicitRepeat != 0 || !k.Repeats {
			fmt.Fprintf(buf, "\t\trepeat = %t;\n", k.Repeats)
		}
		buf.WriteString("\t};\n")
	}
	buf.WriteString("};\n")
}

// hasExplicitSymbolsContent reports whether this key has anything worth
// re-emitting into an xkb_symbols section.
func (k *Key) hasExplicitSymbolsContent() bool {
	if k.ExplicitFlags&(ExplicitSymbols|ExplicitVModmap|ExplicitRepeat) != 0 {
		return true
	}
	for _, g := range k.Groups {
		if g.ExplicitType || g.ExplicitActions {
			return true
		}
	}
	return false
}

// maskNames renders a ModMask as a "+"-joined sum of the keymap's modifier
// names, or "none" for an empty mask.
func (km *Keymap) maskNames(mask ModMask) string {
	if mask == 0 {
		return "none"
	}
	var names []string
	for i, m := range km.Mods.Mods {
		if mask&(ModMask(1)<<uint(i)) != 0 {
			names = append(names, km.ctx.AtomText(m.Name))
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%x", uint32(mask))
	}
	return strings.Join(names, "+")
}

func matchOpName(op MatchOp) string {
	switch op {
	case MatchNone:
		return "NoneOf"
	case MatchAnyOrNone:
		return ""
	case MatchAny:
		return "AnyOf"
	case MatchAll:
		return "AllOf"
	case MatchExactly:
		return "Exactly"
	default:
		return ""
	}
}

func ledComponentName(c LedComponent) string {
	var parts []string
	if c&LedDepressed != 0 {
		parts = append(parts, "base")
	}
	if c&LedLatched != 0 {
		parts = append(parts, "latched")
	}
	if c&LedLocked != 0 {
		parts = append(parts, "locked")
	}
	if c&LedEffective != 0 {
		parts = append(parts, "effective")
	}
	if len(parts) == 0 {
		return "base"
	}
	return strings.Join(parts, "+")
}

func controlsName(c Controls) string {
	var parts []string
	if c&ControlRepeat != 0 {
		parts = append(parts, "repeat")
	}
	if c&ControlSlow != 0 {
		parts = append(parts, "slow")
	}
	if c&ControlSticky != 0 {
		parts = append(parts, "sticky")
	}
	if c&ControlMouseKeys != 0 {
		parts = append(parts, "mousekeys")
	}
	if c&ControlBell != 0 {
		parts = append(parts, "bell")
	}
	if c&ControlIgnoreGroupLock != 0 {
		parts = append(parts, "ignoreGroupLock")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// actionLiteral renders act as the Name(arg=val, ...) textual form the
// parser's parseActionExpr accepts, the inverse of buildAction.
func (km *Keymap) actionLiteral(act Action) string {
	switch a := act.(type) {
	case ModAction:
		return fmt.Sprintf("%s(mods=%s%s)", modActionName(a.Op), km.maskNames(a.Mods), flagArgs(a.Flags))
	case GroupAction:
		return fmt.Sprintf("%s(group=%s%s)", groupActionName(a.Op), groupDeltaLiteral(a.Group), flagArgs(a.Flags))
	case TerminateAction:
		return "Terminate()"
	case SwitchScreenAction:
		screen := fmt.Sprintf("%d", a.Screen)
		if !a.Absolute {
			screen = "+" + screen
		}
		return fmt.Sprintf("SwitchScreen(screen=%s)", screen)
	case PointerAction:
		return km.pointerActionLiteral(a)
	case ControlAction:
		name := "SetControls"
		if a.Op == ControlLock {
			name = "LockControls"
		}
		return fmt.Sprintf("%s(controls=%s)", name, controlsName(a.Controls))
	case PrivateAction:
		return fmt.Sprintf("Private(type=%d,data=%q)", a.Type, string(a.Data))
	case VoidAction:
		return "NoAction()"
	default:
		return "NoAction()"
	}
}

func (km *Keymap) pointerActionLiteral(a PointerAction) string {
	switch a.Op {
	case PointerMove:
		x, y := fmt.Sprintf("%d", a.X), fmt.Sprintf("%d", a.Y)
		if a.Flags&ActionAbsolute == 0 {
			x, y = "+"+x, "+"+y
		}
		return fmt.Sprintf("MovePtr(x=%s,y=%s)", x, y)
	case PointerButton:
		return fmt.Sprintf("PtrBtn(button=%d)", a.Button)
	case PointerLock:
		return fmt.Sprintf("LockPtrBtn(button=%d)", a.Button)
	default:
		return "SetPtrDflt()"
	}
}

func modActionName(op ModActionOp) string {
	switch op {
	case ModActionLatch:
		return "LatchMods"
	case ModActionLock:
		return "LockMods"
	default:
		return "SetMods"
	}
}

func groupActionName(op GroupActionOp) string {
	switch op {
	case GroupActionLatch:
		return "LatchGroup"
	case GroupActionLock:
		return "LockGroup"
	default:
		return "SetGroup"
	}
}

func groupDeltaLiteral(g GroupDelta) string {
	if g >= 0 {
		return fmt.Sprintf("+%d", g)
	}
	return fmt.Sprintf("%d", g)
}

func flagArgs(f ActionFlags) string {
	var parts []string
	if f&ActionClearLock != 0 {
		parts = append(parts, "clearLocks=True")
	}
	if f&ActionLatchToLock != 0 {
		parts = append(parts, "latchToLock=True")
	}
	if f&ActionLookupModMap != 0 {
		parts = append(parts, "useModMapMods=True")
	}
	if f&ActionLockNoUnlock != 0 {
		parts = append(parts, "lockOnRelease=False")
	}
	if f&ActionUnlockOnPress != 0 {
		parts = append(parts, "unlockOnPress=True")
	}
	if len(parts) == 0 {
		return ""
	}
	return "," + strings.Join(parts, ",")
}
