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
	"strings"

	"github.com/xkbgo/xkbcommon/parser"
)

// compileCompat implements §4.4's compat pass: builds the interpretation
// table (keyed by (sym, match_op, mods, level_one_only), first match wins
// at lookup time) and the LED specifications, and applies modifier_map
// statements to the keys they name.
func compileCompat(km *Keymap, sec *parser.Section) error {
	if sec == nil {
		return nil
	}
	for _, stmt := range sec.Statements {
		switch v := stmt.(type) {
		case *parser.InterpretStmt:
			in, err := buildInterpretation(km, v)
			if err != nil {
				return err
			}
			km.Interps = append(km.Interps, in)
		case *parser.ModMapStmt:
			if err := applyModMap(km, v); err != nil {
				return err
			}
		case *parser.LedMapStmt:
			if err := applyLedMap(km, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchOpFromString(s string) MatchOp {
	switch strings.ToLower(s) {
	case "", "exactly":
		return MatchExactly
	case "anyofornone":
		return MatchAnyOrNone
	case "anyof":
		return MatchAny
	case "allof":
		return MatchAll
	case "noneof", "none":
		return MatchNone
	default:
		return MatchExactly
	}
}

func buildInterpretation(km *Keymap, v *parser.InterpretStmt) (*Interpretation, error) {
	in := &Interpretation{VirtualMod: -1}
	if strings.EqualFold(v.Sym, "Any") {
		in.Sym = KeysymAny
	} else if sym, ok := KeysymFromName(v.Sym); ok {
		in.Sym = sym
	} else {
		km.ctx.log(LogWarning, MsgUnrecognizedKeysym, "interpret: unrecognized keysym %q", v.Sym)
		in.Sym = KeysymAny
	}
	if v.MatchOp == "" {
		in.MatchOp = MatchAnyOrNone
	} else {
		in.MatchOp = matchOpFromString(v.MatchOp)
	}
	in.Mods = resolveModExpr(km, v.Mods)
	if v.VirtualMod != "" {
		in.VirtualMod = km.Mods.ByName(km.ctx.Intern(v.VirtualMod))
	}
	if v.Repeat != nil {
		in.Repeat = *v.Repeat
		in.RepeatSet = true
	}
	if v.LevelOneOnly != nil {
		in.LevelOneOnly = *v.LevelOneOnly
	}
	for _, ae := range v.Actions {
		act, err := buildAction(km, ae)
		if err != nil {
			return nil, err
		}
		in.Actions = append(in.Actions, act)
	}
	return in, nil
}

func applyModMap(km *Keymap, v *parser.ModMapStmt) error {
	atom := km.ctx.Intern(v.Mod)
	idx := km.Mods.ByName(atom)
	if idx < 0 {
		km.ctx.log(LogWarning, MsgUnresolvedKeysym, "modifier_map: unknown modifier %q", v.Mod)
		return nil
	}
	kind := ModKindReal
	if idx >= NumRealMods {
		kind = ModKindVirtual
	}
	for _, keyName := range v.Keys {
		key, ok := km.KeyByName(km.ctx.Intern(keyName))
		if !ok {
			continue
		}
		if kind == ModKindReal {
			key.ModMap |= ModMask(1) << uint(idx)
		} else {
			key.VModMap |= ModMask(1) << uint(idx)
		}
	}
	return nil
}

func ledComponentFromString(s string) LedComponent {
	var out LedComponent
	for _, name := range strings.Split(s, "+") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "base", "depressed":
			out |= LedDepressed
		case "latched":
			out |= LedLatched
		case "locked":
			out |= LedLocked
		case "effective":
			out |= LedEffective
		}
	}
	return out
}

func controlsFromNames(names []string) Controls {
	var out Controls
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "repeat", "repeatkeys":
			out |= ControlRepeat
		case "slow", "slowkeys":
			out |= ControlSlow
		case "sticky", "stickykeys":
			out |= ControlSticky
		case "mousekeys":
			out |= ControlMouseKeys
		case "bell", "audiblebell":
			out |= ControlBell
		case "ignoregrouplock":
			out |= ControlIgnoreGroupLock
		}
	}
	return out
}

func applyLedMap(km *Keymap, v *parser.LedMapStmt) error {
	name := km.ctx.Intern(v.Name)
	var led *Led
	for _, l := range km.Leds {
		if l.Name == name {
			led = l
			break
		}
	}
	if led == nil {
		led = &Led{Name: name}
		km.Leds = append(km.Leds, led)
	}
	led.WhichMods = ledComponentFromString(v.WhichMods)
	led.Mods = resolveModExpr(km, v.Mods)
	led.WhichGroups = ledComponentFromString(v.WhichGroups)
	if v.Groups != nil && v.Groups.HasMask {
		led.Groups = v.Groups.Mask
	}
	led.Ctrls = controlsFromNames(v.Ctrls)
	return nil
}

// buildAction resolves one parsed action-call expression into a concrete
// Action variant, per §3's "union-tagged actions" and §4.6.
func buildAction(km *Keymap, ae parser.ActionExpr) (Action, error) {
	args := map[string]string{}
	for _, a := range ae.Args {
		args[strings.ToLower(a.Name)] = a.Value
	}
	flags := parseActionFlags(args)

	switch strings.ToLower(ae.Name) {
	case "setmods":
		return ModAction{Op: ModActionSet, Mods: modsFromArg(km, args, "mods"), Flags: flags}, nil
	case "latchmods":
		return ModAction{Op: ModActionLatch, Mods: modsFromArg(km, args, "mods"), Flags: flags}, nil
	case "lockmods":
		return ModAction{Op: ModActionLock, Mods: modsFromArg(km, args, "mods"), Flags: flags}, nil
	case "setgroup":
		g, abs := groupDeltaFromArg(args)
		f := flags
		if abs {
			f |= ActionAbsolute
		}
		return GroupAction{Op: GroupActionSet, Group: g, Flags: f}, nil
	case "latchgroup":
		g, abs := groupDeltaFromArg(args)
		f := flags
		if abs {
			f |= ActionAbsolute
		}
		return GroupAction{Op: GroupActionLatch, Group: g, Flags: f}, nil
	case "lockgroup":
		g, abs := groupDeltaFromArg(args)
		f := flags
		if abs {
			f |= ActionAbsolute
		}
		return GroupAction{Op: GroupActionLock, Group: g, Flags: f}, nil
	case "terminateserver":
		return TerminateAction{}, nil
	case "switchscreen":
		n, abs := intArgAbsolute(args, "screen")
		return SwitchScreenAction{Screen: int32(n), Absolute: abs}, nil
	case "ptrmove":
		x, xAbs := intArgAbsolute(args, "x")
		y, _ := intArgAbsolute(args, "y")
		f := flags
		if xAbs {
			f |= ActionAbsolute
		}
		return PointerAction{Op: PointerMove, X: int32(x), Y: int32(y), Flags: f}, nil
	case "ptrbutton":
		btn, _ := strconv.Atoi(args["button"])
		return PointerAction{Op: PointerButton, Button: btn, Flags: flags}, nil
	case "lockptrbtn", "ptrlock":
		btn, _ := strconv.Atoi(args["button"])
		return PointerAction{Op: PointerLock, Button: btn, Flags: flags}, nil
	case "setptrdflt":
		return PointerAction{Op: PointerDefault, Flags: flags}, nil
	case "setcontrols":
		return ControlAction{Op: ControlSet, Controls: controlsFromNames(strings.Split(args["controls"], "+"))}, nil
	case "lockcontrols":
		return ControlAction{Op: ControlLock, Controls: controlsFromNames(strings.Split(args["controls"], "+"))}, nil
	case "private":
		typ, _ := strconv.Atoi(args["type"])
		return PrivateAction{Type: typ, Data: []byte(args["data"])}, nil
	case "noaction", "void":
		return VoidAction{}, nil
	default:
		km.ctx.log(LogWarning, MsgUnsupportedSymbolsMany, "unrecognized action %q treated as NoAction", ae.Name)
		return VoidAction{}, nil
	}
}

func parseActionFlags(args map[string]string) ActionFlags {
	var f ActionFlags
	if boolArg(args, "clearlocks") {
		f |= ActionClearLock
	}
	if boolArg(args, "latchtolock") {
		f |= ActionLatchToLock
	}
	if boolArg(args, "usemodmapmods") {
		f |= ActionLookupModMap
	}
	if v, ok := args["lockonrelease"]; ok && !parseBoolString(v) {
		f |= ActionLockNoUnlock
	}
	if boolArg(args, "unlockonpress") {
		f |= ActionUnlockOnPress
	}
	return f
}

func boolArg(args map[string]string, name string) bool {
	v, ok := args[name]
	if !ok {
		return false
	}
	return parseBoolString(v)
}

func parseBoolString(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

func modsFromArg(km *Keymap, args map[string]string, key string) ModMask {
	val, ok := args[key]
	if !ok {
		return 0
	}
	var mask ModMask
	for _, name := range strings.Split(val, "+") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "modmap") || strings.EqualFold(name, "none") {
			continue
		}
		atom := km.ctx.Intern(name)
		if idx := km.Mods.ByName(atom); idx >= 0 {
			mask |= ModMask(1) << uint(idx)
		}
	}
	return mask
}

func groupDeltaFromArg(args map[string]string) (GroupDelta, bool) {
	val, ok := args["group"]
	if !ok {
		return 0, false
	}
	abs := !strings.HasPrefix(val, "+") && !strings.HasPrefix(val, "-")
	n, _ := strconv.Atoi(strings.TrimPrefix(val, "+"))
	return GroupDelta(n), abs
}

func intArgAbsolute(args map[string]string, key string) (int, bool) {
	val, ok := args[key]
	if !ok {
		return 0, false
	}
	abs := !strings.HasPrefix(val, "+") && !strings.HasPrefix(val, "-")
	n, _ := strconv.Atoi(strings.TrimPrefix(val, "+"))
	return n, abs
}
