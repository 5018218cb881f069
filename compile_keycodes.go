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

// compileKeycodes implements §4.4's keycodes pass: collects keycode
// name<->value bindings, aliases, and LED name slots, and derives the
// keymap's min/max keycode range.
func compileKeycodes(km *Keymap, sec *parser.Section) error {
	if sec == nil {
		return nil
	}
	first := true
	for _, stmt := range sec.Statements {
		switch v := stmt.(type) {
		case *parser.KeycodeStmt:
			kc := Keycode(v.Value)
			if kc > MaxKeycodeCap {
				return newError(ErrLimit, "keycode %d for %q exceeds the implementation cap of %d", v.Value, v.Name, MaxKeycodeCap)
			}
			name := km.ctx.Intern(v.Name)
			if existing, dup := km.Keys[kc]; dup && existing.Name != AtomNone && existing.Name != name {
				km.ctx.log(LogWarning, MsgDuplicateEntry, "keycode %d redefined from %q to %q", kc, km.ctx.AtomText(existing.Name), v.Name)
			}
			km.keyByName[name] = kc
			if _, ok := km.Keys[kc]; !ok {
				km.Keys[kc] = &Key{Keycode: kc, Name: name, Repeats: true, OutOfRangeGroupAction: GroupActionWrap}
			} else {
				km.Keys[kc].Name = name
			}
			if first || kc < km.MinKeycode {
				km.MinKeycode = kc
			}
			if first || kc > km.MaxKeycode {
				km.MaxKeycode = kc
			}
			first = false
		case *parser.AliasStmt:
			km.aliases[km.ctx.Intern(v.Alias)] = km.ctx.Intern(v.Real)
		case *parser.IndicatorNameStmt:
			name := km.ctx.Intern(v.Name)
			found := false
			for _, led := range km.Leds {
				if led.Name == name {
					found = true
					break
				}
			}
			if !found {
				km.Leds = append(km.Leds, &Led{Name: name})
			}
		}
	}
	return nil
}
