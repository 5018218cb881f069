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
	"strings"
	"testing"
)

func buildSerializableKeymap(t *testing.T) *Keymap {
	t.Helper()
	c := NewContext(NoDefaultIncludes)
	km := newKeymap(c)
	km.MinKeycode, km.MaxKeycode = 9, 10
	km.NumGroups = 1

	alpha := &KeyType{
		Name:      c.Intern("ALPHABETIC"),
		Mods:      ModMask(1) << ModIndexShift,
		NumLevels: 2,
		Entries: []KeyTypeEntry{
			{Mods: 0, Level: 0},
			{Mods: ModMask(1) << ModIndexShift, Level: 1},
		},
	}
	km.Types = append(km.Types, alpha)

	aKey := &Key{
		Keycode:       10,
		Name:          c.Intern("AC01"),
		ExplicitFlags: ExplicitSymbols,
		Groups: []Group{{
			Type:         alpha,
			ExplicitType: true,
			Levels: []Level{
				{Syms: []Keysym{KeysymFromRune('a')}},
				{Syms: []Keysym{KeysymFromRune('A')}},
			},
		}},
	}
	km.Keys[10] = aKey
	km.keyByName[aKey.Name] = 10

	km.Interps = append(km.Interps, &Interpretation{
		Sym:        KeysymFromRune('a'),
		MatchOp:    MatchAnyOrNone,
		VirtualMod: -1,
	})

	return km
}

func TestSerializeProducesParsableSections(t *testing.T) {
	km := buildSerializableKeymap(t)
	out := km.Serialize()

	for _, want := range []string{
		"xkb_keycodes \"generated\" {",
		"xkb_types \"generated\" {",
		"xkb_compatibility \"generated\" {",
		"xkb_symbols \"generated\" {",
		"<AC01> = 10;",
		"type \"ALPHABETIC\"",
		"symbols[Group1] = [ a, A ];",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Serialize() output missing %q\nfull output:\n%s", want, out)
		}
	}
}

func TestSerializeActionFlagsUseNameValueForm(t *testing.T) {
	km := buildSerializableKeymap(t)
	lit := km.actionLiteral(ModAction{
		Op:    ModActionLock,
		Mods:  ModMask(1) << ModIndexLock,
		Flags: ActionClearLock | ActionUnlockOnPress,
	})
	if strings.Contains(lit, "(clearLocks)") || strings.Contains(lit, ",clearLocks,") {
		t.Errorf("flag rendered without a value: %s", lit)
	}
	if !strings.Contains(lit, "clearLocks=True") {
		t.Errorf("expected clearLocks=True in %s", lit)
	}
	if !strings.Contains(lit, "unlockOnPress=True") {
		t.Errorf("expected unlockOnPress=True in %s", lit)
	}
}

func TestSerializeRoundTripsThroughParser(t *testing.T) {
	km := buildSerializableKeymap(t)
	out := km.Serialize()

	km2, err := km.ctx.NewKeymapFromString("roundtrip", out)
	if err != nil {
		t.Fatalf("reparsing Serialize() output: %v", err)
	}
	if !km.Equal(km2) {
		t.Fatalf("round-tripped keymap not Equal to original\nsource:\n%s", out)
	}
}
